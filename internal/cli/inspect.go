package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/instrumap/pkg/errors"
)

// inspectCommand creates the inspect command: an interactive browser over
// the boxes of a diagram, or a single hover lookup with --at.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags buildFlags
		at    string
	)

	cmd := &cobra.Command{
		Use:   "inspect [instrument.yaml]",
		Short: "Browse the components and relationships of a diagram",
		Long: `Browse the components and relationships of a diagram.

Without flags, inspect opens an interactive list of boxes showing each box's
hover description and the arrows that start or end at it.

With --at x,y it prints the description of the box nearest to that canvas
point, the same text an SVG viewer shows on hover.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], flags, at)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&at, "at", "", "print the hover text at canvas point x,y and exit")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string, flags buildFlags, at string) error {
	var (
		x, y float64
		err  error
	)
	if at != "" {
		if x, y, err = parsePoint(at); err != nil {
			return err
		}
	}

	opts, err := flags.options()
	if err != nil {
		return err
	}
	source, _, err := readSource(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	d, err := runner.Build(ctx, source, opts)
	if err != nil {
		return err
	}
	printWarnings(d.Warnings)

	if at != "" {
		desc, ok := d.Hover(x, y)
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "no box near (%g, %g); canvas is %gx%g", x, y, d.Width, d.Height)
		}
		fmt.Println(desc)
		return nil
	}

	_, err = tea.NewProgram(NewInspectModel(d), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// parsePoint parses "x,y".
func parsePoint(s string) (float64, float64, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "point %q must be x,y", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "point %q must be two numbers", s)
	}
	return x, y, nil
}
