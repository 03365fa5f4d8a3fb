package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/instrumap/pkg/diagram/sink"
)

// layoutCommand creates the layout command for computing a diagram without
// rendering it.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  buildFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [instrument.yaml]",
		Short: "Compute the diagram of an instrument document",
		Long: `Compute the diagram of an instrument document.

The layout command builds the diagram (boxes, lane-allocated arrows, legend
and analysis bars) and writes it as JSON, the same format as 'render -f json'.
The file can be rendered later with 'visualize' or consumed by external
renderers. Use -o - to write to stdout.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], flags, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.diagram.json)")

	return cmd
}

// runLayout builds the diagram and writes its JSON.
func (c *CLI) runLayout(ctx context.Context, input string, flags buildFlags, output string) error {
	opts, err := flags.options()
	if err != nil {
		return err
	}
	source, in, err := readSource(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Computing layout of %s...", displayName(in.Name, input)))
	spinner.Start()

	d, cacheHit, err := runner.BuildWithCacheInfo(ctx, source, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := sink.RenderJSON(d)
	if err != nil {
		return err
	}
	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".diagram.json"
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(d.Boxes), len(d.Arrows), len(d.Warnings), cacheHit)
	printWarnings(d.Warnings)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
