package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/instrumap/pkg/config"
	"github.com/matzehuels/instrumap/pkg/diagram/sink"
	"github.com/matzehuels/instrumap/pkg/errors"
	"github.com/matzehuels/instrumap/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering a diagram
// JSON written by layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		stylePath  string
		noCache    bool
	)
	opts := pipeline.Options{Popups: true, Scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "visualize [diagram.json]",
		Short: "Render a computed diagram",
		Long: `Render a computed diagram.

The visualize command takes a diagram.json file (produced by 'layout') and
renders it. The diagram holds every position and route, so this step only
draws; the style file contributes the font.

Use 'render' as a shortcut to go directly from an instrument document to
visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.Formats = formats
			if stylePath != "" {
				style, err := config.LoadFile(stylePath)
				if err != nil {
					return err
				}
				opts.Style = &style
			}
			return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&stylePath, "style", "", "style file (TOML)")
	cmd.Flags().BoolVar(&opts.Popups, "popups", opts.Popups, "show component descriptions on hover (svg, pdf)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG resolution multiplier")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot, nodelink (comma-separated)")

	return cmd
}

// runVisualize loads the diagram and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	data, err := os.ReadFile(input)
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "diagram file %s", input)
	}
	if err != nil {
		return err
	}
	d, err := sink.ReadJSON(data)
	if err != nil {
		return fmt.Errorf("load diagram %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", displayName(d.Name, input)))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	paths, err := writeArtifacts(ctx, artifacts, opts.Formats, trimDiagramSuffix(input), output)
	if err != nil {
		return err
	}
	printSuccess("Visualization complete")
	for _, path := range paths {
		printFile(path)
	}
	printStats(len(d.Boxes), len(d.Arrows), 0, cacheHit)
	return nil
}

// trimDiagramSuffix turns "x.diagram.json" into "x.json" so derived output
// names do not repeat the ".diagram" marker.
func trimDiagramSuffix(input string) string {
	if base, ok := strings.CutSuffix(input, ".diagram.json"); ok {
		return base + ".json"
	}
	return input
}
