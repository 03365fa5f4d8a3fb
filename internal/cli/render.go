package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/instrumap/pkg/pipeline"
)

// renderCommand creates the render command: document in, artifacts out.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      buildFlags
		formatsStr string
		output     string
		popups     bool
		scale      float64
	)

	cmd := &cobra.Command{
		Use:   "render [instrument.yaml]",
		Short: "Build and render an instrument diagram",
		Long: `Build and render an instrument diagram.

The render command loads an instrument document, extracts its relationships,
lays out the diagram and writes one file per requested format. With a single
format, -o names the file; with several, -o is the base path and each format
adds its extension.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts, err := flags.options()
			if err != nil {
				return err
			}
			opts.Formats = formats
			opts.Popups = popups
			opts.Scale = scale
			return c.runRender(cmd.Context(), args[0], opts, output, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot, nodelink (comma-separated)")
	cmd.Flags().BoolVar(&popups, "popups", true, "show component descriptions on hover (svg, pdf)")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")

	return cmd
}

// runRender executes the full pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	p := newProgress(c.Logger)
	source, in, err := readSource(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", displayName(in.Name, input)))
	spinner.Start()

	result, err := runner.Execute(ctx, source, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(ctx, result.Artifacts, opts.Formats, input, output)
	if err != nil {
		return err
	}
	p.done("Rendered " + displayName(in.Name, input))

	printSuccess("Render complete")
	for _, path := range paths {
		printFile(path)
	}
	printStats(result.Stats.Boxes, result.Stats.Arrows, len(result.Diagram.Warnings),
		result.CacheInfo.BuildHit && result.CacheInfo.RenderHit)
	printWarnings(result.Diagram.Warnings)
	return nil
}

// parseFormats parses the --format flag. An empty flag means svg.
func parseFormats(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{pipeline.FormatSVG}, nil
	}
	return pipeline.ParseFormats(s)
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. If output ends in
// a format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	// Longest extensions first: ".nodelink.svg" also ends in ".svg".
	for i := len(pipeline.Formats) - 1; i >= 0; i-- {
		if ext := "." + pipeline.Extension(pipeline.Formats[i]); strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// outputPaths maps each format to the file it is written to.
func outputPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + pipeline.Extension(f)
	}
	return paths
}

// writeArtifacts writes every artifact in formats order and returns the
// paths written.
func writeArtifacts(ctx context.Context, artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	logger := loggerFromContext(ctx)
	targets := outputPaths(formats, input, output)

	written := make([]string, 0, len(formats))
	for _, f := range formats {
		path := targets[f]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return written, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debugf("Wrote %s: %d bytes", path, len(artifacts[f]))
		written = append(written, path)
	}
	return written, nil
}

func displayName(name, input string) string {
	if name != "" {
		return name
	}
	return filepath.Base(input)
}
