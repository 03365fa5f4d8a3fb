package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/instrumap/pkg/diagram/layout"
	"github.com/matzehuels/instrumap/pkg/diagram/sink"
	"github.com/matzehuels/instrumap/pkg/errors"
)

// Render generates artifacts in every requested format without caching.
// opts must have render defaults set.
func Render(ctx context.Context, d *layout.Diagram, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, d, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat generates one artifact.
func RenderFormat(ctx context.Context, d *layout.Diagram, format string, opts Options) ([]byte, error) {
	face := opts.Style.Face()
	switch format {
	case FormatSVG:
		return sink.RenderSVG(d, buildSVGOptions(opts)...), nil
	case FormatPNG:
		return sink.RenderPNG(d, sink.WithScale(opts.Scale), sink.WithPNGFont(face))
	case FormatPDF:
		return sink.RenderPDF(d, sink.WithPDFSVGOptions(buildSVGOptions(opts)...))
	case FormatJSON:
		return sink.RenderJSON(d)
	case FormatDOT:
		return []byte(sink.ToDOT(d)), nil
	case FormatNodelink:
		return sink.RenderNodeLinkSVG(ctx, sink.ToDOT(d))
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithFont(opts.Style.Face())}
	if opts.Popups {
		svgOpts = append(svgOpts, sink.WithPopups())
	}
	return svgOpts
}
