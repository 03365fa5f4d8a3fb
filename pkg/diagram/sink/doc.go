// Package sink renders a [layout.Diagram] into output formats.
//
//   - SVG: [RenderSVG], with optional hover tooltips and an embedded font
//   - PNG: [RenderPNG], rasterized in-process with gg and freetype
//   - PDF: [RenderPDF], SVG converted by rsvg-convert
//   - JSON: [RenderJSON], the full diagram for external renderers
//   - DOT: [ToDOT] and [RenderNodeLinkSVG], a Graphviz node-link view
//
// [FontMeasurer] is the phase-2 measurer for [layout.Build]. It uses the same
// font data the SVG and PNG sinks draw with, so measured extents match the
// rendered labels:
//
//	m, err := sink.NewFontMeasurer(fonts.Regular, cfg.FontSize)
//	d, err := layout.Build(inst, cfg, layout.WithMeasurer(m))
//	svg := sink.RenderSVG(d, sink.WithPopups(), sink.WithEmbeddedFont())
//
// PDF output requires librsvg:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [layout.Diagram]: github.com/matzehuels/instrumap/pkg/diagram/layout.Diagram
// [layout.Build]: github.com/matzehuels/instrumap/pkg/diagram/layout.Build
package sink
