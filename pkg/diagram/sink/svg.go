package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/instrumap/pkg/diagram/layout"
	"github.com/matzehuels/instrumap/pkg/fonts"
)

const boxInteractionCSS = `
    .box rect { transition: stroke-width 0.2s ease; }
    .box:hover rect { stroke-width: 2.5; }
    .arrow { transition: opacity 0.2s ease; }
    svg:hover .arrow { opacity: 0.55; }
    svg:hover .arrow:hover { opacity: 1; }`

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	face       *fonts.Face
	embedFont  bool
	popups     bool
	background string
}

// WithFont selects the label font. The default is fonts.Regular.
func WithFont(f *fonts.Face) SVGOption { return func(r *svgRenderer) { r.face = f } }

// WithEmbeddedFont embeds the label font so labels render with the metrics
// FontMeasurer used.
func WithEmbeddedFont() SVGOption { return func(r *svgRenderer) { r.embedFont = true } }

// WithPopups attaches each box's description as a hover tooltip.
func WithPopups() SVGOption { return func(r *svgRenderer) { r.popups = true } }

// WithBackground sets the canvas fill; empty means transparent.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// RenderSVG draws the diagram: arrows first, then boxes, bars and legend.
func RenderSVG(d *layout.Diagram, opts ...SVGOption) []byte {
	r := svgRenderer{face: fonts.Regular, background: "#ffffff"}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		d.Width, d.Height, d.Width, d.Height)
	r.renderDefs(&buf, d)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background)
	}

	for _, a := range d.Arrows {
		renderArrow(&buf, a)
	}
	for _, b := range d.Boxes {
		r.renderBox(&buf, b)
	}
	for _, bar := range d.Bars {
		renderBar(&buf, bar, d.FontSize)
	}
	renderLegend(&buf, d.Legend)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderDefs(buf *bytes.Buffer, d *layout.Diagram) {
	buf.WriteString("  <defs>\n    <style>")
	if r.embedFont {
		fmt.Fprintf(buf, `
    @font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s) format('truetype'); }`,
			r.face.Family, r.face.Base64())
	}
	fmt.Fprintf(buf, `
    text { font-family: %s; font-size: %.1fpx; fill: #222; }
    .label { font-size: %.1fpx; }%s
    </style>
  </defs>
`, r.face.Fallback, d.FontSize, d.FontSize*0.8, boxInteractionCSS)
}

func (r *svgRenderer) renderBox(buf *bytes.Buffer, b *layout.Box) {
	fmt.Fprintf(buf, `  <g class="box" id="box-%s">`+"\n", escapeXML(b.Name))
	if r.popups && b.Description != "" {
		fmt.Fprintf(buf, "    <title>%s</title>\n", escapeXML(b.Description))
	}
	fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="3" fill="%s" stroke="#333" stroke-width="1"/>`+"\n",
		b.Left, b.Top(), b.Width(), b.Height, b.Color)
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" dominant-baseline="central">%s</text>`+"\n",
		b.TextX, b.CenterY, escapeXML(b.Name))
	buf.WriteString("  </g>\n")
}

func renderArrow(buf *bytes.Buffer, a *layout.Arrow) {
	fmt.Fprintf(buf, `  <g class="arrow" data-kind="%s" data-origin="%s" data-target="%s">`+"\n",
		a.Kind, escapeXML(a.Origin), escapeXML(a.Target))
	dash := ""
	if a.Dash != "" {
		dash = fmt.Sprintf(` stroke-dasharray="%s"`, a.Dash)
	}
	fmt.Fprintf(buf, `    <polyline points="%s" fill="none" stroke="%s" stroke-width="1.3"%s/>`+"\n",
		pointList(a.Path), a.Color, dash)
	if len(a.Head) > 0 {
		fmt.Fprintf(buf, `    <polygon points="%s" fill="%s"/>`+"\n", pointList(a.Head), a.Color)
	}
	if a.Label != nil {
		fmt.Fprintf(buf, `    <text class="label" x="%.2f" y="%.2f" text-anchor="middle" fill="%s">%s</text>`+"\n",
			a.Label.X, a.Label.Y, a.Color, escapeXML(a.Label.Text))
	}
	buf.WriteString("  </g>\n")
}

func renderBar(buf *bytes.Buffer, bar layout.Bar, fontSize float64) {
	fmt.Fprintf(buf, `  <rect class="bar" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="#4a90d9"/>`+"\n",
		bar.X, bar.Y, bar.Width, bar.Height)
	fmt.Fprintf(buf, `  <text class="label" x="%.2f" y="%.2f" dominant-baseline="central">%s</text>`+"\n",
		bar.X+bar.Width+fontSize/3, bar.Y+bar.Height/2, escapeXML(bar.Label))
}

func renderLegend(buf *bytes.Buffer, lg layout.Legend) {
	buf.WriteString(`  <g class="legend">` + "\n")
	s := lg.Swatch
	for _, e := range lg.Categories {
		fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="#333" stroke-width="0.8"/>`+"\n",
			e.X, e.Y-s/2, s, s, e.Color)
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" dominant-baseline="central">%s</text>`+"\n",
			e.X+s*1.5, e.Y, escapeXML(e.Label))
	}
	for _, e := range lg.Kinds {
		dash := ""
		if e.Dash != "" {
			dash = fmt.Sprintf(` stroke-dasharray="%s"`, e.Dash)
		}
		x1, x2 := e.X, e.X+s*1.5
		fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1.3"%s/>`+"\n",
			x1, e.Y, x2, e.Y, e.Color, dash)
		if e.Directed {
			fmt.Fprintf(buf, `    <polygon points="%.2f,%.2f %.2f,%.2f %.2f,%.2f" fill="%s"/>`+"\n",
				x2, e.Y, x2-s/2, e.Y-s/4, x2-s/2, e.Y+s/4, e.Color)
		}
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" dominant-baseline="central">%s</text>`+"\n",
			x2+s/2, e.Y, escapeXML(e.Label))
	}
	buf.WriteString("  </g>\n")
}

func pointList(pts []layout.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
