package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/instrumap/pkg/diagram/layout"
)

// ToDOT converts the diagram's boxes and arrows to Graphviz DOT. Boxes keep
// their vertical order through an invisible chain; arrows keep their kind's
// color and dash style. Lane geometry is left to Graphviz.
func ToDOT(d *layout.Diagram) string {
	var buf bytes.Buffer
	buf.WriteString("digraph instrument {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fontsize=%.0f, margin=\"0.15,0.05\"];\n", d.FontSize)
	buf.WriteString("  ranksep=0.3;\n")
	buf.WriteString("\n")

	for _, b := range d.Boxes {
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q, tooltip=%q];\n",
			b.Name, b.Name, b.Color, b.Description)
	}

	buf.WriteString("\n")
	for i := 1; i < len(d.Boxes); i++ {
		fmt.Fprintf(&buf, "  %q -> %q [style=invis, weight=100];\n", d.Boxes[i-1].Name, d.Boxes[i].Name)
	}

	buf.WriteString("\n")
	for _, a := range d.Arrows {
		attrs := []string{
			fmt.Sprintf("color=%q", a.Color),
			"constraint=false",
		}
		if a.Dash != "" {
			attrs = append(attrs, "style=dashed")
		}
		if !a.Directed {
			attrs = append(attrs, "dir=none")
		}
		if a.Info != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", a.Info))
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", a.Origin, a.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderNodeLinkSVG renders DOT to SVG using Graphviz.
func RenderNodeLinkSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based svg tag with a plain
// viewBox so the output scales like RenderSVG's.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
