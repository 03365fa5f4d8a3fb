package sink

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/matzehuels/instrumap/pkg/diagram/layout"
	"github.com/matzehuels/instrumap/pkg/fonts"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
	face  *fonts.Face
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGFont selects the label font. The default is fonts.Regular.
func WithPNGFont(f *fonts.Face) PNGOption {
	return func(r *pngRenderer) { r.face = f }
}

// RenderPNG rasterizes the diagram directly, without an external converter.
func RenderPNG(d *layout.Diagram, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, face: fonts.Regular}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, fmt.Errorf("png scale must be positive, got %.2f", r.scale)
	}

	ttf, err := truetype.Parse(r.face.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face := func(size float64) font.Face {
		return truetype.NewFace(ttf, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	}

	w := int(math.Ceil(d.Width * r.scale))
	h := int(math.Ceil(d.Height * r.scale))
	dc := gg.NewContext(w, h)
	dc.Scale(r.scale, r.scale)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	dc.SetFontFace(face(d.FontSize * 0.8))
	for _, a := range d.Arrows {
		drawArrow(dc, a)
	}

	dc.SetFontFace(face(d.FontSize))
	for _, b := range d.Boxes {
		drawBox(dc, b)
	}
	for _, bar := range d.Bars {
		dc.SetHexColor("#4a90d9")
		dc.DrawRectangle(bar.X, bar.Y, bar.Width, bar.Height)
		dc.Fill()
		dc.SetHexColor("#222222")
		dc.DrawStringAnchored(bar.Label, bar.X+bar.Width+d.FontSize/3, bar.Y+bar.Height/2, 0, 0.35)
	}
	drawLegend(dc, d.Legend)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawArrow(dc *gg.Context, a *layout.Arrow) {
	if len(a.Path) < 2 {
		return
	}
	dc.SetHexColor(a.Color)
	dc.SetLineWidth(1.3)
	setDash(dc, a.Dash)
	dc.MoveTo(a.Path[0].X, a.Path[0].Y)
	for _, p := range a.Path[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
	dc.SetDash()

	if len(a.Head) > 0 {
		dc.MoveTo(a.Head[0].X, a.Head[0].Y)
		for _, p := range a.Head[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
		dc.Fill()
	}
	if a.Label != nil {
		dc.DrawStringAnchored(a.Label.Text, a.Label.X, a.Label.Y, 0.5, 0)
	}
}

func drawBox(dc *gg.Context, b *layout.Box) {
	dc.DrawRoundedRectangle(b.Left, b.Top(), b.Width(), b.Height, 3)
	dc.SetHexColor(b.Color)
	dc.FillPreserve()
	dc.SetHexColor("#333333")
	dc.SetLineWidth(1)
	dc.Stroke()
	dc.SetHexColor("#222222")
	dc.DrawStringAnchored(b.Name, b.TextX, b.CenterY, 0, 0.35)
}

func drawLegend(dc *gg.Context, lg layout.Legend) {
	s := lg.Swatch
	for _, e := range lg.Categories {
		dc.DrawRectangle(e.X, e.Y-s/2, s, s)
		dc.SetHexColor(e.Color)
		dc.FillPreserve()
		dc.SetHexColor("#333333")
		dc.SetLineWidth(0.8)
		dc.Stroke()
		dc.SetHexColor("#222222")
		dc.DrawStringAnchored(e.Label, e.X+s*1.5, e.Y, 0, 0.35)
	}
	for _, e := range lg.Kinds {
		x2 := e.X + s*1.5
		dc.SetHexColor(e.Color)
		dc.SetLineWidth(1.3)
		setDash(dc, e.Dash)
		dc.DrawLine(e.X, e.Y, x2, e.Y)
		dc.Stroke()
		dc.SetDash()
		if e.Directed {
			dc.MoveTo(x2, e.Y)
			dc.LineTo(x2-s/2, e.Y-s/4)
			dc.LineTo(x2-s/2, e.Y+s/4)
			dc.ClosePath()
			dc.Fill()
		}
		dc.SetHexColor("#222222")
		dc.DrawStringAnchored(e.Label, x2+s/2, e.Y, 0, 0.35)
	}
}

// setDash applies an SVG dash array such as "4,3".
func setDash(dc *gg.Context, dash string) {
	if dash == "" {
		dc.SetDash()
		return
	}
	var lengths []float64
	for _, part := range strings.Split(dash, ",") {
		if v, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err == nil {
			lengths = append(lengths, v)
		}
	}
	dc.SetDash(lengths...)
}
