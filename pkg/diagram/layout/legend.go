package layout

import (
	"slices"

	"github.com/matzehuels/instrumap/pkg/diagram/connect"
	"github.com/matzehuels/instrumap/pkg/instrument"
)

// LegendEntry is one legend row: a category swatch or a relationship line.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
	// Category is set for swatches.
	Category string `json:"category,omitempty"`
	// Kind is set for relationship rows.
	Kind     *connect.Kind `json:"kind,omitempty"`
	Dash     string        `json:"dash,omitempty"`
	Directed bool          `json:"directed,omitempty"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
}

// Legend holds the category swatches and relationship rows, each split into
// two balanced columns.
type Legend struct {
	Categories []LegendEntry `json:"categories"`
	Kinds      []LegendEntry `json:"kinds"`
	Left       float64       `json:"left"`
	Top        float64       `json:"top"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	// Swatch is the side length of a category swatch.
	Swatch float64 `json:"swatch"`
}

// CategoryColors assigns palette colors to the categories present among
// components, in sorted order. OtherCategory always gets OtherColor.
func CategoryColors(comps []instrument.Component, cats instrument.Categories, cfg Config) (order []string, colors map[string]string) {
	seen := make(map[string]bool)
	for _, c := range comps {
		if cat := cats.Resolve(c.Category()); cat != instrument.OtherCategory {
			seen[cat] = true
		}
	}
	for cat := range seen {
		order = append(order, cat)
	}
	slices.Sort(order)

	colors = make(map[string]string, len(order)+1)
	for i, cat := range order {
		colors[cat] = cfg.paletteColor(i)
	}
	colors[instrument.OtherCategory] = cfg.OtherColor
	return append(order, instrument.OtherCategory), colors
}

// legendKinds returns the kinds shown in the legend: the base kinds always,
// the others only when they have arrows.
func legendKinds(present map[connect.Kind]bool) []connect.Kind {
	var kinds []connect.Kind
	for _, k := range connect.Kinds {
		if k.IsBase() || present[k] {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func newLegend(order []string, colors map[string]string, cats instrument.Categories, kinds []connect.Kind, cfg Config) Legend {
	lg := Legend{Swatch: cfg.FontSize}
	for _, cat := range order {
		label := cats.DisplayName(cat)
		if cat == instrument.OtherCategory && label == cat {
			label = "Other"
		}
		lg.Categories = append(lg.Categories, LegendEntry{Label: label, Color: colors[cat], Category: cat})
	}
	for _, k := range kinds {
		lg.Kinds = append(lg.Kinds, LegendEntry{
			Label:    k.Label(),
			Color:    cfg.kindColor(k),
			Kind:     &k,
			Dash:     cfg.KindDash[k],
			Directed: k.Directed(),
		})
	}

	rowH := legendRowHeight(cfg)
	catRows := (len(lg.Categories) + 1) / 2
	kindRows := (len(lg.Kinds) + 1) / 2
	lg.Height = float64(catRows+kindRows+1) * rowH

	second := 0.0
	for _, entries := range [][]LegendEntry{lg.Categories, lg.Kinds} {
		for _, e := range entries[(len(entries)+1)/2:] {
			second = max(second, lg.entryWidth(e, cfg))
		}
	}
	lg.Width = lg.columnSplit(cfg) + second
	return lg
}

// place positions every entry with the legend's top-left corner at (left, top).
func (lg *Legend) place(left, top float64, cfg Config) {
	lg.Left, lg.Top = left, top
	rowH := legendRowHeight(cfg)
	colX := [2]float64{left, left + lg.columnSplit(cfg)}

	y := top + rowH/2
	y = placeColumns(lg.Categories, colX, y, rowH)
	y += rowH
	placeColumns(lg.Kinds, colX, y, rowH)
}

func (lg *Legend) columnSplit(cfg Config) float64 {
	w := 0.0
	for _, entries := range [][]LegendEntry{lg.Categories, lg.Kinds} {
		half := (len(entries) + 1) / 2
		for _, e := range entries[:half] {
			w = max(w, lg.entryWidth(e, cfg))
		}
	}
	return w + cfg.Padding
}

func (lg *Legend) entryWidth(e LegendEntry, cfg Config) float64 {
	return lg.Swatch*2 + cfg.Padding + cfg.CharWidth*WeightedLength(e.Label)
}

// placeColumns lays entries out in two columns, the first holding the extra
// entry when the count is odd. It returns the y below the last row.
func placeColumns(entries []LegendEntry, colX [2]float64, y, rowH float64) float64 {
	half := (len(entries) + 1) / 2
	for i := range entries {
		col, row := 0, i
		if i >= half {
			col, row = 1, i-half
		}
		entries[i].X = colX[col]
		entries[i].Y = y + float64(row)*rowH
	}
	return y + float64(half)*rowH
}

func legendRowHeight(cfg Config) float64 { return cfg.FontSize * 1.6 }
