package layout

import (
	"math"
	"strconv"

	"github.com/matzehuels/instrumap/pkg/instrument"
)

// Bar is one analysis-mode intensity bar, drawn next to its box in place of
// the right-side arrows.
type Bar struct {
	Box    string  `json:"box"`
	Value  float64 `json:"value"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Label  string  `json:"label"`
}

// Bars scales intensities logarithmically into the right lane block, which
// spans [left, left+span]. Entries naming no box and negative values are
// skipped.
func Bars(boxes []*Box, data []instrument.Intensity, left, span float64) []Bar {
	byName := make(map[string]*Box, len(boxes))
	for _, b := range boxes {
		byName[b.Name] = b
	}

	peak := 0.0
	for _, d := range data {
		if _, ok := byName[d.Component]; ok && d.Value > peak {
			peak = d.Value
		}
	}

	var bars []Bar
	for _, d := range data {
		b, ok := byName[d.Component]
		if !ok || d.Value < 0 {
			continue
		}
		frac := 0.0
		if peak > 0 {
			frac = math.Log1p(d.Value) / math.Log1p(peak)
		}
		h := b.Height * 0.6
		bars = append(bars, Bar{
			Box:    b.Name,
			Value:  d.Value,
			X:      left,
			Y:      b.CenterY - h/2,
			Width:  frac * span,
			Height: h,
			Label:  strconv.FormatFloat(d.Value, 'g', 3, 64),
		})
	}
	return bars
}
