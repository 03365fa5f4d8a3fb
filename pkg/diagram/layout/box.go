package layout

import (
	"unicode"

	"github.com/matzehuels/instrumap/pkg/instrument"
)

// Box is the drawn rectangle of one component, or of the ABSOLUTE sentinel.
//
// Geometry is filled in two phases: Estimate sizes the box from its weighted
// label length, Refine replaces that with the measured label extent. Arrows
// are routed against the refined extents only.
type Box struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Index    int    `json:"index"`
	// Weighted is the label length with uppercase characters counted 1.2.
	Weighted float64 `json:"weighted_length"`

	CenterY float64 `json:"center_y"`
	Height  float64 `json:"height"`
	Indent  float64 `json:"indent"`
	Color   string  `json:"color"`

	EstLeft  float64 `json:"est_left"`
	EstRight float64 `json:"est_right"`
	Left     float64 `json:"left"`
	Right    float64 `json:"right"`
	Refined  bool    `json:"refined"`
	// TextX is where the label starts.
	TextX float64 `json:"text_x"`

	Description string `json:"description,omitempty"`
}

// Top returns the upper edge of the box.
func (b *Box) Top() float64 { return b.CenterY - b.Height/2 }

// Bottom returns the lower edge of the box.
func (b *Box) Bottom() float64 { return b.CenterY + b.Height/2 }

// Width returns the current horizontal extent.
func (b *Box) Width() float64 { return b.Right - b.Left }

// IsAbsolute reports whether b is the sentinel box.
func (b *Box) IsAbsolute() bool { return b.Index == 0 && b.Name == instrument.AbsoluteName }

// WeightedLength returns len(s) plus 0.2 for every uppercase letter.
func WeightedLength(s string) float64 {
	n := 0.0
	for _, r := range s {
		n++
		if unicode.IsUpper(r) {
			n += 0.2
		}
	}
	return n
}

// NewBoxes creates the ABSOLUTE box followed by one box per component, in
// declaration order.
func NewBoxes(comps []instrument.Component) []*Box {
	boxes := make([]*Box, 0, len(comps)+1)
	boxes = append(boxes, &Box{
		Name:        instrument.AbsoluteName,
		Weighted:    WeightedLength(instrument.AbsoluteName),
		Description: "ABSOLUTE\norigin of the instrument coordinate system",
	})
	for i, c := range comps {
		boxes = append(boxes, &Box{
			Name:        c.Name(),
			Category:    c.Category(),
			Index:       i + 1,
			Weighted:    WeightedLength(c.Name()),
			Description: instrument.Describe(c),
		})
	}
	return boxes
}

// Order returns box names by position.
func Order(boxes []*Box) []string {
	names := make([]string, len(boxes))
	for i, b := range boxes {
		names[i] = b.Name
	}
	return names
}

// DistributeVertically places box centers evenly between the top and bottom
// margins of a canvas of the given height.
func DistributeVertically(boxes []*Box, height float64, cfg Config) {
	if len(boxes) == 0 {
		return
	}
	top := cfg.Margin * height
	slot := (1 - 2*cfg.Margin) * height / float64(len(boxes))
	for i, b := range boxes {
		b.CenterY = top + (float64(i)+0.5)*slot
		b.Height = slot * cfg.BoxFill
	}
}

// Estimate sets the phase-1 extents of b with its left edge at left.
func (b *Box) Estimate(left float64, cfg Config) {
	b.EstLeft = left + b.Indent
	b.EstRight = b.EstLeft + cfg.CharWidth*b.Weighted + 2*cfg.Padding
	b.Left, b.Right = b.EstLeft, b.EstRight
	b.TextX = b.Left + cfg.Padding
}

// Refine replaces the estimate with the measured label extent. The label
// starts Padding after the left edge.
func (b *Box) Refine(e Extent, cfg Config) {
	b.Left = b.EstLeft
	b.Right = b.Left + e.Width + 2*cfg.Padding
	b.Refined = true
}
