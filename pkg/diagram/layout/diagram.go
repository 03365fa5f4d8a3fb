package layout

import (
	"math"
)

// Diagram is a finished layout. Every coordinate is in canvas units with the
// origin at the top-left corner.
type Diagram struct {
	Name     string  `json:"name,omitempty"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FontSize float64 `json:"font_size"`

	// ColumnLeft and ColumnRight bound the box column.
	ColumnLeft  float64 `json:"column_left"`
	ColumnRight float64 `json:"column_right"`

	Boxes  []*Box   `json:"boxes"`
	Arrows []*Arrow `json:"arrows"`
	Legend Legend   `json:"legend"`
	// Analysis diagrams show Bars instead of right-side arrows.
	Analysis bool  `json:"analysis,omitempty"`
	Bars     []Bar `json:"bars,omitempty"`

	// Warnings lists relationship kinds that were dropped and why.
	Warnings []string `json:"warnings,omitempty"`
}

// Box returns the box called name.
func (d *Diagram) Box(name string) (*Box, bool) {
	for _, b := range d.Boxes {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Hover returns the description of the box nearest to (x, y). Boxes form
// rows, so the vertical distance decides; the horizontal distance only
// breaks ties. It returns false when the point is outside the canvas or
// there are no boxes.
func (d *Diagram) Hover(x, y float64) (string, bool) {
	if x < 0 || y < 0 || x > d.Width || y > d.Height || len(d.Boxes) == 0 {
		return "", false
	}
	var best *Box
	bestDY, bestDX := math.Inf(1), math.Inf(1)
	for _, b := range d.Boxes {
		dy := math.Abs(y - b.CenterY)
		dx := max(b.Left-x, 0, x-b.Right)
		if dy < bestDY || (dy == bestDY && dx < bestDX) {
			best, bestDY, bestDX = b, dy, dx
		}
	}
	return best.Description, true
}
