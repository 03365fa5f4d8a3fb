package layout

import (
	"github.com/matzehuels/instrumap/pkg/diagram/connect"
)

// Side is the lane block an arrow is routed through.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// SideOf returns the routing side of kind k: base kinds go left.
func SideOf(k connect.Kind) Side {
	if k.IsBase() {
		return SideLeft
	}
	return SideRight
}

// Point is a canvas position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Label is inline arrow text, centered on (X, Y).
type Label struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Arrow is a routed connection.
type Arrow struct {
	Origin string       `json:"origin"`
	Target string       `json:"target"`
	Kind   connect.Kind `json:"kind"`
	Info   string       `json:"info,omitempty"`
	Lane   int          `json:"lane"`
	// SubLane shifts the lane column by SubLane*SubLaneSpacing lanes so
	// that kinds sharing lane numbers do not overlap.
	SubLane int  `json:"sub_lane"`
	Side    Side `json:"side"`

	OriginOffset    float64 `json:"origin_offset"`
	TargetOffset    float64 `json:"target_offset"`
	OriginCongested bool    `json:"origin_congested"`
	TargetCongested bool    `json:"target_congested"`

	Color string `json:"color"`
	Dash  string `json:"dash,omitempty"`
	// Directed arrows end in an arrowhead; others are plain lines.
	Directed bool `json:"directed"`

	Path  []Point `json:"path"`
	Head  []Point `json:"head,omitempty"`
	Label *Label  `json:"label,omitempty"`
}

// NewArrow decorates a laned connection. Rotation arrows use sub-lane 1.
func NewArrow(c *connect.Connection, cfg Config) *Arrow {
	a := &Arrow{
		Origin:   c.Origin,
		Target:   c.Target,
		Kind:     c.Kind,
		Info:     c.Info,
		Lane:     c.Lane,
		Side:     SideOf(c.Kind),
		Color:    cfg.kindColor(c.Kind),
		Dash:     cfg.KindDash[c.Kind],
		Directed: c.Kind.Directed(),
	}
	if c.Kind == connect.KindRotation {
		a.SubLane = 1
	}
	return a
}

// LaneX returns the x position of the lane column. edge is the outer edge
// of the lead segments on the arrow's side.
func (a *Arrow) LaneX(edge float64, cfg Config) float64 {
	d := (float64(a.Lane) + float64(a.SubLane)*cfg.SubLaneSpacing) * cfg.LaneWidth
	if a.Side == SideLeft {
		return edge - d
	}
	return edge + d
}

// Route computes the path from origin to target: a lead segment out of the
// origin box, a vertical run along the lane column and a lead segment into
// the target box, ending in an arrowhead for directed arrows.
//
// edge is the lane block's inner boundary: the column's left edge minus the
// lead length on the left side, the column's right edge plus the lead
// length on the right.
func (a *Arrow) Route(origin, target *Box, edge float64, cfg Config) {
	ox, tx := origin.Right, target.Right
	dir := -1.0
	if a.Side == SideLeft {
		ox, tx = origin.Left, target.Left
		dir = 1.0
	}
	oy := origin.CenterY + a.OriginOffset
	ty := target.CenterY + a.TargetOffset
	lx := a.LaneX(edge, cfg)

	end := tx
	a.Head = nil
	if a.Directed {
		end = tx - dir*cfg.HeadLength
		a.Head = []Point{
			{tx, ty},
			{end, ty - cfg.HeadWidth/2},
			{end, ty + cfg.HeadWidth/2},
		}
	}
	a.Path = []Point{{ox, oy}, {lx, oy}, {lx, ty}, {end, ty}}

	a.Label = nil
	if a.Info == "" {
		return
	}
	switch {
	case !a.TargetCongested:
		a.Label = &Label{Text: a.Info, X: (tx + lx) / 2, Y: ty - cfg.FontSize/4}
	case !a.OriginCongested:
		a.Label = &Label{Text: a.Info, X: (ox + lx) / 2, Y: oy - cfg.FontSize/4}
	}
}
