package layout

import (
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/instrumap/pkg/diagram/connect"
	"github.com/matzehuels/instrumap/pkg/errors"
)

// Config holds every layout constant. It is passed by value and never
// modified by the layout, so diagrams with different configs can be built
// concurrently.
//
// All lengths are in canvas units (pixels at scale 1).
type Config struct {
	// Margin is the fraction of the canvas height left empty at the top and
	// at the bottom.
	Margin float64
	// RowHeight is the canvas height per box.
	RowHeight float64
	// BoxFill is the fraction of a box slot covered by the drawn box.
	BoxFill float64
	// SideMargin is the empty space at the left and right canvas edges.
	SideMargin float64

	FontSize float64
	// CharWidth is the width of one weighted character in the phase-1 estimate.
	CharWidth float64
	// Padding is added on each side of the measured label.
	Padding float64

	LaneWidth float64
	// SubLaneSpacing is the fraction of a lane that separates sub-lanes.
	SubLaneSpacing float64
	// LeadLength is the minimum gap between a box edge and lane 1.
	LeadLength float64
	HeadLength float64
	HeadWidth  float64

	// CongestionSpread is the fraction of the box height over which
	// congested endpoints fan out.
	CongestionSpread float64
	// MinRightLanes is the floor for the right lane block, in lanes.
	MinRightLanes int

	// Palette colors categories in sorted category order, cycling when
	// there are more categories than colors.
	Palette       []string
	OtherColor    string
	AbsoluteColor string
	KindColors    map[connect.Kind]string
	// KindDash holds SVG dash arrays; empty means solid.
	KindDash map[connect.Kind]string
}

// DefaultConfig returns the stock diagram style.
func DefaultConfig() Config {
	return Config{
		Margin:           0.02,
		RowHeight:        28,
		BoxFill:          0.72,
		SideMargin:       16,
		FontSize:         12,
		CharWidth:        7.2,
		Padding:          6,
		LaneWidth:        9,
		SubLaneSpacing:   0.5,
		LeadLength:       6,
		HeadLength:       6,
		HeadWidth:        5,
		CongestionSpread: 0.6,
		MinRightLanes:    6,
		Palette: []string{
			"#a6cee3", "#b2df8a", "#fb9a99", "#fdbf6f", "#cab2d6",
			"#ffff99", "#8dd3c7", "#bebada", "#fccde5", "#d9d9d9",
		},
		OtherColor:    "#e0e0e0",
		AbsoluteColor: "#ffffff",
		KindColors: map[connect.Kind]string{
			connect.KindPlacement:   "#1f4e79",
			connect.KindRotation:    "#c0392b",
			connect.KindGroup:       "#7f7f7f",
			connect.KindJump:        "#27ae60",
			connect.KindTargetIndex: "#8e44ad",
			connect.KindUnion:       "#d35400",
		},
		KindDash: map[connect.Kind]string{
			connect.KindGroup:       "4,3",
			connect.KindTargetIndex: "2,2",
		},
	}
}

// Validate reports the first out-of-range setting. Every length must be
// finite; NaN and infinities are rejected before the range checks.
func (c Config) Validate() error {
	lengths := []struct {
		name  string
		value float64
	}{
		{"margin", c.Margin},
		{"row height", c.RowHeight},
		{"box fill", c.BoxFill},
		{"side margin", c.SideMargin},
		{"font size", c.FontSize},
		{"char width", c.CharWidth},
		{"padding", c.Padding},
		{"lane width", c.LaneWidth},
		{"sub-lane spacing", c.SubLaneSpacing},
		{"lead length", c.LeadLength},
		{"head length", c.HeadLength},
		{"head width", c.HeadWidth},
		{"congestion spread", c.CongestionSpread},
	}
	for _, l := range lengths {
		if math.IsNaN(l.value) || math.IsInf(l.value, 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be a finite number", l.name)
		}
	}

	switch {
	case c.Margin < 0 || c.Margin >= 0.5:
		return errors.New(errors.ErrCodeInvalidConfig, "margin %.3f must be in [0, 0.5)", c.Margin)
	case c.RowHeight <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "row height must be positive")
	case c.BoxFill <= 0 || c.BoxFill > 1:
		return errors.New(errors.ErrCodeInvalidConfig, "box fill %.3f must be in (0, 1]", c.BoxFill)
	case c.SideMargin < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "side margin must not be negative")
	case c.CharWidth <= 0 || c.FontSize <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "font size and char width must be positive")
	case c.Padding < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "padding must not be negative")
	case c.LaneWidth <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "lane width must be positive")
	case c.SubLaneSpacing < 0 || c.SubLaneSpacing >= 1:
		return errors.New(errors.ErrCodeInvalidConfig, "sub-lane spacing %.3f must be in [0, 1)", c.SubLaneSpacing)
	case c.LeadLength < 0 || c.HeadLength < 0 || c.HeadWidth < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "lead and arrowhead lengths must not be negative")
	case c.CongestionSpread <= 0 || c.CongestionSpread > 1:
		// A zero spread stacks every congested endpoint on the box center.
		return errors.New(errors.ErrCodeInvalidConfig, "congestion spread %.3f must be in (0, 1]", c.CongestionSpread)
	case c.MinRightLanes < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "minimum right lanes must not be negative")
	case len(c.Palette) == 0:
		return errors.New(errors.ErrCodeInvalidConfig, "palette is empty")
	}
	return nil
}

func (c Config) kindColor(k connect.Kind) string {
	if col, ok := c.KindColors[k]; ok {
		return col
	}
	return "#333333"
}

func (c Config) paletteColor(i int) string {
	return c.Palette[i%len(c.Palette)]
}

// clone returns a copy whose slices and maps are not shared with c.
func (c Config) clone() Config {
	c.Palette = slices.Clone(c.Palette)
	c.KindColors = maps.Clone(c.KindColors)
	c.KindDash = maps.Clone(c.KindDash)
	return c
}
