package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/instrumap/pkg/diagram/connect"
	"github.com/matzehuels/instrumap/pkg/instrument"
)

// Canvas collects the inputs of one composition.
type Canvas struct {
	Config     Config
	Components []instrument.Component
	Categories instrument.Categories
	// Lists holds one connection list per kind. Lane numbers are assigned
	// by Compose.
	Lists []*connect.ConnectionList
	// Analysis replaces the right-side arrows with Intensity bars.
	Analysis  bool
	Intensity []instrument.Intensity
	// Measurer defaults to EstimateMeasurer.
	Measurer Measurer
	Logger   *log.Logger
}

// Compose lays out boxes, lanes, arrows and legend.
//
// The order is fixed: lanes are allocated, boxes are placed and estimated,
// every label is measured once, then arrows are routed against the
// measured extents. An UNRESOLVED_REFERENCE error from lane allocation
// aborts the composition.
func (c *Canvas) Compose() (*Diagram, error) {
	cfg := c.Config.clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := c.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	measurer := c.Measurer
	if measurer == nil {
		measurer = EstimateMeasurer{Config: cfg}
	}

	boxes := NewBoxes(c.Components)
	routed, err := c.allocateLanes(Order(boxes), logger)
	if err != nil {
		return nil, err
	}

	catOrder, colors := CategoryColors(c.Components, c.Categories, cfg)
	for _, b := range boxes {
		if b.IsAbsolute() {
			b.Color = cfg.AbsoluteColor
			continue
		}
		b.Color = colors[c.Categories.Resolve(b.Category)]
	}

	present := make(map[connect.Kind]bool)
	for _, l := range routed {
		if l.Len() > 0 {
			present[l.Kind] = true
		}
	}
	legend := newLegend(catOrder, colors, c.Categories, legendKinds(present), cfg)

	height := cfg.RowHeight * float64(len(boxes))
	if need := legend.Height / (1 - 2*cfg.Margin); need > height {
		height = need
	}
	DistributeVertically(boxes, height, cfg)

	leftLanes, rightLanes := laneDemand(routed, cfg)
	colLeft := cfg.SideMargin + cfg.LeadLength + (leftLanes+1)*cfg.LaneWidth

	estRight := colLeft
	for _, b := range boxes {
		b.Estimate(colLeft, cfg)
		estRight = max(estRight, b.EstRight)
	}

	colRight := estRight
	for _, b := range boxes {
		b.Refine(measurer.Measure(b.Name), cfg)
		colRight = max(colRight, b.Right)
	}
	if colRight > estRight {
		logger.Debug("measured labels wider than estimate",
			"estimate", estRight-colLeft, "measured", colRight-colLeft)
	}

	rightBlock := cfg.LeadLength + float64(max(rightLanes, cfg.MinRightLanes)+1)*cfg.LaneWidth
	legendLeft := colRight + rightBlock
	legend.place(legendLeft, cfg.Margin*height, cfg)

	d := &Diagram{
		Width:       legendLeft + legend.Width + cfg.SideMargin,
		Height:      height,
		FontSize:    cfg.FontSize,
		ColumnLeft:  colLeft,
		ColumnRight: colRight,
		Boxes:       boxes,
		Legend:      legend,
		Analysis:    c.Analysis,
	}

	byName := make(map[string]*Box, len(boxes))
	for _, b := range boxes {
		byName[b.Name] = b
	}
	cong := AnalyzeCongestion(boxes, routed, cfg)
	for _, l := range routed {
		for _, conn := range l.Connections {
			a := NewArrow(conn, cfg)
			a.OriginOffset = cong.Offset(conn.Origin, Endpoint{l.Kind, Outgoing})
			a.TargetOffset = cong.Offset(conn.Target, Endpoint{l.Kind, Incoming})
			a.OriginCongested = cong.Congested(conn.Origin)
			a.TargetCongested = cong.Congested(conn.Target)

			edge := colRight + cfg.LeadLength
			if a.Side == SideLeft {
				edge = colLeft - cfg.LeadLength
			}
			a.Route(byName[conn.Origin], byName[conn.Target], edge, cfg)
			d.Arrows = append(d.Arrows, a)
		}
	}

	if c.Analysis {
		span := rightBlock - cfg.LeadLength - cfg.LaneWidth
		d.Bars = Bars(boxes, c.Intensity, colRight+cfg.LeadLength, span)
	}

	logger.Debug("composed diagram",
		"boxes", len(boxes), "arrows", len(d.Arrows),
		"width", d.Width, "height", d.Height)
	return d, nil
}

// allocateLanes assigns lane numbers per kind and stacks the right-side
// kinds: each right kind's lanes start after the previous right kind's.
// Base kinds share one numbering space and are separated by sub-lanes.
// In analysis mode only the base kinds are returned for routing.
func (c *Canvas) allocateLanes(order []string, logger *log.Logger) ([]*connect.ConnectionList, error) {
	byKind := make(map[connect.Kind]*connect.ConnectionList, len(c.Lists))
	for _, l := range c.Lists {
		if l != nil {
			byKind[l.Kind] = l
		}
	}

	var routed []*connect.ConnectionList
	offset := 0
	for _, k := range connect.Kinds {
		l, ok := byKind[k]
		if !ok {
			continue
		}
		if err := l.DistributeLaneNumbers(order); err != nil {
			return nil, err
		}
		if !k.IsBase() {
			l.Offset(offset)
			offset = max(offset, l.MaxLane())
			if c.Analysis {
				continue
			}
		}
		logger.Debug("allocated lanes", "kind", k, "connections", l.Len(), "max_lane", l.MaxLane())
		routed = append(routed, l)
	}
	return routed, nil
}

// laneDemand returns the widest lane position used on each side, in lanes.
func laneDemand(routed []*connect.ConnectionList, cfg Config) (left float64, right int) {
	for _, l := range routed {
		if !l.Kind.IsBase() {
			right = max(right, l.MaxLane())
			continue
		}
		used := float64(l.MaxLane())
		if l.Kind == connect.KindRotation && l.Len() > 0 {
			used += cfg.SubLaneSpacing
		}
		left = max(left, used)
	}
	return left, right
}
