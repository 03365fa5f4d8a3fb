// Package layout turns an instrument and its relationship lists into a
// routed diagram.
//
// Boxes are stacked top to bottom in declaration order, below the ABSOLUTE
// sentinel. Placement and rotation arrows run through lanes on the left of
// the box column; every other kind runs through lanes on the right, each kind
// stacked after the previous one. The legend sits to the right of the right
// lane block.
//
// # Two-phase sizing
//
// The box column is first sized from a weighted character count. Each label
// is then measured once with a [Measurer] supplied by the rendering backend,
// and arrows are routed against the measured extents:
//
//	d, err := layout.Build(inst, layout.DefaultConfig(),
//	    layout.WithMeasurer(measurer),
//	    layout.WithLogger(logger))
//
// # Congestion
//
// When more than one (kind, direction) pair meets at a box, the endpoints
// fan out vertically and inline labels at that box are dropped; the legend
// identifies the kinds instead.
package layout
