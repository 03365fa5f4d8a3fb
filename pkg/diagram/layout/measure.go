package layout

// Extent is the rendered size of a label.
type Extent struct {
	Width  float64
	Height float64
}

// Measurer reports the rendered extent of a label. Rendering backends supply
// one backed by their own font metrics. Build calls Measure exactly once per
// box, after the phase-1 estimate and before any arrow is routed.
type Measurer interface {
	Measure(label string) Extent
}

// MeasureFunc adapts a function to the Measurer interface.
type MeasureFunc func(label string) Extent

// Measure calls f.
func (f MeasureFunc) Measure(label string) Extent { return f(label) }

// EstimateMeasurer measures labels with the weighted-length estimate. It is
// used when no font is available.
type EstimateMeasurer struct {
	Config Config
}

// Measure returns the estimated extent of label.
func (m EstimateMeasurer) Measure(label string) Extent {
	return Extent{
		Width:  m.Config.CharWidth * WeightedLength(label),
		Height: m.Config.FontSize,
	}
}
