package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/instrumap/pkg/cache"
	"github.com/matzehuels/instrumap/pkg/config"
	"github.com/matzehuels/instrumap/pkg/diagram/layout"
	"github.com/matzehuels/instrumap/pkg/diagram/sink"
	"github.com/matzehuels/instrumap/pkg/instrument"
)

// Load decodes an instrument document.
func Load(source []byte) (*instrument.Instrument, error) {
	return instrument.Load(bytes.NewReader(source))
}

// Build lays out in without caching. opts must have build defaults set.
func Build(in *instrument.Instrument, opts Options) (*layout.Diagram, error) {
	style := *opts.Style
	cfg := style.Layout()

	buildOpts := []layout.Option{layout.WithLogger(opts.Logger)}
	if opts.Measure == MeasureFont {
		m, err := sink.NewFontMeasurer(style.Face(), cfg.FontSize)
		if err != nil {
			return nil, fmt.Errorf("font measurer: %w", err)
		}
		buildOpts = append(buildOpts, layout.WithMeasurer(m))
	}
	switch {
	case len(opts.Intensity) > 0:
		buildOpts = append(buildOpts, layout.WithIntensity(opts.Intensity))
	case opts.Analysis:
		buildOpts = append(buildOpts, layout.WithAnalysis())
	}
	return layout.Build(in, cfg, buildOpts...)
}

// styleHash returns the content hash of a style. Map keys are sorted by
// encoding/json, so equal styles hash equally.
func styleHash(s *config.Style) string {
	if s == nil {
		return ""
	}
	data, _ := json.Marshal(s)
	return cache.Hash(data)
}
