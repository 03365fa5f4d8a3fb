package layout

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/instrumap/pkg/diagram/connect"
	"github.com/matzehuels/instrumap/pkg/diagram/extract"
	"github.com/matzehuels/instrumap/pkg/errors"
	"github.com/matzehuels/instrumap/pkg/instrument"
)

// Option configures Build.
type Option func(*builder)

type builder struct {
	measurer   Measurer
	logger     *log.Logger
	extractors []extract.Entry
	analysis   bool
	intensity  []instrument.Intensity
}

// WithMeasurer sets the label measurer used for phase-2 refinement.
func WithMeasurer(m Measurer) Option { return func(b *builder) { b.measurer = m } }

// WithLogger sets the logger for dropped kinds, union-graph warnings and
// layout details.
func WithLogger(l *log.Logger) Option { return func(b *builder) { b.logger = l } }

// WithExtractors replaces the default extractor set.
func WithExtractors(entries ...extract.Entry) Option {
	return func(b *builder) { b.extractors = entries }
}

// WithAnalysis draws the instrument's intensity data instead of right-side
// arrows.
func WithAnalysis() Option { return func(b *builder) { b.analysis = true } }

// WithIntensity draws data instead of right-side arrows, overriding the
// instrument's own intensity data.
func WithIntensity(data []instrument.Intensity) Option {
	return func(b *builder) {
		b.analysis = true
		b.intensity = data
	}
}

// Build extracts every relationship kind from in and composes the diagram.
//
// A kind whose extractor fails with anything but UNRESOLVED_REFERENCE (or
// panics) is left out: the failure is logged at warn level and recorded in
// Diagram.Warnings. Unresolved references abort the build.
func Build(in *instrument.Instrument, cfg Config, opts ...Option) (*Diagram, error) {
	if in == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "instrument is nil")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	b := builder{}
	for _, opt := range opts {
		opt(&b)
	}
	if b.logger == nil {
		b.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if b.extractors == nil {
		b.extractors = extract.Default(b.logger)
	}
	if b.analysis && b.intensity == nil {
		b.intensity = in.Intensity
	}

	var (
		lists    []*connect.ConnectionList
		warnings []string
	)
	for _, e := range b.extractors {
		l, err := extract.Run(e, in.Components)
		if err != nil {
			if extract.IsHard(err) {
				return nil, err
			}
			b.logger.Warn("relationship kind dropped", "kind", e.Kind, "err", err)
			warnings = append(warnings, fmt.Sprintf("%s: %s", e.Kind, errors.UserMessage(err)))
			continue
		}
		b.logger.Debug("extracted connections", "kind", e.Kind, "count", l.Len())
		lists = append(lists, l)
	}

	canvas := Canvas{
		Config:     cfg,
		Components: in.Components,
		Categories: in.Categories,
		Lists:      lists,
		Analysis:   b.analysis,
		Intensity:  b.intensity,
		Measurer:   b.measurer,
		Logger:     b.logger,
	}
	d, err := canvas.Compose()
	if err != nil {
		return nil, err
	}
	d.Name = in.Name
	d.Warnings = warnings
	return d, nil
}
