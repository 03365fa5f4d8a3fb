// Package pipeline runs the load → build → render pipeline shared by the
// CLI and the HTTP server.
//
// # Stages
//
//  1. Load: decode and validate an instrument document (YAML or JSON)
//  2. Build: extract relationships and lay out the diagram
//  3. Render: produce artifacts (SVG, PNG, PDF, JSON, DOT, nodelink SVG)
//
// Built diagrams and rendered artifacts are cached by content hash, so a
// repeated request for the same document and style costs one cache lookup.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, source, pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	    Popups:  true,
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/instrumap/pkg/cache"
	"github.com/matzehuels/instrumap/pkg/config"
	"github.com/matzehuels/instrumap/pkg/diagram/layout"
	"github.com/matzehuels/instrumap/pkg/errors"
	"github.com/matzehuels/instrumap/pkg/instrument"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0

	// MeasureFont measures labels with the style's font.
	MeasureFont = "font"
	// MeasureEstimate keeps the phase-1 character-width estimate.
	MeasureEstimate = "estimate"
)

// Format constants for output formats.
const (
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatNodelink = "nodelink"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT, FormatNodelink}

// ContentType returns the MIME type of an artifact format.
func ContentType(format string) string {
	switch format {
	case FormatSVG, FormatNodelink:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	}
	return "application/octet-stream"
}

// Extension returns the file extension written for format.
func Extension(format string) string {
	if format == FormatNodelink {
		return "nodelink.svg"
	}
	return format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It supports JSON for server requests.
type Options struct {
	// Build options
	Analysis  bool                   `json:"analysis,omitempty"`
	Intensity []instrument.Intensity `json:"intensity,omitempty"`
	Measure   string                 `json:"measure,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Popups  bool     `json:"popups,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Style  *config.Style `json:"-"`
	Logger *log.Logger   `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Diagram *layout.Diagram
	// DiagramHash is the content hash of the diagram JSON.
	DiagramHash string
	Artifacts   map[string][]byte
	Stats       Stats
	CacheInfo   CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Boxes      int
	Arrows     int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the diagram came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(Formats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma separated format list and validates it.
func ParseFormats(s string) ([]string, error) {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" && !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}
	return formats, nil
}

// ValidateMeasure checks the measurer name.
func ValidateMeasure(m string) error {
	if m != MeasureFont && m != MeasureEstimate {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid measure: %q (must be font or estimate)", m)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetBuildDefaults sets default values for diagram building.
func (o *Options) SetBuildDefaults() {
	if o.Style == nil {
		s := config.Default()
		o.Style = &s
	}
	if o.Measure == "" {
		o.Measure = MeasureFont
	}
	if len(o.Intensity) > 0 {
		o.Analysis = true
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForBuild sets build defaults and validates them.
func (o *Options) ValidateForBuild() error {
	o.SetBuildDefaults()
	if err := ValidateMeasure(o.Measure); err != nil {
		return err
	}
	if err := o.Style.Validate(); err != nil {
		return fmt.Errorf("style: %w", err)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Style == nil {
		s := config.Default()
		o.Style = &s
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender sets render defaults and validates them.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scale must be positive")
	}
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults prepares options for a full run.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// DiagramKeyOpts returns cache key options for diagram building.
func (o *Options) DiagramKeyOpts() cache.DiagramKeyOpts {
	measurer := MeasureEstimate
	if o.Measure == MeasureFont {
		measurer = o.Style.Face().Name
	}
	var intensity string
	if len(o.Intensity) > 0 {
		data, _ := json.Marshal(o.Intensity)
		intensity = cache.Hash(data)
	}
	return cache.DiagramKeyOpts{
		StyleHash:     styleHash(o.Style),
		Analysis:      o.Analysis,
		Measurer:      measurer,
		IntensityHash: intensity,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG, FormatPDF:
		k.Font = o.Style.Face().Name
		k.Popups = o.Popups
	case FormatPNG:
		k.Font = o.Style.Face().Name
		k.Scale = o.Scale
	}
	return k
}
