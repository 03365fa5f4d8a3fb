package cli

import (
	"bytes"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/instrumap/pkg/config"
	"github.com/matzehuels/instrumap/pkg/errors"
	"github.com/matzehuels/instrumap/pkg/instrument"
	"github.com/matzehuels/instrumap/pkg/pipeline"
)

// buildFlags are the flags shared by every command that builds a diagram.
type buildFlags struct {
	style     string // style TOML file
	intensity string // intensity dataset file
	measure   string // label measurer: font or estimate
	analysis  bool   // analysis mode with the document's own intensity data
	noCache   bool
	refresh   bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.style, "style", "", "style file (TOML)")
	cmd.Flags().StringVar(&f.intensity, "intensity", "", "intensity dataset (YAML or JSON list of {component, value}); enables analysis mode")
	cmd.Flags().StringVar(&f.measure, "measure", pipeline.MeasureFont, "label measurement: font, estimate")
	cmd.Flags().BoolVar(&f.analysis, "analysis", false, "analysis mode: intensity bars instead of right-side arrows")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results")
}

// options turns the flags into pipeline options.
func (f *buildFlags) options() (pipeline.Options, error) {
	opts := pipeline.Options{
		Analysis: f.analysis,
		Measure:  f.measure,
		Refresh:  f.refresh,
	}
	if err := pipeline.ValidateMeasure(opts.Measure); err != nil {
		return opts, err
	}

	if f.style != "" {
		style, err := config.LoadFile(f.style)
		if err != nil {
			return opts, err
		}
		opts.Style = &style
	}

	if f.intensity != "" {
		data, err := loadIntensity(f.intensity)
		if err != nil {
			return opts, err
		}
		opts.Intensity = data
	}
	return opts, nil
}

// loadIntensity reads a list of {component, value} pairs.
func loadIntensity(path string) ([]instrument.Intensity, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "intensity file %s", path)
	}
	if err != nil {
		return nil, err
	}

	var values []instrument.Intensity
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&values); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode intensity file %s", path)
	}
	for _, v := range values {
		if err := errors.ValidateName(v.Component); err != nil {
			return nil, err
		}
		if v.Value < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "intensity of %q is negative", v.Component)
		}
	}
	return values, nil
}

// readSource reads an instrument document and decodes it once so that
// malformed input fails before any runner is created.
func readSource(path string) ([]byte, *instrument.Instrument, error) {
	source, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "instrument file %s", path)
	}
	if err != nil {
		return nil, nil, err
	}
	in, err := pipeline.Load(source)
	if err != nil {
		return nil, nil, err
	}
	return source, in, nil
}
