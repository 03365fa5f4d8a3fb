// Package config loads diagram styles from TOML files.
//
// A style file overrides any subset of the stock layout constants:
//
//	font = "mono"
//	font_size = 11
//	row_height = 24
//
//	[lanes]
//	width = 8
//	min_right = 4
//
//	[colors]
//	palette = ["#a6cee3", "#b2df8a", "#fb9a99"]
//	other = "#dddddd"
//
//	[colors.kinds]
//	jump = "#2e7d32"
//
//	[colors.dash]
//	union = "6,2"
//
// Keys that are not recognized are rejected, so a typo never silently falls
// back to a default. Use [Style.Layout] to obtain the [layout.Config] the
// diagram builder consumes.
//
// [layout.Config]: github.com/matzehuels/instrumap/pkg/diagram/layout.Config
package config

import (
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/instrumap/pkg/diagram/connect"
	"github.com/matzehuels/instrumap/pkg/diagram/layout"
	"github.com/matzehuels/instrumap/pkg/errors"
	"github.com/matzehuels/instrumap/pkg/fonts"
)

// Style is the user-facing form of the layout constants.
type Style struct {
	Font       string  `toml:"font" validate:"font"`
	FontSize   float64 `toml:"font_size" validate:"gt=0,lte=96"`
	CharWidth  float64 `toml:"char_width" validate:"gt=0"`
	Padding    float64 `toml:"padding" validate:"gte=0"`
	Margin     float64 `toml:"margin" validate:"gte=0,lt=0.5"`
	RowHeight  float64 `toml:"row_height" validate:"gt=0"`
	BoxFill    float64 `toml:"box_fill" validate:"gt=0,lte=1"`
	SideMargin float64 `toml:"side_margin" validate:"gte=0"`

	Lanes  LaneStyle  `toml:"lanes"`
	Colors ColorStyle `toml:"colors"`
}

// LaneStyle controls arrow routing.
type LaneStyle struct {
	Width            float64 `toml:"width" validate:"gt=0"`
	SubLaneSpacing   float64 `toml:"sub_lane_spacing" validate:"gte=0,lt=1"`
	LeadLength       float64 `toml:"lead_length" validate:"gte=0"`
	HeadLength       float64 `toml:"head_length" validate:"gte=0"`
	HeadWidth        float64 `toml:"head_width" validate:"gte=0"`
	CongestionSpread float64 `toml:"congestion_spread" validate:"gt=0,lte=1"`
	MinRight         int     `toml:"min_right" validate:"gte=0"`
}

// ColorStyle holds the palette and per-kind arrow styling. Kind maps are
// keyed by kind identifier (placement, rotation, group, jump, target_index,
// union) and merge over the defaults.
type ColorStyle struct {
	Palette  []string          `toml:"palette" validate:"min=1,dive,hexcolor"`
	Other    string            `toml:"other" validate:"hexcolor"`
	Absolute string            `toml:"absolute" validate:"hexcolor"`
	Kinds    map[string]string `toml:"kinds" validate:"dive,keys,kind,endkeys,hexcolor"`
	Dash     map[string]string `toml:"dash" validate:"dive,keys,kind,endkeys,dash"`
}

// Default returns the stock style, equal to layout.DefaultConfig.
func Default() Style {
	cfg := layout.DefaultConfig()
	s := Style{
		Font:       fonts.Regular.Name,
		FontSize:   cfg.FontSize,
		CharWidth:  cfg.CharWidth,
		Padding:    cfg.Padding,
		Margin:     cfg.Margin,
		RowHeight:  cfg.RowHeight,
		BoxFill:    cfg.BoxFill,
		SideMargin: cfg.SideMargin,
		Lanes: LaneStyle{
			Width:            cfg.LaneWidth,
			SubLaneSpacing:   cfg.SubLaneSpacing,
			LeadLength:       cfg.LeadLength,
			HeadLength:       cfg.HeadLength,
			HeadWidth:        cfg.HeadWidth,
			CongestionSpread: cfg.CongestionSpread,
			MinRight:         cfg.MinRightLanes,
		},
		Colors: ColorStyle{
			Palette:  cfg.Palette,
			Other:    cfg.OtherColor,
			Absolute: cfg.AbsoluteColor,
			Kinds:    make(map[string]string, len(cfg.KindColors)),
			Dash:     make(map[string]string, len(cfg.KindDash)),
		},
	}
	for k, v := range cfg.KindColors {
		s.Colors.Kinds[k.String()] = v
	}
	for k, v := range cfg.KindDash {
		s.Colors.Dash[k.String()] = v
	}
	return s
}

// LoadFile reads a style file. Missing keys keep their default values.
func LoadFile(path string) (Style, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Style{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "style file %s", path)
	}
	if err != nil {
		return Style{}, err
	}
	return Parse(string(data))
}

// Parse decodes TOML style text over the defaults and validates the result.
// A palette replaces the default palette; kind colors and dashes merge key by
// key.
func Parse(data string) (Style, error) {
	s := Default()
	md, err := toml.Decode(data, &s)
	if err != nil {
		return Style{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode style")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Style{}, errors.New(errors.ErrCodeInvalidConfig, "unknown style keys: %s", strings.Join(keys, ", "))
	}
	if err := s.Validate(); err != nil {
		return Style{}, err
	}
	return s, nil
}

// Validate checks every field against its constraints.
func (s Style) Validate() error {
	if err := newValidator().Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid style")
	}
	return nil
}

// Face returns the label font.
func (s Style) Face() *fonts.Face {
	f, ok := fonts.ByName(s.Font)
	if !ok {
		return fonts.Regular
	}
	return f
}

// Layout converts the style to the layout constants. Unknown kind keys are
// rejected by Validate and ignored here.
func (s Style) Layout() layout.Config {
	cfg := layout.DefaultConfig()
	cfg.FontSize = s.FontSize
	cfg.CharWidth = s.CharWidth
	cfg.Padding = s.Padding
	cfg.Margin = s.Margin
	cfg.RowHeight = s.RowHeight
	cfg.BoxFill = s.BoxFill
	cfg.SideMargin = s.SideMargin

	cfg.LaneWidth = s.Lanes.Width
	cfg.SubLaneSpacing = s.Lanes.SubLaneSpacing
	cfg.LeadLength = s.Lanes.LeadLength
	cfg.HeadLength = s.Lanes.HeadLength
	cfg.HeadWidth = s.Lanes.HeadWidth
	cfg.CongestionSpread = s.Lanes.CongestionSpread
	cfg.MinRightLanes = s.Lanes.MinRight

	if len(s.Colors.Palette) > 0 {
		cfg.Palette = slices.Clone(s.Colors.Palette)
	}
	cfg.OtherColor = s.Colors.Other
	cfg.AbsoluteColor = s.Colors.Absolute
	for name, color := range s.Colors.Kinds {
		if k, ok := connect.ParseKind(name); ok {
			cfg.KindColors[k] = color
		}
	}
	for name, dash := range s.Colors.Dash {
		if k, ok := connect.ParseKind(name); ok {
			if dash == "" {
				delete(cfg.KindDash, k)
				continue
			}
			cfg.KindDash[k] = dash
		}
	}
	return cfg
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
		_, ok := connect.ParseKind(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("font", func(fl validator.FieldLevel) bool {
		_, ok := fonts.ByName(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("dash", func(fl validator.FieldLevel) bool {
		return validDash(fl.Field().String())
	})
	return v
}

// validDash accepts an empty string or a comma separated list of positive
// numbers, the SVG stroke-dasharray subset the sinks understand.
func validDash(s string) bool {
	if s == "" {
		return true
	}
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || v <= 0 {
			return false
		}
	}
	return true
}
