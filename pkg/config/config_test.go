package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/instrumap/pkg/diagram/connect"
	"github.com/matzehuels/instrumap/pkg/diagram/layout"
	"github.com/matzehuels/instrumap/pkg/errors"
	"github.com/matzehuels/instrumap/pkg/fonts"
)

func TestDefaultMatchesLayoutDefaults(t *testing.T) {
	got := Default().Layout()
	want := layout.DefaultConfig()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Default().Layout() mismatch (-want +got):\n%s", diff)
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("default style invalid: %v", err)
	}
}

func TestParseOverrides(t *testing.T) {
	s, err := Parse(`
font = "mono"
font_size = 10
row_height = 20

[lanes]
width = 7
min_right = 2

[colors]
palette = ["#111111", "#222222"]

[colors.kinds]
jump = "#00ff00"

[colors.dash]
group = ""
union = "6,2"
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Face() != fonts.Mono {
		t.Errorf("Face() = %v, want mono", s.Face().Name)
	}

	cfg := s.Layout()
	if cfg.FontSize != 10 || cfg.RowHeight != 20 || cfg.LaneWidth != 7 || cfg.MinRightLanes != 2 {
		t.Errorf("scalar overrides not applied: %+v", cfg)
	}
	if diff := cmp.Diff([]string{"#111111", "#222222"}, cfg.Palette); diff != "" {
		t.Errorf("palette (-want +got):\n%s", diff)
	}
	if cfg.KindColors[connect.KindJump] != "#00ff00" {
		t.Errorf("jump color = %q", cfg.KindColors[connect.KindJump])
	}
	def := layout.DefaultConfig()
	if cfg.KindColors[connect.KindPlacement] != def.KindColors[connect.KindPlacement] {
		t.Error("unlisted kind color should keep its default")
	}
	if _, ok := cfg.KindDash[connect.KindGroup]; ok {
		t.Error("empty dash should make group solid")
	}
	if cfg.KindDash[connect.KindUnion] != "6,2" {
		t.Errorf("union dash = %q", cfg.KindDash[connect.KindUnion])
	}
	if cfg.CharWidth != def.CharWidth {
		t.Error("unset keys should keep defaults")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"syntax", `font_size = `},
		{"unknown key", `fontsize = 12`},
		{"unknown nested key", "[lanes]\nwdth = 3"},
		{"negative font size", `font_size = -1`},
		{"margin too large", `margin = 0.5`},
		{"bad font", `font = "comic"`},
		{"bad hex", "[colors]\nother = \"grey\""},
		{"empty palette", "[colors]\npalette = []"},
		{"unknown kind color", "[colors.kinds]\nwormhole = \"#123456\""},
		{"bad dash", "[colors.dash]\njump = \"4,x\""},
		{"zero dash", "[colors.dash]\njump = \"0\""},
		{"zero congestion spread", "[lanes]\ncongestion_spread = 0"},
		{"nan padding", `padding = nan`},
		{"negative head width", "[lanes]\nhead_width = -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.toml)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("code = %s, want INVALID_CONFIG (%v)", errors.GetCode(err), err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "style.toml")
	if err := os.WriteFile(path, []byte("box_fill = 0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if s.BoxFill != 0.5 {
		t.Errorf("BoxFill = %v, want 0.5", s.BoxFill)
	}

	_, err = LoadFile(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLayoutConfigValidates(t *testing.T) {
	s, err := Parse("congestion_spread = 1\n")
	if err == nil {
		t.Fatal("congestion_spread is a lanes key and must be rejected at the top level")
	}

	s, err = Parse("[lanes]\ncongestion_spread = 1\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := s.Layout().Validate(); err != nil {
		t.Errorf("layout config from valid style rejected: %v", err)
	}
}

func TestValidDash(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"4,3", true},
		{" 2 , 2 ", true},
		{"1.5", true},
		{"4,", false},
		{"-1", false},
		{"dashed", false},
	}
	for _, tt := range tests {
		if got := validDash(tt.in); got != tt.want {
			t.Errorf("validDash(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
