package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/instrumap/pkg/diagram/sink"
	"github.com/matzehuels/instrumap/pkg/errors"
	"github.com/matzehuels/instrumap/pkg/instrument"
	"github.com/matzehuels/instrumap/pkg/pipeline"
)

const demoYAML = `
name: demo
categories:
  sources: Sources
  samples: Samples
components:
  - name: origin
    type: Progress_bar
    category: sources
  - name: source
    type: Source_simple
    category: sources
    jump: sample
  - name: sample
    type: Incoherent
    category: samples
    at: source
    rotated: origin
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietCLI() *CLI { return New(io.Discard, LogInfo) }

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"empty defaults to svg", "", []string{"svg"}, false},
		{"single format", "png", []string{"png"}, false},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}, false},
		{"nodelink", "nodelink,dot", []string{"nodelink", "dot"}, false},
		{"invalid", "svg,gif", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFormats(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFormats(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseFormats(%q) (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "docs/demo.yaml", "docs/demo"},
		{"out/demo.svg", "demo.yaml", "out/demo"},
		{"out/demo.nodelink.svg", "demo.yaml", "out/demo"},
		{"out/demo", "demo.yaml", "out/demo"},
		{"out/demo.txt", "demo.yaml", "out/demo.txt"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	got := outputPaths([]string{"svg"}, "demo.yaml", "diagram.svg")
	if diff := cmp.Diff(map[string]string{"svg": "diagram.svg"}, got); diff != "" {
		t.Errorf("single format (-want +got):\n%s", diff)
	}

	got = outputPaths([]string{"svg", "nodelink", "png"}, "demo.yaml", "")
	want := map[string]string{"svg": "demo.svg", "nodelink": "demo.nodelink.svg", "png": "demo.png"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("multiple formats (-want +got):\n%s", diff)
	}
}

func TestRunRender(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "demo.yaml", demoYAML)
	out := filepath.Join(dir, "out", "demo")

	opts := pipeline.Options{Formats: []string{"svg", "json", "dot"}, Measure: pipeline.MeasureEstimate, Popups: true}
	if err := quietCLI().runRender(context.Background(), input, opts, out, true); err != nil {
		t.Fatalf("runRender: %v", err)
	}

	svg, err := os.ReadFile(out + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte(`id="box-sample"`)) {
		t.Error("svg missing sample box")
	}
	data, err := os.ReadFile(out + ".json")
	if err != nil {
		t.Fatal(err)
	}
	d, err := sink.ReadJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := d.Box("origin"); !ok {
		t.Error("json diagram missing origin box")
	}
	if _, err := os.Stat(out + ".dot"); err != nil {
		t.Errorf("dot output missing: %v", err)
	}
}

func TestRunRenderErrors(t *testing.T) {
	dir := t.TempDir()
	c := quietCLI()
	opts := pipeline.Options{Measure: pipeline.MeasureEstimate}

	err := c.runRender(context.Background(), filepath.Join(dir, "missing.yaml"), opts, "", true)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing input err = %v, want FILE_NOT_FOUND", err)
	}

	bad := writeFile(t, dir, "bad.yaml", strings.Replace(demoYAML, "jump: sample", "jump: nowhere", 1))
	err = c.runRender(context.Background(), bad, opts, "", true)
	if !errors.Is(err, errors.ErrCodeUnresolvedReference) {
		t.Errorf("unresolved err = %v, want UNRESOLVED_REFERENCE", err)
	}
}

func TestRunLayoutAndVisualize(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "demo.yaml", demoYAML)
	c := quietCLI()

	flags := buildFlags{measure: pipeline.MeasureEstimate, noCache: true}
	if err := c.runLayout(context.Background(), input, flags, ""); err != nil {
		t.Fatalf("runLayout: %v", err)
	}
	diagramPath := filepath.Join(dir, "demo.diagram.json")
	if _, err := os.Stat(diagramPath); err != nil {
		t.Fatalf("layout output missing: %v", err)
	}

	opts := pipeline.Options{Formats: []string{"svg"}}
	if err := c.runVisualize(context.Background(), diagramPath, opts, "", true); err != nil {
		t.Fatalf("runVisualize: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "demo.svg")); err != nil {
		t.Errorf("visualize output missing: %v", err)
	}
}

func TestTrimDiagramSuffix(t *testing.T) {
	if got := trimDiagramSuffix("a/demo.diagram.json"); got != "a/demo.json" {
		t.Errorf("got %q", got)
	}
	if got := trimDiagramSuffix("demo.json"); got != "demo.json" {
		t.Errorf("got %q", got)
	}
}

func TestLoadIntensity(t *testing.T) {
	dir := t.TempDir()

	good := writeFile(t, dir, "good.yaml", "- {component: source, value: 1000}\n- {component: sample, value: 10}\n")
	got, err := loadIntensity(good)
	if err != nil {
		t.Fatalf("loadIntensity: %v", err)
	}
	want := []instrument.Intensity{{Component: "source", Value: 1000}, {Component: "sample", Value: 10}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"unknown field", "- {component: a, value: 1, unit: rays}\n", errors.ErrCodeInvalidInput},
		{"negative", "- {component: a, value: -1}\n", errors.ErrCodeInvalidInput},
		{"bad name", "- {component: 'a b', value: 1}\n", errors.ErrCodeInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadIntensity(writeFile(t, dir, tt.name+".yaml", tt.content))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := loadIntensity(filepath.Join(dir, "none.yaml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestBuildFlagsOptions(t *testing.T) {
	dir := t.TempDir()
	style := writeFile(t, dir, "style.toml", "font_size = 9\n")
	data := writeFile(t, dir, "data.yaml", "- {component: source, value: 5}\n")

	f := buildFlags{style: style, intensity: data, measure: pipeline.MeasureEstimate, refresh: true}
	opts, err := f.options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Style == nil || opts.Style.FontSize != 9 {
		t.Errorf("style not loaded: %+v", opts.Style)
	}
	if len(opts.Intensity) != 1 || !opts.Refresh {
		t.Errorf("options = %+v", opts)
	}

	f = buildFlags{measure: "ruler"}
	if _, err := f.options(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad measure err = %v", err)
	}
}

func TestParsePoint(t *testing.T) {
	x, y, err := parsePoint(" 12.5, 40")
	if err != nil || x != 12.5 || y != 40 {
		t.Errorf("parsePoint = %g, %g, %v", x, y, err)
	}
	for _, s := range []string{"12", "a,b", ""} {
		if _, _, err := parsePoint(s); err == nil {
			t.Errorf("parsePoint(%q) should fail", s)
		}
	}
}
