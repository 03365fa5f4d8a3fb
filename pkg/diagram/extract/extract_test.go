package extract

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/instrumap/pkg/diagram/connect"
	"github.com/matzehuels/instrumap/pkg/errors"
	"github.com/matzehuels/instrumap/pkg/instrument"
)

func std(name string, mut ...func(*instrument.Base)) *instrument.Standard {
	s := &instrument.Standard{Base: instrument.Base{ComponentName: name, At: instrument.Previous()}}
	for _, m := range mut {
		m(&s.Base)
	}
	return s
}

func at(ref instrument.Reference) func(*instrument.Base) {
	return func(b *instrument.Base) { b.At = ref }
}

func rotated(ref instrument.Reference) func(*instrument.Base) {
	return func(b *instrument.Base) { b.Rotated, b.RotatedSet = ref, true }
}

func group(g string) func(*instrument.Base) {
	return func(b *instrument.Base) { b.GroupTag = g }
}

func jump(expr string) func(*instrument.Base) {
	return func(b *instrument.Base) { b.JumpTarget = expr }
}

func targetIndex(n int) func(*instrument.Base) {
	return func(b *instrument.Base) { b.TargetOffset, b.TargetOffsetSet = n, true }
}

type edge struct{ From, To, Info string }

func edges(l *connect.ConnectionList) []edge {
	var out []edge
	for _, c := range l.Connections {
		out = append(out, edge{c.Origin, c.Target, c.Info})
	}
	return out
}

func TestPlacement(t *testing.T) {
	comps := []instrument.Component{
		std("source", at(instrument.Absolute())),
		std("guide"),
		std("sample", at(instrument.Named("source"))),
		std("monitor", at(instrument.Named("ABSOLUTE"))),
	}
	l, err := Placement(comps)
	if err != nil {
		t.Fatalf("Placement() error = %v", err)
	}
	want := []edge{
		{"source", "ABSOLUTE", ""},
		{"guide", "source", ""},
		{"sample", "source", ""},
		{"monitor", "ABSOLUTE", ""},
	}
	if diff := cmp.Diff(want, edges(l)); diff != "" {
		t.Errorf("Placement() mismatch (-want +got):\n%s", diff)
	}
	if l.Kind != connect.KindPlacement {
		t.Errorf("Kind = %v, want placement", l.Kind)
	}
}

func TestPlacementFirstPreviousIsAbsolute(t *testing.T) {
	l, err := Placement([]instrument.Component{std("origin")})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]edge{{"origin", "ABSOLUTE", ""}}, edges(l)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPlacementUnknownName(t *testing.T) {
	comps := []instrument.Component{std("a"), std("b", at(instrument.Named("ghost")))}
	_, err := Placement(comps)
	if err == nil || IsHard(err) || !errors.Is(err, errors.ErrCodeExtractionFailed) {
		t.Fatalf("error = %v, want soft EXTRACTION_FAILED", err)
	}
	if !strings.Contains(err.Error(), `"b"`) || !strings.Contains(err.Error(), `"ghost"`) {
		t.Errorf("error %q does not name component and target", err)
	}
}

func TestRotationOnlyWhenSpecified(t *testing.T) {
	comps := []instrument.Component{
		std("a"),
		std("b", rotated(instrument.Previous())),
		std("c"),
		std("d", rotated(instrument.Absolute())),
	}
	l, err := Rotation(comps)
	if err != nil {
		t.Fatal(err)
	}
	want := []edge{{"b", "a", ""}, {"d", "ABSOLUTE", ""}}
	if diff := cmp.Diff(want, edges(l)); diff != "" {
		t.Errorf("Rotation() mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupsScenarioC(t *testing.T) {
	comps := []instrument.Component{
		std("m1", group("G1")),
		std("m2", group("G1")),
		std("loner"),
		std("m3", group("G1")),
		std("m4", group("G1")),
		std("solo", group("G2")),
	}
	l, err := Groups(comps)
	if err != nil {
		t.Fatal(err)
	}
	want := []edge{
		{"m1", "m2", "G1"},
		{"m1", "m3", "G1"},
		{"m1", "m4", "G1"},
	}
	if diff := cmp.Diff(want, edges(l)); diff != "" {
		t.Errorf("Groups() mismatch (-want +got):\n%s", diff)
	}
}

func TestJumps(t *testing.T) {
	comps := []instrument.Component{
		std("a"),
		std("b", jump("myself ITERATE 3")),
		std("c", jump("PREVIOUS(2) WHEN (flag)")),
		std("d", jump("next")),
		std("e", jump("b")),
		std("f", jump("PREVIOUS")),
	}
	l, err := Jumps(comps)
	if err != nil {
		t.Fatalf("Jumps() error = %v", err)
	}
	want := []edge{
		{"b", "b", "ITERATE 3"},
		{"c", "a", "WHEN (flag)"},
		{"d", "e", ""},
		{"e", "b", ""},
		{"f", "e", ""},
	}
	if diff := cmp.Diff(want, edges(l)); diff != "" {
		t.Errorf("Jumps() mismatch (-want +got):\n%s", diff)
	}
}

func TestJumpErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		hard bool
	}{
		{"unknown name", "nowhere", true},
		{"past end", "NEXT(5)", true},
		{"before start", "PREVIOUS(3)", true},
		{"next on last", "NEXT", true},
		{"malformed count", "NEXT(x)", false},
		{"unclosed", "PREVIOUS(2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comps := []instrument.Component{std("a"), std("b", jump(tt.expr))}
			_, err := Jumps(comps)
			if err == nil {
				t.Fatal("expected error")
			}
			if IsHard(err) != tt.hard {
				t.Errorf("IsHard(%v) = %v, want %v", err, IsHard(err), tt.hard)
			}
			if !tt.hard && errors.GetCode(err) != errors.ErrCodeExtractionFailed {
				t.Errorf("code = %s, want EXTRACTION_FAILED", errors.GetCode(err))
			}
		})
	}
}

func TestTargetIndex(t *testing.T) {
	comps := []instrument.Component{
		std("a", targetIndex(2)),
		std("b", targetIndex(0)),
		std("c"),
		std("d", targetIndex(-3)),
	}
	l, err := TargetIndex(comps)
	if err != nil {
		t.Fatal(err)
	}
	want := []edge{{"a", "c", ""}, {"d", "a", ""}}
	if diff := cmp.Diff(want, edges(l)); diff != "" {
		t.Errorf("TargetIndex() mismatch (-want +got):\n%s", diff)
	}
}

func TestTargetIndexScenarioD(t *testing.T) {
	comps := []instrument.Component{std("a"), std("b"), std("slit", targetIndex(2))}
	_, err := TargetIndex(comps)
	if !IsHard(err) {
		t.Fatalf("error = %v, want hard reference error", err)
	}
	if !strings.Contains(err.Error(), `"slit"`) {
		t.Errorf("error %q does not name the offending component", err)
	}
}

func unionInstrument() []instrument.Component {
	base := func(name string) instrument.Base {
		return instrument.Base{ComponentName: name, At: instrument.Absolute()}
	}
	return []instrument.Component{
		&instrument.Process{Base: base("incoherent")},
		&instrument.Process{Base: base("powder")},
		&instrument.Material{Base: base("Al"), Processes: []string{"incoherent", "powder", "missing"}},
		&instrument.Geometry{Base: base("can"), MaterialName: "Al", Activations: 2},
		&instrument.Geometry{Base: base("hole"), MaterialName: "Vacuum", Masks: []string{"can"}, Activations: 1},
		&instrument.Logger{Base: base("log"), TargetGeometries: []string{"can"}, TargetProcesses: []string{"powder"}},
		&instrument.Conditional{Base: base("cond"), TargetLoggers: []string{"log"}},
		&instrument.Master{Base: base("master1")},
		&instrument.Master{Base: base("master2")},
		&instrument.Master{Base: base("master3")},
	}
}

func TestUnion(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{})

	l, err := Union(logger)(unionInstrument())
	if err != nil {
		t.Fatal(err)
	}
	want := []edge{
		{"incoherent", "Al", ""},
		{"powder", "Al", ""},
		{"Al", "can", ""},
		{"hole", "can", ""},
		{"can", "log", ""},
		{"log", "powder", ""},
		{"log", "cond", ""},
		{"can", "master1", ""},
		{"hole", "master1", ""},
		{"can", "master2", ""},
	}
	if diff := cmp.Diff(want, edges(l)); diff != "" {
		t.Errorf("Union() mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), "missing") {
		t.Errorf("expected a warning about the unknown process, log = %q", buf.String())
	}
}

func TestUnionNilLogger(t *testing.T) {
	if _, err := Union(nil)(unionInstrument()); err != nil {
		t.Fatal(err)
	}
}

func TestRunRecoversPanic(t *testing.T) {
	e := Entry{Kind: connect.KindGroup, Extract: func([]instrument.Component) (*connect.ConnectionList, error) {
		panic("boom")
	}}
	l, err := Run(e, nil)
	if l != nil {
		t.Error("list returned after panic")
	}
	if errors.GetCode(err) != errors.ErrCodeExtractionFailed || IsHard(err) {
		t.Errorf("error = %v, want soft EXTRACTION_FAILED", err)
	}
}

func TestRunNilList(t *testing.T) {
	e := Entry{Kind: connect.KindJump, Extract: func([]instrument.Component) (*connect.ConnectionList, error) {
		return nil, nil
	}}
	l, err := Run(e, nil)
	if err != nil || l == nil || l.Kind != connect.KindJump {
		t.Errorf("Run() = %v, %v; want empty jump list", l, err)
	}
}

func TestDefaultCoversAllKinds(t *testing.T) {
	var kinds []connect.Kind
	for _, e := range Default(nil) {
		kinds = append(kinds, e.Kind)
	}
	if diff := cmp.Diff(connect.Kinds, kinds); diff != "" {
		t.Errorf("Default() kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractorsDoNotMutate(t *testing.T) {
	comps := unionInstrument()
	before := make([]string, len(comps))
	for i, c := range comps {
		before[i] = instrument.Describe(c)
	}
	for _, e := range Default(nil) {
		if _, err := Run(e, comps); err != nil {
			t.Fatalf("%s: %v", e.Kind, err)
		}
	}
	for i, c := range comps {
		if got := instrument.Describe(c); got != before[i] {
			t.Errorf("component %s changed:\n%s\n---\n%s", c.Name(), before[i], got)
		}
	}
}
