package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/instrumap/pkg/diagram/layout"
	"github.com/matzehuels/instrumap/pkg/pipeline"
)

func buildDemo(t *testing.T) *layout.Diagram {
	t.Helper()
	d, err := pipeline.NewRunner(nil, nil, nil).Build(context.Background(), []byte(demoYAML),
		pipeline.Options{Measure: pipeline.MeasureEstimate})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return d
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestInspectModelNavigation(t *testing.T) {
	d := buildDemo(t)
	var m tea.Model = NewInspectModel(d)

	m = press(m, "down", "down", "j")
	if got := m.(InspectModel).Cursor; got != 3 {
		t.Errorf("cursor = %d, want 3", got)
	}
	m = press(m, "down")
	if got := m.(InspectModel).Cursor; got != 3 {
		t.Errorf("cursor moved past the last box: %d", got)
	}
	m = press(m, "g")
	if got := m.(InspectModel).Cursor; got != 0 {
		t.Errorf("g should jump to the first box, cursor = %d", got)
	}
	m = press(m, "up")
	if got := m.(InspectModel).Cursor; got != 0 {
		t.Errorf("cursor moved before the first box: %d", got)
	}
	m = press(m, "G")
	box, ok := m.(InspectModel).Selected()
	if !ok || box.Name != "sample" {
		t.Errorf("G selected %v, want sample", box)
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit")
	}
}

func TestInspectModelView(t *testing.T) {
	d := buildDemo(t)
	m := press(NewInspectModel(d), "G").(InspectModel)

	view := m.View()
	for _, want := range []string{"demo", "origin", "source", "sample", "[4/4]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestScrollOffset(t *testing.T) {
	tests := []struct {
		cursor, offset, height, want int
	}{
		{0, 0, 5, 0},
		{4, 0, 5, 0},
		{5, 0, 5, 1},
		{2, 3, 5, 2},
	}
	for _, tt := range tests {
		if got := scrollOffset(tt.cursor, tt.offset, tt.height); got != tt.want {
			t.Errorf("scrollOffset(%d, %d, %d) = %d, want %d", tt.cursor, tt.offset, tt.height, got, tt.want)
		}
	}
}

func TestBoxArrows(t *testing.T) {
	d := buildDemo(t)

	out, in := boxArrows(d, "source")
	var jumps int
	for _, a := range out {
		if a.Kind.String() == "jump" && a.Target == "sample" {
			jumps++
		}
	}
	if jumps != 1 {
		t.Errorf("source should have one outgoing jump to sample, got %d", jumps)
	}
	var placed bool
	for _, a := range in {
		if a.Origin == "sample" && a.Kind.String() == "placement" {
			placed = true
		}
	}
	if !placed {
		t.Error("source should receive the placement arrow of sample")
	}
}
