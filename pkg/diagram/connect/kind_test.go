package connect

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/instrumap/pkg/errors"
)

func TestKindText(t *testing.T) {
	for _, k := range Kinds {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Kind
		if err := back.UnmarshalText(b); err != nil || back != k {
			t.Errorf("round trip of %s gave %v, %v", k, back, err)
		}
	}

	var k Kind
	err := json.Unmarshal([]byte(`"teleport"`), &k)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown kind err = %v, want INVALID_INPUT", err)
	}
	if got := Kind(42).String(); got != "unknown" {
		t.Errorf("Kind(42).String() = %q", got)
	}
}

func TestKindSides(t *testing.T) {
	tests := []struct {
		kind     Kind
		base     bool
		directed bool
	}{
		{KindPlacement, true, true},
		{KindRotation, true, true},
		{KindGroup, false, false},
		{KindJump, false, true},
		{KindTargetIndex, false, true},
		{KindUnion, false, true},
	}
	for _, tt := range tests {
		if tt.kind.IsBase() != tt.base || tt.kind.Directed() != tt.directed {
			t.Errorf("%s: IsBase=%v Directed=%v", tt.kind, tt.kind.IsBase(), tt.kind.Directed())
		}
	}
}
