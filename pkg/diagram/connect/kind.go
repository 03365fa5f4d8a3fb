package connect

import "github.com/matzehuels/instrumap/pkg/errors"

// Kind is a relationship kind. Each kind is extracted and laned independently.
type Kind int

const (
	KindPlacement Kind = iota
	KindRotation
	KindGroup
	KindJump
	KindTargetIndex
	KindUnion
)

// Kinds lists every kind in legend and lane-stacking order.
var Kinds = []Kind{KindPlacement, KindRotation, KindGroup, KindJump, KindTargetIndex, KindUnion}

var kindNames = [...]string{
	KindPlacement:   "placement",
	KindRotation:    "rotation",
	KindGroup:       "group",
	KindJump:        "jump",
	KindTargetIndex: "target_index",
	KindUnion:       "union",
}

var kindLabels = [...]string{
	KindPlacement:   "AT RELATIVE",
	KindRotation:    "ROTATED RELATIVE",
	KindGroup:       "GROUP",
	KindJump:        "JUMP",
	KindTargetIndex: "target_index",
	KindUnion:       "Union",
}

// String returns the identifier used in configs and serialized diagrams.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Label returns the legend text for k.
func (k Kind) Label() string {
	if k < 0 || int(k) >= len(kindLabels) {
		return "unknown"
	}
	return kindLabels[k]
}

// IsBase reports whether k is routed on the left of the box column.
// Placement and rotation are the base kinds; everything else goes right.
func (k Kind) IsBase() bool {
	return k == KindPlacement || k == KindRotation
}

// Directed reports whether connections of kind k end in an arrowhead.
// Groups are drawn as plain lines.
func (k Kind) Directed() bool {
	return k != KindGroup
}

// ParseKind maps a kind identifier back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// MarshalText encodes k by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, ok := ParseKind(string(b))
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown relationship kind %q", string(b))
	}
	*k = parsed
	return nil
}
