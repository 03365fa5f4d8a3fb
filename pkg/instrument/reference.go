package instrument

import "strings"

// RefKind tells how a placement or rotation reference resolves.
type RefKind int

const (
	// RefAbsolute means no relative reference; the diagram routes it to the
	// sentinel ABSOLUTE box.
	RefAbsolute RefKind = iota
	// RefPrevious means the component immediately before in the sequence.
	RefPrevious
	// RefNamed means an explicit component name.
	RefNamed
)

// Reference is a placement or rotation reference.
type Reference struct {
	Kind RefKind
	Name string // set only for RefNamed
}

// Absolute returns a reference to nothing (the ABSOLUTE frame).
func Absolute() Reference { return Reference{Kind: RefAbsolute} }

// Previous returns a reference to the preceding component.
func Previous() Reference { return Reference{Kind: RefPrevious} }

// Named returns a reference to the component called name.
func Named(name string) Reference { return Reference{Kind: RefNamed, Name: name} }

// ParseReference interprets the textual form used in instrument files.
// Empty strings and "ABSOLUTE" are absolute, "PREVIOUS" (any case) is the
// previous component, anything else names a component.
func ParseReference(s string) Reference {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "", "ABSOLUTE":
		return Absolute()
	case "PREVIOUS":
		return Previous()
	}
	return Named(s)
}

// String returns the textual form accepted by ParseReference.
func (r Reference) String() string {
	switch r.Kind {
	case RefPrevious:
		return "PREVIOUS"
	case RefNamed:
		return r.Name
	default:
		return "ABSOLUTE"
	}
}
