// Package extract turns an ordered component list into one connection list
// per relationship kind.
//
// Every extractor is a single pass over the components in declaration order,
// so the connections it returns are in a reproducible order. Extractors never
// modify components.
//
// Errors come in two classes. An UNRESOLVED_REFERENCE error (a jump to a
// component that does not exist, or an index that falls outside the list)
// must abort the diagram. Any other error, including an unknown name in a
// placement or rotation reference and a panic inside an extractor, only
// disables that kind; see [Run].
package extract

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/instrumap/pkg/diagram/connect"
	"github.com/matzehuels/instrumap/pkg/errors"
	"github.com/matzehuels/instrumap/pkg/instrument"
)

// Extractor produces the connections of one relationship kind.
type Extractor func(comps []instrument.Component) (*connect.ConnectionList, error)

// Entry pairs an extractor with the kind it produces.
type Entry struct {
	Kind    connect.Kind
	Extract Extractor
}

// Default returns the extractors for every kind, in connect.Kinds order.
// The logger receives union-graph consistency warnings.
func Default(logger *log.Logger) []Entry {
	return []Entry{
		{connect.KindPlacement, Placement},
		{connect.KindRotation, Rotation},
		{connect.KindGroup, Groups},
		{connect.KindJump, Jumps},
		{connect.KindTargetIndex, TargetIndex},
		{connect.KindUnion, Union(logger)},
	}
}

// Run calls one extractor, converting panics into EXTRACTION_FAILED errors.
func Run(e Entry, comps []instrument.Component) (list *connect.ConnectionList, err error) {
	defer func() {
		if r := recover(); r != nil {
			list = nil
			err = errors.New(errors.ErrCodeExtractionFailed, "%s extractor panicked: %v", e.Kind, r)
		}
	}()
	list, err = e.Extract(comps)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = connect.NewList(e.Kind)
	}
	return list, nil
}

// IsHard reports whether an extractor error must abort the diagram.
func IsHard(err error) bool {
	return errors.Is(err, errors.ErrCodeUnresolvedReference)
}

// nameIndex maps component names to their positions.
func nameIndex(comps []instrument.Component) map[string]int {
	index := make(map[string]int, len(comps))
	for i, c := range comps {
		index[c.Name()] = i
	}
	return index
}

// resolve turns a placement or rotation reference of comps[i] into a box name.
// An unknown name is an extraction failure of kind, not a hard error.
func resolve(kind connect.Kind, comps []instrument.Component, index map[string]int, i int, ref instrument.Reference) (string, error) {
	switch ref.Kind {
	case instrument.RefPrevious:
		if i == 0 {
			return instrument.AbsoluteName, nil
		}
		return comps[i-1].Name(), nil
	case instrument.RefNamed:
		if ref.Name == instrument.AbsoluteName {
			return instrument.AbsoluteName, nil
		}
		if _, ok := index[ref.Name]; !ok {
			return "", extractionError(kind, "component %q references unknown component %q", comps[i].Name(), ref.Name)
		}
		return ref.Name, nil
	default:
		return instrument.AbsoluteName, nil
	}
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func positionError(comp string, what string, target, n int) error {
	return errors.New(errors.ErrCodeUnresolvedReference,
		"component %q: %s resolves to position %d outside [0, %d)", comp, what, target, n)
}

func extractionError(kind connect.Kind, format string, args ...any) error {
	return errors.New(errors.ErrCodeExtractionFailed, "%s: %s", kind, fmt.Sprintf(format, args...))
}
