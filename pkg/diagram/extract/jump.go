package extract

import (
	"strconv"
	"strings"

	"github.com/matzehuels/instrumap/pkg/diagram/connect"
	"github.com/matzehuels/instrumap/pkg/errors"
	"github.com/matzehuels/instrumap/pkg/instrument"
)

// Jumps connects every component with a JUMP to its jump target.
//
// The target is the first word of the jump expression: a component name,
// "myself", "PREVIOUS", "NEXT", "PREVIOUS(n)" or "NEXT(n)". The rest of the
// expression (a WHEN or ITERATE clause) becomes the connection label.
func Jumps(comps []instrument.Component) (*connect.ConnectionList, error) {
	index := nameIndex(comps)
	list := connect.NewList(connect.KindJump)
	for i, c := range comps {
		expr := strings.TrimSpace(c.Jump())
		if expr == "" {
			continue
		}
		target, clause, _ := strings.Cut(expr, " ")

		pos, named, err := jumpPosition(target, i)
		if err != nil {
			return nil, err
		}
		if named {
			if _, ok := index[target]; !ok {
				return nil, errors.Reference(c.Name(), target)
			}
			list.Add(c.Name(), target, strings.TrimSpace(clause))
			continue
		}
		if pos < 0 || pos >= len(comps) {
			return nil, positionError(c.Name(), "JUMP "+target, pos, len(comps))
		}
		list.Add(c.Name(), comps[pos].Name(), strings.TrimSpace(clause))
	}
	return list, nil
}

// jumpPosition resolves relative jump keywords. named is true when target is
// a plain component name.
func jumpPosition(target string, i int) (pos int, named bool, err error) {
	upper := strings.ToUpper(target)
	switch upper {
	case "MYSELF":
		return i, false, nil
	case "PREVIOUS":
		return i - 1, false, nil
	case "NEXT":
		return i + 1, false, nil
	}

	for _, kw := range []string{"PREVIOUS", "NEXT"} {
		if !strings.HasPrefix(upper, kw+"(") {
			continue
		}
		if !strings.HasSuffix(upper, ")") {
			return 0, false, extractionError(connect.KindJump, "malformed jump target %q", target)
		}
		n, convErr := strconv.Atoi(upper[len(kw)+1 : len(upper)-1])
		if convErr != nil {
			return 0, false, extractionError(connect.KindJump, "malformed jump target %q", target)
		}
		if kw == "PREVIOUS" {
			return i - n, false, nil
		}
		return i + n, false, nil
	}
	return 0, true, nil
}

// TargetIndex connects every component with a non-zero relative index target
// to the component that many positions away. Unset and zero offsets are
// skipped.
func TargetIndex(comps []instrument.Component) (*connect.ConnectionList, error) {
	list := connect.NewList(connect.KindTargetIndex)
	for i, c := range comps {
		offset, ok := c.TargetIndex()
		if !ok || offset == 0 {
			continue
		}
		pos := i + offset
		if pos < 0 || pos >= len(comps) {
			return nil, positionError(c.Name(), "target_index "+strconv.Itoa(offset), pos, len(comps))
		}
		list.Add(c.Name(), comps[pos].Name(), "")
	}
	return list, nil
}
