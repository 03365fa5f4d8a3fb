package extract

import (
	"github.com/matzehuels/instrumap/pkg/diagram/connect"
	"github.com/matzehuels/instrumap/pkg/instrument"
)

// Placement connects every component to the box its position is relative to.
// Absolute placements connect to the ABSOLUTE box.
func Placement(comps []instrument.Component) (*connect.ConnectionList, error) {
	index := nameIndex(comps)
	list := connect.NewList(connect.KindPlacement)
	for i, c := range comps {
		target, err := resolve(connect.KindPlacement, comps, index, i, c.Placement())
		if err != nil {
			return nil, err
		}
		list.Add(c.Name(), target, "")
	}
	return list, nil
}

// Rotation connects every component with an explicit rotation to the box its
// orientation is relative to.
func Rotation(comps []instrument.Component) (*connect.ConnectionList, error) {
	index := nameIndex(comps)
	list := connect.NewList(connect.KindRotation)
	for i, c := range comps {
		ref, ok := c.Rotation()
		if !ok {
			continue
		}
		target, err := resolve(connect.KindRotation, comps, index, i, ref)
		if err != nil {
			return nil, err
		}
		list.Add(c.Name(), target, "")
	}
	return list, nil
}

// Groups connects every group member to the first member of its group.
// Groups with a single member produce nothing.
func Groups(comps []instrument.Component) (*connect.ConnectionList, error) {
	list := connect.NewList(connect.KindGroup)
	first := make(map[string]string)
	for _, c := range comps {
		g := c.Group()
		if g == "" {
			continue
		}
		head, ok := first[g]
		if !ok {
			first[g] = c.Name()
			continue
		}
		list.Add(head, c.Name(), g)
	}
	return list, nil
}
