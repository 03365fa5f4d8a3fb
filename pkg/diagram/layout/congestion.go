package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/instrumap/pkg/diagram/connect"
)

// Direction tells whether a box is the origin or the target of a connection.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

func (d Direction) String() string {
	if d == Incoming {
		return "in"
	}
	return "out"
}

// Endpoint is one (kind, direction) pair attached to a box.
type Endpoint struct {
	Kind      connect.Kind
	Direction Direction
}

// Congestion records, per box, the vertical offset of every endpoint pair
// attached to it.
type Congestion struct {
	offsets map[string]map[Endpoint]float64
	pairs   map[string][]Endpoint
}

// AnalyzeCongestion collects the distinct (kind, direction) pairs touching
// each box. A box with more than one pair is congested: its pairs get
// distinct offsets spread evenly over CongestionSpread of the box height,
// in (kind, direction) order. Uncongested endpoints sit at offset 0.
func AnalyzeCongestion(boxes []*Box, lists []*connect.ConnectionList, cfg Config) Congestion {
	pairs := make(map[string][]Endpoint)
	add := func(box string, ep Endpoint) {
		if !slices.Contains(pairs[box], ep) {
			pairs[box] = append(pairs[box], ep)
		}
	}
	for _, l := range lists {
		if l == nil {
			continue
		}
		for _, c := range l.Connections {
			add(c.Origin, Endpoint{l.Kind, Outgoing})
			add(c.Target, Endpoint{l.Kind, Incoming})
		}
	}

	c := Congestion{
		offsets: make(map[string]map[Endpoint]float64, len(pairs)),
		pairs:   pairs,
	}
	for _, b := range boxes {
		eps := pairs[b.Name]
		if len(eps) < 2 {
			continue
		}
		slices.SortFunc(eps, func(x, y Endpoint) int {
			if n := cmp.Compare(x.Kind, y.Kind); n != 0 {
				return n
			}
			return cmp.Compare(x.Direction, y.Direction)
		})
		spread := cfg.CongestionSpread * b.Height
		step := spread / float64(len(eps)-1)
		m := make(map[Endpoint]float64, len(eps))
		for i, ep := range eps {
			m[ep] = -spread/2 + float64(i)*step
		}
		c.offsets[b.Name] = m
	}
	return c
}

// Congested reports whether more than one endpoint pair touches box.
func (c Congestion) Congested(box string) bool {
	return len(c.pairs[box]) > 1
}

// Offset returns the vertical offset from the box center for an endpoint.
func (c Congestion) Offset(box string, ep Endpoint) float64 {
	return c.offsets[box][ep]
}

// Endpoints returns the distinct pairs touching box.
func (c Congestion) Endpoints(box string) []Endpoint {
	return slices.Clone(c.pairs[box])
}
