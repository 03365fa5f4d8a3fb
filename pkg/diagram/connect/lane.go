package connect

// IndexConnection is a connection reduced to its interval of box positions.
// Start is always <= End.
type IndexConnection struct {
	Start, End int
}

// NewIndexConnection normalizes two positions into an interval.
func NewIndexConnection(a, b int) IndexConnection {
	if a > b {
		a, b = b, a
	}
	return IndexConnection{Start: a, End: b}
}

// Overlaps reports whether the open interiors of c and o intersect.
// Intervals that only touch at a position do not overlap.
func (c IndexConnection) Overlaps(o IndexConnection) bool {
	return c.Start < o.End && c.End > o.Start
}

// SharesEndpoint reports whether c and o start or end at the same position.
func (c IndexConnection) SharesEndpoint(o IndexConnection) bool {
	return c.Start == o.Start || c.End == o.End
}

// Lane is one routing column.
type Lane struct {
	accepted []IndexConnection
}

// AddConnection tries to place the interval between start and end in the lane.
//
// The interval is rejected if it overlaps an accepted interval, unless the two
// share their start or their end position. Only one such shared overlap is
// allowed per call: a second overlapping interval rejects the candidate even
// if it shares an endpoint too.
func (l *Lane) AddConnection(start, end int) bool {
	cand := NewIndexConnection(start, end)
	exempted := false
	for _, e := range l.accepted {
		if !cand.Overlaps(e) {
			continue
		}
		if cand.SharesEndpoint(e) && !exempted {
			exempted = true
			continue
		}
		return false
	}
	l.accepted = append(l.accepted, cand)
	return true
}

// Connections returns the accepted intervals in acceptance order.
func (l *Lane) Connections() []IndexConnection {
	out := make([]IndexConnection, len(l.accepted))
	copy(out, l.accepted)
	return out
}

// Len returns the number of accepted intervals.
func (l *Lane) Len() int { return len(l.accepted) }
