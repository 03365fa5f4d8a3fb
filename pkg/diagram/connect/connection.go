package connect

import (
	"github.com/matzehuels/instrumap/pkg/errors"
)

// Connection is a relationship between two boxes, identified by name.
type Connection struct {
	Origin string
	Target string
	// Info is an optional inline label, e.g. a group name.
	Info string
	Kind Kind
	// Lane is 0 until DistributeLaneNumbers assigns it.
	Lane int
}

// Interval returns the connection's position interval under order.
func (c *Connection) Interval(index map[string]int) (IndexConnection, error) {
	o, ok := index[c.Origin]
	if !ok {
		return IndexConnection{}, errors.Reference(c.Target, c.Origin)
	}
	t, ok := index[c.Target]
	if !ok {
		return IndexConnection{}, errors.Reference(c.Origin, c.Target)
	}
	return NewIndexConnection(o, t), nil
}

// ConnectionList holds the connections of one kind in extraction order.
type ConnectionList struct {
	Kind        Kind
	Connections []*Connection
}

// NewList creates an empty list for kind.
func NewList(kind Kind) *ConnectionList {
	return &ConnectionList{Kind: kind}
}

// Add appends a connection from origin to target and returns it.
func (l *ConnectionList) Add(origin, target, info string) *Connection {
	c := &Connection{Origin: origin, Target: target, Info: info, Kind: l.Kind}
	l.Connections = append(l.Connections, c)
	return c
}

// Len returns the number of connections.
func (l *ConnectionList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Connections)
}

// DistributeLaneNumbers assigns every connection a lane number starting at 1.
//
// Connections are processed in insertion order. Each goes to the lowest
// numbered lane that accepts it, or to a new lane when none does. A
// connection naming a box that is not in order is a hard
// UNRESOLVED_REFERENCE error and leaves lane numbers unassigned.
func (l *ConnectionList) DistributeLaneNumbers(order []string) error {
	index := IndexOf(order)

	intervals := make([]IndexConnection, len(l.Connections))
	for i, c := range l.Connections {
		iv, err := c.Interval(index)
		if err != nil {
			return err
		}
		intervals[i] = iv
	}

	var lanes []*Lane
	for i, c := range l.Connections {
		iv := intervals[i]
		placed := false
		for n, lane := range lanes {
			if lane.AddConnection(iv.Start, iv.End) {
				c.Lane = n + 1
				placed = true
				break
			}
		}
		if !placed {
			lane := &Lane{}
			lane.AddConnection(iv.Start, iv.End)
			lanes = append(lanes, lane)
			c.Lane = len(lanes)
		}
	}
	return nil
}

// MaxLane returns the highest lane number in use, 0 for an empty list.
func (l *ConnectionList) MaxLane() int {
	if l == nil {
		return 0
	}
	highest := 0
	for _, c := range l.Connections {
		highest = max(highest, c.Lane)
	}
	return highest
}

// Offset shifts every assigned lane number by n.
func (l *ConnectionList) Offset(n int) {
	for _, c := range l.Connections {
		if c.Lane > 0 {
			c.Lane += n
		}
	}
}

// IndexOf maps each name to its position in order.
func IndexOf(order []string) map[string]int {
	index := make(map[string]int, len(order))
	for i, name := range order {
		index[name] = i
	}
	return index
}
