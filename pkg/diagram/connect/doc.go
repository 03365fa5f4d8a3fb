// Package connect holds typed relationships between diagram boxes and assigns
// them to routing lanes.
//
// # Lanes
//
// Every [Connection] spans an interval of positions in the fixed vertical
// order of boxes. A [Lane] is a routing column; it accepts a connection only
// if the connection's interval does not overlap any interval already in the
// lane. Overlap is tolerated when the two intervals start at the same
// position or end at the same position, because their lines then merge at
// the shared box instead of crossing. A connection may use that tolerance at
// most once per lane.
//
// [ConnectionList.DistributeLaneNumbers] places connections greedily, in the
// order they were added, into the first lane that accepts them. This is the
// first-fit coloring of an interval graph; the result depends only on the
// insertion order, which makes lane numbers reproducible for a given
// instrument.
//
//	list := connect.NewList(connect.KindPlacement)
//	list.Add("guide", "source", "")
//	list.Add("sample", "guide", "")
//	if err := list.DistributeLaneNumbers(order); err != nil {
//	    return err
//	}
//	fmt.Println(list.MaxLane())
package connect
