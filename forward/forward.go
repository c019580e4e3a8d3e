// Package forward is the Forwarding Plane (C8): the per-datagram
// next-hop decision between a source-routed WARP datagram following its
// precomputed path and a fresh pick through C7. Grounded on the
// teacher's packet_handler.Packet (hop list, GetNextHopIP,
// IncrementHopCounts) reshaped around lsdb's RouteInformation instead of
// an on-wire hop-count header.
package forward

import (
	"warp/lsdb"
	"warp/pick"
	"warp/topo"
)

// Datagram is a WARP data unit. Destination must be set: NextHop rejects
// a destination-less datagram with ErrBroadcastNextHop. Path and
// CurrentHopIndex are set once a route has been picked.
type Datagram struct {
	Source          *topo.Node
	Destination     *topo.Node
	SizeBytes       float64
	Path            []*topo.Node
	CurrentHopIndex int
}

func (d *Datagram) sourceRouted() bool { return len(d.Path) > 0 }

// WireSize is the byte accounting used for transmission timing, matching
// the base datagram header spec.md §6 describes for LSA accounting.
func (d *Datagram) WireSize() int {
	const datagramHeader = 4 + 4
	return datagramHeader + int(d.SizeBytes)
}

// Plane is the forwarding decision over one node's Local Database.
type Plane struct {
	Picker *pick.Picker
}

func NewPlane(picker *pick.Picker) *Plane {
	return &Plane{Picker: picker}
}

// NextHop implements §4.8. It returns the (possibly rewritten) datagram
// and the next-hop node, or (datagram, nil) when there is no next hop —
// either because destination == self (local delivery) or no route could
// be found (an expected, silently-dropped outcome per spec.md §7).
func (p *Plane) NextHop(db *lsdb.DB, dg *Datagram) (*Datagram, *topo.Node, error) {
	if dg.Destination == db.Owner {
		return dg, nil, nil
	}
	if dg.Destination == nil {
		return dg, nil, topo.ErrBroadcastNextHop
	}

	if dg.sourceRouted() {
		dg.CurrentHopIndex++
		if dg.CurrentHopIndex < len(dg.Path) {
			return dg, dg.Path[dg.CurrentHopIndex], nil
		}
		return dg, nil, nil // path exhausted: drop
	}

	route, ok := p.Picker.Pick(db, dg.Destination, dg.SizeBytes)
	if !ok {
		return dg, nil, nil // ForwardUnroutable: expected, drop
	}

	routed := &Datagram{
		Source:          dg.Source,
		Destination:     dg.Destination,
		SizeBytes:       dg.SizeBytes,
		Path:            route.Path.Nodes,
		CurrentHopIndex: 1,
	}
	if len(routed.Path) < 2 {
		return dg, nil, nil
	}
	return routed, routed.Path[1], nil
}
