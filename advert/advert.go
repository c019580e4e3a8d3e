// Package advert holds the wire types LSA flooding moves between nodes:
// Node Records, Link Records, and the LSA envelope itself. Grounded on
// the teacher's packet_handler.Packet (header fields, hop bookkeeping)
// but reshaped around spec.md §3's advertisement semantics rather than
// a forwarded data packet.
package advert

import "warp/topo"

// LinkRecord is a snapshot of one link as seen from a Node Record's
// owner: which link, which node it connects to, and the effective
// bandwidth observed at snapshot time.
type LinkRecord struct {
	Link               *topo.Link
	ConnectedNode      *topo.Node
	EffectiveBandwidth float64
}

// NodeRecord is a node's declaration of its current link set, taken at
// a point in time. Absence of a previously-advertised link implies
// that link is gone — see lsdb.UpsertNodeRecord.
type NodeRecord struct {
	Node                      *topo.Node
	Links                     []LinkRecord
	HighestObservedQueueRatio float64
}

// LSA is a sequenced carrier for one Node Record. Source is the
// record's origin and never changes as the LSA is relayed; ForwardingNode
// is whichever neighbor handed this copy to the receiver, and equals
// Source on first emission. Destination is nil for a flooded broadcast,
// set for a point-to-point hello or a dead-neighbor notification.
type LSA struct {
	Record         NodeRecord
	SequenceNumber int64
	Source         *topo.Node
	ForwardingNode *topo.Node
	Destination    *topo.Node
}

// Clone returns a shallow copy of l with its own Links backing array,
// safe to mutate (ForwardingNode, Destination) without affecting the
// original the flooder is re-sending to other neighbors.
func (l *LSA) Clone() *LSA {
	c := *l
	c.Record.Links = make([]LinkRecord, len(l.Record.Links))
	copy(c.Record.Links, l.Record.Links)
	return &c
}

// Broadcast reports whether this LSA is a flood (no fixed destination).
func (l *LSA) Broadcast() bool { return l.Destination == nil }

// WireSize is the byte accounting spec.md §6 specifies for transmission
// timing: a fixed 8-byte advertisement header, 12 bytes per link record,
// plus the 8-byte base datagram header.
func (l *LSA) WireSize() int {
	const advertHeader = 4 + 4
	const datagramHeader = 4 + 4
	const perLink = 12
	return advertHeader + datagramHeader + len(l.Record.Links)*perLink
}
