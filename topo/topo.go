// Package topo holds the plain data model WARP routes over: nodes, links,
// and the derived effective-bandwidth/weight used by the shortest-path
// engine and the K-Path selector.
package topo

import "math"

// Node is an opaque routing identity. Equality inside a process is
// reference identity (compare *Node pointers); Name is the stable handle
// carried across LSAs and used as the Dijkstra tie-break.
type Node struct {
	Name string

	// LossRate is this endpoint's byte-loss rate, read by EffectiveBandwidth
	// at evaluation time for every link incident to this node.
	LossRate float64
}

func NewNode(name string) *Node {
	return &Node{Name: name}
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.Name
}

// Link is an undirected connection between exactly two nodes. The
// endpoint slots are set by graph.Graph.AddEdge and must stay consistent
// with whatever adjacency lists the link appears under.
type Link struct {
	Bandwidth  float64 // bits/sec, raw transmission rate
	FullDuplex bool

	endpoints [2]*Node
}

func NewLink(bandwidth float64, fullDuplex bool) *Link {
	return &Link{Bandwidth: bandwidth, FullDuplex: fullDuplex}
}

// SetEndpoints records the two vertices this link sits between. Only
// graph.Graph should call this.
func (l *Link) SetEndpoints(a, b *Node) {
	l.endpoints[0] = a
	l.endpoints[1] = b
}

func (l *Link) Endpoints() (*Node, *Node) {
	return l.endpoints[0], l.endpoints[1]
}

// Other returns the endpoint opposite n, or ErrNotAdjacent if n is not
// one of this link's endpoints.
func (l *Link) Other(n *Node) (*Node, error) {
	switch n {
	case l.endpoints[0]:
		return l.endpoints[1], nil
	case l.endpoints[1]:
		return l.endpoints[0], nil
	default:
		return nil, ErrNotAdjacent
	}
}

// Clone copies the raw attributes (bandwidth, duplex mode) and clears the
// endpoint slots, per spec: "cloning a link copies bandwidth and
// full_duplex and clears endpoint slots."
func (l *Link) Clone() *Link {
	return &Link{Bandwidth: l.Bandwidth, FullDuplex: l.FullDuplex}
}

// SameEndpoints reports whether two links connect the same unordered pair
// of nodes — the comparison spec.md uses for link container keying.
func (l *Link) SameEndpoints(other *Link) bool {
	a0, a1 := l.Endpoints()
	b0, b1 := other.Endpoints()
	return (a0 == b0 && a1 == b1) || (a0 == b1 && a1 == b0)
}

// EffectiveBandwidth applies the duplex/loss formula from spec.md §3:
// bandwidth * (full_duplex ? 1 : 0.5) * (1-loss0) * (1-loss1), reading
// the two endpoints' current loss rates.
func EffectiveBandwidth(l *Link) float64 {
	a, b := l.Endpoints()
	duplexFactor := 0.5
	if l.FullDuplex {
		duplexFactor = 1.0
	}
	lossA, lossB := 0.0, 0.0
	if a != nil {
		lossA = a.LossRate
	}
	if b != nil {
		lossB = b.LossRate
	}
	return l.Bandwidth * duplexFactor * (1 - lossA) * (1 - lossB)
}

// Weight is 1/effective_bandwidth, or +Inf when the effective bandwidth
// is zero (a dead or fully-lossy link).
func Weight(l *Link) float64 {
	eff := EffectiveBandwidth(l)
	if eff <= 0 {
		return math.Inf(1)
	}
	return 1 / eff
}
