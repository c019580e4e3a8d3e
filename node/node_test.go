package node

import (
	"testing"

	"warp/advert"
	"warp/forward"
	"warp/topo"
)

type testLink struct {
	nodes   map[*topo.Node]*Node
	blocked map[*topo.Node]bool
}

func newTestLink() *testLink {
	return &testLink{nodes: map[*topo.Node]*Node{}, blocked: map[*topo.Node]bool{}}
}

func (l *testLink) SendDatagram(from, to *topo.Node, payload Payload) {
	if l.blocked[from] {
		return
	}
	if n, ok := l.nodes[to]; ok {
		n.Receive(payload)
	}
}

func quietConfig() Config {
	return Config{TopK: 3, NeighborTimeout: 10, HelloInterval: 1000, HelloBroadcastInterval: 0}
}

// TestDeadNeighborPropagationS6 is the literal scenario: A-B-C in a
// line. Once B stops being heard from, A must drop its A-B edge, purge
// B's node record, and notify every other neighbor of B still in its
// graph (here, C) with a fresh self-record that omits the dead link. C
// must drop its (second-hand) A-B edge but keep its own B-C edge.
func TestDeadNeighborPropagationS6(t *testing.T) {
	a, b, c := topo.NewNode("A"), topo.NewNode("B"), topo.NewNode("C")
	link := newTestLink()

	nodeA := New(a, quietConfig(), nil, nil, link, nil, nil, nil)
	nodeB := New(b, quietConfig(), nil, nil, link, nil, nil, nil)
	nodeC := New(c, quietConfig(), nil, nil, link, nil, nil, nil)
	link.nodes[a] = nodeA
	link.nodes[b] = nodeB
	link.nodes[c] = nodeC

	linkAB_a := topo.NewLink(1000, true)
	nodeA.SeedNeighbor(b, linkAB_a)
	linkAB_b := topo.NewLink(1000, true)
	nodeB.SeedNeighbor(a, linkAB_b)
	linkBC_b := topo.NewLink(1000, true)
	nodeB.SeedNeighbor(c, linkBC_b)
	linkBC_c := topo.NewLink(1000, true)
	nodeC.SeedNeighbor(b, linkBC_c)

	// A already knows (second-hand, as if from an earlier LSA of B's)
	// that B also connects to C.
	linkBCforA := topo.NewLink(1000, true)
	_ = nodeA.DB.Graph.AddEdge(b, c, linkBCforA)
	nodeA.DB.LinkRecords[linkBCforA] = advert.LinkRecord{
		Link: linkBCforA, ConnectedNode: c, EffectiveBandwidth: topo.EffectiveBandwidth(linkBCforA),
	}
	nodeA.DB.NodeRecords[b] = advert.NodeRecord{
		Node: b,
		Links: []advert.LinkRecord{
			{Link: linkAB_a, ConnectedNode: a, EffectiveBandwidth: topo.EffectiveBandwidth(linkAB_a)},
			{Link: linkBCforA, ConnectedNode: c, EffectiveBandwidth: topo.EffectiveBandwidth(linkBCforA)},
		},
	}

	// C already knows (second-hand) that A connects to B.
	linkABforC := topo.NewLink(1000, true)
	_ = nodeC.DB.Graph.AddEdge(a, b, linkABforC)
	nodeC.DB.LinkRecords[linkABforC] = advert.LinkRecord{
		Link: linkABforC, ConnectedNode: b, EffectiveBandwidth: topo.EffectiveBandwidth(linkABforC),
	}
	nodeC.DB.NodeRecords[a] = advert.NodeRecord{
		Node: a,
		Links: []advert.LinkRecord{
			{Link: linkABforC, ConnectedNode: b, EffectiveBandwidth: topo.EffectiveBandwidth(linkABforC)},
		},
	}

	link.blocked[b] = true // stop delivering anything from B

	nodeA.Update(5)
	if nodeA.DB.Graph.GetEdge(a, b) == nil {
		t.Fatalf("A-B edge disappeared before the timeout elapsed")
	}

	nodeA.Update(6) // total elapsed 11 >= NeighborTimeout 10

	if nodeA.DB.Graph.GetEdge(a, b) != nil {
		t.Errorf("expected A to remove the A-B edge from its local graph")
	}
	if _, known := nodeA.DB.NodeRecords[b]; known {
		t.Errorf("expected A to clear node_records[B]")
	}
	if _, known := nodeA.DB.DirectNeighbors[b]; known {
		t.Errorf("expected A to drop B from direct_neighbors")
	}

	// A's notification to C is sitting in C's inbox; ingest it.
	nodeC.Update(0)

	if nodeC.DB.Graph.GetEdge(a, b) != nil {
		t.Errorf("expected C to drop its second-hand A-B edge")
	}
	if nodeC.DB.Graph.GetEdge(b, c) == nil {
		t.Errorf("expected C to keep its own B-C edge: C still hears B directly")
	}
	if _, known := nodeC.DB.DirectNeighbors[b]; !known {
		t.Errorf("expected C's direct neighbor relationship with B to be untouched")
	}
}

func TestToggleInactiveNodeDropsOwnSends(t *testing.T) {
	a, b := topo.NewNode("A"), topo.NewNode("B")
	link := newTestLink()
	nodeA := New(a, quietConfig(), nil, nil, link, nil, nil, nil)
	nodeB := New(b, quietConfig(), nil, nil, link, nil, nil, nil)
	link.nodes[a] = nodeA
	link.nodes[b] = nodeB

	nodeA.SeedNeighbor(b, topo.NewLink(1000, true))
	nodeA.SetActive(false)

	before := nodeA.DropCount
	nodeA.SendDatagram(&forward.Datagram{Source: a, Destination: b, SizeBytes: 10})
	if nodeA.DropCount != before+1 {
		t.Errorf("expected an inactive node to drop its own send attempts")
	}
}
