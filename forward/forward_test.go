package forward

import (
	"testing"

	"warp/advert"
	"warp/kpath"
	"warp/lsdb"
	"warp/pick"
	"warp/topo"
)

func TestNextHopLocalDelivery(t *testing.T) {
	owner := topo.NewNode("A")
	db := lsdb.New(owner, nil, 3, 10, nil)
	plane := NewPlane(pick.NewPicker(nil, nil))

	dg := &Datagram{Source: owner, Destination: owner, SizeBytes: 10}
	_, hop, err := plane.NextHop(db, dg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hop != nil {
		t.Errorf("expected nil next hop for local delivery, got %v", hop)
	}
}

func TestNextHopRejectsBroadcastDestination(t *testing.T) {
	owner := topo.NewNode("A")
	db := lsdb.New(owner, nil, 3, 10, nil)
	plane := NewPlane(pick.NewPicker(nil, nil))

	dg := &Datagram{Source: owner, SizeBytes: 10}
	_, _, err := plane.NextHop(db, dg)
	if err != topo.ErrBroadcastNextHop {
		t.Errorf("expected ErrBroadcastNextHop, got %v", err)
	}
}

func TestNextHopAdvancesSourceRoutedPath(t *testing.T) {
	owner := topo.NewNode("A")
	mid := topo.NewNode("B")
	dst := topo.NewNode("C")
	db := lsdb.New(owner, nil, 3, 10, nil)
	plane := NewPlane(pick.NewPicker(nil, nil))

	dg := &Datagram{
		Source: owner, Destination: dst, SizeBytes: 10,
		Path: []*topo.Node{owner, mid, dst}, CurrentHopIndex: 0,
	}
	_, hop, err := plane.NextHop(db, dg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hop != mid {
		t.Errorf("expected next hop B, got %v", hop)
	}
	if dg.CurrentHopIndex != 1 {
		t.Errorf("expected CurrentHopIndex=1, got %d", dg.CurrentHopIndex)
	}

	_, hop, err = plane.NextHop(db, dg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hop != dst {
		t.Errorf("expected next hop C, got %v", hop)
	}

	_, hop, err = plane.NextHop(db, dg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hop != nil {
		t.Errorf("expected nil next hop once the path is exhausted, got %v", hop)
	}
}

func TestNextHopFreshPickBuildsSourceRoutedDatagram(t *testing.T) {
	owner := topo.NewNode("A")
	mid := topo.NewNode("B")
	dst := topo.NewNode("C")
	db := lsdb.New(owner, nil, 3, 10, nil)

	link1 := topo.NewLink(1000, true)
	link2 := topo.NewLink(1000, true)
	_ = db.Graph.AddEdge(owner, mid, link1)
	_ = db.Graph.AddEdge(mid, dst, link2)
	db.LinkRecords[link1] = advert.LinkRecord{Link: link1, ConnectedNode: mid, EffectiveBandwidth: topo.EffectiveBandwidth(link1)}
	db.LinkRecords[link2] = advert.LinkRecord{Link: link2, ConnectedNode: dst, EffectiveBandwidth: topo.EffectiveBandwidth(link2)}

	reg := kpath.NewRegistry()
	alg, _ := reg.Get("kpath")
	plane := NewPlane(pick.NewPicker(alg, nil))

	dg := &Datagram{Source: owner, Destination: dst, SizeBytes: 64}
	routed, hop, err := plane.NextHop(db, dg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hop != mid {
		t.Errorf("expected first hop B, got %v", hop)
	}
	if routed.CurrentHopIndex != 1 {
		t.Errorf("expected CurrentHopIndex=1 on the rewritten datagram, got %d", routed.CurrentHopIndex)
	}
	if len(routed.Path) != 3 {
		t.Errorf("expected a 3-node path, got %v", routed.Path)
	}
}
