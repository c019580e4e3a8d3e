package flood

import (
	"testing"

	"warp/advert"
	"warp/lsdb"
	"warp/topo"
)

type recordingSender struct {
	sent []sentLSA
}

type sentLSA struct {
	to  *topo.Node
	lsa *advert.LSA
}

func (r *recordingSender) SendLSA(to *topo.Node, lsa *advert.LSA) {
	r.sent = append(r.sent, sentLSA{to: to, lsa: lsa})
}

func TestFlooderEmitsUnicastUntilBroadcastInterval(t *testing.T) {
	owner := topo.NewNode("A")
	b, c := topo.NewNode("B"), topo.NewNode("C")
	db := lsdb.New(owner, nil, 3, 10, nil)
	db.DirectNeighbors[b] = 0
	db.DirectNeighbors[c] = 0

	f := New(db, 1, 3, 0, nil)
	defer f.Stop()
	sender := &recordingSender{}

	f.Update(1, sender) // 1st hello: unicast
	for _, s := range sender.sent {
		if s.lsa.Destination == nil {
			t.Errorf("expected unicast hello 1, got a broadcast")
		}
	}

	sender.sent = nil
	f.Update(1, sender) // 2nd hello: unicast
	for _, s := range sender.sent {
		if s.lsa.Destination == nil {
			t.Errorf("expected unicast hello 2, got a broadcast")
		}
	}

	sender.sent = nil
	f.Update(1, sender) // 3rd hello: broadcast
	for _, s := range sender.sent {
		if s.lsa.Destination != nil {
			t.Errorf("expected broadcast hello 3, got unicast to %v", s.lsa.Destination)
		}
	}
}

func TestReceiveSplitHorizonExcludesSourceAndForwarder(t *testing.T) {
	owner := topo.NewNode("B")
	a, c, d := topo.NewNode("A"), topo.NewNode("C"), topo.NewNode("D")
	db := lsdb.New(owner, nil, 3, 10, nil)
	db.DirectNeighbors[a] = 0
	db.DirectNeighbors[c] = 0
	db.DirectNeighbors[d] = 0

	f := New(db, 10, 0, 0, nil)
	defer f.Stop()
	sender := &recordingSender{}

	lsa := &advert.LSA{
		Record:         advert.NodeRecord{Node: a},
		SequenceNumber: 1,
		Source:         a,
		ForwardingNode: a,
	}
	f.Receive(lsa, sender)

	if len(sender.sent) != 2 {
		t.Fatalf("expected reflood to 2 neighbors (C,D), got %d", len(sender.sent))
	}
	for _, s := range sender.sent {
		if s.to == a {
			t.Errorf("must not reflood back to source")
		}
	}
}

func TestReceiveUnicastNeverReflooded(t *testing.T) {
	owner := topo.NewNode("B")
	a, c := topo.NewNode("A"), topo.NewNode("C")
	db := lsdb.New(owner, nil, 3, 10, nil)
	db.DirectNeighbors[a] = 0
	db.DirectNeighbors[c] = 0

	f := New(db, 10, 0, 0, nil)
	defer f.Stop()
	sender := &recordingSender{}

	lsa := &advert.LSA{
		Record:         advert.NodeRecord{Node: a},
		SequenceNumber: 1,
		Source:         a,
		ForwardingNode: a,
		Destination:    owner,
	}
	f.Receive(lsa, sender)

	if len(sender.sent) != 0 {
		t.Errorf("expected no reflood of a unicast LSA, got %d sends", len(sender.sent))
	}
}

func TestReceiveRejectsStaleWithoutDedupSideEffect(t *testing.T) {
	owner := topo.NewNode("B")
	a := topo.NewNode("A")
	db := lsdb.New(owner, nil, 3, 10, nil)
	db.DirectNeighbors[a] = 0
	db.SequenceNumbers[a] = 5

	f := New(db, 10, 0, 0, nil)
	defer f.Stop()
	sender := &recordingSender{}

	lsa := &advert.LSA{
		Record:         advert.NodeRecord{Node: a},
		SequenceNumber: 5,
		Source:         a,
		ForwardingNode: a,
	}
	f.Receive(lsa, sender)
	if len(sender.sent) != 0 {
		t.Errorf("expected no reflood of a stale LSA")
	}
	if f.Dedup.Has(dedupKey(a, 5)) {
		t.Errorf("a stale LSA must not be recorded in the dedup cache")
	}
}
