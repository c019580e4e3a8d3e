package pick

import (
	"math"
	"testing"

	"warp/advert"
	"warp/kpath"
	"warp/lsdb"
	"warp/spf"
	"warp/topo"
)

func buildDiamondDB(t *testing.T) *lsdb.DB {
	t.Helper()
	a := topo.NewNode("A")
	b := topo.NewNode("B")
	c := topo.NewNode("C")
	d := topo.NewNode("D")

	db := lsdb.New(a, nil, 3, 10, nil)
	edges := []struct {
		u, v *topo.Node
		bw   float64
	}{
		{a, b, 4096}, {a, c, 2048}, {d, b, 4096}, {d, c, 2048}, {a, d, 1024},
	}
	for _, e := range edges {
		link := topo.NewLink(e.bw, true)
		if err := db.Graph.AddEdge(e.u, e.v, link); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
		db.LinkRecords[link] = advert.LinkRecord{
			Link: link, ConnectedNode: e.v, EffectiveBandwidth: topo.EffectiveBandwidth(link),
		}
	}
	return db
}

func TestPickPathDeficitConvergenceS5(t *testing.T) {
	db := buildDiamondDB(t)
	var d *topo.Node
	for _, v := range db.Graph.Vertices() {
		if v.Name == "D" {
			d = v
		}
	}
	if d == nil {
		t.Fatalf("node D not found")
	}

	alg, _ := kpath.NewRegistry().Get("kpath")
	picker := NewPicker(alg, nil)
	sawPositiveDeficit := false

	for i := 0; i < 5; i++ {
		_, ok := picker.Pick(db, d, 32)
		if !ok {
			t.Fatalf("call %d: expected a route to D", i)
		}
		routes := db.Routes[d]
		sum := 0.0
		for _, r := range routes {
			sum += r.DeficitBytes
			if r.DeficitBytes > 1e-9 {
				sawPositiveDeficit = true
			}
		}
		if math.Abs(sum) > 1e-9*float64(len(routes)) {
			t.Errorf("call %d: sum of deficits = %v, want 0", i, sum)
		}
	}

	if !sawPositiveDeficit {
		t.Errorf("expected at least one route to show positive deficit at some point")
	}
}

func TestWeightedRoundRobinPrefersCheaperPaths(t *testing.T) {
	cheap := &lsdb.RouteInformation{Path: spf.Path{Weight: 1}}
	expensive := &lsdb.RouteInformation{Path: spf.Path{Weight: 100}}
	wrr := &WeightedRoundRobin{Rand: constRand(0)}

	selected, ok := wrr.Pick([]*lsdb.RouteInformation{cheap, expensive})
	if !ok {
		t.Fatalf("expected a selection")
	}
	if selected != cheap {
		t.Errorf("expected the lowest-weight route to win the first cumulative slot")
	}
}

func TestWeightedRoundRobinEmptyRoutes(t *testing.T) {
	wrr := &WeightedRoundRobin{}
	if _, ok := wrr.Pick(nil); ok {
		t.Errorf("expected no selection from an empty route set")
	}
}

type constRand float64

func (c constRand) Float64() float64 { return float64(c) }
