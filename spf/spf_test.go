package spf

import (
	"fmt"
	"math"
	"testing"

	"warp/graph"
	"warp/topo"
)

// gridGraph builds the weighted graph used by spec.md's literal
// Dijkstra/Yen scenarios: nine vertices 1..9, edges carrying pre-set
// weights. Link weight is derived from EffectiveBandwidth in the rest
// of the system, so each link is built by weightedLink with a bandwidth
// that makes the real topo.Weight equal the scenario's stated weight on
// a lossless, full-duplex link.
func gridGraph(t *testing.T) (*graph.Graph, map[int]*topo.Node) {
	t.Helper()
	g := graph.New()
	nodes := map[int]*topo.Node{}
	for i := 1; i <= 9; i++ {
		n := topo.NewNode(nodeName(i))
		nodes[i] = n
		if err := g.AddVertex(n); err != nil {
			t.Fatalf("AddVertex(%d): %v", i, err)
		}
	}

	edges := []struct {
		a, b int
		w    float64
	}{
		{1, 2, 5}, {1, 3, 7}, {2, 4, 3}, {3, 5, 2}, {3, 6, 9},
		{4, 5, 5}, {4, 7, 9}, {4, 8, 2}, {5, 6, 10}, {5, 8, 1},
		{5, 9, 8}, {6, 9, 5}, {7, 8, 5},
	}
	for _, e := range edges {
		link := weightedLink(e.w)
		if err := g.AddEdge(nodes[e.a], nodes[e.b], link); err != nil {
			t.Fatalf("AddEdge(%d,%d): %v", e.a, e.b, err)
		}
	}
	return g, nodes
}

func nodeName(i int) string {
	return fmt.Sprintf("n%d", i)
}

// weightedLink builds a link whose topo.Weight is exactly w, by
// choosing a lossless full-duplex bandwidth of 1/w.
func weightedLink(w float64) *topo.Link {
	return topo.NewLink(1.0/w, true)
}

func TestDijkstraGridWeights(t *testing.T) {
	g, n := gridGraph(t)

	cases := []struct {
		from, to int
		want     float64
	}{
		{1, 9, 17},
		{1, 8, 10},
		{7, 6, 16},
		{2, 5, 6},
	}
	for _, c := range cases {
		w, path := Dijkstra(g, n[c.from], n[c.to], nil, nil)
		if math.Abs(w-c.want) > 1e-9 {
			t.Errorf("dijkstra(%d,%d) weight = %v, want %v (path=%v)", c.from, c.to, w, c.want, path)
		}
		if len(path) == 0 || path[0] != n[c.from] || path[len(path)-1] != n[c.to] {
			t.Errorf("dijkstra(%d,%d) returned a path not anchored at source/target: %v", c.from, c.to, path)
		}
	}
}

func TestDijkstraUnreachableIsInfinity(t *testing.T) {
	g := graph.New()
	a, b := topo.NewNode("a"), topo.NewNode("b")
	_ = g.AddVertex(a)
	_ = g.AddVertex(b)

	w, path := Dijkstra(g, a, b, nil, nil)
	if !math.IsInf(w, 1) {
		t.Errorf("expected +Inf for unreachable target, got %v", w)
	}
	if path != nil {
		t.Errorf("expected nil path for unreachable target, got %v", path)
	}
}

func TestDijkstraRespectsForbiddenVertices(t *testing.T) {
	g, n := gridGraph(t)
	forbidden := map[*topo.Node]bool{n[5]: true}

	w, path := Dijkstra(g, n[1], n[9], forbidden, nil)
	for _, v := range path {
		if v == n[5] {
			t.Fatalf("path traverses forbidden vertex 5: %v", path)
		}
	}
	if w == 17 {
		t.Errorf("expected a longer detour around the forbidden vertex, got the unconstrained weight")
	}
}

func TestYenTop3FromThreeToEight(t *testing.T) {
	g, n := gridGraph(t)
	it := NewYenIterator(g, n[3], n[8])

	var got []float64
	for i := 0; i < 3; i++ {
		p, ok := it.Next()
		if !ok {
			t.Fatalf("iterator exhausted after %d paths, want at least 3", i)
		}
		got = append(got, p.Weight)
		assertNoRepeatedVertex(t, p)
	}

	want := []float64{3, 9, 17}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("path %d weight = %v, want %v (all weights: %v)", i, got[i], want[i], got)
		}
	}
}

func TestYenWeightsNonDecreasing(t *testing.T) {
	g, n := gridGraph(t)
	it := NewYenIterator(g, n[1], n[9])

	var prev float64 = -math.MaxFloat64
	var paths []Path
	for {
		p, ok := it.Next()
		if !ok {
			break
		}
		if p.Weight < prev-1e-9 {
			t.Fatalf("weight decreased: %v after %v", p.Weight, prev)
		}
		prev = p.Weight
		paths = append(paths, p)
		assertNoRepeatedVertex(t, p)
	}
	if len(paths) == 0 {
		t.Fatalf("expected at least one path")
	}
	assertNoDuplicatePaths(t, paths)
}

func TestYenOnUnreachableTargetYieldsNothing(t *testing.T) {
	g := graph.New()
	a, b := topo.NewNode("a"), topo.NewNode("b")
	_ = g.AddVertex(a)
	_ = g.AddVertex(b)

	it := NewYenIterator(g, a, b)
	if _, ok := it.Next(); ok {
		t.Fatalf("expected no paths between disconnected vertices")
	}
}

func assertNoRepeatedVertex(t *testing.T, p Path) {
	t.Helper()
	seen := map[*topo.Node]bool{}
	for _, v := range p.Nodes {
		if seen[v] {
			t.Errorf("path repeats vertex %v: %v", v, p.Nodes)
		}
		seen[v] = true
	}
}

func assertNoDuplicatePaths(t *testing.T, paths []Path) {
	t.Helper()
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			if paths[i].sameVertices(paths[j]) {
				t.Errorf("duplicate path at indices %d and %d: %v", i, j, paths[i].Nodes)
			}
		}
	}
}
