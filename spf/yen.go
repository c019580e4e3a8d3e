package spf

import (
	"container/heap"
	"math"

	"warp/graph"
	"warp/topo"
)

// YenIterator is a pull-style, lazy enumerator of loopless paths from
// source to target in non-decreasing total-weight order. Call Next()
// repeatedly; it advances only when asked, and never leaves the
// underlying graph mutated (blocked vertices/edges are passed to
// Dijkstra as exclusion sets rather than removed from the graph).
type YenIterator struct {
	g              *graph.Graph
	source, target *topo.Node

	started   bool
	exhausted bool
	yielded   []Path
	queue     candidateHeap
}

func NewYenIterator(g *graph.Graph, source, target *topo.Node) *YenIterator {
	return &YenIterator{g: g, source: source, target: target}
}

// Next returns the next path in the sequence, or (Path{}, false) when
// the enumeration is exhausted.
func (y *YenIterator) Next() (Path, bool) {
	if !y.started {
		y.started = true
		w, nodes := Dijkstra(y.g, y.source, y.target, nil, nil)
		if math.IsInf(w, 1) {
			y.exhausted = true
			return Path{}, false
		}
		p := Path{Nodes: nodes, Weight: w}
		y.yielded = append(y.yielded, p)
		return p, true
	}

	if y.exhausted {
		return Path{}, false
	}

	y.generateCandidatesFrom(y.yielded[len(y.yielded)-1])

	if y.queue.Len() == 0 {
		y.exhausted = true
		return Path{}, false
	}

	next := heap.Pop(&y.queue).(Path)
	y.yielded = append(y.yielded, next)
	return next, true
}

// generateCandidatesFrom runs the spur-search step of Yen's algorithm
// against prevPath and pushes any newly found, not-yet-queued candidate
// onto the min-heap.
func (y *YenIterator) generateCandidatesFrom(prevPath Path) {
	for i := 0; i < len(prevPath.Nodes)-1; i++ {
		spurNode := prevPath.Nodes[i]
		rootPath := prevPath.Nodes[:i+1]

		blockedEdges := map[*topo.Link]bool{}
		for _, q := range y.yielded {
			if len(q.Nodes) > i+1 && sharesPrefix(q.Nodes, rootPath) {
				if e := y.g.GetEdge(q.Nodes[i], q.Nodes[i+1]); e != nil {
					blockedEdges[e] = true
				}
			}
		}

		forbiddenVerts := map[*topo.Node]bool{}
		for j := 0; j < i; j++ {
			forbiddenVerts[rootPath[j]] = true
		}

		spurWeight, spurNodes := Dijkstra(y.g, spurNode, y.target, forbiddenVerts, blockedEdges)
		if math.IsInf(spurWeight, 1) {
			continue
		}

		total := make([]*topo.Node, 0, i+len(spurNodes))
		total = append(total, rootPath[:i]...)
		total = append(total, spurNodes...)

		candidate := Path{Nodes: total, Weight: pathWeight(y.g, total)}
		if y.alreadySeen(candidate) {
			continue
		}
		heap.Push(&y.queue, candidate)
	}
}

func (y *YenIterator) alreadySeen(p Path) bool {
	for _, q := range y.yielded {
		if q.sameVertices(p) {
			return true
		}
	}
	for _, q := range y.queue {
		if q.sameVertices(p) {
			return true
		}
	}
	return false
}

func sharesPrefix(nodes, prefix []*topo.Node) bool {
	if len(nodes) < len(prefix) {
		return false
	}
	for i := range prefix {
		if nodes[i] != prefix[i] {
			return false
		}
	}
	return true
}

// candidateHeap is a min-heap of candidate paths ordered by total
// weight, tie-broken by hop count — same ordering as the teacher's
// hand-rolled pathHeap, expressed through container/heap.
type candidateHeap []Path

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	if h[i].Weight != h[j].Weight {
		return h[i].Weight < h[j].Weight
	}
	return len(h[i].Nodes) < len(h[j].Nodes)
}
func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x any)   { *h = append(*h, x.(Path)) }
func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
