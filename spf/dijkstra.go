// Package spf is the shortest-path engine: single-source Dijkstra with a
// forbidden-vertex set, and a lazy Yen's k-shortest-loopless-paths
// generator built on top of it. Grounded on the teacher's
// middle_mile_scheduling/k_shortest package, rewritten over graph.Graph
// and turned into a true pull iterator for Yen's.
package spf

import (
	"math"
	"sort"

	"warp/graph"
	"warp/topo"
)

// Path is a vertex sequence with its total weight.
type Path struct {
	Nodes  []*topo.Node
	Weight float64
}

func (p Path) sameVertices(other Path) bool {
	if len(p.Nodes) != len(other.Nodes) {
		return false
	}
	for i := range p.Nodes {
		if p.Nodes[i] != other.Nodes[i] {
			return false
		}
	}
	return true
}

// Dijkstra computes the shortest path from source to target, never
// expanding any vertex in forbidden and never traversing any edge in
// blocked. Ties on equal tentative distance are broken by (distance,
// vertex Name) — spec.md leaves this unspecified in the source and
// recommends this deterministic order. Returns (+Inf, nil) if target
// is unreachable.
func Dijkstra(g *graph.Graph, source, target *topo.Node, forbidden map[*topo.Node]bool, blocked map[*topo.Link]bool) (float64, []*topo.Node) {
	dist := map[*topo.Node]float64{source: 0}
	prev := map[*topo.Node]*topo.Node{}
	visited := map[*topo.Node]bool{}

	if forbidden != nil && forbidden[source] {
		return math.Inf(1), nil
	}

	for {
		u, ok := nextPending(dist, visited, forbidden)
		if !ok {
			break
		}
		visited[u] = true
		if u == target {
			break
		}
		for _, nb := range g.Neighbors(u) {
			if forbidden != nil && forbidden[nb.Node] {
				continue
			}
			if visited[nb.Node] {
				continue
			}
			if blocked != nil && blocked[nb.Link] {
				continue
			}
			w := topo.Weight(nb.Link)
			if math.IsInf(w, 1) {
				continue
			}
			alt := dist[u] + w
			cur, known := dist[nb.Node]
			if !known || alt < cur {
				dist[nb.Node] = alt
				prev[nb.Node] = u
			}
		}
	}

	finalDist, ok := dist[target]
	if !ok {
		return math.Inf(1), nil
	}

	path := []*topo.Node{target}
	cur := target
	for cur != source {
		p, ok := prev[cur]
		if !ok {
			// target reached but source unreachable from it by the
			// recorded predecessors: shouldn't happen given finalDist
			// is set, but guard against a corrupted predecessor chain.
			return math.Inf(1), nil
		}
		path = append(path, p)
		cur = p
	}
	reverse(path)
	return finalDist, path
}

// nextPending picks the unvisited, non-forbidden vertex with the
// smallest tentative distance, breaking ties by Name.
func nextPending(dist map[*topo.Node]float64, visited, forbidden map[*topo.Node]bool) (*topo.Node, bool) {
	var candidates []*topo.Node
	for v := range dist {
		if visited[v] {
			continue
		}
		if forbidden != nil && forbidden[v] {
			continue
		}
		candidates = append(candidates, v)
	}
	if len(candidates) == 0 {
		return nil, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		di, dj := dist[candidates[i]], dist[candidates[j]]
		if di != dj {
			return di < dj
		}
		return candidates[i].Name < candidates[j].Name
	})
	return candidates[0], true
}

func reverse(ns []*topo.Node) {
	for i, j := 0, len(ns)-1; i < j; i, j = i+1, j-1 {
		ns[i], ns[j] = ns[j], ns[i]
	}
}

func pathWeight(g *graph.Graph, nodes []*topo.Node) float64 {
	total := 0.0
	edges := g.EdgesAlong(nodes)
	if len(edges) != len(nodes)-1 {
		return math.Inf(1)
	}
	for _, e := range edges {
		total += topo.Weight(e)
	}
	return total
}
