// Package kpath is the filtered K-Path Selector (C6): it draws
// candidates lazily from spf's Yen iterator and filters them by stretch
// and by a bottleneck/capacity bookkeeping pass so that accepted paths
// are diverse rather than all funneling through the same saturated
// link. Grounded on the teacher's middle_mile_scheduling adapter/
// registry split (adapter.go wraps an algorithm behind a uniform
// interface; registry.go looks it up by name) — Algorithm here plays the
// adapter role and Registry the lookup role.
package kpath

import (
	"math"

	"warp/advert"
	"warp/graph"
	"warp/spf"
	"warp/topo"
)

// Observer receives accept/prune notifications for telemetry, the
// concrete form of spec.md §6's on_path_accepted/on_path_pruned hooks.
type Observer interface {
	OnAccepted(path spf.Path)
	OnPruned(path spf.Path, reason string)
}

type nopObserver struct{}

func (nopObserver) OnAccepted(spf.Path)         {}
func (nopObserver) OnPruned(spf.Path, string) {}

// NopObserver discards every notification.
var NopObserver Observer = nopObserver{}

// Select implements §4.6: up to k diverse paths from source to
// destination over g, using linkRecords for per-edge capacity.
func Select(g *graph.Graph, linkRecords map[*topo.Link]advert.LinkRecord, source, destination *topo.Node, k int, obs Observer) []spf.Path {
	if obs == nil {
		obs = NopObserver
	}
	if k <= 0 {
		return nil
	}

	capacity := make(map[*topo.Link]float64, len(linkRecords))
	for l, rec := range linkRecords {
		capacity[l] = rec.EffectiveBandwidth
	}
	usage := make(map[*topo.Link]float64, len(linkRecords))

	it := spf.NewYenIterator(g, source, destination)
	var accepted []spf.Path
	var shortestWeight float64

	for len(accepted) < k {
		p, ok := it.Next()
		if !ok {
			break
		}

		if len(accepted) == 0 {
			bottleneck := pathBottleneck(g, p, capacity, usage)
			applyUsage(g, p, usage, bottleneck)
			shortestWeight = p.Weight
			accepted = append(accepted, p)
			obs.OnAccepted(p)
			continue
		}

		if p.Weight > 2*shortestWeight {
			obs.OnPruned(p, "stretch")
			continue
		}

		bottleneck := pathBottleneck(g, p, capacity, usage)
		if bottleneck <= 0 {
			obs.OnPruned(p, "bottleneck")
			continue
		}

		if !fitsCapacity(g, p, capacity, usage, bottleneck) {
			obs.OnPruned(p, "capacity")
			continue
		}

		applyUsage(g, p, usage, bottleneck)
		accepted = append(accepted, p)
		obs.OnAccepted(p)
	}

	return accepted
}

func pathBottleneck(g *graph.Graph, p spf.Path, capacity, usage map[*topo.Link]float64) float64 {
	edges := g.EdgesAlong(p.Nodes)
	if len(edges) == 0 {
		return 0
	}
	min := math.Inf(1)
	for _, e := range edges {
		avail := capacity[e] - usage[e]
		if avail < min {
			min = avail
		}
	}
	if math.IsInf(min, 1) {
		return 0
	}
	return min
}

func fitsCapacity(g *graph.Graph, p spf.Path, capacity, usage map[*topo.Link]float64, bottleneck float64) bool {
	for _, e := range g.EdgesAlong(p.Nodes) {
		if capacity[e]-usage[e] < bottleneck {
			return false
		}
	}
	return true
}

func applyUsage(g *graph.Graph, p spf.Path, usage map[*topo.Link]float64, bottleneck float64) {
	for _, e := range g.EdgesAlong(p.Nodes) {
		usage[e] += bottleneck
	}
}

// Algorithm is the adapter interface the Registry dispatches through,
// letting a node swap selection strategy without touching call sites —
// setting "shortest-path" degenerates WARP to plain shortest-path
// routing per the glossary's top_k==1 note.
type Algorithm interface {
	Select(g *graph.Graph, linkRecords map[*topo.Link]advert.LinkRecord, source, destination *topo.Node, k int, obs Observer) []spf.Path
}

type kpathAlgorithm struct{}

func (kpathAlgorithm) Select(g *graph.Graph, linkRecords map[*topo.Link]advert.LinkRecord, source, destination *topo.Node, k int, obs Observer) []spf.Path {
	return Select(g, linkRecords, source, destination, k, obs)
}

type shortestPathAlgorithm struct{}

func (shortestPathAlgorithm) Select(g *graph.Graph, _ map[*topo.Link]advert.LinkRecord, source, destination *topo.Node, k int, obs Observer) []spf.Path {
	if obs == nil {
		obs = NopObserver
	}
	w, nodes := spf.Dijkstra(g, source, destination, nil, nil)
	if math.IsInf(w, 1) {
		return nil
	}
	p := spf.Path{Nodes: nodes, Weight: w}
	obs.OnAccepted(p)
	return []spf.Path{p}
}

// Registry resolves a selection algorithm by name.
type Registry struct {
	algorithms map[string]Algorithm
}

// NewRegistry returns a Registry pre-seeded with "kpath" and
// "shortest-path".
func NewRegistry() *Registry {
	r := &Registry{algorithms: map[string]Algorithm{}}
	r.Register("kpath", kpathAlgorithm{})
	r.Register("shortest-path", shortestPathAlgorithm{})
	return r
}

func (r *Registry) Register(name string, alg Algorithm) {
	r.algorithms[name] = alg
}

func (r *Registry) Get(name string) (Algorithm, bool) {
	alg, ok := r.algorithms[name]
	return alg, ok
}
