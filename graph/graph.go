// Package graph implements the undirected weighted multigraph WARP's
// shortest-path engine and K-Path selector run over, specialized to
// *topo.Node vertices and *topo.Link edges per spec.md §4.1.
package graph

import "warp/topo"

// Neighbor pairs a neighbor vertex with the edge connecting to it.
type Neighbor struct {
	Node *topo.Node
	Link *topo.Link
}

// Graph is an adjacency-list mapping from each vertex to an ordered
// sequence of (neighbor, edge) pairs. Edges are represented symmetrically
// on both sides and must compare equal (same *topo.Link, same endpoints).
type Graph struct {
	adj map[*topo.Node][]Neighbor

	// cached views, invalidated on any mutation
	verticesCache  []*topo.Node
	verticesValid  bool
	edgesCache     []*topo.Link
	edgesValid     bool
}

func New() *Graph {
	return &Graph{adj: make(map[*topo.Node][]Neighbor)}
}

func (g *Graph) invalidate() {
	g.verticesValid = false
	g.edgesValid = false
	g.verticesCache = nil
	g.edgesCache = nil
}

// AddVertex is idempotent; inserting an existing vertex is a no-op.
func (g *Graph) AddVertex(v *topo.Node) error {
	if v == nil {
		return topo.ErrInvalidVertex
	}
	if _, ok := g.adj[v]; ok {
		return nil
	}
	g.adj[v] = nil
	g.invalidate()
	return nil
}

// HasVertex reports whether v is known to the graph.
func (g *Graph) HasVertex(v *topo.Node) bool {
	_, ok := g.adj[v]
	return ok
}

// RemoveVertex removes v and every edge incident to it from both
// adjacency sides.
func (g *Graph) RemoveVertex(v *topo.Node) error {
	if v == nil {
		return topo.ErrInvalidVertex
	}
	if _, ok := g.adj[v]; !ok {
		return nil
	}
	for _, nb := range g.adj[v] {
		g.adj[nb.Node] = removeNeighbor(g.adj[nb.Node], v)
	}
	delete(g.adj, v)
	g.invalidate()
	return nil
}

func removeNeighbor(list []Neighbor, v *topo.Node) []Neighbor {
	out := list[:0]
	for _, nb := range list {
		if nb.Node != v {
			out = append(out, nb)
		}
	}
	return out
}

// AddEdge ensures both vertices exist, removes any existing (u,v) edge,
// then inserts e on both sides and sets e's endpoint slots to (u,v).
func (g *Graph) AddEdge(u, v *topo.Node, e *topo.Link) error {
	if u == nil || v == nil || e == nil {
		return topo.ErrInvalidVertex
	}
	if err := g.AddVertex(u); err != nil {
		return err
	}
	if err := g.AddVertex(v); err != nil {
		return err
	}
	_ = g.RemoveEdge(u, v)
	e.SetEndpoints(u, v)
	g.adj[u] = append(g.adj[u], Neighbor{Node: v, Link: e})
	g.adj[v] = append(g.adj[v], Neighbor{Node: u, Link: e})
	g.invalidate()
	return nil
}

// RemoveEdge removes any adjacency pair between u and v on each side; it
// is idempotent.
func (g *Graph) RemoveEdge(u, v *topo.Node) error {
	if u == nil || v == nil {
		return topo.ErrInvalidVertex
	}
	if _, ok := g.adj[u]; ok {
		g.adj[u] = removeNeighbor(g.adj[u], v)
	}
	if _, ok := g.adj[v]; ok {
		g.adj[v] = removeNeighbor(g.adj[v], u)
	}
	g.invalidate()
	return nil
}

// GetEdge returns the stored edge between u and v, or nil.
func (g *Graph) GetEdge(u, v *topo.Node) *topo.Link {
	for _, nb := range g.adj[u] {
		if nb.Node == v {
			return nb.Link
		}
	}
	return nil
}

// Neighbors returns the (neighbor, edge) sequence for v in insertion
// order; an empty sequence if v is unknown.
func (g *Graph) Neighbors(v *topo.Node) []Neighbor {
	out := make([]Neighbor, len(g.adj[v]))
	copy(out, g.adj[v])
	return out
}

// EdgesAlong yields the edges between consecutive vertices of seq; it
// stops (returns a shorter slice) as soon as any consecutive pair is not
// adjacent.
func (g *Graph) EdgesAlong(seq []*topo.Node) []*topo.Link {
	var out []*topo.Link
	for i := 0; i+1 < len(seq); i++ {
		e := g.GetEdge(seq[i], seq[i+1])
		if e == nil {
			break
		}
		out = append(out, e)
	}
	return out
}

// Vertices returns every known vertex; the result is cached until the
// next mutation.
func (g *Graph) Vertices() []*topo.Node {
	if g.verticesValid {
		return g.verticesCache
	}
	vs := make([]*topo.Node, 0, len(g.adj))
	for v := range g.adj {
		vs = append(vs, v)
	}
	g.verticesCache = vs
	g.verticesValid = true
	return vs
}

// Edges returns the distinct set of edges in the graph (each edge once,
// not once per endpoint); the result is cached until the next mutation.
func (g *Graph) Edges() []*topo.Link {
	if g.edgesValid {
		return g.edgesCache
	}
	seen := make(map[*topo.Link]bool)
	var es []*topo.Link
	for _, nbs := range g.adj {
		for _, nb := range nbs {
			if !seen[nb.Link] {
				seen[nb.Link] = true
				es = append(es, nb.Link)
			}
		}
	}
	g.edgesCache = es
	g.edgesValid = true
	return es
}

// Clear removes every vertex and edge.
func (g *Graph) Clear() {
	g.adj = make(map[*topo.Node][]Neighbor)
	g.invalidate()
}

func (g *Graph) VertexCount() int { return len(g.adj) }
