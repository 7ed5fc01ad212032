package graph

import "slices"

// pair is an ordered (from, to) vertex pair used as the adjacency key.
type pair[V comparable] struct {
	from, to V
}

// Multigraph is a directed graph that allows more than one edge between
// the same ordered pair of vertices.
type Multigraph[V comparable, E comparable] struct {
	vertices []V
	index    map[V]int
	succ     map[V][]V       // distinct successors, insertion ordered.
	adj      map[pair[V]][]E // edge labels per ordered pair.
	edges    []E             // every label once, insertion ordered.
	edgeSet  map[E]struct{}
}

// New returns an empty multigraph.
func New[V comparable, E comparable]() *Multigraph[V, E] {
	return &Multigraph[V, E]{
		index:   make(map[V]int),
		succ:    make(map[V][]V),
		adj:     make(map[pair[V]][]E),
		edgeSet: make(map[E]struct{}),
	}
}

// AddVertex adds v to the graph. Adding an existing vertex is a no-op.
func (g *Multigraph[V, E]) AddVertex(v V) {
	if _, ok := g.index[v]; ok {
		return
	}
	g.index[v] = len(g.vertices)
	g.vertices = append(g.vertices, v)
}

// AddVertices adds every vertex in vs.
func (g *Multigraph[V, E]) AddVertices(vs ...V) {
	for _, v := range vs {
		g.AddVertex(v)
	}
}

// HasVertex reports whether v was added to the graph.
func (g *Multigraph[V, E]) HasVertex(v V) bool {
	_, ok := g.index[v]
	return ok
}

// Len returns the number of vertices.
func (g *Multigraph[V, E]) Len() int { return len(g.vertices) }

// AddEdge adds the edge e from one vertex to another. Both vertices must
// already be in the graph, otherwise a *VertexNotFoundError is returned and
// the graph is left unchanged.
func (g *Multigraph[V, E]) AddEdge(from, to V, e E) error {
	return g.AddEdges(from, to, e)
}

// AddEdges adds all edges in es from one vertex to another, preserving their
// order. Endpoints are checked before anything is recorded.
func (g *Multigraph[V, E]) AddEdges(from, to V, es ...E) error {
	if !g.HasVertex(from) {
		return &VertexNotFoundError{Vertex: from, Role: "from"}
	}
	if !g.HasVertex(to) {
		return &VertexNotFoundError{Vertex: to, Role: "to"}
	}
	if len(es) == 0 {
		return nil
	}
	key := pair[V]{from, to}
	if _, ok := g.adj[key]; !ok {
		g.succ[from] = append(g.succ[from], to)
	}
	g.adj[key] = append(g.adj[key], es...)
	for _, e := range es {
		if _, ok := g.edgeSet[e]; ok {
			continue
		}
		g.edgeSet[e] = struct{}{}
		g.edges = append(g.edges, e)
	}
	return nil
}

// EdgesBetween returns the edges going from one vertex to another in the
// order they were added. It returns an empty slice if there are none.
func (g *Multigraph[V, E]) EdgesBetween(from, to V) []E {
	edges, ok := g.adj[pair[V]{from, to}]
	if !ok {
		return []E{}
	}
	return slices.Clone(edges)
}

// OutgoingNeighbors returns the distinct vertices v has at least one edge to.
func (g *Multigraph[V, E]) OutgoingNeighbors(v V) []V {
	return slices.Clone(g.succ[v])
}

// IncomingNeighbors returns the distinct vertices that have at least one
// edge to v. The adjacency index is scanned on every call; there is no
// reverse index.
func (g *Multigraph[V, E]) IncomingNeighbors(v V) []V {
	var in []V
	for _, u := range g.vertices {
		if _, ok := g.adj[pair[V]{u, v}]; ok {
			in = append(in, u)
		}
	}
	return in
}

// Vertices returns a snapshot of all vertices in insertion order.
func (g *Multigraph[V, E]) Vertices() []V {
	return slices.Clone(g.vertices)
}

// Edges returns a snapshot of all distinct edge labels in insertion order.
func (g *Multigraph[V, E]) Edges() []E {
	return slices.Clone(g.edges)
}
