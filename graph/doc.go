// Package graph provides the directed multigraph used by strata to order
// schema objects that depend on each other.
//
// A Multigraph stores a set of vertices and, for every ordered pair of
// vertices, an ordered list of edge labels. Vertices and labels are opaque,
// caller-supplied values; the graph never interprets them. In strata the
// vertices are tables and the labels are the foreign keys connecting them,
// but any comparable types work.
//
// # Building
//
// Vertices are added first and edges may only connect existing vertices:
//
//	g := graph.New[string, string]()
//	g.AddVertices("users", "posts", "comments")
//	if err := g.AddEdge("users", "posts", "posts_author_id_fkey"); err != nil {
//	    return err // graph.ErrVertexNotFound
//	}
//
// The same ordered pair may carry several edges. They are kept in insertion
// order and returned together by EdgesBetween.
//
// # Ordering
//
// TopologicalSort runs Kahn's algorithm. The in-degree of a vertex is the
// number of distinct predecessors, so parallel edges between two vertices
// count as a single dependency.
//
// When the graph has a cycle, TopologicalSort fails with ErrCycle unless a
// CycleBreaker is supplied. The breaker is offered whole edge groups of the
// remaining cycle and decides which one may be ignored for ordering:
//
//	order, err := g.TopologicalSort(func(from, to string, edges []string) bool {
//	    return from == to // self references never block ordering
//	})
//	if errors.Is(err, graph.ErrCycleBreakFailed) {
//	    // the breaker refused every remaining edge group
//	}
//
// Results are deterministic: vertices, neighbors and cycle candidates are
// always visited in insertion order.
//
// # Concurrency
//
// A Multigraph is not safe for concurrent mutation. Build it from a single
// goroutine, then sort it; concurrent reads without writers are fine.
package graph
