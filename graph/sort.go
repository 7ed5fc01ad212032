package graph

import "slices"

// CycleBreaker decides whether the edges from one vertex to another may be
// ignored when ordering. It receives every edge of the pair at once, so the
// decision applies to the relationship as a whole.
type CycleBreaker[V comparable, E comparable] func(from, to V, edges []E) bool

// TopologicalSort returns all vertices ordered so that for every edge u→v,
// u comes before v.
//
// If the graph contains a cycle and breaker is nil, a *CycleError wrapping
// ErrCycle is returned. Otherwise the breaker is consulted for the edge groups
// blocking the remaining vertices, and a *CycleError wrapping
// ErrCycleBreakFailed is returned once it refuses all of them.
func (g *Multigraph[V, E]) TopologicalSort(breaker CycleBreaker[V, E]) ([]V, error) {
	s := g.newSorter(breaker)
	for {
		for s.head < len(s.sorted) {
			s.release(s.sorted[s.head])
			s.head++
		}
		if len(s.sorted) == len(g.vertices) {
			return s.sorted, nil
		}
		if err := s.breakCycle(); err != nil {
			return nil, err
		}
	}
}

// BatchingTopologicalSort works like TopologicalSort but groups the result
// into batches. Vertices in a batch only depend on vertices of earlier
// batches, so the members of one batch may be processed in any order.
func (g *Multigraph[V, E]) BatchingTopologicalSort(breaker CycleBreaker[V, E]) ([][]V, error) {
	s := g.newSorter(breaker)
	var batches [][]V
	for {
		for s.head < len(s.sorted) {
			end := len(s.sorted)
			batches = append(batches, slices.Clone(s.sorted[s.head:end]))
			for ; s.head < end; s.head++ {
				s.release(s.sorted[s.head])
			}
		}
		if len(s.sorted) == len(g.vertices) {
			return batches, nil
		}
		if err := s.breakCycle(); err != nil {
			return nil, err
		}
	}
}

// sorter holds the working set of a single sort call.
type sorter[V comparable, E comparable] struct {
	g       *Multigraph[V, E]
	breaker CycleBreaker[V, E]
	// pending counts the distinct unsorted predecessors of every vertex.
	// A vertex is in sorted exactly when its count is zero.
	pending map[V]int
	broken  map[pair[V]]struct{}
	sorted  []V
	head    int
}

func (g *Multigraph[V, E]) newSorter(breaker CycleBreaker[V, E]) *sorter[V, E] {
	s := &sorter[V, E]{
		g:       g,
		breaker: breaker,
		pending: make(map[V]int, len(g.vertices)),
		broken:  make(map[pair[V]]struct{}),
		sorted:  make([]V, 0, len(g.vertices)),
	}
	for _, v := range g.vertices {
		for _, n := range g.succ[v] {
			s.pending[n]++
		}
	}
	for _, v := range g.vertices {
		if s.pending[v] == 0 {
			s.sorted = append(s.sorted, v)
		}
	}
	return s
}

// release marks v as satisfied for each of its successors.
func (s *sorter[V, E]) release(v V) {
	for _, n := range s.g.succ[v] {
		if _, ok := s.broken[pair[V]{v, n}]; ok {
			continue
		}
		if s.pending[n] == 0 {
			continue
		}
		s.pending[n]--
		if s.pending[n] == 0 {
			s.sorted = append(s.sorted, n)
		}
	}
}

// breakCycle asks the breaker for edge groups to ignore until one pending
// vertex becomes free. Accepted groups stay ignored for the rest of the sort.
func (s *sorter[V, E]) breakCycle() error {
	if s.breaker == nil {
		return s.cycleError(ErrCycle)
	}
	for _, c := range s.g.vertices {
		if s.pending[c] == 0 {
			continue
		}
		for _, p := range s.g.IncomingNeighbors(c) {
			if s.pending[p] == 0 {
				continue
			}
			key := pair[V]{p, c}
			if _, ok := s.broken[key]; ok {
				continue
			}
			if !s.breaker(p, c, s.g.EdgesBetween(p, c)) {
				continue
			}
			s.broken[key] = struct{}{}
			s.pending[c]--
			if s.pending[c] == 0 {
				s.sorted = append(s.sorted, c)
				return nil
			}
		}
	}
	return s.cycleError(ErrCycleBreakFailed)
}

func (s *sorter[V, E]) cycleError(err error) *CycleError {
	var rest []any
	for _, v := range s.g.vertices {
		if s.pending[v] > 0 {
			rest = append(rest, v)
		}
	}
	return &CycleError{Vertices: rest, err: err}
}
