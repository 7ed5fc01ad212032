package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/strata/graph"
)

// Breaker decides whether the foreign keys from a referenced table to a
// referencing table may be ignored to resolve a dependency cycle.
type Breaker func(from, to *Table, fks []*ForeignKey) bool

// BreakSelfReferences only breaks self-referencing foreign keys. A table can
// always be created with a reference to itself, and self references never
// constrain the order of tables.
func BreakSelfReferences(from, to *Table, _ []*ForeignKey) bool {
	return from == to
}

// BreakNullable breaks self references and foreign keys whose columns are
// all nullable. It is the policy for ordering row inserts: a row can be
// written with NULL references first and updated once the referenced row exists.
func BreakNullable(from, to *Table, fks []*ForeignKey) bool {
	if from == to {
		return true
	}
	for _, fk := range fks {
		if !fk.Nullable() {
			return false
		}
	}
	return true
}

// BreakAny breaks any foreign key. It is the policy for DDL on dialects
// that support adding constraints after table creation.
func BreakAny(*Table, *Table, []*ForeignKey) bool {
	return true
}

// SortOption configures SortTables and BatchTables.
type SortOption func(*sortConfig)

type sortConfig struct {
	breaker    Breaker
	onlyCycles bool
}

// WithBreaker sets the cycle breaking policy. Default is BreakSelfReferences.
func WithBreaker(b Breaker) SortOption {
	return func(c *sortConfig) {
		if b != nil {
			c.breaker = b
		}
	}
}

// OnlyCycles restricts the breaker to foreign keys that are part of a
// dependency cycle. Without it, a table that is merely blocked by a cycle
// may have its foreign keys deferred too.
func OnlyCycles() SortOption {
	return func(c *sortConfig) {
		c.onlyCycles = true
	}
}

// Order is the result of sorting tables by their foreign keys.
type Order struct {
	// Tables in creation order: referenced tables come before referencing ones.
	Tables []*Table
	// Deferred holds the foreign keys that were ignored to break cycles between
	// different tables. They must be created, or filled in, after all tables
	// in Tables. Self references are never deferred.
	Deferred []*ForeignKey
}

// SortTables orders tables so that every table comes after the tables it
// references. Foreign keys referencing tables outside the given list do not
// affect the order.
//
// Dependency cycles are resolved by the configured Breaker. If it refuses,
// the returned error wraps graph.ErrCycleBreakFailed.
func SortTables(tables []*Table, opts ...SortOption) (*Order, error) {
	g, err := dependencies(tables)
	if err != nil {
		return nil, err
	}
	order := &Order{}
	sorted, err := g.TopologicalSort(recordBreaks(g, opts, &order.Deferred))
	if err != nil {
		return nil, sortError("sort tables", err)
	}
	order.Tables = sorted
	return order, nil
}

// BatchTables groups tables into batches that only depend on tables of
// earlier batches. Tables of the same batch can be created concurrently.
func BatchTables(tables []*Table, opts ...SortOption) ([][]*Table, error) {
	g, err := dependencies(tables)
	if err != nil {
		return nil, err
	}
	var deferred []*ForeignKey
	batches, err := g.BatchingTopologicalSort(recordBreaks(g, opts, &deferred))
	if err != nil {
		return nil, sortError("batch tables", err)
	}
	return batches, nil
}

// ReverseOrder returns the tables of the order in drop order.
func (o *Order) ReverseOrder() []*Table {
	tables := slices.Clone(o.Tables)
	slices.Reverse(tables)
	return tables
}

// IsDeferred reports whether the foreign key was deferred.
func (o *Order) IsDeferred(fk *ForeignKey) bool {
	return slices.Contains(o.Deferred, fk)
}

// CycleError is returned when the foreign keys of the listed tables form a
// cycle the breaker refused to resolve.
type CycleError struct {
	Tables []string
	err    *graph.CycleError
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("schema: foreign keys between tables %s: %v", strings.Join(e.Tables, ", "), errors.Unwrap(e.err))
}

// Unwrap returns the underlying graph error.
func (e *CycleError) Unwrap() error { return e.err }

func sortError(op string, err error) error {
	var cerr *graph.CycleError
	if !errors.As(err, &cerr) {
		return fmt.Errorf("schema: %s: %w", op, err)
	}
	names := make([]string, len(cerr.Vertices))
	for i, v := range cerr.Vertices {
		names[i] = v.(*Table).Name
	}
	return &CycleError{Tables: names, err: cerr}
}

// dependencies builds the graph of tables where an edge goes from the
// referenced table to the referencing table, labeled with the foreign key.
func dependencies(tables []*Table) (*graph.Multigraph[*Table, *ForeignKey], error) {
	g := graph.New[*Table, *ForeignKey]()
	g.AddVertices(tables...)
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if fk.Table == nil {
				fk.Table = t
			}
			if fk.RefTable == nil || !g.HasVertex(fk.RefTable) {
				continue
			}
			if err := g.AddEdge(fk.RefTable, t, fk); err != nil {
				return nil, fmt.Errorf("schema: foreign key %q: %w", fk.Symbol, err)
			}
		}
	}
	return g, nil
}

// recordBreaks returns the cycle breaker for the options and collects the
// foreign keys it accepts between distinct tables.
func recordBreaks(g *graph.Multigraph[*Table, *ForeignKey], opts []SortOption, deferred *[]*ForeignKey) graph.CycleBreaker[*Table, *ForeignKey] {
	cfg := sortConfig{breaker: BreakSelfReferences}
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(from, to *Table, fks []*ForeignKey) bool {
		if cfg.onlyCycles && from != to && !reachable(g, to, from) {
			return false
		}
		if !cfg.breaker(from, to, fks) {
			return false
		}
		if from != to {
			*deferred = append(*deferred, fks...)
		}
		return true
	}
}

// reachable reports whether dst can be reached from src.
func reachable(g *graph.Multigraph[*Table, *ForeignKey], src, dst *Table) bool {
	seen := map[*Table]bool{src: true}
	queue := []*Table{src}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if t == dst {
			return true
		}
		for _, n := range g.OutgoingNeighbors(t) {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}
