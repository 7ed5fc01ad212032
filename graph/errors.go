package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the graph package.
var (
	// ErrVertexNotFound is returned when an edge references a vertex that was
	// never added to the graph.
	ErrVertexNotFound = errors.New("graph: vertex not found")

	// ErrCycle is returned by a sort without a CycleBreaker when the graph
	// is not acyclic.
	ErrCycle = errors.New("graph: cycle detected")

	// ErrCycleBreakFailed is returned when a CycleBreaker was supplied but
	// refused every edge group that still blocks the remaining vertices.
	ErrCycleBreakFailed = errors.New("graph: unable to break cycle")
)

// VertexNotFoundError reports the missing endpoint of an edge.
type VertexNotFoundError struct {
	Vertex any    // The missing vertex.
	Role   string // "from" or "to".
}

// Error returns the error string.
func (e *VertexNotFoundError) Error() string {
	return fmt.Sprintf("graph: %s vertex %v not found", e.Role, e.Vertex)
}

// Is reports whether the target error matches VertexNotFoundError.
// This allows errors.Is(err, ErrVertexNotFound) to return true.
func (e *VertexNotFoundError) Is(err error) bool {
	return err == ErrVertexNotFound
}

// CycleError is returned when the vertices left after sorting form at least
// one cycle that could not be resolved. It unwraps to ErrCycle or
// ErrCycleBreakFailed.
type CycleError struct {
	// Vertices holds the unsorted vertices in insertion order.
	Vertices []any
	err      error
}

// Error returns the error string.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %d vertices remain unsorted %v", e.err, len(e.Vertices), e.Vertices)
}

// Unwrap returns the sentinel error describing the failure.
func (e *CycleError) Unwrap() error {
	return e.err
}
