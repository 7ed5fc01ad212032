package graph_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/graph"
)

func TestAddVertex(t *testing.T) {
	g := graph.New[string, int]()
	g.AddVertex("a")
	g.AddVertex("a")
	g.AddVertices("b", "a", "c")

	assert.Equal(t, []string{"a", "b", "c"}, g.Vertices())
	assert.Equal(t, 3, g.Len())
	assert.True(t, g.HasVertex("b"))
	assert.False(t, g.HasVertex("z"))
}

func TestAddEdge_UnknownVertex(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		role     string
		missing  string
	}{
		{name: "missing from", from: "x", to: "a", role: "from", missing: "x"},
		{name: "missing to", from: "a", to: "x", role: "to", missing: "x"},
		{name: "both missing", from: "x", to: "y", role: "from", missing: "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New[string, int]()
			g.AddVertex("a")

			err := g.AddEdge(tt.from, tt.to, 1)
			require.Error(t, err)
			assert.True(t, errors.Is(err, graph.ErrVertexNotFound))

			var vErr *graph.VertexNotFoundError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.missing, vErr.Vertex)
			assert.Equal(t, tt.role, vErr.Role)

			assert.Empty(t, g.Edges())
			assert.Empty(t, g.EdgesBetween(tt.from, tt.to))
			assert.Empty(t, g.OutgoingNeighbors("a"))
			assert.Empty(t, g.IncomingNeighbors("a"))
		})
	}
}

func TestAddEdges_NoPartialMutation(t *testing.T) {
	g := graph.New[string, int]()
	g.AddVertices("a", "b")
	require.NoError(t, g.AddEdges("a", "b", 1, 2))

	err := g.AddEdges("a", "missing", 3, 4)
	require.ErrorIs(t, err, graph.ErrVertexNotFound)
	assert.Equal(t, []int{1, 2}, g.Edges())
	assert.Equal(t, []string{"b"}, g.OutgoingNeighbors("a"))
}

func TestEdgesBetween_Multiplicity(t *testing.T) {
	g := graph.New[string, string]()
	g.AddVertices("a", "b")
	require.NoError(t, g.AddEdge("a", "b", "e1"))
	require.NoError(t, g.AddEdge("a", "b", "e2"))

	assert.Equal(t, []string{"e1", "e2"}, g.EdgesBetween("a", "b"))
	assert.ElementsMatch(t, []string{"e1", "e2"}, g.Edges())
	assert.NotNil(t, g.EdgesBetween("b", "a"))
	assert.Empty(t, g.EdgesBetween("b", "a"))
}

func TestEdgesBetween_ReturnsCopy(t *testing.T) {
	g := graph.New[string, string]()
	g.AddVertices("a", "b")
	require.NoError(t, g.AddEdges("a", "b", "e1", "e2"))

	edges := g.EdgesBetween("a", "b")
	edges[0] = "mutated"
	assert.Equal(t, []string{"e1", "e2"}, g.EdgesBetween("a", "b"))
}

func TestAddEdge_Idempotent(t *testing.T) {
	g := graph.New[string, string]()
	g.AddVertices("a", "b")
	g.AddVertex("a")
	require.NoError(t, g.AddEdge("a", "b", "e"))
	require.NoError(t, g.AddEdge("a", "b", "e"))

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"e", "e"}, g.EdgesBetween("a", "b"))
	assert.Equal(t, []string{"e"}, g.Edges())
	assert.Equal(t, []string{"b"}, g.OutgoingNeighbors("a"))
}

func TestNeighbors(t *testing.T) {
	g := graph.New[string, int]()
	g.AddVertices("a", "b", "c", "d")
	require.NoError(t, g.AddEdges("a", "c", 1, 2))
	require.NoError(t, g.AddEdge("a", "b", 3))
	require.NoError(t, g.AddEdge("d", "c", 4))
	require.NoError(t, g.AddEdge("c", "c", 5))

	assert.Equal(t, []string{"c", "b"}, g.OutgoingNeighbors("a"))
	assert.Equal(t, []string{"a", "c", "d"}, g.IncomingNeighbors("c"))
	assert.Equal(t, []string{"c"}, g.OutgoingNeighbors("c"))
	assert.Empty(t, g.OutgoingNeighbors("b"))
	assert.Empty(t, g.IncomingNeighbors("a"))
	assert.Empty(t, g.OutgoingNeighbors("unknown"))
}

func TestEdges_ConsistentWithAdjacency(t *testing.T) {
	g := graph.New[int, string]()
	g.AddVertices(1, 2, 3)
	require.NoError(t, g.AddEdges(1, 2, "x", "y"))
	require.NoError(t, g.AddEdge(2, 3, "z"))
	require.NoError(t, g.AddEdge(3, 1, "w"))

	var fromAdjacency []string
	for _, u := range g.Vertices() {
		for _, v := range g.OutgoingNeighbors(u) {
			fromAdjacency = append(fromAdjacency, g.EdgesBetween(u, v)...)
		}
	}
	assert.ElementsMatch(t, g.Edges(), fromAdjacency)
}
