package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/grafo/pkg/types"
)

func TestAddNodeAndEdge(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddNode(1, []string{"person"}, map[string]any{"name": "a"})
	g.AddNode(2, []string{"person"}, map[string]any{"name": "b"})
	g.AddEdge(10, 1, 2, "KNOWS", map[string]any{"since": 2020})

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())

	n, ok := g.Node(1)
	require.True(t, ok)
	assert.Equal(t, "a", n.Props["name"])

	e, ok := g.Edge(10)
	require.True(t, ok)
	assert.Equal(t, "KNOWS", e.Type)
	assert.Equal(t, int64(1), e.Start)
	assert.Equal(t, int64(2), e.End)
}

func TestAddEdgeCreatesPlaceholderEndpoints(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge(5, 100, 200, "LINKS", nil)

	require.True(t, g.HasNode(100))
	require.True(t, g.HasNode(200))

	placeholder, _ := g.Node(100)
	assert.Nil(t, placeholder.Labels)
	assert.Nil(t, placeholder.Props)

	// A later AddNode fills the placeholder in.
	g.AddNode(100, []string{"city"}, map[string]any{"name": "Roma"})
	filled, _ := g.Node(100)
	assert.Equal(t, []string{"city"}, filled.Labels)
	assert.Equal(t, 2, g.NodeCount())
}

func TestParallelEdgesKeptApart(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge(1, 10, 20, "TREATS", nil)
	g.AddEdge(2, 10, 20, "TREATS", nil)

	assert.Equal(t, 2, g.EdgeCount())
	assert.Len(t, g.EdgesBetween(10, 20), 2)
	assert.Equal(t, []int64{20}, g.Neighbors(10))
}

func TestAddEdgeSameIDReplacesAttributes(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge(7, 1, 2, "KNOWS", map[string]any{"weight": 1})
	g.AddEdge(7, 1, 2, "KNOWS", map[string]any{"weight": 2})

	assert.Equal(t, 1, g.EdgeCount())
	e, _ := g.Edge(7)
	assert.Equal(t, 2, e.Props["weight"])
	assert.Len(t, g.OutEdges(1), 1)
}

func TestInOutEdges(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge(1, 10, 20, "A", nil)
	g.AddEdge(2, 20, 10, "B", nil)
	g.AddEdge(3, 10, 30, "C", nil)

	out := g.OutEdges(10)
	require.Len(t, out, 2)
	assert.Equal(t, int64(1), out[0].ID)
	assert.Equal(t, int64(3), out[1].ID)

	in := g.InEdges(10)
	require.Len(t, in, 1)
	assert.Equal(t, "B", in[0].Type)
}

func TestFromRecords(t *testing.T) {
	t.Parallel()

	records := []*types.Record{
		{
			Keys: []string{"n", "r", "m"},
			Values: []any{
				types.Node{ID: 1, Labels: []string{"patient"}, Props: map[string]any{"name": "Jack"}},
				types.Relationship{ID: 100, StartID: 2, EndID: 1, Type: "TREATS"},
				types.Node{ID: 2, Labels: []string{"doctor"}, Props: map[string]any{"name": "Hermione"}},
			},
		},
	}

	g, err := FromRecords(records)
	require.NoError(t, err)

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())

	doctor, ok := g.Node(2)
	require.True(t, ok)
	assert.Equal(t, []string{"doctor"}, doctor.Labels)

	edges := g.EdgesBetween(2, 1)
	require.Len(t, edges, 1)
	assert.Equal(t, "TREATS", edges[0].Type)
}

func TestFromRecordsPath(t *testing.T) {
	t.Parallel()

	path := types.Path{
		Nodes: []types.Node{
			{ID: 1, Labels: []string{"a"}},
			{ID: 2, Labels: []string{"b"}},
			{ID: 3, Labels: []string{"c"}},
		},
		Relationships: []types.Relationship{
			{ID: 10, StartID: 1, EndID: 2, Type: "NEXT"},
			{ID: 11, StartID: 2, EndID: 3, Type: "NEXT"},
		},
	}
	records := []*types.Record{{Keys: []string{"p"}, Values: []any{path}}}

	g, err := FromRecords(records)
	require.NoError(t, err)
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, []int64{2}, g.Neighbors(1))
}

func TestFromRecordsRejectsScalars(t *testing.T) {
	t.Parallel()

	records := []*types.Record{
		{Keys: []string{"n", "count"}, Values: []any{types.Node{ID: 1}, int64(5)}},
	}

	_, err := FromRecords(records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count")
}

func TestFromRecordsRejectsNull(t *testing.T) {
	t.Parallel()

	records := []*types.Record{
		{Keys: []string{"n"}, Values: []any{nil}},
	}

	_, err := FromRecords(records)
	require.Error(t, err)
}

func TestFromRecordsEmptyInput(t *testing.T) {
	t.Parallel()

	g, err := FromRecords(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
}
