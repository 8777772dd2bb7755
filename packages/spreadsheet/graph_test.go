package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraph(vertices []string, edges ...Edge) *DependencyGraph {
	dg := NewDependencyGraph()
	for _, v := range vertices {
		dg.GetOrCreateNode(v)
	}
	for _, e := range edges {
		dg.AddEdge(e.From, e.To)
	}
	return dg
}

func TestDependencyGraphEdges(t *testing.T) {
	dg := newGraph([]string{"R1C1", "R1C2", "R2C1"})

	assert.True(t, dg.AddEdge("R1C1", "R1C2"))
	assert.False(t, dg.AddEdge("R1C1", "R1C2"), "duplicate edge")
	assert.False(t, dg.AddEdge("R1C1", "R9C9"), "missing vertex")
	assert.True(t, dg.AddEdge("R1C1", "R2C1"))
	assert.True(t, dg.AddEdge("R1C2", "R2C1"))

	assert.Equal(t, 3, dg.NodeCount())
	assert.Equal(t, 3, dg.EdgeCount())
	assert.Equal(t, []string{"R1C2", "R2C1"}, dg.GetDirectDependents("R1C1"))
	assert.Equal(t, []string{"R1C1", "R1C2"}, dg.GetDirectPrecedents("R2C1"))
	assert.Nil(t, dg.GetDirectDependents("R9C9"))

	node, ok := dg.GetNode("R2C1")
	require.True(t, ok)
	assert.Equal(t, 2, node.Indegree)

	assert.Equal(t, []Edge{
		{From: "R1C1", To: "R1C2"},
		{From: "R1C1", To: "R2C1"},
		{From: "R1C2", To: "R2C1"},
	}, dg.Edges())
	assert.Equal(t, "R1C1->R1C2 R1C1->R2C1 R1C2->R2C1", dg.String())
}

func TestCalculationOrder(t *testing.T) {
	// R3C1 <- R2C1 <- R1C1, inserted out of order
	dg := newGraph([]string{"R3C1", "R2C1", "R1C1", "R5C5"},
		Edge{From: "R1C1", To: "R2C1"},
		Edge{From: "R2C1", To: "R3C1"},
	)

	order, err := dg.CalculationOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"R1C1", "R5C5", "R2C1", "R3C1"}, order)
	assert.False(t, dg.HasCycle())

	node, _ := dg.GetNode("R3C1")
	assert.Equal(t, 1, node.Indegree, "ordering leaves indegrees alone")
}

func TestCalculationOrderDiamond(t *testing.T) {
	dg := newGraph([]string{"R1C1", "R1C2", "R1C3", "R1C4"},
		Edge{From: "R1C1", To: "R1C2"},
		Edge{From: "R1C1", To: "R1C3"},
		Edge{From: "R1C2", To: "R1C4"},
		Edge{From: "R1C3", To: "R1C4"},
	)

	order, err := dg.CalculationOrder()
	require.NoError(t, err)
	require.Len(t, order, 4)

	position := make(map[string]int, len(order))
	for i, ref := range order {
		position[ref] = i
	}
	for _, e := range dg.Edges() {
		assert.Less(t, position[e.From], position[e.To], "%s before %s", e.From, e.To)
	}
}

func TestCalculationOrderCycle(t *testing.T) {
	dg := newGraph([]string{"R1C1", "R1C2", "R1C3", "R9C9"},
		Edge{From: "R1C1", To: "R1C2"},
		Edge{From: "R1C2", To: "R1C3"},
		Edge{From: "R1C3", To: "R1C1"},
	)

	order, err := dg.CalculationOrder()
	require.Error(t, err)
	assert.Equal(t, ErrorCodeCycle, CodeOf(err))
	assert.Equal(t, "Circular dependency between cells R1C1, R1C2, R1C3", err.Error())
	assert.Equal(t, []string{"R9C9"}, order)
	assert.True(t, dg.HasCycle())
}

func TestCalculationOrderSelfLoop(t *testing.T) {
	dg := newGraph([]string{"R1C1"}, Edge{From: "R1C1", To: "R1C1"})
	assert.Equal(t, 1, dg.EdgeCount())
	assert.True(t, dg.HasCycle())
}

func TestDependencyGraphClear(t *testing.T) {
	dg := newGraph([]string{"R1C1", "R1C2"}, Edge{From: "R1C1", To: "R1C2"})
	dg.Clear()
	assert.Equal(t, 0, dg.NodeCount())
	assert.Equal(t, 0, dg.EdgeCount())
	assert.Empty(t, dg.Vertices())
	assert.Empty(t, dg.Edges())
}

func TestSortCellRefs(t *testing.T) {
	refs := []string{"R10C1", "R2C3", "bogus", "R2C1", "R1C20"}
	assert.Equal(t, []string{"R1C20", "R2C1", "R2C3", "R10C1", "bogus"}, SortCellRefs(refs))
}
