package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storymap/internal/graph"
)

// applyPositions writes a layout result back into the graph, the way a
// session does after a full pass.
func applyPositions(t *testing.T, g *graph.Graph, res Result) {
	t.Helper()
	for id, p := range res.Positions {
		require.NoError(t, g.MoveNode(id, p))
	}
}

func TestReflowSubtreeMovesOnlyPromotedNodes(t *testing.T) {
	g := basicGraph(t)
	addNode(t, g, "ENB-999", graph.Enabler)
	applyPositions(t, g, Layered(g))

	before := map[string]graph.Point{}
	for _, n := range g.Nodes() {
		before[n.ID] = n.Position
	}

	// Promote the orphan under CAP-001.
	addEdge(t, g, "ENB-999", "CAP-001")
	res, err := ReflowSubtree(g, PolicyLayered, "ENB-999")
	require.NoError(t, err)

	assert.Len(t, res.Positions, 1)
	_, moved := res.Positions["ENB-999"]
	assert.True(t, moved)
	for id, p := range before {
		if id == "ENB-999" {
			continue
		}
		_, touched := res.Positions[id]
		assert.False(t, touched, "%s should not move", id)
		n, _ := g.Node(id)
		assert.Equal(t, p, n.Position)
	}
}

func TestReflowLayeredSlotsAfterSiblings(t *testing.T) {
	g := basicGraph(t)
	addNode(t, g, "ENB-999", graph.Enabler)
	applyPositions(t, g, Layered(g))
	addEdge(t, g, "ENB-999", "CAP-001")

	res, err := ReflowSubtree(g, PolicyLayered, "ENB-999")
	require.NoError(t, err)

	sibling, _ := g.Node("ENB-001")
	promoted := res.Positions["ENB-999"]
	assert.Equal(t, sibling.Position.Y, promoted.Y)
	assert.Greater(t, promoted.X, sibling.Position.X)
}

func TestReflowMasonryHangsBeneathParentStack(t *testing.T) {
	g := basicGraph(t)
	addNode(t, g, "ENB-999", graph.Enabler)
	applyPositions(t, g, Masonry(g))
	addEdge(t, g, "ENB-999", "CAP-001")

	res, err := ReflowSubtree(g, PolicyMasonry, "ENB-999")
	require.NoError(t, err)

	parent, _ := g.Node("CAP-001")
	sibling, _ := g.Node("ENB-001")
	promoted := res.Positions["ENB-999"]
	assert.Equal(t, parent.Position.X, promoted.X)
	assert.Greater(t, promoted.Y, sibling.Position.Y)
}

func TestReflowSubtreeCarriesDescendants(t *testing.T) {
	g := basicGraph(t)
	addNode(t, g, "ENB-999", graph.Enabler)
	addNode(t, g, "TEST-001", graph.TestScenario)
	addEdge(t, g, "TEST-001", "ENB-999")
	applyPositions(t, g, Layered(g))
	addEdge(t, g, "ENB-999", "CAP-001")

	res, err := ReflowSubtree(g, PolicyLayered, "ENB-999")
	require.NoError(t, err)

	require.Len(t, res.Positions, 2)
	enb := res.Positions["ENB-999"]
	ts := res.Positions["TEST-001"]
	assert.Equal(t, enb.X, ts.X)
	assert.Greater(t, ts.Y, enb.Y)
}

func TestReflowErrors(t *testing.T) {
	g := basicGraph(t)

	_, err := ReflowSubtree(g, PolicyLayered, "missing")
	require.Error(t, err)

	// A node with no parent cannot be reflowed.
	addNode(t, g, "ENB-999", graph.Enabler)
	_, err = ReflowSubtree(g, PolicyLayered, "ENB-999")
	require.Error(t, err)
}
