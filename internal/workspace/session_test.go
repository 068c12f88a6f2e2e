package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storymap/internal/graph"
	"github.com/roach88/storymap/internal/layout"
	"github.com/roach88/storymap/internal/persist"
	"github.com/roach88/storymap/internal/viewstate"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// seedWorkspace writes the Login/Checkout scenario to disk.
func seedWorkspace(t *testing.T) string {
	t.Helper()
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, "conception"), "STORY-001-login.md",
		"# Login\n\n## Metadata\n\n- **ID**: STORY-001\n- **Status**: Approved\n")
	writeFile(t, filepath.Join(ws, "conception"), "STORY-002-checkout.md",
		"# Checkout\n\n## Metadata\n\n- **ID**: STORY-002\n")
	writeFile(t, filepath.Join(ws, "definition"), "CAP-001-cart-pricing.md",
		"# Cart Pricing\n\n## Metadata\n\n- **ID**: CAP-001\n- **Storyboard Reference**: Checkout\n")
	writeFile(t, filepath.Join(ws, "definition"), "ENB-001-tax-calc.md",
		"# Tax Calc\n\n## Metadata\n\n- **ID**: ENB-001\n- **Capability ID**: CAP-001\n")
	return ws
}

func newTestSession(t *testing.T, ws string) (*Session, *persist.ManualScheduler, *viewstate.MemKV) {
	t.Helper()
	sched := persist.NewManualScheduler()
	kv := viewstate.NewMemKV()
	s := New(Config{
		Workspace: ws,
		KV:        kv,
		Scheduler: sched,
		Tokens:    NewFixedGenerator("session-001"),
	})
	require.NoError(t, s.Load(context.Background()))
	return s, sched, kv
}

func TestLoadBuildsFullSnapshot(t *testing.T) {
	s, _, _ := newTestSession(t, seedWorkspace(t))

	snap := s.Snapshot()
	assert.Equal(t, "session-001", snap.SessionID)
	require.Len(t, snap.Nodes, 4)
	require.Len(t, snap.Edges, 3)

	ids := map[string]bool{}
	for _, e := range snap.Edges {
		ids[e.ID] = true
	}
	assert.True(t, ids["STORY-001->STORY-002"])
	assert.True(t, ids["CAP-001->STORY-002"])
	assert.True(t, ids["ENB-001->CAP-001"])

	// Layered scenario: capability centered under Checkout, enabler under
	// the capability.
	pos := map[string]graph.Node{}
	for _, n := range snap.Nodes {
		pos[n.ID] = n
	}
	assert.Equal(t, pos["STORY-002"].Position.X, pos["CAP-001"].Position.X)
	assert.Equal(t, pos["CAP-001"].Position.X, pos["ENB-001"].Position.X)
	assert.Empty(t, snap.Orphans)
}

func TestSavedPositionsOverrideLayout(t *testing.T) {
	ws := seedWorkspace(t)
	kv := viewstate.NewMemKV()
	views := viewstate.NewStore(kv, ws)
	require.NoError(t, views.WritePosition(context.Background(), "CAP-001", graph.Point{X: 999, Y: 888}))

	s := New(Config{Workspace: ws, KV: kv, Scheduler: persist.NewManualScheduler()})
	require.NoError(t, s.Load(context.Background()))

	n, ok := s.Graph().Node("CAP-001")
	require.True(t, ok)
	assert.Equal(t, graph.Point{X: 999, Y: 888}, n.Position)
}

func TestMoveNodePersistsDebounced(t *testing.T) {
	ws := seedWorkspace(t)
	s, sched, kv := newTestSession(t, ws)

	for i := 1; i <= 20; i++ {
		require.NoError(t, s.MoveNode("CAP-001", graph.Point{X: float64(i), Y: 0}))
	}
	sched.FireAll()

	vs, err := viewstate.NewStore(kv, ws).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, graph.Point{X: 20, Y: 0}, vs.Positions["CAP-001"])
}

func TestConnectWritesChildReference(t *testing.T) {
	ws := seedWorkspace(t)
	writeFile(t, filepath.Join(ws, "definition"), "ENB-002-orphan.md",
		"# Rounding\n\n## Metadata\n\n- **ID**: ENB-002\n")
	s, _, _ := newTestSession(t, ws)

	require.Equal(t, []string{"ENB-002"}, s.Orphans()[graph.Enabler])

	_, err := s.Connect("ENB-002", "CAP-001")
	require.NoError(t, err)
	assert.Empty(t, s.Orphans()[graph.Enabler])

	raw, err := os.ReadFile(filepath.Join(ws, "definition", "ENB-002-orphan.md"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "- **Capability ID**: CAP-001")
}

func TestConnectRejectionLeavesFilesAlone(t *testing.T) {
	ws := seedWorkspace(t)
	s, _, _ := newTestSession(t, ws)
	before, err := os.ReadFile(filepath.Join(ws, "definition", "ENB-001-tax-calc.md"))
	require.NoError(t, err)

	_, err = s.Connect("ENB-001", "CAP-001")
	require.Error(t, err)
	assert.True(t, graph.IsDuplicateEdge(err))

	after, err := os.ReadFile(filepath.Join(ws, "definition", "ENB-001-tax-calc.md"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDisconnectClearsChildReference(t *testing.T) {
	ws := seedWorkspace(t)
	s, _, _ := newTestSession(t, ws)

	require.NoError(t, s.Disconnect("ENB-001->CAP-001"))

	raw, err := os.ReadFile(filepath.Join(ws, "definition", "ENB-001-tax-calc.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Capability ID")
	_, exists := s.Graph().Edge("ENB-001->CAP-001")
	assert.False(t, exists)
}

func TestDeleteNodeCascadesAndRemovesFile(t *testing.T) {
	ws := seedWorkspace(t)
	s, _, _ := newTestSession(t, ws)

	require.NoError(t, s.DeleteNode("ENB-001"))

	_, err := os.Stat(filepath.Join(ws, "definition", "ENB-001-tax-calc.md"))
	assert.True(t, os.IsNotExist(err))
	_, exists := s.Graph().Node("ENB-001")
	assert.False(t, exists)
	_, exists = s.Graph().Edge("ENB-001->CAP-001")
	assert.False(t, exists)
}

func TestReloadDiscardsSelectionAndMarkers(t *testing.T) {
	ws := seedWorkspace(t)
	s, _, _ := newTestSession(t, ws)

	s.Controller().PointerDownNode("CAP-001", 0, 0)
	require.NoError(t, s.Reload(context.Background()))

	snap := s.Snapshot()
	assert.Empty(t, snap.Selection.NodeID)
	assert.Nil(t, snap.Pending)
	for _, n := range snap.Nodes {
		assert.False(t, n.Unsynced)
	}
}

func TestNarrativeOrderFromViewState(t *testing.T) {
	ws := seedWorkspace(t)
	kv := viewstate.NewMemKV()
	views := viewstate.NewStore(kv, ws)
	vs := viewstate.NewViewState()
	vs.NarrativeOrder = []string{"STORY-002", "STORY-001"}
	require.NoError(t, views.Save(context.Background(), vs))

	s := New(Config{Workspace: ws, KV: kv, Scheduler: persist.NewManualScheduler()})
	require.NoError(t, s.Load(context.Background()))

	// Reversed order flips the flow edge.
	_, exists := s.Graph().Edge("STORY-002->STORY-001")
	assert.True(t, exists)

	a, _ := s.Graph().Node("STORY-002")
	b, _ := s.Graph().Node("STORY-001")
	assert.Less(t, a.Position.X, b.Position.X)
}

func TestMasonryPolicySession(t *testing.T) {
	ws := seedWorkspace(t)
	s := New(Config{
		Workspace: ws,
		KV:        viewstate.NewMemKV(),
		Scheduler: persist.NewManualScheduler(),
		Policy:    layout.PolicyMasonry,
	})
	require.NoError(t, s.Load(context.Background()))

	cap1, _ := s.Graph().Node("CAP-001")
	enb1, _ := s.Graph().Node("ENB-001")
	assert.Equal(t, cap1.Position.X, enb1.Position.X)
	assert.Greater(t, enb1.Position.Y, cap1.Position.Y)
}

func TestSourcelessNodesAreReadOnly(t *testing.T) {
	s, _, _ := newTestSession(t, seedWorkspace(t))
	require.NoError(t, s.Graph().AddNode(graph.Node{ID: "ENB-DRAFT", Type: graph.Enabler}))

	_, err := s.Connect("ENB-DRAFT", "CAP-001")
	require.Error(t, err)
	assert.True(t, graph.IsReadOnly(err))
	_, exists := s.Graph().Edge("ENB-DRAFT->CAP-001")
	assert.False(t, exists)

	err = s.DeleteNode("ENB-DRAFT")
	require.Error(t, err)
	assert.True(t, graph.IsReadOnly(err))
	_, exists = s.Graph().Node("ENB-DRAFT")
	assert.True(t, exists)

	_, err = s.Graph().AddEdge(graph.Edge{From: "ENB-DRAFT", To: "CAP-001"})
	require.NoError(t, err)
	err = s.Disconnect("ENB-DRAFT->CAP-001")
	require.Error(t, err)
	assert.True(t, graph.IsReadOnly(err))
	_, exists = s.Graph().Edge("ENB-DRAFT->CAP-001")
	assert.True(t, exists)
}

func TestGestureEndToEnd(t *testing.T) {
	ws := seedWorkspace(t)
	s, sched, kv := newTestSession(t, ws)

	c := s.Controller()
	n, _ := s.Graph().Node("CAP-001")
	c.PointerDownNode("CAP-001", n.Position.X, n.Position.Y)
	c.PointerMove(n.Position.X+50, n.Position.Y+30)
	c.PointerUp()
	sched.FireAll()

	vs, err := viewstate.NewStore(kv, ws).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, graph.Point{X: n.Position.X + 50, Y: n.Position.Y + 30}, vs.Positions["CAP-001"])
}
