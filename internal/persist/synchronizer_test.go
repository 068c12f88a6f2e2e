package persist

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storymap/internal/graph"
	"github.com/roach88/storymap/internal/specstore"
)

type fakePositions struct {
	writes []string
	last   map[string]graph.Point
	err    error
}

func newFakePositions() *fakePositions {
	return &fakePositions{last: map[string]graph.Point{}}
}

func (f *fakePositions) WritePosition(_ context.Context, id string, p graph.Point) error {
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, id)
	f.last[id] = p
	return nil
}

type fakeStore struct {
	updates []string // "file field=value"
	deletes []string
	err     error
}

func (f *fakeStore) ListRecords(context.Context, string, specstore.RecordType) ([]specstore.Record, error) {
	return nil, nil
}

func (f *fakeStore) UpdateField(_ context.Context, h specstore.Handle, field, value string) error {
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, fmt.Sprintf("%s %s=%s", h.Filename, field, value))
	return nil
}

func (f *fakeStore) DeleteRecord(_ context.Context, h specstore.Handle) error {
	if f.err != nil {
		return f.err
	}
	f.deletes = append(f.deletes, h.Filename)
	return nil
}

func (f *fakeStore) CreateRecord(context.Context, string, specstore.RecordType, string) (specstore.Handle, error) {
	return specstore.Handle{}, nil
}

func syncFixture(t *testing.T) (*graph.Graph, *fakeStore, *fakePositions, *ManualScheduler, *Synchronizer) {
	t.Helper()
	g := graph.New()
	for _, n := range []graph.Node{
		{ID: "STORY-001", Type: graph.Storyboard,
			Source: graph.SourceRef{Path: "/ws/conception/STORY-001.md", Filename: "STORY-001.md"}},
		{ID: "CAP-001", Type: graph.Capability,
			Source: graph.SourceRef{Path: "/ws/definition/CAP-001.md", Filename: "CAP-001.md"}},
		{ID: "CAP-002", Type: graph.Capability,
			Source: graph.SourceRef{Path: "/ws/definition/CAP-002.md", Filename: "CAP-002.md"}},
		{ID: "ENB-001", Type: graph.Enabler,
			Source: graph.SourceRef{Path: "/ws/definition/ENB-001.md", Filename: "ENB-001.md"}},
	} {
		require.NoError(t, g.AddNode(n))
	}
	store := &fakeStore{}
	pos := newFakePositions()
	sched := NewManualScheduler()
	s := NewSynchronizer(context.Background(), g, store, pos, sched, nil)
	return g, store, pos, sched, s
}

func TestDebouncedMovesCollapseToOneWrite(t *testing.T) {
	g, _, pos, sched, s := syncFixture(t)

	var final graph.Point
	for i := 0; i < 20; i++ {
		p := graph.Point{X: float64(i * 10), Y: float64(i * 5)}
		require.NoError(t, g.MoveNode("CAP-001", p))
		s.NodeMoved("CAP-001", p)
		final = p
	}

	assert.Empty(t, pos.writes, "nothing may be written before the quiet period")
	assert.Equal(t, 1, sched.Pending())

	sched.FireAll()
	require.Equal(t, []string{"CAP-001"}, pos.writes)
	assert.Equal(t, final, pos.last["CAP-001"])
}

func TestDebounceIsPerNode(t *testing.T) {
	g, _, pos, sched, s := syncFixture(t)

	require.NoError(t, g.MoveNode("CAP-001", graph.Point{X: 1}))
	s.NodeMoved("CAP-001", graph.Point{X: 1})
	require.NoError(t, g.MoveNode("CAP-002", graph.Point{X: 2}))
	s.NodeMoved("CAP-002", graph.Point{X: 2})

	assert.Equal(t, 2, sched.Pending())
	sched.FireAll()
	assert.ElementsMatch(t, []string{"CAP-001", "CAP-002"}, pos.writes)
}

func TestEdgeCreatedWritesChildFieldOnly(t *testing.T) {
	g, store, _, _, s := syncFixture(t)

	e, err := g.AddEdge(graph.Edge{From: "CAP-001", To: "STORY-001"})
	require.NoError(t, err)
	s.EdgeCreated(e)

	require.Equal(t, []string{"CAP-001.md Storyboard Reference=STORY-001"}, store.updates)
}

func TestEdgeCreatedWithSourcelessChildRaisesNotice(t *testing.T) {
	g, store, _, _, s := syncFixture(t)
	require.NoError(t, g.AddNode(graph.Node{ID: "ENB-DRAFT", Type: graph.Enabler}))

	e, err := g.AddEdge(graph.Edge{From: "ENB-DRAFT", To: "CAP-001"})
	require.NoError(t, err)
	s.EdgeCreated(e)

	assert.Empty(t, store.updates)
	notices := s.TakeNotices()
	require.Len(t, notices, 1)
	assert.True(t, graph.IsReadOnly(notices[0].Err))
	got, _ := g.Edge(e.ID)
	assert.True(t, got.Unsynced)
}

func TestEdgeRemovedClearsChildField(t *testing.T) {
	g, store, _, _, s := syncFixture(t)

	e, err := g.AddEdge(graph.Edge{From: "ENB-001", To: "CAP-001"})
	require.NoError(t, err)
	require.NoError(t, g.RemoveEdge(e.ID))
	s.EdgeRemoved(e)

	require.Equal(t, []string{"ENB-001.md Capability ID="}, store.updates)
}

func TestEdgeRewiredParentEnd(t *testing.T) {
	g, store, _, _, s := syncFixture(t)

	old, err := g.AddEdge(graph.Edge{From: "ENB-001", To: "CAP-001"})
	require.NoError(t, err)
	rebound, err := g.RebindEdgeEndpoint(old.ID, graph.EndpointTo, "CAP-002")
	require.NoError(t, err)
	s.EdgeRewired(old, rebound)

	// Same child, so one targeted rewrite.
	require.Equal(t, []string{"ENB-001.md Capability ID=CAP-002"}, store.updates)
}

func TestNodeDeletedRemovesDocument(t *testing.T) {
	g, store, _, _, s := syncFixture(t)

	n, _ := g.Node("ENB-001")
	require.NoError(t, g.RemoveNode("ENB-001", true))
	s.NodeDeleted(n)

	assert.Equal(t, []string{"ENB-001.md"}, store.deletes)
}

func TestWriteFailureMarksUnsyncedAndKeepsMutation(t *testing.T) {
	g, store, _, _, s := syncFixture(t)
	store.err = errors.New("disk full")

	e, err := g.AddEdge(graph.Edge{From: "CAP-001", To: "STORY-001"})
	require.NoError(t, err)
	s.EdgeCreated(e)

	// The in-memory edge survives, flagged unsynced.
	got, ok := g.Edge(e.ID)
	require.True(t, ok)
	assert.True(t, got.Unsynced)

	notices := s.TakeNotices()
	require.Len(t, notices, 1)
	assert.ErrorIs(t, notices[0].Err, store.err)
	assert.Empty(t, s.TakeNotices())
}

func TestUnsyncedClearsOnNextSuccess(t *testing.T) {
	g, store, _, _, s := syncFixture(t)
	store.err = errors.New("transient")

	e, err := g.AddEdge(graph.Edge{From: "CAP-001", To: "STORY-001"})
	require.NoError(t, err)
	s.EdgeCreated(e)
	got, _ := g.Edge(e.ID)
	require.True(t, got.Unsynced)

	store.err = nil
	s.EdgeCreated(e)
	got, _ = g.Edge(e.ID)
	assert.False(t, got.Unsynced)
}

func TestPositionWriteFailure(t *testing.T) {
	g, _, pos, sched, s := syncFixture(t)
	pos.err = errors.New("db locked")

	require.NoError(t, g.MoveNode("CAP-001", graph.Point{X: 7}))
	s.NodeMoved("CAP-001", graph.Point{X: 7})
	sched.FireAll()

	n, _ := g.Node("CAP-001")
	assert.True(t, n.Unsynced)
	assert.Equal(t, graph.Point{X: 7}, n.Position)
	require.Len(t, s.TakeNotices(), 1)
}

func TestFlowEdgesAreNotWrittenToRecords(t *testing.T) {
	g, store, _, _, s := syncFixture(t)

	require.NoError(t, g.AddNode(graph.Node{ID: "STORY-002", Type: graph.Storyboard}))
	e, err := g.AddEdge(graph.Edge{From: "STORY-001", To: "STORY-002"})
	require.NoError(t, err)
	s.EdgeCreated(e)

	assert.Empty(t, store.updates)
}
