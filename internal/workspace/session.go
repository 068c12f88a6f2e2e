package workspace

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/storymap/internal/graph"
	"github.com/roach88/storymap/internal/layout"
	"github.com/roach88/storymap/internal/persist"
	"github.com/roach88/storymap/internal/record"
	"github.com/roach88/storymap/internal/resolver"
	"github.com/roach88/storymap/internal/session"
	"github.com/roach88/storymap/internal/specstore"
	"github.com/roach88/storymap/internal/viewstate"
)

// Config wires a session's collaborators. Zero-value fields get
// production defaults.
type Config struct {
	Workspace string
	Store     specstore.Store
	KV        viewstate.KV
	Scheduler persist.Scheduler
	Policy    layout.Policy
	Resolver  resolver.Options
	Tokens    TokenGenerator
	Logger    *slog.Logger
}

// Session is one user's editing session over a workspace.
type Session struct {
	id        string
	workspace string
	policy    layout.Policy
	resolve   resolver.Options
	logger    *slog.Logger

	store  specstore.Store
	loader *record.Loader
	views  *viewstate.Store
	sched  persist.Scheduler

	g          *graph.Graph
	controller *session.Controller
	sync       *persist.Synchronizer
	orphans    map[graph.NodeType][]string
	loadNotes  []string
	extent     graph.Size
}

// New creates a session. Call Load before reading the snapshot.
func New(cfg Config) *Session {
	if cfg.Store == nil {
		cfg.Store = specstore.NewFileStore()
	}
	if cfg.KV == nil {
		cfg.KV = viewstate.NewMemKV()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = persist.NewTimerScheduler()
	}
	if cfg.Policy == "" {
		cfg.Policy = layout.PolicyLayered
	}
	if cfg.Tokens == nil {
		cfg.Tokens = UUIDv7Generator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Session{
		id:        cfg.Tokens.Generate(),
		workspace: cfg.Workspace,
		policy:    cfg.Policy,
		resolve:   cfg.Resolver,
		logger:    cfg.Logger,
		store:     cfg.Store,
		loader:    record.NewLoader(cfg.Store, cfg.Logger),
		views:     viewstate.NewStore(cfg.KV, cfg.Workspace),
		sched:     cfg.Scheduler,
	}
}

// ID returns the session token.
func (s *Session) ID() string { return s.id }

// Graph exposes the current graph. Callers mutate it only through the
// session's own methods or the controller.
func (s *Session) Graph() *graph.Graph { return s.g }

// Controller exposes the gesture controller for the current load.
func (s *Session) Controller() *session.Controller { return s.controller }

// Orphans returns the per-layer orphan sets from the last load.
func (s *Session) Orphans() map[graph.NodeType][]string { return s.orphans }

// Load builds a fresh snapshot from the workspace: records in, edges
// resolved, layout computed, saved positions merged on top. Any previous
// graph, selection, and unsynced markers are discarded.
func (s *Session) Load(ctx context.Context) error {
	set, err := s.loader.Load(ctx, s.workspace)
	if err != nil {
		return fmt.Errorf("loading records: %w", err)
	}

	vs, err := s.views.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading view state: %w", err)
	}
	applyNarrativeOrder(set, vs.NarrativeOrder)

	g := graph.New()
	for _, rec := range set.All() {
		n := graph.Node{
			ID:     rec.NodeID,
			Type:   rec.NodeType(),
			Name:   rec.DisplayName,
			Status: rec.Status,
			Source: graph.SourceRef{Path: rec.Source.Path, Filename: rec.Source.Filename},
		}
		if err := g.AddNode(n); err != nil {
			return fmt.Errorf("adding node %s: %w", rec.NodeID, err)
		}
	}

	res := resolver.Resolve(set, s.resolve)
	var notes []string
	for _, n := range res.Notices {
		notes = append(notes, fmt.Sprintf("%s: %s (%s)", n.Code, n.Message, n.ChildID))
	}
	for _, e := range res.Edges {
		if _, err := g.AddEdge(e); err != nil {
			// A malformed workspace can yield an unresolvable edge; keep
			// loading, report it.
			s.logger.Warn("dropping edge", "edge", e.ID, "error", err)
			notes = append(notes, fmt.Sprintf("dropped edge %s: %v", e.ID, err))
		}
	}

	lay, err := layout.Compute(g, s.policy)
	if err != nil {
		return err
	}
	for id, p := range lay.Positions {
		if saved, ok := vs.Positions[id]; ok {
			p = saved
		}
		if err := g.MoveNode(id, p); err != nil {
			return err
		}
	}

	s.g = g
	s.orphans = res.Orphans
	s.loadNotes = notes
	s.extent = lay.Extent
	s.sync = persist.NewSynchronizer(ctx, g, s.store, s.views, s.sched, s.logger)
	s.controller = session.New(g, s.sync)
	return nil
}

// Reload is Load with explicit intent: the current graph is discarded
// and writes still in flight land against the old graph only.
func (s *Session) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

// applyNarrativeOrder reorders storyboards to the saved order. Unknown
// ids are ignored; storyboards not in the saved order keep file order
// after the ordered ones.
func applyNarrativeOrder(set *record.Set, order []string) {
	if len(order) == 0 {
		return
	}
	byID := map[string]record.Record{}
	for _, r := range set.Storyboards {
		byID[r.NodeID] = r
	}
	var sorted []record.Record
	seen := map[string]bool{}
	for _, id := range order {
		if r, ok := byID[id]; ok && !seen[id] {
			sorted = append(sorted, r)
			seen[id] = true
		}
	}
	for _, r := range set.Storyboards {
		if !seen[r.NodeID] {
			sorted = append(sorted, r)
		}
	}
	set.Storyboards = sorted
}

// MoveNode moves a node and queues its debounced position write.
func (s *Session) MoveNode(id string, p graph.Point) error {
	if err := s.g.MoveNode(id, p); err != nil {
		return err
	}
	s.sync.NodeMoved(id, p)
	return nil
}

// Connect adds an edge from child to parent and persists the child's
// reference field immediately. The child must have a backing record:
// the reference lives in the child's file, so a sourceless child could
// never persist the edge.
func (s *Session) Connect(childID, parentID string) (graph.Edge, error) {
	if err := s.requireBacked(childID); err != nil {
		return graph.Edge{}, err
	}
	e, err := s.g.AddEdge(graph.Edge{From: childID, To: parentID})
	if err != nil {
		return graph.Edge{}, err
	}
	s.sync.EdgeCreated(e)
	s.promote(childID)
	return e, nil
}

// Disconnect removes an edge and clears the child's reference field.
func (s *Session) Disconnect(edgeID string) error {
	e, ok := s.g.Edge(edgeID)
	if !ok {
		return fmt.Errorf("edge %q not found", edgeID)
	}
	if e.Kind != graph.StoryboardFlow {
		if err := s.requireBacked(e.From); err != nil {
			return err
		}
	}
	if err := s.g.RemoveEdge(edgeID); err != nil {
		return err
	}
	s.sync.EdgeRemoved(e)
	return nil
}

// DeleteNode removes a node, cascading its edges, and deletes the
// backing document.
func (s *Session) DeleteNode(id string) error {
	n, ok := s.g.Node(id)
	if !ok {
		return fmt.Errorf("node %q not found", id)
	}
	if n.Source.IsZero() {
		return graph.NewReadOnly(id)
	}
	if err := s.g.RemoveNode(id, true); err != nil {
		return err
	}
	s.sync.NodeDeleted(n)
	return nil
}

// requireBacked rejects structural mutations on nodes that have no
// backing record.
func (s *Session) requireBacked(nodeID string) error {
	n, ok := s.g.Node(nodeID)
	if !ok {
		return fmt.Errorf("node %q not found", nodeID)
	}
	if n.Source.IsZero() {
		return graph.NewReadOnly(nodeID)
	}
	return nil
}

// promote drops the node from its layer's orphan set after it gains a
// parent, and repositions only its subtree.
func (s *Session) promote(nodeID string) {
	n, ok := s.g.Node(nodeID)
	if !ok {
		return
	}
	set := s.orphans[n.Type]
	found := false
	for i, id := range set {
		if id == nodeID {
			s.orphans[n.Type] = append(set[:i], set[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return
	}
	res, err := layout.ReflowSubtree(s.g, s.policy, nodeID)
	if err != nil {
		s.logger.Warn("reflow failed", "node", nodeID, "error", err)
		return
	}
	for id, p := range res.Positions {
		if err := s.g.MoveNode(id, p); err == nil {
			s.sync.NodeMoved(id, p)
		}
	}
}
