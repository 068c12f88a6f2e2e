package persist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/storymap/internal/graph"
	"github.com/roach88/storymap/internal/specstore"
)

// DefaultDebounce is the quiet period after the last node move before
// positions are written.
const DefaultDebounce = 500 * time.Millisecond

// PositionWriter persists node positions into the view state.
type PositionWriter interface {
	WritePosition(ctx context.Context, nodeID string, p graph.Point) error
}

// Notice is a persistence failure surfaced to the user.
type Notice struct {
	Message string
	Err     error
}

// Synchronizer routes accepted graph mutations to their stores. It
// implements the session Sink. All entry points serialize on an internal
// mutex; in-flight writes are never cancelled by a reload, the last
// committed write wins.
type Synchronizer struct {
	mu        sync.Mutex
	ctx       context.Context
	g         *graph.Graph
	store     specstore.Store
	positions PositionWriter
	sched     Scheduler
	debounce  time.Duration
	logger    *slog.Logger
	notices   []Notice
}

// NewSynchronizer wires a synchronizer to a graph and its stores. The
// context bounds every write issued for this session.
func NewSynchronizer(ctx context.Context, g *graph.Graph, store specstore.Store, positions PositionWriter, sched Scheduler, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		ctx:       ctx,
		g:         g,
		store:     store,
		positions: positions,
		sched:     sched,
		debounce:  DefaultDebounce,
		logger:    logger,
	}
}

// SetDebounce overrides the quiet period. Zero is legal and means the
// scheduler fires as soon as it chooses to.
func (s *Synchronizer) SetDebounce(d time.Duration) { s.debounce = d }

// TakeNotices drains accumulated failure notices.
func (s *Synchronizer) TakeNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

func (s *Synchronizer) fail(msg string, err error, elementID string) {
	s.logger.Warn("write failed", "element", elementID, "error", err)
	s.g.MarkUnsynced(elementID, true)
	s.notices = append(s.notices, Notice{Message: msg, Err: err})
}

// NodeMoved schedules a debounced position write. Repeated moves of the
// same node re-arm its timer, so a burst collapses into one write.
func (s *Synchronizer) NodeMoved(nodeID string, p graph.Point) {
	s.sched.Schedule(nodeID, s.debounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// Write the position current at fire time, not at schedule time.
		n, ok := s.g.Node(nodeID)
		if !ok {
			return
		}
		if err := s.positions.WritePosition(s.ctx, nodeID, n.Position); err != nil {
			s.fail(fmt.Sprintf("saving position of %s", nodeID), err, nodeID)
			return
		}
		s.g.MarkUnsynced(nodeID, false)
	})
}

// EdgeCreated writes the new parent into the child record's reference
// field.
func (s *Synchronizer) EdgeCreated(e graph.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeReference(e, e.To)
}

// EdgeRemoved clears the child record's reference field.
func (s *Synchronizer) EdgeRemoved(e graph.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeReference(e, "")
}

// EdgeRewired updates the affected child records. Rebinding the child
// end moves the reference from the old child's document to the new one;
// rebinding the parent end rewrites the same child's field.
func (s *Synchronizer) EdgeRewired(old, rebound graph.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old.From != rebound.From {
		s.writeReference(old, "")
	}
	s.writeReference(rebound, rebound.To)
}

// NodeDeleted removes the node's backing document. Called after a
// cascade removal commits.
func (s *Synchronizer) NodeDeleted(n graph.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.Cancel(n.ID)
	if n.Source.IsZero() {
		return
	}
	h := specstore.Handle{Path: n.Source.Path, Filename: n.Source.Filename}
	if err := s.store.DeleteRecord(s.ctx, h); err != nil {
		s.logger.Warn("delete failed", "file", h.Filename, "error", err)
		s.notices = append(s.notices, Notice{
			Message: fmt.Sprintf("deleting %s", h.Filename),
			Err:     err,
		})
	}
}

// writeReference rewrites one child record's reference field. The parent
// document is never touched. Caller holds the lock.
func (s *Synchronizer) writeReference(e graph.Edge, parentID string) {
	field, ok := referenceField(e.Kind)
	if !ok {
		// Flow edges carry narrative order, which lives in view state.
		return
	}
	child, ok := s.g.Node(e.From)
	if !ok {
		return
	}
	if child.Source.IsZero() {
		// Nowhere to write the reference; the edge can never sync.
		s.fail(fmt.Sprintf("%s has no backing record", e.From), graph.NewReadOnly(e.From), e.ID)
		return
	}
	h := specstore.Handle{Path: child.Source.Path, Filename: child.Source.Filename}
	if err := s.store.UpdateField(s.ctx, h, field, parentID); err != nil {
		s.fail(fmt.Sprintf("updating %s of %s", field, h.Filename), err, e.ID)
		return
	}
	s.g.MarkUnsynced(e.ID, false)
}

// referenceField maps an edge kind to the child metadata field that
// records it.
func referenceField(kind graph.EdgeKind) (string, bool) {
	switch kind {
	case graph.StoryboardToCapability:
		return "Storyboard Reference", true
	case graph.CapabilityToEnabler:
		return "Capability ID", true
	case graph.EnablerToTestScenario:
		return "Enabler ID", true
	default:
		return "", false
	}
}
