package workspace

import (
	"github.com/roach88/storymap/internal/graph"
	"github.com/roach88/storymap/internal/layout"
	"github.com/roach88/storymap/internal/session"
)

// Selection is the controller's current selection.
type Selection struct {
	NodeID string `json:"node_id,omitempty"`
	EdgeID string `json:"edge_id,omitempty"`
}

// PendingDrag describes an in-flight gesture and its preview point.
type PendingDrag struct {
	State   session.State `json:"state"`
	Preview *graph.Point  `json:"preview,omitempty"`
}

// Snapshot is the read-only projection of a session for rendering or
// printing. Taking a snapshot drains the session's notices.
type Snapshot struct {
	SessionID string                      `json:"session_id"`
	Workspace string                      `json:"workspace"`
	Policy    layout.Policy               `json:"policy"`
	Extent    graph.Size                  `json:"extent"`
	Nodes     []graph.Node                `json:"nodes"`
	Edges     []graph.Edge                `json:"edges"`
	Orphans   map[graph.NodeType][]string `json:"orphans,omitempty"`
	Selection Selection                   `json:"selection"`
	Pending   *PendingDrag                `json:"pending_drag,omitempty"`
	Notices   []string                    `json:"notices,omitempty"`
}

// Snapshot projects the current session state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID: s.id,
		Workspace: s.workspace,
		Policy:    s.policy,
		Extent:    s.extent,
		Nodes:     s.g.Nodes(),
		Edges:     s.g.Edges(),
		Orphans:   s.orphans,
		Selection: Selection{
			NodeID: s.controller.SelectedNode(),
			EdgeID: s.controller.SelectedEdge(),
		},
	}

	if st := s.controller.State(); st == session.DraggingNode ||
		st == session.DraggingEndpoint || st == session.DrawingEdge {
		pd := &PendingDrag{State: st}
		if p, ok := s.controller.Preview(); ok {
			pd.Preview = &p
		}
		snap.Pending = pd
	}

	snap.Notices = append(snap.Notices, s.loadNotes...)
	s.loadNotes = nil
	for _, n := range s.controller.TakeNotices() {
		snap.Notices = append(snap.Notices, n.Message)
	}
	for _, n := range s.sync.TakeNotices() {
		snap.Notices = append(snap.Notices, n.Message)
	}
	return snap
}
