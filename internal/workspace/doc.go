// Package workspace assembles one editing session over a specification
// workspace directory.
//
// # ARCHITECTURE
//
// Session is the aggregate root: it loads records, resolves edges, runs
// layout, and owns the graph, the gesture controller, the persistence
// synchronizer, and the view state for that workspace. Load fully
// replaces the snapshot; saved view-state positions are merged over the
// computed layout so user-dragged cards stay put.
//
// Session is not safe for concurrent use. It models the single
// interactive surface of one user; everything funnels through one
// goroutine, the way the graph and controller require.
//
// Snapshot projects the whole session into a JSON-shaped value for a
// front end or the CLI: nodes, edges, orphans, selection, pending
// gesture, and drained notices.
package workspace
