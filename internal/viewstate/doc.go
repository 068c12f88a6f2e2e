// Package viewstate persists per-workspace presentation state: zoom,
// scroll, node position overrides, and storyboard narrative order.
//
// View state is owned by the workspace session, never ambient. The KV
// port keeps the core independent of storage; the production
// implementation is a small SQLite database (WAL, NORMAL sync, single
// writer), tests use the in-memory map.
//
// Saved positions are overrides: on load they are merged over the
// computed layout, so a card the user dragged stays where they put it.
package viewstate
