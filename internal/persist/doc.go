// Package persist pushes accepted graph mutations back to their backing
// stores.
//
// # ARCHITECTURE
//
// Two write paths with different urgency:
//
// Position changes are cheap and bursty, so they are debounced through a
// Scheduler port keyed by node id. Every move resets the node's timer;
// exactly one write lands after the user pauses. The real scheduler uses
// time.AfterFunc; tests use the ManualScheduler and fire timers by hand.
//
// Structural changes (edge add, remove, rebind, node delete) write
// immediately. An edge write touches only the child record's reference
// field; the parent document is never rewritten.
//
// Failures never roll back the in-memory graph. The element is marked
// unsynced, a notice is recorded, and the marker clears on the next
// successful write or on reload. There is no retry queue: last committed
// write wins.
package persist
