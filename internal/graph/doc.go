// Package graph holds the canonical in-memory node/edge model for a
// workspace and its mutation API.
//
// ARCHITECTURE:
//
// Single-Owner Mutation:
// A Graph belongs to exactly one workspace session and is mutated from one
// goroutine. All structural checks happen at the mutation boundary, so the
// model is never observable in a partially-mutated state:
//   - No edge may reference a missing node.
//   - At most one edge exists per (from, to) pair.
//   - Self-loops are rejected.
//   - An edge's kind is always derivable from its endpoint node types.
//
// Every mutation either commits fully or returns a *MutationError carrying
// a machine-readable code. Callers (the interaction controller) translate
// those into transient user notices rather than unwinding.
//
// Edge direction is layer-oriented: edges point from a child layer to its
// parent layer (Capability -> Storyboard, Enabler -> Capability), so upward
// traversal always yields the owning context.
//
// Orphan nodes (no parent edge) are legal and are never dropped; the
// resolver and layout packages treat them as a first-class set.
package graph
