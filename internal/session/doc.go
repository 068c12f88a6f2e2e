// Package session drives drag and connect gestures against the graph.
//
// # ARCHITECTURE
//
// A Controller is a small state machine: Idle, Selecting, and three
// gesture states (DraggingNode, DraggingEndpoint, DrawingEdge). Pointer
// events carry only primitives, ids and coordinates, so the controller
// can sit behind any front end.
//
// The controller is the only code path that mutates the graph during a
// gesture. Every rejected mutation surfaces as a transient notice and
// the graph is left exactly as it was; endpoint drags track a floating
// preview point and touch nothing until the pointer is released over a
// valid target. Committed changes are reported to a Sink so the
// persistence layer can schedule writes.
//
// Selection is exclusive: selecting a node clears any selected edge and
// vice versa; clicking the background clears both.
package session
