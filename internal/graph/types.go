package graph

import "fmt"

// NodeType identifies the hierarchical layer a node belongs to.
type NodeType string

const (
	Storyboard   NodeType = "storyboard"
	Capability   NodeType = "capability"
	Enabler      NodeType = "enabler"
	TestScenario NodeType = "test-scenario"
)

// ValidNodeTypes defines the closed set of node types.
var ValidNodeTypes = map[NodeType]bool{
	Storyboard:   true,
	Capability:   true,
	Enabler:      true,
	TestScenario: true,
}

// EdgeKind identifies the typed relationship an edge represents.
//
// Kinds are never stored independently of endpoint types: DeriveKind is the
// single source of truth, so kind and endpoints cannot drift apart.
type EdgeKind string

const (
	// StoryboardFlow links consecutive storyboards in narrative order.
	StoryboardFlow EdgeKind = "storyboard-flow"

	// StoryboardToCapability links a capability to its owning storyboard.
	StoryboardToCapability EdgeKind = "storyboard-capability"

	// CapabilityToEnabler links an enabler to its owning capability.
	CapabilityToEnabler EdgeKind = "capability-enabler"

	// EnablerToTestScenario links a test scenario to its owning enabler.
	EnablerToTestScenario EdgeKind = "enabler-test-scenario"
)

// DeriveKind returns the edge kind for a (from, to) node type pair.
//
// Direction is child -> parent except for the storyboard flow, which runs
// between siblings in the top layer.
func DeriveKind(from, to NodeType) (EdgeKind, error) {
	switch {
	case from == Storyboard && to == Storyboard:
		return StoryboardFlow, nil
	case from == Capability && to == Storyboard:
		return StoryboardToCapability, nil
	case from == Enabler && to == Capability:
		return CapabilityToEnabler, nil
	case from == TestScenario && to == Enabler:
		return EnablerToTestScenario, nil
	}
	return "", newKindMismatch(from, to)
}

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a fixed card extent. Sizes are per node type and never user-resized.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SourceRef is the opaque handle back to the originating specification file.
// A node with a zero SourceRef is a read-only projection: it cannot be
// deleted or structurally rewired.
type SourceRef struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// IsZero reports whether the ref points at nothing.
func (r SourceRef) IsZero() bool { return r.Path == "" && r.Filename == "" }

// Node is a positioned, typed graph entity wrapping one specification record.
type Node struct {
	ID       string    `json:"id"`
	Type     NodeType  `json:"type"`
	Name     string    `json:"name"`
	Status   string    `json:"status"` // display-only lifecycle label
	Position Point     `json:"position"`
	Size     Size      `json:"size"`
	Source   SourceRef `json:"source,omitempty"`

	// Unsynced marks a node whose last backing write failed. Cleared on the
	// next successful write or on reload.
	Unsynced bool `json:"unsynced,omitempty"`
}

// Edge is a directed, typed relationship between two nodes.
type Edge struct {
	ID   string   `json:"id"`
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`

	// LowConfidence marks an edge produced by the resolver's round-robin
	// fallback rather than an identifier match.
	LowConfidence bool `json:"low_confidence,omitempty"`

	// Unsynced marks an edge whose last backing write failed.
	Unsynced bool `json:"unsynced,omitempty"`
}

// EdgeID derives the canonical edge id for a (from, to) pair. Deriving the
// id from the pair makes a duplicate edge structurally impossible: the
// second insert collides on id.
func EdgeID(from, to string) string {
	return fmt.Sprintf("%s->%s", from, to)
}
