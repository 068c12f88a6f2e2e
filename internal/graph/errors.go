package graph

import (
	"errors"
	"fmt"
)

// MutationError represents a rejected graph mutation.
//
// Mutations are validated before any state changes, so a MutationError
// always means the graph is exactly as it was before the call. The Code
// identifies the violated invariant; NodeID/EdgeID identify the offending
// element where applicable.
type MutationError struct {
	// Code identifies the error category.
	Code MutationErrorCode

	// Message is a human-readable description.
	Message string

	// NodeID identifies the affected node, if any.
	NodeID string

	// EdgeID identifies the affected edge, if any.
	EdgeID string
}

// MutationErrorCode categorizes mutation errors.
type MutationErrorCode string

const (
	// ErrCodeDuplicateID indicates a node id is already present.
	ErrCodeDuplicateID MutationErrorCode = "DUPLICATE_ID"

	// ErrCodeNotFound indicates the referenced node or edge does not exist.
	ErrCodeNotFound MutationErrorCode = "NOT_FOUND"

	// ErrCodeHasEdges indicates a node removal without cascade while edges
	// still reference the node.
	ErrCodeHasEdges MutationErrorCode = "HAS_EDGES"

	// ErrCodeDanglingReference indicates an edge endpoint names a missing node.
	ErrCodeDanglingReference MutationErrorCode = "DANGLING_REFERENCE"

	// ErrCodeDuplicateEdge indicates the (from, to) pair is already connected.
	ErrCodeDuplicateEdge MutationErrorCode = "DUPLICATE_EDGE"

	// ErrCodeSelfLoop indicates an edge with identical endpoints.
	ErrCodeSelfLoop MutationErrorCode = "SELF_LOOP"

	// ErrCodeKindMismatch indicates no edge kind exists for the endpoint
	// node type pair.
	ErrCodeKindMismatch MutationErrorCode = "KIND_MISMATCH"

	// ErrCodeReadOnly indicates a structural mutation on a node with no
	// backing source record.
	ErrCodeReadOnly MutationErrorCode = "READ_ONLY"
)

// Error implements the error interface.
func (e *MutationError) Error() string {
	switch {
	case e.EdgeID != "" && e.NodeID != "":
		return fmt.Sprintf("%s: %s (edge=%s, node=%s)", e.Code, e.Message, e.EdgeID, e.NodeID)
	case e.EdgeID != "":
		return fmt.Sprintf("%s: %s (edge=%s)", e.Code, e.Message, e.EdgeID)
	case e.NodeID != "":
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.NodeID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the mutation error code from err, or "" if err is not a
// MutationError. Uses errors.As to handle wrapped errors.
func CodeOf(err error) MutationErrorCode {
	var me *MutationError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

// IsNotFound returns true if err is a NOT_FOUND mutation error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsDuplicateEdge returns true if err is a DUPLICATE_EDGE mutation error.
func IsDuplicateEdge(err error) bool { return CodeOf(err) == ErrCodeDuplicateEdge }

// IsSelfLoop returns true if err is a SELF_LOOP mutation error.
func IsSelfLoop(err error) bool { return CodeOf(err) == ErrCodeSelfLoop }

// IsReadOnly returns true if err is a READ_ONLY mutation error.
func IsReadOnly(err error) bool { return CodeOf(err) == ErrCodeReadOnly }

// NewReadOnly reports a structural mutation on a node with no backing
// source record. Raised by callers that persist mutations; the graph
// itself does not know which nodes are backed.
func NewReadOnly(id string) *MutationError {
	return &MutationError{Code: ErrCodeReadOnly, Message: "node has no backing record", NodeID: id}
}

func newDuplicateID(id string) *MutationError {
	return &MutationError{Code: ErrCodeDuplicateID, Message: "node id already exists", NodeID: id}
}

func newNodeNotFound(id string) *MutationError {
	return &MutationError{Code: ErrCodeNotFound, Message: "node does not exist", NodeID: id}
}

func newEdgeNotFound(id string) *MutationError {
	return &MutationError{Code: ErrCodeNotFound, Message: "edge does not exist", EdgeID: id}
}

func newHasEdges(id string, count int) *MutationError {
	return &MutationError{
		Code:    ErrCodeHasEdges,
		Message: fmt.Sprintf("%d edge(s) still reference node; pass cascade to remove them", count),
		NodeID:  id,
	}
}

func newDanglingReference(edgeID, nodeID string) *MutationError {
	return &MutationError{
		Code:    ErrCodeDanglingReference,
		Message: "edge endpoint references missing node",
		EdgeID:  edgeID,
		NodeID:  nodeID,
	}
}

func newDuplicateEdge(id string) *MutationError {
	return &MutationError{Code: ErrCodeDuplicateEdge, Message: "pair is already connected", EdgeID: id}
}

func newSelfLoop(nodeID string) *MutationError {
	return &MutationError{Code: ErrCodeSelfLoop, Message: "edge endpoints are the same node", NodeID: nodeID}
}

func newKindMismatch(from, to NodeType) *MutationError {
	return &MutationError{
		Code:    ErrCodeKindMismatch,
		Message: fmt.Sprintf("no edge kind connects %s to %s", from, to),
	}
}
