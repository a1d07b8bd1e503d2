package domain

import (
	"errors"
	"fmt"
)

// ErrNoNodes is returned when a document compiles to zero nodes.
var ErrNoNodes = errors.New("definition has no nodes")

// ErrInstanceNotFound is returned when an instance ID cannot be found in the store.
var ErrInstanceNotFound = errors.New("instance not found")

// ErrDefinitionNotFound is returned when a definition ID cannot be found in the store.
var ErrDefinitionNotFound = errors.New("definition not found")

// DanglingReferenceError reports a transition or start point naming a node
// that does not exist in the definition.
type DanglingReferenceError struct {
	TransitionID string
	NodeID       string
}

func (e *DanglingReferenceError) Error() string {
	if e.TransitionID != "" {
		return fmt.Sprintf("transition %s references unknown node %q", e.TransitionID, e.NodeID)
	}
	return fmt.Sprintf("start point references unknown node %q", e.NodeID)
}
