package domain

// InstanceState is the mutable runtime state of one workflow execution.
// It lives outside the Definition, keyed by instance id, and is mutated
// only through the session manager.
type InstanceState struct {
	// CurrentNodeID is the node the instance currently occupies.
	CurrentNodeID string `json:"current_node_id"`

	// Variables holds the named string variables available to action
	// parameter templates.
	Variables map[string]string `json:"variables"`
}

// NewInstanceState creates a clean state positioned at the given node.
func NewInstanceState(startNodeID string) *InstanceState {
	return &InstanceState{
		CurrentNodeID: startNodeID,
		Variables:     make(map[string]string),
	}
}

// Clone returns a deep copy so callers can mutate freely.
func (s *InstanceState) Clone() *InstanceState {
	if s == nil {
		return nil
	}
	next := *s
	next.Variables = make(map[string]string, len(s.Variables))
	for k, v := range s.Variables {
		next.Variables[k] = v
	}
	return &next
}
