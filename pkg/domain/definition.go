package domain

// Definition is the immutable result of compiling one activity-diagram
// document. It is produced once by the parser and thereafter read-only, so
// any number of goroutines may share it without synchronization.
type Definition struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Nodes       []Node       `json:"nodes" yaml:"nodes"`
	Transitions []Transition `json:"transitions" yaml:"transitions"`
	StartPoints []StartPoint `json:"start_points,omitempty" yaml:"start_points,omitempty"`

	// Skinparams and RawStyles are side-channel data lifted from skinparam
	// statements and <style> blocks. They are not part of the graph contract
	// and exist only for forward compatibility with styling-aware consumers.
	Skinparams map[string]string `json:"skinparams,omitempty" yaml:"skinparams,omitempty"`
	RawStyles  []string          `json:"raw_styles,omitempty" yaml:"raw_styles,omitempty"`
}

// NodeByID returns the node with the given id, or nil.
func (d *Definition) NodeByID(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

// NodeByLabel returns the first node with the given label, or nil.
func (d *Definition) NodeByLabel(label string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].Label == label {
			return &d.Nodes[i]
		}
	}
	return nil
}

// TransitionsFrom returns all transitions leaving the given node,
// in document order.
func (d *Definition) TransitionsFrom(nodeID string) []Transition {
	var out []Transition
	for _, t := range d.Transitions {
		if t.FromNodeID == nodeID {
			out = append(out, t)
		}
	}
	return out
}

// Validate checks referential integrity: every transition endpoint and every
// start point must name an existing node. A violation indicates a parser
// defect, not a recoverable runtime condition.
func (d *Definition) Validate() error {
	ids := make(map[string]struct{}, len(d.Nodes))
	for _, n := range d.Nodes {
		ids[n.ID] = struct{}{}
	}
	for _, t := range d.Transitions {
		if _, ok := ids[t.FromNodeID]; !ok {
			return &DanglingReferenceError{TransitionID: t.ID, NodeID: t.FromNodeID}
		}
		if _, ok := ids[t.ToNodeID]; !ok {
			return &DanglingReferenceError{TransitionID: t.ID, NodeID: t.ToNodeID}
		}
	}
	for _, sp := range d.StartPoints {
		if _, ok := ids[sp.NodeID]; !ok {
			return &DanglingReferenceError{NodeID: sp.NodeID}
		}
	}
	return nil
}
