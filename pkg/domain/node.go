package domain

// Node represents one activity in the compiled graph.
// Nodes are created during parsing and never mutated afterwards.
type Node struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`

	// JSONMetadata holds the verbatim JSON object embedded in the node's
	// note, if the note carried one (the part before the '|' separator).
	JSONMetadata string `json:"json_metadata,omitempty" yaml:"json_metadata,omitempty"`

	// NoteMarkdown holds the human-readable note text attached to the node.
	NoteMarkdown string `json:"note_markdown,omitempty" yaml:"note_markdown,omitempty"`
}

// Transition defines a directed edge between two nodes.
// An empty Condition means the edge is always eligible.
type Transition struct {
	ID         string `json:"id" yaml:"id"`
	FromNodeID string `json:"from_node_id" yaml:"from"`
	ToNodeID   string `json:"to_node_id" yaml:"to"`
	Condition  string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// StartPoint marks the entry node of a definition.
type StartPoint struct {
	NodeID string `json:"node_id" yaml:"node_id"`
}
