package domain

// ChoiceOption is one selectable branch presented to the user.
type ChoiceOption struct {
	Index        int    `json:"index"`
	DisplayText  string `json:"display_text"`
	TargetNodeID string `json:"target_node_id"`
	Condition    string `json:"condition,omitempty"`
}

// StatePayload is the renderable representation of a current node. It is
// derived on every turn and never stored.
//
// IsChoice is true when the node fans out (or its single edge is guarded);
// the UI then renders Choices as selectable options. Otherwise Text carries
// the resolved display text for a single message.
type StatePayload struct {
	IsChoice  bool           `json:"is_choice"`
	Text      string         `json:"text,omitempty"`
	Choices   []ChoiceOption `json:"choices,omitempty"`
	NodeLabel string         `json:"node_label,omitempty"`
}
