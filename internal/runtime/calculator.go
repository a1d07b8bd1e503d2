package runtime

import (
	"fmt"
	"strings"

	"github.com/actiflow/actiflow/pkg/domain"
)

// StartNode resolves the entry node of a definition: the first declared
// start point, else the first node.
//
// When that node has exactly one unconditioned outgoing transition and is
// either unlabeled or labeled "start", it is a structural marker rather
// than a visible prompt, so the calculator advances through it. The
// advance is single-hop: it never chains through multiple unlabeled nodes.
func StartNode(def *domain.Definition) (string, error) {
	if len(def.Nodes) == 0 {
		return "", domain.ErrNoNodes
	}

	startID := def.Nodes[0].ID
	if len(def.StartPoints) > 0 {
		startID = def.StartPoints[0].NodeID
	}

	node := def.NodeByID(startID)
	if node == nil {
		return "", fmt.Errorf("start node %q: not in definition", startID)
	}

	outgoing := def.TransitionsFrom(startID)
	if len(outgoing) == 1 && outgoing[0].Condition == "" && (node.Label == "" || strings.EqualFold(node.Label, "start")) {
		return outgoing[0].ToNodeID, nil
	}
	return startID, nil
}

// Payload computes the renderable state for a current node.
//
// A node is a choice iff it has more than one outgoing transition, or its
// single outgoing transition carries a condition — a guarded single path is
// presented as a one-item choice rather than silently auto-followed.
func Payload(def *domain.Definition, currentNodeID string) (*domain.StatePayload, error) {
	node := def.NodeByID(currentNodeID)
	if node == nil {
		return nil, fmt.Errorf("node %q: not in definition", currentNodeID)
	}

	outgoing := def.TransitionsFrom(currentNodeID)
	isChoice := len(outgoing) > 1 || (len(outgoing) == 1 && outgoing[0].Condition != "")

	payload := &domain.StatePayload{
		IsChoice:  isChoice,
		NodeLabel: node.Label,
	}

	if isChoice {
		payload.Choices = make([]domain.ChoiceOption, 0, len(outgoing))
		for i, t := range outgoing {
			display := t.ToNodeID
			if target := def.NodeByID(t.ToNodeID); target != nil && target.Label != "" {
				display = target.Label
			}
			payload.Choices = append(payload.Choices, domain.ChoiceOption{
				Index:        i,
				DisplayText:  display,
				TargetNodeID: t.ToNodeID,
				Condition:    t.Condition,
			})
		}
		return payload, nil
	}

	payload.Text = displayText(node)
	return payload, nil
}

// displayText resolves what a non-choice node shows. A note that parses as
// a JSON object with an "action" key renders as "Action: <name>"; JSON
// without one, or a note that fails to parse, is shown verbatim. Parse
// failures never propagate to the caller.
func displayText(node *domain.Node) string {
	if node.NoteMarkdown != "" {
		if obj, ok := domain.TryParseJSONObject(node.NoteMarkdown); ok {
			if name, has := obj["action"].(string); has {
				return "Action: " + name
			}
		}
		return node.NoteMarkdown
	}
	return node.Label
}
