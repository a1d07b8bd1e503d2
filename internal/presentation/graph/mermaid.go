package graph

import (
	"fmt"
	"strings"

	"github.com/actiflow/actiflow/pkg/domain"
)

// Overlay contains dynamic state data to visualize on the graph.
type Overlay struct {
	CurrentNode string
}

// GenerateMermaid produces a Mermaid flowchart from a compiled definition.
// Semantic shapes:
//   - Start point target: ((Circle))
//   - Decision (if:_*):   {Diamond}
//   - Action node (with embedded metadata): [[Subroutine]]
//   - Default:            [Rectangle]
func GenerateMermaid(def *domain.Definition, overlay *Overlay) string {
	starts := make(map[string]bool)
	for _, sp := range def.StartPoints {
		starts[sp.NodeID] = true
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range def.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case starts[node.ID]:
			opener, closer = "((", "))"
		case strings.HasPrefix(node.ID, "if:_"):
			opener, closer = "{", "}"
		case node.JSONMetadata != "":
			opener, closer = "[[", "]]"
		}

		label := node.Label
		if label == "" {
			label = node.ID
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeMermaidLabel(label), closer))
	}

	for _, t := range def.Transitions {
		safeFrom := sanitizeMermaidID(t.FromNodeID)
		safeTo := sanitizeMermaidID(t.ToNodeID)

		arrow := "-->"
		if t.Condition != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeMermaidLabel(t.Condition))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	if overlay != nil && overlay.CurrentNode != "" {
		sb.WriteString("\n    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
	}

	return sb.String()
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
