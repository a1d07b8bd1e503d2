package compiler

import (
	"strings"

	"github.com/actiflow/actiflow/pkg/domain"
)

// handleNote classifies the three note syntaxes:
//
//	note right : text            — attach to the current node
//	note left of Target : text   — attach to a named node
//	note right                   — open a block, closed by "end note"
func (p *Parser) handleNote(line string) {
	rest := strings.TrimSpace(line[len("note"):])

	var body string
	hasBody := false
	if i := strings.Index(rest, ":"); i >= 0 {
		body = strings.TrimSpace(rest[i+1:])
		rest = strings.TrimSpace(rest[:i])
		hasBody = true
	}

	fields := strings.Fields(rest)
	target := ""
	switch {
	case len(fields) == 0, len(fields) == 1:
		// Bare direction (or nothing): shorthand for the current node.
	case len(fields) >= 3 && strings.EqualFold(fields[1], "of"):
		target = strings.Join(fields[2:], " ")
	case len(fields) >= 2 && strings.EqualFold(fields[0], "over"):
		target = strings.Join(fields[1:], " ")
	default:
		p.skip(line, "unrecognized note syntax")
		return
	}

	targetID := p.current
	if target != "" {
		targetID = p.lookupNode(target)
		if targetID == "" {
			p.skip(line, "note targets unknown node")
			return
		}
	}
	if targetID == "" {
		p.skip(line, "note without a target node")
		return
	}

	if hasBody {
		p.applyNote(targetID, body)
		return
	}
	p.noteTarget = targetID
	p.noteLines = nil
}

// lookupNode resolves an existing node by label, then by id. Unlike arrow
// endpoints, notes never create nodes.
func (p *Parser) lookupNode(name string) string {
	if idx, ok := p.byLabel[name]; ok {
		return p.def.Nodes[idx].ID
	}
	if _, ok := p.byID[name]; ok {
		return name
	}
	return ""
}

// applyNote stores a note body on a node, extracting embedded action
// metadata when present. A '|' splits the body: the prefix is attempted as
// a JSON object and, if it parses, stored verbatim as machine-readable
// metadata while the suffix becomes the visible note. A failed parse
// degrades to storing the entire original text as the note.
func (p *Parser) applyNote(nodeID, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}

	if i := strings.Index(body, "|"); i >= 0 {
		prefix := strings.TrimSpace(body[:i])
		suffix := strings.TrimSpace(body[i+1:])
		if _, ok := domain.TryParseJSONObject(prefix); ok {
			node := p.nodeRef(nodeID)
			if node != nil {
				node.JSONMetadata = prefix
			}
			p.appendNote(nodeID, suffix)
			return
		}
	}
	p.appendNote(nodeID, body)
}

// appendNote accumulates note text, one line break between fragments.
func (p *Parser) appendNote(nodeID, text string) {
	if text == "" {
		return
	}
	node := p.nodeRef(nodeID)
	if node == nil {
		return
	}
	if node.NoteMarkdown != "" {
		node.NoteMarkdown += "\n" + text
	} else {
		node.NoteMarkdown = text
	}
}

func (p *Parser) nodeRef(id string) *domain.Node {
	idx, ok := p.byID[id]
	if !ok {
		return nil
	}
	return &p.def.Nodes[idx]
}
