package compiler

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/actiflow/actiflow/internal/logging"
	"github.com/actiflow/actiflow/pkg/domain"
)

// Parser compiles an activity-diagram document into a domain.Definition.
//
// It is a single-pass, line-oriented compiler: each logical statement is
// classified and handled independently, with explicit stacks tracking open
// if and repeat constructs. A construct the parser cannot classify is
// skipped (and recorded as a Diagnostic); only a document that yields zero
// nodes is a hard failure.
//
// A Parser instance is not safe for concurrent use; create one per parse.
type Parser struct {
	logger *slog.Logger

	def     *domain.Definition
	byID    map[string]int
	byLabel map[string]int

	current      string
	pendingStart bool

	branches []*branchFrame
	loops    []*loopFrame
	seq      counters

	noteTarget string   // node collecting an open block note, "" when closed
	noteLines  []string // accumulated block note body
	styleOpen  bool
	styleLines []string

	line  int
	diags []Diagnostic
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets a structured logger for parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// NewParser creates a parser instance.
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Diagnostics returns the constructs skipped or repaired by the last Parse.
func (p *Parser) Diagnostics() []Diagnostic {
	return p.diags
}

// Parse compiles documentText into a Definition. The returned definition is
// immutable by convention: the runtime never mutates it after this point.
func (p *Parser) Parse(documentText, definitionID, definitionName string) (*domain.Definition, error) {
	p.reset(definitionID, definitionName)

	for _, raw := range strings.Split(documentText, "\n") {
		p.line++
		line := strings.TrimSpace(raw)

		// Open multi-line captures swallow everything until their closer.
		if p.styleOpen {
			if strings.EqualFold(line, "</style>") {
				p.def.RawStyles = append(p.def.RawStyles, strings.Join(p.styleLines, "\n"))
				p.styleLines = nil
				p.styleOpen = false
			} else {
				p.styleLines = append(p.styleLines, raw)
			}
			continue
		}
		if p.noteTarget != "" {
			if strings.EqualFold(line, "end note") {
				p.applyNote(p.noteTarget, strings.Join(p.noteLines, "\n"))
				p.noteTarget = ""
				p.noteLines = nil
			} else {
				p.noteLines = append(p.noteLines, line)
			}
			continue
		}

		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "'") || strings.HasPrefix(line, "//") {
			continue
		}

		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "@startuml"), strings.HasPrefix(lower, "@enduml"):
			// Document wrapper markers.
		case lower == "start":
			p.handleStart()
		case lower == "stop", lower == "end":
			p.handleStop(lower)
		case lower == "endif":
			p.handleEndIf()
		case strings.HasPrefix(lower, "elseif"), lower == "else", strings.HasPrefix(lower, "else "), strings.HasPrefix(lower, "else("):
			p.handleElse(line, lower)
		case strings.HasPrefix(lower, "if"):
			p.handleIf(line)
		case strings.HasPrefix(lower, "repeat while"):
			p.handleRepeatClose(line)
		case lower == "repeat":
			p.handleRepeatOpen()
		case strings.HasPrefix(lower, "note"):
			p.handleNote(line)
		case strings.HasPrefix(line, ":"):
			p.handleAction(line)
		case arrowRe.MatchString(line):
			p.handleArrow(line)
		case strings.HasPrefix(lower, "skinparam"):
			p.handleSkinparam(line)
		case strings.EqualFold(line, "<style>"):
			p.styleOpen = true
		case strings.HasPrefix(line, "<<") && strings.HasSuffix(line, ">>"):
			p.handleStereotype(line)
		default:
			p.skip(line, "unrecognized construct")
		}
	}

	p.forceClose()

	if len(p.def.Nodes) == 0 {
		return nil, fmt.Errorf("definition %s: %w", definitionID, domain.ErrNoNodes)
	}
	return p.def, nil
}

func (p *Parser) reset(id, name string) {
	p.def = &domain.Definition{ID: id, Name: name}
	p.byID = make(map[string]int)
	p.byLabel = make(map[string]int)
	p.current = ""
	p.pendingStart = false
	p.branches = nil
	p.loops = nil
	p.seq = counters{}
	p.noteTarget = ""
	p.noteLines = nil
	p.styleOpen = false
	p.styleLines = nil
	p.line = 0
	p.diags = nil
}

func (p *Parser) skip(text, reason string) {
	p.diags = append(p.diags, Diagnostic{Line: p.line, Text: text, Reason: reason})
	p.logger.Debug("skipped construct", "line", p.line, "reason", reason)
}

// forceClose closes any still-open branch or loop frame at end of input,
// using the same logic as an explicit endif / repeat while. This tolerates
// truncated documents without discarding partially built structure.
func (p *Parser) forceClose() {
	if p.noteTarget != "" {
		p.applyNote(p.noteTarget, strings.Join(p.noteLines, "\n"))
		p.noteTarget = ""
		p.noteLines = nil
	}
	for len(p.branches) > 0 {
		p.skip("", "unterminated if auto-closed")
		p.closeBranch()
	}
	for len(p.loops) > 0 {
		p.skip("", "unterminated repeat auto-closed")
		p.closeLoop("")
	}
	if p.pendingStart {
		// No labeled activity followed "start"; the marker becomes a node.
		p.addNode("start", "start")
	}
}

// --- node and transition construction ---

// addNode appends a node, indexing it by id and (non-empty) label.
// The first node materialized after a "start" statement becomes the
// definition's start point.
func (p *Parser) addNode(id, label string) {
	p.def.Nodes = append(p.def.Nodes, domain.Node{ID: id, Label: label})
	p.byID[id] = len(p.def.Nodes) - 1
	if label != "" {
		if _, exists := p.byLabel[label]; !exists {
			p.byLabel[label] = len(p.def.Nodes) - 1
		}
	}
	if p.pendingStart {
		p.def.StartPoints = append(p.def.StartPoints, domain.StartPoint{NodeID: id})
		p.pendingStart = false
	}
}

// resolveOrCreate returns the node carrying the given label, creating it if
// needed. The label doubles as the node id unless that id is already taken
// by a different node, in which case a synthetic id is derived from the
// sanitized label plus an index suffix.
func (p *Parser) resolveOrCreate(label string) string {
	if idx, ok := p.byLabel[label]; ok {
		return p.def.Nodes[idx].ID
	}
	id := label
	if _, taken := p.byID[id]; taken {
		p.seq.synthetic++
		id = sanitizeID(label) + "_" + strconv.Itoa(p.seq.synthetic)
	}
	p.addNode(id, label)
	return id
}

// addTransition creates an edge. Unconditioned self-edges are dropped: they
// are almost always typos and would otherwise compile into accidental
// infinite loops.
func (p *Parser) addTransition(from, to, condition string) {
	if from == "" || to == "" {
		return
	}
	if from == to && condition == "" {
		p.skip(from, "unconditioned self-transition dropped")
		return
	}
	p.seq.transitions++
	p.def.Transitions = append(p.def.Transitions, domain.Transition{
		ID:         "t_" + strconv.Itoa(p.seq.transitions),
		FromNodeID: from,
		ToNodeID:   to,
		Condition:  condition,
	})
}

// attach links a freshly materialized node to the implicit flow: a
// transition from the previous current node, honoring an open branch arm
// (whose first node picks up the arm's condition), then advances current.
func (p *Parser) attach(nodeID string) {
	if p.current != "" {
		cond := ""
		if fr := p.topBranch(); fr != nil && p.current == fr.decisionID {
			if rec := fr.openRecord(); rec != nil && rec.entryNodeID == "" {
				cond = rec.conditionText
				rec.entryNodeID = nodeID
			}
		}
		p.addTransition(p.current, nodeID, cond)
	}
	if lf := p.topLoop(); lf != nil && lf.firstBodyID == "" && nodeID != lf.entryID {
		lf.firstBodyID = nodeID
	}
	p.current = nodeID
}

func (p *Parser) topBranch() *branchFrame {
	if len(p.branches) == 0 {
		return nil
	}
	return p.branches[len(p.branches)-1]
}

func (p *Parser) topLoop() *loopFrame {
	if len(p.loops) == 0 {
		return nil
	}
	return p.loops[len(p.loops)-1]
}

// sanitizeID folds any rune outside [A-Za-z0-9_] to '_'. Deterministic, so
// re-parsing a document yields identical synthetic ids.
func sanitizeID(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
