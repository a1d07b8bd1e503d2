package compiler

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	ifRe     = regexp.MustCompile(`(?i)^if\s*\((.*?)\)\s*(?:then)?\s*(?:\((.*?)\))?\s*$`)
	elseifRe = regexp.MustCompile(`(?i)^elseif\s*\((.*?)\)\s*(?:then)?\s*(?:\((.*?)\))?\s*$`)
	elseRe   = regexp.MustCompile(`(?i)^else\s*(?:\((.*?)\))?\s*$`)
	repeatRe = regexp.MustCompile(`(?i)^repeat\s+while\s*\((.*?)\)`)

	// Longest tokens first so "-->" is not split as "->".
	arrowRe  = regexp.MustCompile(`^(.+?)\s*(<--|-->|<-|->)\s*(.+)$`)
	condRe   = regexp.MustCompile(`^\[([^\]]*)\]\s*(.*)$`)
	quotedRe = regexp.MustCompile(`"[^"]*"`)
)

// handleStart records a pending start point. The next materialized node
// becomes the entry node; if none follows, forceClose materializes a
// literal "start" node instead.
func (p *Parser) handleStart() {
	p.pendingStart = true
	p.current = ""
}

// handleStop creates a terminal node and an edge from the current node.
func (p *Parser) handleStop(keyword string) {
	id := p.resolveOrCreate(keyword)
	p.attach(id)
}

// handleAction materializes the node for a ":label;" statement.
func (p *Parser) handleAction(line string) {
	label := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, ":"), ";"))
	if label == "" {
		p.skip(line, "empty action label")
		return
	}
	id := p.resolveOrCreate(label)
	p.attach(id)
}

// handleArrow creates an explicit edge between two named nodes. Accepts
// single and double arrows in both directions, an optional "[condition]"
// guard before the target, and strips quoted or trailing edge labels.
func (p *Parser) handleArrow(line string) {
	m := arrowRe.FindStringSubmatch(line)
	if m == nil {
		p.skip(line, "unrecognized construct")
		return
	}
	lhs, token, rhs := m[1], m[2], m[3]

	condition := ""
	if cm := condRe.FindStringSubmatch(rhs); cm != nil {
		condition = strings.TrimSpace(cm[1])
		rhs = cm[2]
	}
	if i := strings.Index(rhs, ":"); i >= 0 {
		rhs = rhs[:i]
	}
	lhs = strings.TrimSpace(quotedRe.ReplaceAllString(lhs, ""))
	rhs = strings.TrimSpace(quotedRe.ReplaceAllString(rhs, ""))
	if lhs == "" || rhs == "" {
		p.skip(line, "arrow missing endpoint")
		return
	}

	from := p.resolveEndpoint(lhs)
	to := p.resolveEndpoint(rhs)
	if strings.HasPrefix(token, "<") {
		from, to = to, from
	}
	p.addTransition(from, to, condition)
	p.current = to
}

// resolveEndpoint resolves an arrow endpoint by label, then by raw node id
// (so synthetic nodes like joins can be referenced), creating it otherwise.
func (p *Parser) resolveEndpoint(name string) string {
	if idx, ok := p.byLabel[name]; ok {
		return p.def.Nodes[idx].ID
	}
	if _, ok := p.byID[name]; ok {
		return name
	}
	p.addNode(name, name)
	return name
}

// handleIf opens a branch frame around a synthetic decision node.
func (p *Parser) handleIf(line string) {
	m := ifRe.FindStringSubmatch(line)
	if m == nil {
		p.skip(line, "unrecognized construct")
		return
	}
	condition := strings.TrimSpace(m[1])
	armLabel := strings.TrimSpace(m[2])

	p.seq.ifs++
	decisionID := "if:_" + condition + "_" + strconv.Itoa(p.seq.ifs)
	p.addNode(decisionID, condition)
	p.attach(decisionID)

	conditionText := armLabel
	if conditionText == "" {
		conditionText = condition
	}
	p.branches = append(p.branches, &branchFrame{
		decisionID: decisionID,
		condition:  condition,
		records:    []*branchRecord{{label: armLabel, conditionText: conditionText}},
	})
}

// handleElse closes the open arm and starts the next one under the same
// frame. Current resets to the decision node so the next action attaches as
// the new arm's entry.
func (p *Parser) handleElse(line, lower string) {
	fr := p.topBranch()
	if fr == nil {
		p.skip(line, "else outside if")
		return
	}

	var armLabel, conditionText string
	if strings.HasPrefix(lower, "elseif") {
		m := elseifRe.FindStringSubmatch(line)
		if m == nil {
			p.skip(line, "unrecognized construct")
			return
		}
		armLabel = strings.TrimSpace(m[2])
		conditionText = armLabel
		if conditionText == "" {
			conditionText = strings.TrimSpace(m[1])
		}
	} else {
		m := elseRe.FindStringSubmatch(line)
		if m == nil {
			p.skip(line, "unrecognized construct")
			return
		}
		armLabel = strings.TrimSpace(m[1])
		conditionText = armLabel
		if conditionText == "" {
			conditionText = "else"
		}
	}

	if rec := fr.openRecord(); rec != nil && rec.entryNodeID != "" {
		rec.lastNodeID = p.current
	}
	fr.records = append(fr.records, &branchRecord{label: armLabel, conditionText: conditionText})
	p.current = fr.decisionID
}

// handleEndIf pops the frame and reconverges every arm on a join node.
func (p *Parser) handleEndIf() {
	if p.topBranch() == nil {
		p.skip("endif", "endif outside if")
		return
	}
	p.closeBranch()
}

func (p *Parser) closeBranch() {
	fr := p.topBranch()
	p.branches = p.branches[:len(p.branches)-1]

	if rec := fr.openRecord(); rec != nil && rec.entryNodeID != "" {
		rec.lastNodeID = p.current
	}

	p.seq.joins++
	joinID := "join_" + strconv.Itoa(p.seq.joins)
	p.addNode(joinID, "")

	for _, rec := range fr.records {
		if rec.entryNodeID == "" {
			// Empty arm: the decision flows straight to the join, keeping
			// the arm's condition so the choice stays selectable.
			p.addTransition(fr.decisionID, joinID, rec.conditionText)
		} else {
			p.addTransition(rec.lastNodeID, joinID, "")
		}
	}
	p.current = joinID
}

// handleRepeatOpen creates the loop entry node and pushes a loop frame.
func (p *Parser) handleRepeatOpen() {
	p.seq.loops++
	entryID := "loop_entry_" + strconv.Itoa(p.seq.loops)
	p.addNode(entryID, "")
	p.attach(entryID)
	p.loops = append(p.loops, &loopFrame{entryID: entryID})
}

// handleRepeatClose pops the loop frame: the body's last node gets a
// conditioned back-edge to the entry and an unconditioned exit edge.
func (p *Parser) handleRepeatClose(line string) {
	if p.topLoop() == nil {
		p.skip(line, "repeat while outside repeat")
		return
	}
	condition := ""
	if m := repeatRe.FindStringSubmatch(line); m != nil {
		condition = strings.TrimSpace(m[1])
	}
	p.closeLoop(condition)
}

func (p *Parser) closeLoop(condition string) {
	fr := p.topLoop()
	p.loops = p.loops[:len(p.loops)-1]

	last := p.current
	p.seq.afterLoops++
	afterID := "after_loop_" + strconv.Itoa(p.seq.afterLoops)
	p.addNode(afterID, "")

	p.addTransition(last, fr.entryID, condition)
	p.addTransition(last, afterID, "")
	p.current = afterID
}

// handleStereotype appends an informational "<<word>>" suffix to the current
// node's note. Stereotypes never affect graph shape.
func (p *Parser) handleStereotype(line string) {
	if p.current == "" {
		p.skip(line, "stereotype without a target node")
		return
	}
	p.appendNote(p.current, line)
}

// handleSkinparam captures styling pragmas into side-channel storage.
func (p *Parser) handleSkinparam(line string) {
	fields := strings.Fields(line)
	switch {
	case len(fields) >= 3:
		if p.def.Skinparams == nil {
			p.def.Skinparams = make(map[string]string)
		}
		p.def.Skinparams[fields[1]] = strings.Join(fields[2:], " ")
	case len(fields) == 2:
		p.def.RawStyles = append(p.def.RawStyles, line)
	default:
		p.skip(line, "skinparam without arguments")
	}
}
