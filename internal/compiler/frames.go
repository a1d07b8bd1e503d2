package compiler

// branchRecord tracks one arm of an open if/elseif/else construct.
type branchRecord struct {
	// label is the raw arm label, e.g. the "(yes)" of "then (yes)".
	label string

	// conditionText guards the transition out of the decision node.
	conditionText string

	// entryNodeID is the first node materialized inside this arm.
	// Empty until the arm's first action is seen; an arm that closes with
	// no entry produces a direct decision-to-join transition.
	entryNodeID string

	// lastNodeID is the node the arm ended on, frozen when the arm closes.
	lastNodeID string
}

// branchFrame is one open "if" construct. Frames nest on a stack mirroring
// the grammar's nesting.
type branchFrame struct {
	decisionID string
	condition  string
	records    []*branchRecord
}

// openRecord returns the arm currently accepting statements.
func (f *branchFrame) openRecord() *branchRecord {
	if len(f.records) == 0 {
		return nil
	}
	return f.records[len(f.records)-1]
}

// loopFrame is one open "repeat" construct.
type loopFrame struct {
	entryID     string
	firstBodyID string
}

// counters issues per-parse monotonic sequence numbers for synthetic ids.
// A fresh counter set per parse keeps re-parses deterministic.
type counters struct {
	ifs         int
	joins       int
	loops       int
	afterLoops  int
	transitions int
	synthetic   int
}
