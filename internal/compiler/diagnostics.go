package compiler

import "fmt"

// Diagnostic records a construct the parser skipped or repaired.
// Diagnostics are informational: the engine's contract guarantees forward
// progress, so a malformed statement never aborts compilation.
type Diagnostic struct {
	Line   int
	Text   string
	Reason string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s (%q)", d.Line, d.Reason, d.Text)
}
