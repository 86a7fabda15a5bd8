package flow

import "fmt"

// Check names identify which rule produced a Finding.
const (
	// CheckUnreachable flags agents no forward traversal can reach.
	CheckUnreachable = "unreachable"
	// CheckDeadEnd flags agents with no outgoing routes that are missing
	// from the completion points.
	CheckDeadEnd = "dead-end"
	// CheckBrokenReference flags routes whose target was never declared.
	CheckBrokenReference = "broken-reference"
	// CheckDuplicateDeclaration flags an agent declared more than once
	// (strict parsing only; the later declaration wins either way).
	CheckDuplicateDeclaration = "duplicate-declaration"
	// CheckIgnoredLine flags a line matching no grammar rule (strict
	// parsing only; the line is skipped either way).
	CheckIgnoredLine = "ignored-line"
)

// Finding is a single advisory issue. Findings are never errors: the graph
// stays usable and callers must explicitly ask a validator to see them.
type Finding struct {
	Check   string `json:"check"`
	Message string `json:"message"`

	// Line is the 1-based source line for parse-stage advisories, 0 when
	// the finding concerns the graph as a whole.
	Line int `json:"line,omitempty"`
}

func (f Finding) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", f.Check, f.Line, f.Message)
	}
	return f.Check + ": " + f.Message
}
