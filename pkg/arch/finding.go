package arch

import (
	"strings"

	"github.com/leapstack-labs/archlint/pkg/core"
)

// Finding is the result of evaluating one rule against one subject: a code
// unit or, for slice rules, a slice token.
type Finding struct {
	RuleID       string        `json:"rule_id"`
	Severity     core.Severity `json:"severity"`
	Subject      string        `json:"subject"`
	Package      string        `json:"package,omitempty"`
	Violated     bool          `json:"violated"`
	Message      string        `json:"message"`
	Dependencies []string      `json:"dependencies,omitempty"`
}

// String returns the message followed by one line per offending dependency.
func (f Finding) String() string {
	if len(f.Dependencies) == 0 {
		return f.Message
	}
	var sb strings.Builder
	sb.WriteString(f.Message)
	for _, d := range f.Dependencies {
		sb.WriteString("\n")
		sb.WriteString(d)
	}
	return sb.String()
}

// Descriptions returns the descriptions of the given dependencies.
func Descriptions(deps []Dependency) []string {
	if len(deps) == 0 {
		return nil
	}
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = d.Description
	}
	return out
}
