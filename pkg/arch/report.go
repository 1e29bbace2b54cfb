package arch

import (
	"time"

	"github.com/leapstack-labs/archlint/pkg/core"
)

// Report is the outcome of one analyzer run.
type Report struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Rules      []string  `json:"rules"`
	Units      int       `json:"units"`
	Edges      int       `json:"edges"`
	Findings   []Finding `json:"findings"`
}

// Summary counts findings by outcome and severity. Severity counts only
// include violations.
type Summary struct {
	Evaluated  int `json:"evaluated"`
	Violations int `json:"violations"`
	Errors     int `json:"errors"`
	Warnings   int `json:"warnings"`
	Info       int `json:"info"`
	Hints      int `json:"hints"`
}

// Violations returns the violated findings in report order.
func (r *Report) Violations() []Finding {
	return r.ViolationsAtOrAbove(core.SeverityHint)
}

// ViolationsAtOrAbove returns violated findings whose severity is at least
// as important as threshold.
func (r *Report) ViolationsAtOrAbove(threshold core.Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Violated && f.Severity.AtLeast(threshold) {
			out = append(out, f)
		}
	}
	return out
}

// HasViolations reports whether any finding is violated.
func (r *Report) HasViolations() bool {
	for _, f := range r.Findings {
		if f.Violated {
			return true
		}
	}
	return false
}

// ByRule groups findings by rule ID.
func (r *Report) ByRule() map[string][]Finding {
	out := make(map[string][]Finding, len(r.Rules))
	for _, f := range r.Findings {
		out[f.RuleID] = append(out[f.RuleID], f)
	}
	return out
}

// Summary returns counts over all findings.
func (r *Report) Summary() Summary {
	s := Summary{Evaluated: len(r.Findings)}
	for _, f := range r.Findings {
		if !f.Violated {
			continue
		}
		s.Violations++
		switch f.Severity {
		case core.SeverityError:
			s.Errors++
		case core.SeverityWarning:
			s.Warnings++
		case core.SeverityInfo:
			s.Info++
		case core.SeverityHint:
			s.Hints++
		}
	}
	return s
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
