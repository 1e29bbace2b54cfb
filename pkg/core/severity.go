package core

import (
	"fmt"
	"strings"
)

// Severity ranks findings. Lower values are more important, so
// SeverityError sorts first.
type Severity int

// Severity levels.
const (
	// SeverityError marks a violation that fails a check by default.
	SeverityError Severity = iota
	// SeverityWarning marks a violation worth reviewing.
	SeverityWarning
	// SeverityInfo marks a violation reported for information only.
	SeverityInfo
	// SeverityHint marks a suggestion.
	SeverityHint
)

var severityNames = [...]string{
	SeverityError:   "error",
	SeverityWarning: "warning",
	SeverityInfo:    "info",
	SeverityHint:    "hint",
}

// SeverityNames lists the accepted severity names, most important first.
func SeverityNames() []string {
	return append([]string(nil), severityNames[:]...)
}

// String returns the severity name, or "unknown" outside the known range.
func (s Severity) String() string {
	if s < SeverityError || s > SeverityHint {
		return "unknown"
	}
	return severityNames[s]
}

// AtLeast reports whether s is as important as threshold or more.
func (s Severity) AtLeast(threshold Severity) bool {
	return s <= threshold
}

// MarshalText renders the severity by name, in JSON as elsewhere.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts any name ParseSeverity accepts.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, ok := ParseSeverity(string(text))
	if !ok {
		return fmt.Errorf("invalid severity %q (valid: %s)", text, strings.Join(SeverityNames(), ", "))
	}
	*s = parsed
	return nil
}

// ParseSeverity converts a case-insensitive name to a Severity.
// Unknown names yield SeverityWarning and false.
func ParseSeverity(s string) (Severity, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range severityNames {
		if n == name {
			return Severity(i), true
		}
	}
	return SeverityWarning, false
}

// RuleInfo is the documentation view of a rule, shared by the rules
// command, JSON output and the docs generator.
type RuleInfo struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Group           string   `json:"group"`
	Description     string   `json:"description"`
	DefaultSeverity Severity `json:"default_severity"`
	ConfigKeys      []string `json:"config_keys,omitempty"`

	Rationale   string `json:"rationale,omitempty"`
	BadExample  string `json:"bad_example,omitempty"`
	GoodExample string `json:"good_example,omitempty"`
	Fix         string `json:"fix,omitempty"`
}
