// Package core defines the shared vocabulary of archlint.
//
// This package contains:
//   - Severity levels and their parsing
//   - Rule metadata used for documentation and tooling (RuleInfo)
//   - Rule configuration shared by the CLI and the analyzer (RulesConfig)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
