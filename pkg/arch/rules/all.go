// Package archrules registers all conformance rules.
// Import this package to register every rule with the global registry.
package archrules

import (
	// Blank imports trigger init() functions that register rules with the global registry.
	_ "github.com/leapstack-labs/archlint/pkg/arch/rules/access"    // registers AR01, AR05, AR06
	_ "github.com/leapstack-labs/archlint/pkg/arch/rules/placement" // registers AR02-AR04
)
