package placement

import (
	"github.com/leapstack-labs/archlint/pkg/arch"
	"github.com/leapstack-labs/archlint/pkg/core"
)

func init() {
	arch.Register(arch.RuleDef{
		ID:          "AR04",
		Name:        "internal-nesting",
		Group:       "placement",
		Description: "Internal package is nested in another api or internal package",
		Severity:    core.SeverityError,
		Check:       checkInternalNesting,
		Rationale: "An .internal package belongs to exactly one module. Nesting it under another " +
			".api or .internal package hides a second module inside the first.",
		BadExample:  "org.example.service.api.helpers.internal",
		GoodExample: "org.example.service.helpers.internal",
		Fix:         "Lift the nested module out so its .internal package hangs off a plain package.",
	})
}

// checkInternalNesting flags units in ".internal" packages matching the
// patterns "..internal..internal" or "..api..internal".
func checkInternalNesting(ctx *arch.Context) []arch.Finding {
	return checkNesting(ctx, "internal", func(p arch.Package) bool { return p.IsInternal })
}
