package placement

import (
	"github.com/leapstack-labs/archlint/pkg/arch"
	"github.com/leapstack-labs/archlint/pkg/core"
)

func init() {
	arch.Register(arch.RuleDef{
		ID:          "AR03",
		Name:        "api-nesting",
		Group:       "placement",
		Description: "API package is nested in another api or internal package",
		Severity:    core.SeverityError,
		Check:       checkAPINesting,
		Rationale: "An .api package is the public surface of exactly one module. Nesting it " +
			"under another module's .api or .internal package blurs which module it belongs to.",
		BadExample:  "org.example.service.internal.creation.api",
		GoodExample: "org.example.service.creation.api",
		Fix:         "Lift the nested module out so its .api package hangs off a plain package.",
	})
}

// checkAPINesting flags units in ".api" packages matching the patterns
// "..internal..api" or "..api..api".
func checkAPINesting(ctx *arch.Context) []arch.Finding {
	return checkNesting(ctx, "api", func(p arch.Package) bool { return p.IsAPI })
}
