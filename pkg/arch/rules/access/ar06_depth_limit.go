package access

import (
	"fmt"

	"github.com/leapstack-labs/archlint/pkg/arch"
	"github.com/leapstack-labs/archlint/pkg/core"
)

// DefaultMaxDepth is how many package levels below the common ancestor a
// dependency may reach.
const DefaultMaxDepth = 2

type depthOptions struct {
	MaxDepth int `mapstructure:"max_depth"`
}

func (o *depthOptions) Validate() error {
	if o.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1, got %d", o.MaxDepth)
	}
	return nil
}

func init() {
	arch.Register(arch.RuleDef{
		ID:          "AR06",
		Name:        "depth-limit",
		Group:       "access",
		Description: "Code unit reaches too deep into another package",
		Severity:    core.SeverityError,
		Check:       checkDepthLimit,
		ConfigKeys:  []string{"max_depth"},
		Options:     func() any { return &depthOptions{MaxDepth: DefaultMaxDepth} },
		Rationale: "Below the common ancestor, a dependency should name a module and its " +
			".api or .internal package, nothing deeper. Reaching further couples the caller " +
			"to the inner layout of another module.",
		BadExample:  "a.b.Caller -> a.b.c.d.e.Target (c.d.e is 3 levels deep)",
		GoodExample: "a.b.Caller -> a.b.c.api.Target (c.api is 2 levels deep)",
		Fix:         "Depend on the nearest .api package of the target module.",
	})
}

// checkDepthLimit strips the longest common segment prefix between a unit's
// package and each dependency's package, and flags the unit when the rest of
// the target path is longer than max_depth segments.
func checkDepthLimit(ctx *arch.Context) []arch.Finding {
	opts := &depthOptions{MaxDepth: DefaultMaxDepth}
	_ = ctx.DecodeOptions("AR06", opts) // validated by the analyzer

	units := ctx.Units()
	findings := make([]arch.Finding, 0, len(units))
	for _, u := range units {
		var offending []arch.Dependency
		for _, d := range u.Dependencies() {
			target := d.TargetPackage
			if target.Empty() || target.Name == u.Package.Name {
				continue
			}
			if len(target.DepthFrom(u.Package)) > opts.MaxDepth {
				offending = append(offending, d)
			}
		}

		f := arch.Finding{
			Subject:      u.Name,
			Package:      u.Package.Name,
			Violated:     len(offending) > 0,
			Dependencies: arch.Descriptions(offending),
		}
		if f.Violated {
			f.Message = fmt.Sprintf("Access more than %d package levels deep into other packages found within %s",
				opts.MaxDepth, u.Name)
		} else {
			f.Message = fmt.Sprintf("No access deeper than %d package levels found within %s", opts.MaxDepth, u.Name)
		}
		findings = append(findings, f)
	}

	return findings
}
