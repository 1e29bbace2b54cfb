package access

import (
	"fmt"

	"github.com/leapstack-labs/archlint/pkg/arch"
	"github.com/leapstack-labs/archlint/pkg/core"
)

// Scopes accepted by AR05.
const (
	ScopeAll = "all"
	ScopeAPI = "api"
)

// crossInternalOptions configures AR05.
type crossInternalOptions struct {
	// Scope selects the evaluated units: every unit, or only units in .api packages
	Scope string `mapstructure:"scope"`
}

func (o *crossInternalOptions) Validate() error {
	switch o.Scope {
	case ScopeAll, ScopeAPI:
		return nil
	default:
		return fmt.Errorf("scope must be %q or %q, got %q", ScopeAll, ScopeAPI, o.Scope)
	}
}

func defaultCrossInternalOptions() *crossInternalOptions {
	return &crossInternalOptions{Scope: ScopeAll}
}

func init() {
	arch.Register(arch.RuleDef{
		ID:          "AR05",
		Name:        "cross-package-internal",
		Group:       "access",
		Description: "Code unit accesses the internal package of another package",
		Severity:    core.SeverityError,
		Check:       checkCrossPackageInternal,
		ConfigKeys:  []string{"scope"},
		Options:     func() any { return defaultCrossInternalOptions() },
		Rationale: "A module may use its own .internal package. Every other .internal " +
			"package is off limits: other modules only see its .api package.",
		BadExample:  "org.example.service.api.Service -> org.example.billing.internal.Ledger",
		GoodExample: "org.example.service.api.Service -> org.example.service.internal.Helper",
		Fix:         "Depend on the target module's .api package instead.",
	})
}

// checkCrossPackageInternal flags units with direct edges into an internal
// package other than their own sibling internal package. References inside
// the unit's own package never count.
func checkCrossPackageInternal(ctx *arch.Context) []arch.Finding {
	opts := defaultCrossInternalOptions()
	_ = ctx.DecodeOptions("AR05", opts) // validated by the analyzer

	var findings []arch.Finding
	for _, u := range ctx.Units() {
		if opts.Scope == ScopeAPI && !u.Package.IsAPI {
			continue
		}

		sibling := u.Package.SiblingInternal()
		var offending []arch.Dependency
		for _, d := range u.Dependencies() {
			target := d.TargetPackage
			if target.Empty() || !target.IsInternal {
				continue
			}
			if target.Name == sibling || target.Name == u.Package.Name {
				continue
			}
			offending = append(offending, d)
		}

		f := arch.Finding{
			Subject:      u.Name,
			Package:      u.Package.Name,
			Violated:     len(offending) > 0,
			Dependencies: arch.Descriptions(offending),
		}
		if f.Violated {
			f.Message = fmt.Sprintf("Access to other packages' internal package found within %s", u.Name)
		} else {
			f.Message = fmt.Sprintf("No access to other packages' internal package found within %s", u.Name)
		}
		findings = append(findings, f)
	}

	return findings
}
