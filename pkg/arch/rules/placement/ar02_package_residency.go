package placement

import (
	"fmt"

	"github.com/leapstack-labs/archlint/pkg/arch"
	"github.com/leapstack-labs/archlint/pkg/core"
)

func init() {
	arch.Register(arch.RuleDef{
		ID:          "AR02",
		Name:        "package-residency",
		Group:       "placement",
		Description: "Code unit resides outside an .api or .internal package",
		Severity:    core.SeverityError,
		Check:       checkPackageResidency,
		Rationale: "Every package splits into a public surface (.api) and its implementation " +
			"(.internal). Code that lives anywhere else has no declared visibility.",
		BadExample:  "org.example.service.ServiceImpl",
		GoodExample: "org.example.service.internal.ServiceImpl",
		Fix:         "Move the unit into the .api or .internal package of its module.",
	})
}

// checkPackageResidency flags every unit whose package ends in neither
// ".api" nor ".internal", including units in root or unnamed packages.
func checkPackageResidency(ctx *arch.Context) []arch.Finding {
	units := ctx.Units()
	findings := make([]arch.Finding, 0, len(units))

	for _, u := range units {
		f := arch.Finding{
			Subject: u.Name,
			Package: u.Package.Name,
		}
		if u.Package.Conventional() {
			f.Message = fmt.Sprintf("%s resides in package %s", u.Name, u.Package.Name)
		} else {
			f.Violated = true
			f.Message = fmt.Sprintf("%s resides in package %q, which is neither an api nor an internal package",
				u.Name, u.Package.Name)
		}
		findings = append(findings, f)
	}

	return findings
}
