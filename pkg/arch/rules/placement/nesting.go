package placement

import (
	"fmt"

	"github.com/leapstack-labs/archlint/pkg/arch"
)

// checkNesting evaluates units selected by applies and flags those whose
// package has an "api" or "internal" ancestor segment.
func checkNesting(ctx *arch.Context, kind string, applies func(arch.Package) bool) []arch.Finding {
	var findings []arch.Finding

	for _, u := range ctx.Units() {
		if !applies(u.Package) {
			continue
		}

		f := arch.Finding{
			Subject: u.Name,
			Package: u.Package.Name,
		}
		if u.Package.NestedInConvention() {
			f.Violated = true
			f.Message = fmt.Sprintf("%s resides in %s package %s, which is nested inside another api or internal package",
				u.Name, kind, u.Package.Name)
		} else {
			f.Message = fmt.Sprintf("%s resides in top-level %s package %s", u.Name, kind, u.Package.Name)
		}
		findings = append(findings, f)
	}

	return findings
}
