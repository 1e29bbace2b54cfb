package access

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/archlint/pkg/arch"
	"github.com/leapstack-labs/archlint/pkg/core"
)

func init() {
	arch.Register(arch.RuleDef{
		ID:          "AR01",
		Name:        "slice-isolation",
		Group:       "access",
		Description: "Internal slices of different modules depend on each other",
		Severity:    core.SeverityError,
		Check:       checkSliceIsolation,
		Rationale: "Implementation packages are private to their module. Two modules that " +
			"share implementation code are one module in disguise.",
		BadExample:  "org.example.billing.internal.Invoicer -> org.example.orders.internal.OrderRepo",
		GoodExample: "org.example.billing.internal.Invoicer -> org.example.orders.api.Orders",
		Fix:         "Depend on the other module's .api package, or move the shared code into its own module.",
	})
}

// checkSliceIsolation groups units into slices by the package path up to the
// deepest "internal" segment and flags every slice that has a direct edge
// into a different slice. Units outside any internal package belong to no
// slice and are not evaluated.
func checkSliceIsolation(ctx *arch.Context) []arch.Finding {
	slices := make(map[string][]*arch.CodeUnit)
	for _, u := range ctx.Units() {
		if token, ok := u.Package.SliceToken(); ok {
			slices[token] = append(slices[token], u)
		}
	}

	tokens := make([]string, 0, len(slices))
	for token := range slices {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	findings := make([]arch.Finding, 0, len(tokens))
	for _, token := range tokens {
		var offending []arch.Dependency
		targets := make(map[string]bool)

		for _, u := range slices[token] {
			for _, d := range u.Dependencies() {
				other, ok := d.TargetPackage.SliceToken()
				if !ok || other == token {
					continue
				}
				offending = append(offending, d)
				targets[other] = true
			}
		}

		f := arch.Finding{
			Subject:      token,
			Package:      token,
			Violated:     len(offending) > 0,
			Dependencies: arch.Descriptions(offending),
		}
		if f.Violated {
			f.Message = fmt.Sprintf("Slice %s depends on slice(s) %s", token, strings.Join(sortedKeys(targets), ", "))
		} else {
			f.Message = fmt.Sprintf("Slice %s does not depend on other slices", token)
		}
		findings = append(findings, f)
	}

	return findings
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
