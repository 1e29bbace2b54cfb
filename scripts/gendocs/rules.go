package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/archlint/pkg/arch"
	_ "github.com/leapstack-labs/archlint/pkg/arch/rules"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// groupDescriptions provides human-readable descriptions for rule groups.
var groupDescriptions = map[string]string{
	"placement": "Rules about which packages code units may live in.",
	"access":    "Rules about which packages a code unit may depend on.",
}

var groupOrder = []string{"placement", "access"}

// generateRuleDocs generates the rules documentation page.
func generateRuleDocs(outDir string) error {
	log.Printf("Generating rule docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rules := arch.GetAll()
	w := NewMarkdownWriter()

	w.Frontmatter("Architecture Rules", "Package architecture rules checked by archlint")
	w.GeneratedMarker()

	w.Header(1, "Architecture Rules")
	w.Paragraph(fmt.Sprintf("archlint checks %d rules. Every code unit lives in a package ending in %s or %s; "+
		"the rules below follow from that convention.", len(rules), InlineCode(".api"), InlineCode(".internal")))

	w.Header(2, "Configuration")
	w.Paragraph("Rules can be configured in `archlint.yaml`:")
	w.CodeBlock("yaml", `rules:
  disabled: [AR06]      # never run these rules
  severity:
    AR01: warning       # override severity
    AR04: off           # "off" disables a rule
  options:
    AR05:
      scope: api        # only check units in .api packages
    AR06:
      max_depth: 3      # allow deeper dependencies`)

	grouped := groupRules(rules)
	title := cases.Title(language.English)
	for _, group := range groupOrder {
		groupRules := grouped[group]
		if len(groupRules) == 0 {
			continue
		}

		w.Line(fmt.Sprintf("## %s {#%s}", title.String(group), group))
		w.Newline()
		if desc, ok := groupDescriptions[group]; ok {
			w.Paragraph(desc)
		}
		for _, rule := range groupRules {
			writeRuleDoc(w, rule)
		}
	}

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

// groupRules organizes rules by their Group field, sorted by ID.
func groupRules(rules []arch.RuleDef) map[string][]arch.RuleDef {
	grouped := make(map[string][]arch.RuleDef)
	for _, r := range rules {
		grouped[r.Group] = append(grouped[r.Group], r)
	}
	for group := range grouped {
		sort.Slice(grouped[group], func(i, j int) bool {
			return grouped[group][i].ID < grouped[group][j].ID
		})
	}
	return grouped
}

// writeRuleDoc writes detailed documentation for a single rule.
func writeRuleDoc(w *MarkdownWriter, rule arch.RuleDef) {
	// ### AR05 - cross-package-internal {#AR05}
	w.Line(fmt.Sprintf("### %s - %s {#%s}", rule.ID, rule.Name, rule.ID))
	w.Newline()

	w.Line(fmt.Sprintf("%s %s", Bold("Severity:"), InlineCode(rule.Severity.String())))
	w.Newline()

	w.Paragraph(cleanDescription(rule.Description))

	if rule.Rationale != "" {
		w.Header(4, "Why This Matters")
		w.Paragraph(strings.TrimSpace(rule.Rationale))
	}
	if rule.BadExample != "" {
		w.Header(4, "Bad")
		w.CodeBlock("text", rule.BadExample)
	}
	if rule.GoodExample != "" {
		w.Header(4, "Good")
		w.CodeBlock("text", rule.GoodExample)
	}
	if rule.Fix != "" {
		w.Header(4, "How to Fix")
		w.Paragraph(strings.TrimSpace(rule.Fix))
	}
	if len(rule.ConfigKeys) > 0 {
		keys := make([]string, len(rule.ConfigKeys))
		for i, k := range rule.ConfigKeys {
			keys[i] = InlineCode(k)
		}
		w.Header(4, "Configuration")
		w.Paragraph(fmt.Sprintf("Options under %s: %s", InlineCode("rules.options."+rule.ID), strings.Join(keys, ", ")))
	}

	w.Line("---")
	w.Newline()
}
