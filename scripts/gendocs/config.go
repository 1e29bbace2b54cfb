package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/leapstack-labs/archlint/internal/cli/config"
)

// ConfigField is one documented configuration key.
type ConfigField struct {
	Key         string
	Type        string
	Description string
}

// fieldDescriptions documents config keys. Keys missing here are still
// listed.
var fieldDescriptions = map[string]string{
	"dir":               "Go module directory to check",
	"graph":             "Graph file (YAML or JSON) to check instead of a Go module",
	"prefix":            "First package segment for Go imports (default: last module path element)",
	"patterns":          "Package patterns loaded from dir (default: ./...)",
	"tests":             "Include _test.go files",
	"verbose":           "Debug logging",
	"output":            "Output format: auto, text, markdown, json",
	"log.level":         "Log level: debug, info, warn, error",
	"log.format":        "Log format: text, json",
	"check.severity":    "Minimum severity that fails a check",
	"check.concurrency": "Number of rules evaluated in parallel",
	"check.show_all":    "Also print satisfied findings",
	"rules.disabled":    "Rule IDs that never run",
	"rules.severity":    "Severity per rule ID; off disables the rule",
	"rules.options":     "Rule options per rule ID",
	"neo4j.uri":         "Neo4j connection URI; ${VAR} is expanded",
	"neo4j.user":        "Neo4j user; ${VAR} is expanded",
	"neo4j.password":    "Neo4j password; ${VAR} is expanded",
	"neo4j.database":    "Neo4j database (default: server default)",
	"neo4j.batch_size":  "Rows per export statement",
}

// configFields lists the keys of config.Config by walking its koanf tags.
func configFields() []ConfigField {
	var fields []ConfigField
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			tag := f.Tag.Get("koanf")
			if tag == "" || tag == "-" {
				continue
			}
			key := prefix + tag
			ft := f.Type
			for ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				walk(ft, key+".")
				continue
			}
			fields = append(fields, ConfigField{Key: key, Type: ft.String(), Description: fieldDescriptions[key]})
		}
	}
	walk(reflect.TypeOf(config.Config{}), "")
	return fields
}

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "archlint configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("archlint reads %s from the project root, found by searching upward from the working directory.",
		strings.Join(quoted(config.ConfigFileNames), " or ")))

	var rows [][]string
	for _, f := range configFields() {
		rows = append(rows, []string{InlineCode(f.Key), f.Type, f.Description})
	}
	w.Table([]string{"Key", "Type", "Description"}, rows)

	return os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600)
}

func quoted(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = InlineCode(n)
	}
	return out
}
