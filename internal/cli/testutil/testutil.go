// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/archlint/internal/cli/output"
)

// ViolatingGraph is a graph file that breaks every rule at least once.
const ViolatingGraph = `units:
  - name: shop.Application
    dependencies:
      - target: shop.billing.internal.Ledger
  - name: shop.billing.api.Billing
    dependencies:
      - target: shop.billing.internal.Ledger
  - name: shop.billing.internal.Ledger
  - name: shop.orders.internal.OrderRepo
    dependencies:
      - target: shop.billing.internal.Ledger
  - name: shop.orders.internal.audit.api.Audit
    package: shop.orders.internal.audit.api
`

// ConformingGraph is a graph file that satisfies every rule.
const ConformingGraph = `units:
  - name: shop.billing.api.Billing
    dependencies:
      - target: shop.billing.internal.Ledger
  - name: shop.billing.internal.Ledger
    dependencies:
      - target: shop.billing.api.Billing
  - name: shop.orders.api.Orders
    dependencies:
      - target: shop.billing.api.Billing
  - name: shop.orders.internal.OrderRepo
    dependencies:
      - target: shop.orders.api.Orders
`

// WriteGraphFile writes a graph file into a temporary directory and returns
// its path.
func WriteGraphFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "graph.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write graph file: %v", err)
	}
	return path
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}

// ModuleRoot walks up from the working directory to the directory holding
// go.mod.
func ModuleRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("go.mod not found above working directory")
		}
		dir = parent
	}
}

// SampleModule returns the path of the sample Go module used by importer
// tests.
func SampleModule(t *testing.T) string {
	t.Helper()
	return filepath.Join(ModuleRoot(t), "internal", "importer", "testdata", "sample")
}
