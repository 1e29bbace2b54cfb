package export

import (
	"context"
	"strings"
	"testing"

	"github.com/leapstack-labs/archlint/internal/testutil"
	"github.com/leapstack-labs/archlint/pkg/arch"
	"github.com/leapstack-labs/archlint/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statement struct {
	cypher string
	params map[string]any
}

type recordingRunner struct {
	statements []statement
	failOn     string
}

func (r *recordingRunner) Run(_ context.Context, cypher string, params map[string]any) error {
	if r.failOn != "" && strings.Contains(cypher, r.failOn) {
		return assert.AnError
	}
	r.statements = append(r.statements, statement{cypher, params})
	return nil
}

func (r *recordingRunner) batches(fragment string) [][]map[string]any {
	var out [][]map[string]any
	for _, s := range r.statements {
		if strings.Contains(s.cypher, fragment) && s.params != nil {
			out = append(out, s.params["batch"].([]map[string]any))
		}
	}
	return out
}

func testGraph(t *testing.T) *arch.Graph {
	t.Helper()
	b := arch.NewBuilder()
	require.NoError(t, b.AddUnit("shop.orders.api.Orders", "shop.orders.api", arch.KindType, "orders/api/orders.go:3"))
	require.NoError(t, b.AddUnit("shop.orders.internal.Repo", "shop.orders.internal", arch.KindType, ""))
	require.NoError(t, b.AddUnit("shop.billing.internal.Ledger", "shop.billing.internal", arch.KindType, ""))
	require.NoError(t, b.AddDependency("shop.orders.internal.Repo", "shop.orders.api.Orders", "first"))
	require.NoError(t, b.AddDependency("shop.orders.internal.Repo", "shop.orders.api.Orders", "second"))
	require.NoError(t, b.AddDependency("shop.orders.internal.Repo", "shop.billing.internal.Ledger", ""))
	return b.Build()
}

func testReport() *arch.Report {
	return &arch.Report{
		ID:    "run-1",
		Rules: []string{"AR01", "AR05"},
		Findings: []arch.Finding{
			{RuleID: "AR01", Severity: core.SeverityError, Subject: "shop.orders.internal", Violated: true, Message: "slice"},
			{RuleID: "AR05", Severity: core.SeverityWarning, Subject: "shop.orders.internal.Repo", Violated: true,
				Message: "access", Dependencies: []string{"Repo -> Ledger"}},
			{RuleID: "AR05", Severity: core.SeverityError, Subject: "shop.orders.api.Orders", Message: "ok"},
		},
	}
}

func TestRows(t *testing.T) {
	g := testGraph(t)

	pkgs := PackageRows(g)
	require.Len(t, pkgs, 3)
	assert.Equal(t, "shop.billing.internal", pkgs[0]["name"])
	assert.Equal(t, true, pkgs[0]["internal"])
	assert.Equal(t, false, pkgs[0]["api"])
	assert.Equal(t, 1, pkgs[0]["units"])

	units := UnitRows(g)
	require.Len(t, units, 3)
	assert.Equal(t, "shop.orders.api.Orders", units[1]["name"])
	assert.Equal(t, "orders/api/orders.go:3", units[1]["position"])

	deps := DependencyRows(g)
	require.Len(t, deps, 2, "one row per origin/target pair")
	assert.Equal(t, "shop.billing.internal.Ledger", deps[0]["target"])
	assert.Equal(t, []string{"first", "second"}, deps[1]["descriptions"])
}

func TestViolationRows(t *testing.T) {
	units, packages := ViolationRows(testGraph(t), testReport())

	require.Len(t, units, 1)
	assert.Equal(t, "shop.orders.internal.Repo", units[0]["subject"])
	assert.Equal(t, "warning", units[0]["severity"])
	assert.Equal(t, "run-1", units[0]["run"])
	assert.Equal(t, []string{"Repo -> Ledger"}, units[0]["dependencies"])

	require.Len(t, packages, 1)
	assert.Equal(t, "shop.orders.internal", packages[0]["subject"])
	assert.Equal(t, []string{}, packages[0]["dependencies"])
}

func TestExporter_Export(t *testing.T) {
	runner := &recordingRunner{}
	e := NewExporter(runner, testutil.NewTestLogger(t))
	e.SetBatchSize(2)

	stats, err := e.Export(context.Background(), testGraph(t), testReport(), true)
	require.NoError(t, err)

	assert.Equal(t, Stats{Packages: 3, Units: 3, Dependencies: 2, Rules: 2, Violations: 2}, stats)
	assert.Contains(t, runner.statements[0].cypher, "DELETE")

	unitBatches := runner.batches("MERGE (n:ArchUnit")
	require.Len(t, unitBatches, 2, "three units in batches of two")
	assert.Len(t, unitBatches[0], 2)
	assert.Len(t, unitBatches[1], 1)

	assert.Len(t, runner.batches("MATCH (s:ArchUnit"), 1)
	assert.Len(t, runner.batches("MERGE (s:ArchPackage"), 1)
}

func TestExporter_NoReportNoClean(t *testing.T) {
	runner := &recordingRunner{}
	stats, err := NewExporter(runner, nil).Export(context.Background(), testGraph(t), nil, false)
	require.NoError(t, err)

	assert.Zero(t, stats.Rules)
	for _, s := range runner.statements {
		assert.NotContains(t, s.cypher, "DELETE")
		assert.NotContains(t, s.cypher, "VIOLATES")
	}
}

func TestExporter_Error(t *testing.T) {
	runner := &recordingRunner{failOn: "DEPENDS_ON]->(b)"}
	_, err := NewExporter(runner, nil).Export(context.Background(), testGraph(t), nil, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "export dependencies failed")
}
