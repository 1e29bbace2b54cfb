package commands

import (
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/archlint/internal/cli/output"
	"github.com/leapstack-labs/archlint/internal/cli/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeGraph(t *testing.T, out string) output.GraphOutput {
	t.Helper()
	var result output.GraphOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	return result
}

func TestGraphCommand_Levels(t *testing.T) {
	path := testutil.WriteGraphFile(t, testutil.ViolatingGraph)

	out, err := execute(t, NewGraphCommand(), "--graph", path, "--format", "json")
	require.NoError(t, err)

	result := decodeGraph(t, out)
	assert.Equal(t, 5, result.Units)
	assert.Equal(t, 3, result.Edges)
	assert.Len(t, result.Packages, 5)
	assert.Empty(t, result.Cycles)
	assert.Equal(t, [][]string{
		{"shop.billing.internal", "shop.orders.internal.audit.api"},
		{"shop", "shop.billing.api", "shop.orders.internal"},
	}, result.Levels)
	assert.Equal(t, []string{"shop.billing.internal", "shop.orders.internal.audit.api"}, result.Roots)
	assert.Equal(t, []string{"shop", "shop.billing.api", "shop.orders.internal", "shop.orders.internal.audit.api"}, result.Leaves)

	var ledger output.GraphPackage
	for _, p := range result.Packages {
		if p.Name == "shop.billing.internal" {
			ledger = p
		}
	}
	assert.True(t, ledger.Internal)
	assert.Equal(t, 1, ledger.Units)
	assert.Equal(t, []string{"shop", "shop.billing.api", "shop.orders.internal"}, ledger.UsedBy)
}

func TestGraphCommand_Cycles(t *testing.T) {
	path := testutil.WriteGraphFile(t, testutil.ConformingGraph)

	out, err := execute(t, NewGraphCommand(), "--graph", path, "--format", "json")
	require.NoError(t, err)

	result := decodeGraph(t, out)
	assert.Empty(t, result.Levels)
	assert.Equal(t, [][]string{{"shop.billing.api", "shop.billing.internal"}}, result.Cycles)
}

func TestGraphCommand_Focus(t *testing.T) {
	path := testutil.WriteGraphFile(t, testutil.ViolatingGraph)

	out, err := execute(t, NewGraphCommand(), "--graph", path, "--format", "json", "--focus", "shop.billing.api")
	require.NoError(t, err)

	result := decodeGraph(t, out)
	names := make([]string, 0, len(result.Packages))
	for _, p := range result.Packages {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"shop.billing.api", "shop.billing.internal"}, names)
	// totals cover the focused packages only
	assert.Equal(t, 2, result.Units)
	assert.Equal(t, 1, result.Edges)
	assert.Equal(t, []string{"shop.billing.internal"}, result.Roots)
	assert.Equal(t, []string{"shop.billing.api"}, result.Leaves)

	_, err = execute(t, NewGraphCommand(), "--graph", path, "--focus", "shop.nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `package "shop.nowhere" not found`)
}

func TestGraphCommand_Markdown(t *testing.T) {
	path := testutil.WriteGraphFile(t, testutil.ConformingGraph)

	out, err := execute(t, NewGraphCommand(), "--graph", path)
	require.NoError(t, err)

	assert.Contains(t, out, "# Package Graph")
	assert.Contains(t, out, "## Cycles")
	assert.Contains(t, out, "shop.billing.api -> shop.billing.internal -> shop.billing.api")
	assert.Contains(t, out, "Total Packages:** 4")
	assert.Contains(t, out, "Leaves:** shop.orders.internal")
	assert.NotContains(t, out, "Roots:**")
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
}

func TestCyclePath(t *testing.T) {
	assert.Equal(t, "", cyclePath(nil))
	assert.Equal(t, "a -> b -> a", cyclePath([]string{"a", "b"}))
}
