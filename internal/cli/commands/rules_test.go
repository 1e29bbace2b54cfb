package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesCommand_ListAll(t *testing.T) {
	out, err := execute(t, NewRulesCommand())
	require.NoError(t, err)

	assert.Contains(t, out, "# Architecture Rules")
	assert.Contains(t, out, "## Access")
	assert.Contains(t, out, "## Placement")
	for _, id := range []string{"AR01", "AR02", "AR03", "AR04", "AR05", "AR06"} {
		assert.Contains(t, out, "**"+id+"**")
	}
}

func TestRulesCommand_FilterByGroup(t *testing.T) {
	out, err := execute(t, NewRulesCommand(), "--group", "placement")
	require.NoError(t, err)

	assert.Contains(t, out, "AR02")
	assert.Contains(t, out, "AR04")
	assert.NotContains(t, out, "AR01")
	assert.NotContains(t, out, "## Access")
}

func TestRulesCommand_Verbose(t *testing.T) {
	out, err := execute(t, NewRulesCommand(), "-V", "--group", "access")
	require.NoError(t, err)
	assert.Contains(t, out, "  > ", "rationale should be quoted")
}

func TestRulesCommand_ShowSpecificRule(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"markdown", []string{"AR05"}, []string{"# AR05 - cross-package-internal", "## Why This Matters", "## Bad Example", "```text", "Options: `scope`"}},
		{"lower case id", []string{"ar06"}, []string{"# AR06 - depth-limit", "max_depth"}},
		{"text", []string{"AR02", "--format", "text"}, []string{"AR02 - package-residency", "Description", "Group: placement"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewRulesCommand(), tt.args...)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestRulesCommand_NotFound(t *testing.T) {
	_, err := execute(t, NewRulesCommand(), "XX99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRulesCommand_JSON(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		out, err := execute(t, NewRulesCommand(), "--format", "json")
		require.NoError(t, err)

		var result RulesJSONOutput
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, 6, result.Total)
		assert.Equal(t, map[string]int{"access": 3, "placement": 3}, result.Groups)
	})

	t.Run("show", func(t *testing.T) {
		out, err := execute(t, NewRulesCommand(), "AR01", "--format", "json")
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, "AR01", result["id"])
		assert.Equal(t, "slice-isolation", result["name"])
		assert.Equal(t, "error", result["default_severity"])
	})
}
