package commands

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		name  string
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{
			name:  "check",
			cmd:   NewCheckCommand(),
			use:   "check [dir]",
			flags: []string{"graph", "prefix", "tests", "format", "disable", "rule", "severity", "concurrency", "all", "watch"},
		},
		{
			name:  "init",
			cmd:   NewInitCommand(),
			use:   "init [directory]",
			flags: []string{"force"},
		},
		{
			name:  "rules",
			cmd:   NewRulesCommand(),
			use:   "rules [rule-id]",
			flags: []string{"group", "verbose", "format"},
		},
		{
			name:  "graph",
			cmd:   NewGraphCommand(),
			use:   "graph [dir]",
			flags: []string{"graph", "prefix", "tests", "format", "focus"},
		},
		{
			name:  "export neo4j",
			cmd:   newExportNeo4jCommand(),
			use:   "neo4j [dir]",
			flags: []string{"graph", "uri", "user", "password", "database", "batch-size", "clean", "no-findings"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestNewExportCommand_Subcommands(t *testing.T) {
	cmd := NewExportCommand()

	sub, _, err := cmd.Find([]string{"neo4j"})
	require.NoError(t, err)
	assert.Equal(t, "neo4j", sub.Name())
}

// execute runs cmd with args and returns its standard output.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
