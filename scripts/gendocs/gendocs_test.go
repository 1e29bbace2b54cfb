package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownWriter(t *testing.T) {
	w := NewMarkdownWriter()
	w.Frontmatter("Title", "Desc")
	w.Header(2, "Section")
	w.Table([]string{"A", "B"}, [][]string{{"x|y", "z"}})
	w.CodeBlock("bash", "archlint check\n")

	out := string(w.Bytes())
	assert.True(t, strings.HasPrefix(out, "---\ntitle: \"Title\"\n"))
	assert.Contains(t, out, "## Section\n")
	assert.Contains(t, out, "| x\\|y | z |")
	assert.Contains(t, out, "```bash\narchlint check\n```\n")
}

func TestConfigFields(t *testing.T) {
	keys := make(map[string]ConfigField)
	for _, f := range configFields() {
		keys[f.Key] = f
	}
	for _, key := range []string{"dir", "graph", "output", "log.level", "check.severity", "rules.disabled", "neo4j.uri"} {
		assert.Contains(t, keys, key)
	}
	assert.NotContains(t, keys, "ProjectRoot")
	for key, f := range keys {
		assert.NotEmpty(t, f.Description, "key %s is undocumented", key)
	}
}

func TestGenerateRuleDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateRuleDocs(dir))

	data, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	out := string(data)
	for _, id := range []string{"AR01", "AR02", "AR03", "AR04", "AR05", "AR06"} {
		assert.Contains(t, out, "### "+id+" - ")
	}
	assert.Less(t, strings.Index(out, "## Placement"), strings.Index(out, "## Access"))
}

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	for _, name := range []string{"index.md", "check.md", "rules.md", "graph.md", "export.md"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	data, err := os.ReadFile(filepath.Join(dir, "check.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "`--severity`")
}
