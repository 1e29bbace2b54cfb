package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "archlint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dir", "", "module directory")
	flags.String("graph", "", "graph file")
	flags.String("prefix", "", "package prefix")
	flags.String("log-level", "", "log level")
	flags.StringP("output", "o", "", "output format")
	flags.Bool("tests", false, "include tests")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "verbose: false\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	root := filepath.Dir(path)
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, root, cfg.Dir)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultSeverity, cfg.GetCheckConfig().Severity)
	assert.Equal(t, DefaultNeo4jURI, cfg.GetNeo4jConfig().URI)
	assert.Equal(t, path, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, `dir: src
prefix: org.example
tests: true
check:
  severity: error
  concurrency: 4
rules:
  disabled: [AR06]
  severity:
    AR02: warning
  options:
    AR05:
      scope: api
neo4j:
  password: ${ARCHLINT_TEST_NEO4J_PASSWORD}
`)
	t.Setenv("ARCHLINT_TEST_NEO4J_PASSWORD", "s3cret")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(path), "src"), cfg.Dir)
	assert.Equal(t, "org.example", cfg.Prefix)
	assert.True(t, cfg.Tests)
	assert.Equal(t, "error", cfg.GetCheckConfig().Severity)
	assert.Equal(t, 4, cfg.GetCheckConfig().Concurrency)

	rules := cfg.GetRulesConfig()
	assert.Equal(t, []string{"AR06"}, rules.Disabled)
	assert.Equal(t, "warning", rules.Severity["AR02"])
	assert.Equal(t, "api", rules.Options["AR05"]["scope"])

	neo := cfg.GetNeo4jConfig()
	assert.Equal(t, "s3cret", neo.Password)
	assert.Equal(t, DefaultNeo4jUser, neo.User)
}

func TestLoadConfig_Precedence(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "prefix: from_file\noutput: text\n")

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("ARCHLINT_PREFIX", "from_env")
		t.Setenv("ARCHLINT_LOG__LEVEL", "debug")

		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "from_env", cfg.Prefix)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "text", cfg.OutputFormat)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		t.Setenv("ARCHLINT_PREFIX", "from_env")

		flags := testFlags()
		require.NoError(t, flags.Set("prefix", "from_flag"))
		require.NoError(t, flags.Set("log-level", "error"))

		cfg, err := LoadConfig(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "from_flag", cfg.Prefix)
		assert.Equal(t, "error", cfg.Log.Level)
	})

	t.Run("unset flag falls back", func(t *testing.T) {
		cfg, err := LoadConfig(path, testFlags())
		require.NoError(t, err)
		assert.Equal(t, "from_file", cfg.Prefix)
	})
}

func TestLoadConfig_FlagPathsRelativeToCWD(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "graph: graphs/app.yaml\n")

	flags := testFlags()
	require.NoError(t, flags.Set("dir", "module"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "module"), cfg.Dir)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "graphs", "app.yaml"), cfg.Graph)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"output", "output: yaml\n", "unknown output format"},
		{"log level", "log:\n  level: loud\n", "invalid log level"},
		{"log format", "log:\n  format: xml\n", "invalid log format"},
		{"check severity", "check:\n  severity: fatal\n", "invalid check.severity"},
		{"rule severity", "rules:\n  severity:\n    AR01: fatal\n", "invalid severity"},
		{"concurrency", "check:\n  concurrency: -1\n", "concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestFindProjectRootUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "archlint.yml"), nil, 0600))

	assert.Equal(t, root, findProjectRootUpward(nested))
	assert.Equal(t, filepath.Join(root, "archlint.yml"), configExistsIn(root))
	assert.Empty(t, configExistsIn(nested))
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "prefix", envKey("ARCHLINT_PREFIX"))
	assert.Equal(t, "neo4j.batch_size", envKey("ARCHLINT_NEO4J__BATCH_SIZE"))
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("ARCHLINT_TEST_VAR", "value")

	assert.Equal(t, "value", expandEnvVars("${ARCHLINT_TEST_VAR}"))
	assert.Equal(t, "x-value-y", expandEnvVars("x-${ARCHLINT_TEST_VAR}-y"))
	assert.Equal(t, "${ARCHLINT_UNSET_VAR}", expandEnvVars("${ARCHLINT_UNSET_VAR}"))
	assert.Equal(t, "plain", expandEnvVars("plain"))
}

func TestLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))

	var buf bytes.Buffer
	cfg := &Config{Log: &LogConfig{Level: "info", Format: "json"}}
	cfg.NewLogger(&buf).Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	cfg.NewLogger(&buf).Debug("hidden")
	assert.Empty(t, buf.String())

	buf.Reset()
	cfg.Verbose = true
	cfg.NewLogger(&buf).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestValidateSource(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, (&Config{Dir: dir}).ValidateSource())
	assert.Error(t, (&Config{Dir: filepath.Join(dir, "missing")}).ValidateSource())

	graph := filepath.Join(dir, "g.yaml")
	require.NoError(t, os.WriteFile(graph, []byte("units: []\n"), 0600))
	assert.NoError(t, (&Config{Graph: graph}).ValidateSource())
	assert.Error(t, (&Config{Graph: graph + ".missing"}).ValidateSource())
}
