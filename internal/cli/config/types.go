// Package config provides configuration management for the archlint CLI.
//
// Rule settings use the shared core.RulesConfig type so that the library
// and the CLI read the same rules section.
package config

import (
	"github.com/leapstack-labs/archlint/pkg/core"
)

// RulesConfig is an alias for the shared rules configuration.
type RulesConfig = core.RulesConfig

// RuleOptions is an alias for the shared rule options type.
type RuleOptions = core.RuleOptions

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// CheckConfig holds defaults for the check command.
type CheckConfig struct {
	// Severity is the minimum severity that fails a check
	Severity string `koanf:"severity"`
	// Concurrency is the number of rules evaluated in parallel
	Concurrency int `koanf:"concurrency"`
	// ShowAll also prints satisfied findings
	ShowAll bool `koanf:"show_all"`
}

// Neo4jConfig holds connection settings for the export command.
type Neo4jConfig struct {
	URI       string `koanf:"uri"`
	User      string `koanf:"user"`
	Password  string `koanf:"password"`
	Database  string `koanf:"database"`
	BatchSize int    `koanf:"batch_size"`
}

// Config holds all CLI configuration options.
type Config struct {
	// Dir is the Go module to check
	Dir string `koanf:"dir"`
	// Graph is a graph file to check instead of a Go module
	Graph string `koanf:"graph"`
	// Prefix is the first package segment for Go imports
	Prefix string `koanf:"prefix"`
	// Patterns are the package patterns loaded from Dir
	Patterns []string `koanf:"patterns"`
	// Tests includes _test.go files
	Tests bool `koanf:"tests"`

	Verbose      bool         `koanf:"verbose"`
	OutputFormat string       `koanf:"output"`
	Log          *LogConfig   `koanf:"log"`
	Check        *CheckConfig `koanf:"check"`
	Rules        *RulesConfig `koanf:"rules"`
	Neo4j        *Neo4jConfig `koanf:"neo4j"`

	// ProjectRoot is the directory relative paths are resolved against
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultDir         = "."
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
	DefaultSeverity    = "warning"
	DefaultConcurrency = 1
	DefaultNeo4jURI    = "neo4j://localhost:7687"
	DefaultNeo4jUser   = "neo4j"
	DefaultBatchSize   = 500
)

// ConfigFileNames are searched for in the project root, in order.
var ConfigFileNames = []string{"archlint.yaml", "archlint.yml"}

// GetCheckConfig returns the check config with defaults applied.
func (c *Config) GetCheckConfig() *CheckConfig {
	if c.Check == nil {
		return &CheckConfig{Severity: DefaultSeverity, Concurrency: DefaultConcurrency}
	}
	check := *c.Check
	if check.Severity == "" {
		check.Severity = DefaultSeverity
	}
	if check.Concurrency == 0 {
		check.Concurrency = DefaultConcurrency
	}
	return &check
}

// GetRulesConfig returns the rules config, never nil.
func (c *Config) GetRulesConfig() *RulesConfig {
	if c.Rules == nil {
		return &RulesConfig{}
	}
	return c.Rules
}

// GetNeo4jConfig returns the Neo4j config with defaults applied.
func (c *Config) GetNeo4jConfig() *Neo4jConfig {
	n := Neo4jConfig{}
	if c.Neo4j != nil {
		n = *c.Neo4j
	}
	if n.URI == "" {
		n.URI = DefaultNeo4jURI
	}
	if n.User == "" {
		n.User = DefaultNeo4jUser
	}
	if n.BatchSize == 0 {
		n.BatchSize = DefaultBatchSize
	}
	return &n
}

// Default returns the configuration used when nothing was loaded.
func Default() *Config {
	return &Config{
		Dir:          DefaultDir,
		OutputFormat: DefaultOutput,
		Log:          &LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		ProjectRoot:  ".",
	}
}
