package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/archlint/internal/cli/output"
	"github.com/leapstack-labs/archlint/pkg/core"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		errs = append(errs, err)
	}
	if c.Log != nil {
		if c.Log.Level != "" {
			if _, err := ParseLogLevel(c.Log.Level); err != nil {
				errs = append(errs, err)
			}
		}
		switch strings.ToLower(c.Log.Format) {
		case "", "text", "json":
		default:
			errs = append(errs, fmt.Errorf("invalid log format %q (want text or json)", c.Log.Format))
		}
	}
	if c.Check != nil {
		if c.Check.Severity != "" {
			if _, ok := core.ParseSeverity(c.Check.Severity); !ok {
				errs = append(errs, fmt.Errorf("invalid check.severity %q", c.Check.Severity))
			}
		}
		if c.Check.Concurrency < 0 {
			errs = append(errs, fmt.Errorf("check.concurrency must not be negative"))
		}
	}
	if c.Rules != nil {
		for id, sev := range c.Rules.Severity {
			if strings.EqualFold(sev, "off") {
				continue
			}
			if _, ok := core.ParseSeverity(sev); !ok {
				errs = append(errs, fmt.Errorf("invalid severity %q for rule %s", sev, id))
			}
		}
	}
	if c.Neo4j != nil && c.Neo4j.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("neo4j.batch_size must not be negative"))
	}

	return errors.Join(errs...)
}

// ValidateSource checks that the graph source exists: the graph file when
// one is configured, the module directory otherwise.
func (c *Config) ValidateSource() error {
	if c.Graph != "" {
		if _, err := os.Stat(c.Graph); err != nil {
			return fmt.Errorf("graph file does not exist: %s\nHint: check the --graph flag or the graph key in archlint.yaml", c.Graph)
		}
		return nil
	}
	info, err := os.Stat(c.Dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("module directory does not exist: %s\nHint: pass the module directory as argument or use --dir", c.Dir)
	}
	return nil
}
