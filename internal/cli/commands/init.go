package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/archlint/internal/cli/config"
	"github.com/leapstack-labs/archlint/pkg/arch"
	_ "github.com/leapstack-labs/archlint/pkg/arch/rules" // register all rules
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Force bool // Overwrite an existing config file
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default archlint.yaml",
		Long: `Write an archlint.yaml with the default settings into a project.

The file lists every rule with its default severity and options so the
rules section can be tuned without looking up rule IDs.`,
		Example: `  # Initialize in the current directory
  archlint init

  # Initialize another module
  archlint init ./services/orders

  # Overwrite an existing config
  archlint init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, opts *InitOptions) error {
	cmdCtx, err := NewCommandContext(cmd, "")
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(path); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", path)
	}

	data, err := defaultConfigFile()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	cmdCtx.Logger.Debug("config written", "path", path, "bytes", len(data))

	r.Success("Created " + path)
	r.Println("")
	r.Println("Next steps:")
	r.Println("  archlint rules     Review the rules and their options")
	r.Println("  archlint check     Check the module")
	return nil
}

// initFile mirrors the config keys written by init.
type initFile struct {
	Output string     `yaml:"output"`
	Check  initCheck  `yaml:"check"`
	Rules  initRules  `yaml:"rules"`
	Neo4j  initNeo4j  `yaml:"neo4j"`
	Log    initLogger `yaml:"log"`
}

type initCheck struct {
	Severity    string `yaml:"severity"`
	Concurrency int    `yaml:"concurrency"`
	ShowAll     bool   `yaml:"show_all"`
}

type initRules struct {
	Disabled []string                  `yaml:"disabled"`
	Severity map[string]string         `yaml:"severity"`
	Options  map[string]map[string]any `yaml:"options,omitempty"`
}

type initNeo4j struct {
	URI       string `yaml:"uri"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	BatchSize int    `yaml:"batch_size"`
}

type initLogger struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const initHeader = `# archlint configuration
#
# Every key can be overridden by an ARCHLINT_ environment variable
# (ARCHLINT_CHECK__SEVERITY=error) or by a command line flag.
# A rule severity of "off" disables the rule.

`

// defaultConfigFile renders the default configuration, including every
// registered rule with its default severity and options.
func defaultConfigFile() ([]byte, error) {
	f := initFile{
		Output: config.DefaultOutput,
		Check: initCheck{
			Severity:    config.DefaultSeverity,
			Concurrency: config.DefaultConcurrency,
		},
		Rules: initRules{
			Disabled: []string{},
			Severity: make(map[string]string),
			Options:  make(map[string]map[string]any),
		},
		Neo4j: initNeo4j{
			URI:       config.DefaultNeo4jURI,
			User:      config.DefaultNeo4jUser,
			Password:  "${NEO4J_PASSWORD}",
			BatchSize: config.DefaultBatchSize,
		},
		Log: initLogger{Level: config.DefaultLogLevel, Format: config.DefaultLogFormat},
	}

	for _, rule := range arch.GetAll() {
		f.Rules.Severity[rule.ID] = rule.Severity.String()
		if rule.Options == nil {
			continue
		}
		defaults := make(map[string]any)
		if err := mapstructure.Decode(rule.Options(), &defaults); err != nil {
			return nil, fmt.Errorf("failed to read options of rule %s: %w", rule.ID, err)
		}
		f.Rules.Options[rule.ID] = defaults
	}

	var buf bytes.Buffer
	buf.WriteString(initHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}
