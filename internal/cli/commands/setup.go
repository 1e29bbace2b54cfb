package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/leapstack-labs/archlint/internal/cli/config"
	"github.com/leapstack-labs/archlint/internal/cli/output"
	"github.com/leapstack-labs/archlint/internal/importer"
	"github.com/leapstack-labs/archlint/pkg/arch"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext for cmd. A non-empty format
// overrides the configured output mode.
func NewCommandContext(cmd *cobra.Command, format string) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mode := output.Mode(cfg.OutputFormat)
	if format != "" {
		parsed, err := output.ParseMode(format)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}, nil
}

// getConfig returns the loaded configuration, or defaults when the command
// runs without the root command (as in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// SourceOptions selects the graph a command works on. Values override the
// configuration.
type SourceOptions struct {
	Dir    string // Go module directory (positional argument)
	Graph  string // Graph file instead of a Go module
	Prefix string // First package segment for Go imports
	Tests  bool   // Include _test.go files
}

func addSourceFlags(cmd *cobra.Command, opts *SourceOptions) {
	cmd.Flags().StringVar(&opts.Graph, "graph", "", "Check a graph file (YAML or JSON) instead of a Go module")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "First package segment for Go imports (default: last module path element)")
	cmd.Flags().BoolVar(&opts.Tests, "tests", false, "Include _test.go files")
}

// source is a resolved graph source.
type source struct {
	dir      string
	graph    string
	prefix   string
	tests    bool
	patterns []string
}

// String describes the source for humans.
func (s source) String() string {
	if s.graph != "" {
		return s.graph
	}
	return s.dir
}

func resolveSource(cfg *config.Config, opts *SourceOptions) (source, error) {
	src := source{
		dir:      cfg.Dir,
		graph:    cfg.Graph,
		prefix:   cfg.Prefix,
		tests:    cfg.Tests || opts.Tests,
		patterns: cfg.Patterns,
	}
	if opts.Dir != "" {
		abs, err := filepath.Abs(opts.Dir)
		if err != nil {
			return src, fmt.Errorf("invalid directory %s: %w", opts.Dir, err)
		}
		src.dir = abs
		// an explicit module directory wins over a configured graph file
		src.graph = ""
	}
	if opts.Graph != "" {
		abs, err := filepath.Abs(opts.Graph)
		if err != nil {
			return src, fmt.Errorf("invalid graph file %s: %w", opts.Graph, err)
		}
		src.graph = abs
	}
	if opts.Prefix != "" {
		src.prefix = opts.Prefix
	}
	if src.dir == "" {
		src.dir = config.DefaultDir
	}

	check := &config.Config{Dir: src.dir, Graph: src.graph}
	if err := check.ValidateSource(); err != nil {
		return src, err
	}
	return src, nil
}

// loadGraph builds the dependency graph of src.
func loadGraph(ctx context.Context, src source, logger *slog.Logger) (*arch.Graph, error) {
	if src.graph != "" {
		logger.Debug("loading graph file", "path", src.graph)
		return importer.LoadFile(src.graph)
	}
	logger.Debug("loading go module", "dir", src.dir)
	return importer.LoadGo(ctx, importer.Options{
		Dir:          src.dir,
		Patterns:     src.patterns,
		IncludeTests: src.tests,
		Prefix:       src.prefix,
		Logger:       logger,
	})
}
