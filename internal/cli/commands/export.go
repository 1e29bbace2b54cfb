package commands

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/archlint/internal/cli/output"
	"github.com/leapstack-labs/archlint/internal/export"
	"github.com/leapstack-labs/archlint/pkg/arch"
	"github.com/spf13/cobra"
)

// ExportOptions holds options for the export neo4j command.
type ExportOptions struct {
	Source     SourceOptions
	Format     string
	URI        string
	User       string
	Password   string
	Database   string
	BatchSize  int
	Clean      bool
	NoFindings bool
}

// exportRunner is a Cypher runner holding a connection.
type exportRunner interface {
	export.Runner
	Close(ctx context.Context) error
}

// runnerFactory opens the Cypher runner for an export. Tests replace it.
var runnerFactory = func(ctx context.Context, uri, user, password, database string) (exportRunner, error) {
	return export.NewNeo4jRunner(ctx, uri, user, password, database)
}

// NewExportCommand creates the export command group.
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dependency graph to external stores",
		Long:  `Export the unit dependency graph and the check findings to external stores for exploration.`,
	}
	cmd.AddCommand(newExportNeo4jCommand())
	return cmd
}

func newExportNeo4jCommand() *cobra.Command {
	opts := &ExportOptions{}
	cmd := &cobra.Command{
		Use:   "neo4j [dir]",
		Short: "Export graph and findings to Neo4j",
		Long: `Export packages, units and their dependencies to a Neo4j database.

Packages become ArchPackage nodes and units become ArchUnit nodes linked
by IN_PACKAGE. Dependencies become DEPENDS_ON relationships. Unless
--no-findings is set, the rules run first and every violation is stored
as a VIOLATES relationship to an ArchRule node.

Connection settings default to the neo4j section of archlint.yaml.`,
		Example: `  # Export the current module to a local database
  archlint export neo4j --password secret

  # Replace everything previously exported
  archlint export neo4j --clean

  # Export a graph file without running the rules
  archlint export neo4j --graph classes.yaml --no-findings`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Source.Dir = args[0]
			}
			return runExportNeo4j(cmd, opts)
		},
	}

	addSourceFlags(cmd, &opts.Source)
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringVar(&opts.URI, "uri", "", "Neo4j connection URI")
	cmd.Flags().StringVar(&opts.User, "user", "", "Neo4j user")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Neo4j password")
	cmd.Flags().StringVar(&opts.Database, "database", "", "Neo4j database (default: server default)")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", 0, "Rows per statement")
	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "Delete previously exported nodes first")
	cmd.Flags().BoolVar(&opts.NoFindings, "no-findings", false, "Skip running the rules")

	return cmd
}

// ExportOutput is the JSON output of the export command.
type ExportOutput struct {
	URI          string `json:"uri"`
	Database     string `json:"database,omitempty"`
	Packages     int    `json:"packages"`
	Units        int    `json:"units"`
	Dependencies int    `json:"dependencies"`
	Rules        int    `json:"rules"`
	Violations   int    `json:"violations"`
}

func runExportNeo4j(cmd *cobra.Command, opts *ExportOptions) error {
	cmdCtx, err := NewCommandContext(cmd, opts.Format)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	conn := cfg.GetNeo4jConfig()
	if opts.URI != "" {
		conn.URI = opts.URI
	}
	if opts.User != "" {
		conn.User = opts.User
	}
	if opts.Password != "" {
		conn.Password = opts.Password
	}
	if opts.Database != "" {
		conn.Database = opts.Database
	}
	if opts.BatchSize > 0 {
		conn.BatchSize = opts.BatchSize
	}

	src, err := resolveSource(cfg, &opts.Source)
	if err != nil {
		return err
	}
	g, err := loadGraph(ctx, src, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}

	var report *arch.Report
	if !opts.NoFindings {
		analyzerCfg, err := buildAnalyzerConfig(cfg, &CheckOptions{})
		if err != nil {
			return err
		}
		analyzerCfg.Logger = cmdCtx.Logger
		report, err = arch.NewAnalyzer(analyzerCfg).Analyze(ctx, g)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
	}

	runner, err := runnerFactory(ctx, conn.URI, conn.User, conn.Password, conn.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to neo4j: %w", err)
	}
	defer func() {
		if cerr := runner.Close(ctx); cerr != nil {
			cmdCtx.Logger.Warn("failed to close neo4j connection", "error", cerr)
		}
	}()

	exporter := export.NewExporter(runner, cmdCtx.Logger)
	exporter.SetBatchSize(conn.BatchSize)
	stats, err := exporter.Export(ctx, g, report, opts.Clean)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	out := ExportOutput{
		URI:          conn.URI,
		Database:     conn.Database,
		Packages:     stats.Packages,
		Units:        stats.Units,
		Dependencies: stats.Dependencies,
		Rules:        stats.Rules,
		Violations:   stats.Violations,
	}
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Neo4j Export"))
		r.Println(output.FormatKeyValue("URI", out.URI))
		r.Println(output.FormatKeyValue("Packages", fmt.Sprint(out.Packages)))
		r.Println(output.FormatKeyValue("Units", fmt.Sprint(out.Units)))
		r.Println(output.FormatKeyValue("Dependencies", fmt.Sprint(out.Dependencies)))
		r.Println(output.FormatKeyValue("Violations", fmt.Sprint(out.Violations)))
	default:
		r.Success(fmt.Sprintf("Exported %d packages, %d units, %d dependencies and %d violations to %s",
			out.Packages, out.Units, out.Dependencies, out.Violations, out.URI))
	}
	return nil
}
