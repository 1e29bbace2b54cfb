// Package export pushes checked graphs into external stores.
package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/archlint/pkg/arch"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// DefaultBatchSize is the number of rows sent per UNWIND statement.
const DefaultBatchSize = 500

// Runner executes a single Cypher statement.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) error
}

// Neo4jRunner runs statements against a Neo4j database.
type Neo4jRunner struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jRunner connects to Neo4j. An empty database selects the server
// default.
func NewNeo4jRunner(ctx context.Context, uri, user, password, database string) (*Neo4jRunner, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", uri, err)
	}
	return &Neo4jRunner{driver: driver, database: database}, nil
}

// Run executes cypher with params.
func (r *Neo4jRunner) Run(ctx context.Context, cypher string, params map[string]any) error {
	opts := []neo4j.ExecuteQueryConfigurationOption{}
	if r.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(r.database))
	}
	_, err := neo4j.ExecuteQuery(ctx, r.driver, cypher, params, neo4j.EagerResultTransformer, opts...)
	return err
}

// Close releases the underlying driver resources.
func (r *Neo4jRunner) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// Stats counts what an export wrote.
type Stats struct {
	Packages     int
	Units        int
	Dependencies int
	Rules        int
	Violations   int
}

// Exporter writes graphs and findings using batched UNWIND/MERGE statements.
type Exporter struct {
	runner    Runner
	logger    *slog.Logger
	batchSize int
}

// NewExporter creates an exporter. A nil logger discards.
func NewExporter(runner Runner, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{runner: runner, logger: logger, batchSize: DefaultBatchSize}
}

// SetBatchSize changes the number of rows per statement.
func (e *Exporter) SetBatchSize(n int) {
	if n > 0 {
		e.batchSize = n
	}
}

var cleanQueries = []string{
	"MATCH ()-[r:VIOLATES]->() DELETE r",
	"MATCH ()-[r:DEPENDS_ON]->() DELETE r",
	"MATCH ()-[r:IN_PACKAGE]->() DELETE r",
	"MATCH (n:ArchUnit) DETACH DELETE n",
	"MATCH (n:ArchPackage) DETACH DELETE n",
	"MATCH (n:ArchRule) DETACH DELETE n",
}

var indexQueries = []string{
	"CREATE INDEX arch_package_name IF NOT EXISTS FOR (n:ArchPackage) ON (n.name)",
	"CREATE INDEX arch_unit_name IF NOT EXISTS FOR (n:ArchUnit) ON (n.name)",
	"CREATE INDEX arch_rule_id IF NOT EXISTS FOR (n:ArchRule) ON (n.id)",
}

const (
	packageQuery = `UNWIND $batch AS row
		 MERGE (n:ArchPackage {name: row.name})
		 SET n.api = row.api, n.internal = row.internal, n.units = row.units`

	unitQuery = `UNWIND $batch AS row
		 MERGE (n:ArchUnit {name: row.name})
		 SET n.kind = row.kind, n.position = row.position, n.package = row.package
		 WITH n, row
		 MATCH (p:ArchPackage {name: row.package})
		 MERGE (n)-[:IN_PACKAGE]->(p)`

	dependencyQuery = `UNWIND $batch AS row
		 MATCH (a:ArchUnit {name: row.origin})
		 MATCH (b:ArchUnit {name: row.target})
		 MERGE (a)-[r:DEPENDS_ON]->(b)
		 SET r.descriptions = row.descriptions`

	ruleQuery = `UNWIND $batch AS row
		 MERGE (n:ArchRule {id: row.id})
		 SET n.name = row.name, n.group = row.group, n.description = row.description`

	unitViolationQuery = `UNWIND $batch AS row
		 MATCH (s:ArchUnit {name: row.subject})
		 MATCH (r:ArchRule {id: row.rule})
		 MERGE (s)-[v:VIOLATES {run: row.run}]->(r)
		 SET v.severity = row.severity, v.message = row.message, v.dependencies = row.dependencies`

	packageViolationQuery = `UNWIND $batch AS row
		 MERGE (s:ArchPackage {name: row.subject})
		 WITH s, row
		 MATCH (r:ArchRule {id: row.rule})
		 MERGE (s)-[v:VIOLATES {run: row.run}]->(r)
		 SET v.severity = row.severity, v.message = row.message, v.dependencies = row.dependencies`
)

type exportStep struct {
	name  string
	query string
	rows  []map[string]any
	count *int
}

// Export writes the graph and the violations of report. With clean set,
// previously exported data is removed first. report may be nil.
func (e *Exporter) Export(ctx context.Context, g *arch.Graph, report *arch.Report, clean bool) (Stats, error) {
	var stats Stats

	if clean {
		e.logger.Info("cleaning existing architecture graph")
		if err := e.runAll(ctx, cleanQueries); err != nil {
			return stats, fmt.Errorf("clean failed: %w", err)
		}
	}
	if err := e.runAll(ctx, indexQueries); err != nil {
		return stats, fmt.Errorf("create indexes failed: %w", err)
	}

	steps := []exportStep{
		{"packages", packageQuery, PackageRows(g), &stats.Packages},
		{"units", unitQuery, UnitRows(g), &stats.Units},
		{"dependencies", dependencyQuery, DependencyRows(g), &stats.Dependencies},
	}
	if report != nil {
		unitViolations, packageViolations := ViolationRows(g, report)
		stats.Violations = len(unitViolations) + len(packageViolations)
		steps = append(steps,
			exportStep{"rules", ruleQuery, RuleRows(report), &stats.Rules},
			exportStep{"unit violations", unitViolationQuery, unitViolations, nil},
			exportStep{"package violations", packageViolationQuery, packageViolations, nil},
		)
	}

	for _, step := range steps {
		e.logger.Info("exporting", "what", step.name, "rows", len(step.rows))
		if err := e.runBatches(ctx, step.query, step.rows); err != nil {
			return stats, fmt.Errorf("export %s failed: %w", step.name, err)
		}
		if step.count != nil {
			*step.count = len(step.rows)
		}
	}

	return stats, nil
}

func (e *Exporter) runAll(ctx context.Context, queries []string) error {
	for _, q := range queries {
		if err := e.runner.Run(ctx, q, nil); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) runBatches(ctx context.Context, query string, rows []map[string]any) error {
	for start := 0; start < len(rows); start += e.batchSize {
		end := min(start+e.batchSize, len(rows))
		if err := e.runner.Run(ctx, query, map[string]any{"batch": rows[start:end]}); err != nil {
			return err
		}
	}
	return nil
}

// PackageRows returns one row per package of g.
func PackageRows(g *arch.Graph) []map[string]any {
	pkgs := g.Packages()
	rows := make([]map[string]any, 0, len(pkgs))
	for _, p := range pkgs {
		rows = append(rows, map[string]any{
			"name":     p.Name,
			"api":      p.IsAPI,
			"internal": p.IsInternal,
			"units":    len(g.UnitsIn(p.Name)),
		})
	}
	return rows
}

// UnitRows returns one row per code unit of g.
func UnitRows(g *arch.Graph) []map[string]any {
	units := g.Units()
	rows := make([]map[string]any, 0, len(units))
	for _, u := range units {
		rows = append(rows, map[string]any{
			"name":     u.Name,
			"kind":     u.Kind,
			"position": u.Position,
			"package":  u.Package.Name,
		})
	}
	return rows
}

// DependencyRows returns one row per distinct origin/target pair; all
// descriptions of the pair are collected on the row.
func DependencyRows(g *arch.Graph) []map[string]any {
	var rows []map[string]any
	for _, u := range g.Units() {
		var current map[string]any
		for _, d := range u.Dependencies() {
			if current == nil || current["target"] != d.Target {
				current = map[string]any{
					"origin":       u.Name,
					"target":       d.Target,
					"descriptions": []string{},
				}
				rows = append(rows, current)
			}
			current["descriptions"] = append(current["descriptions"].([]string), d.Description)
		}
	}
	return rows
}

// RuleRows returns one row per rule run in report.
func RuleRows(report *arch.Report) []map[string]any {
	rows := make([]map[string]any, 0, len(report.Rules))
	for _, id := range report.Rules {
		row := map[string]any{"id": id, "name": "", "group": "", "description": ""}
		if rule, ok := arch.GetByID(id); ok {
			row["name"] = rule.Name
			row["group"] = rule.Group
			row["description"] = rule.Description
		}
		rows = append(rows, row)
	}
	return rows
}

// ViolationRows splits the violations of report by subject: code units,
// and packages (slices, or subjects not present in g).
func ViolationRows(g *arch.Graph, report *arch.Report) (units, packages []map[string]any) {
	for _, f := range report.Violations() {
		deps := f.Dependencies
		if deps == nil {
			deps = []string{}
		}
		row := map[string]any{
			"run":          report.ID,
			"rule":         f.RuleID,
			"subject":      f.Subject,
			"severity":     f.Severity.String(),
			"message":      f.Message,
			"dependencies": deps,
		}
		if _, ok := g.Unit(f.Subject); ok {
			units = append(units, row)
		} else {
			packages = append(packages, row)
		}
	}
	return units, packages
}
