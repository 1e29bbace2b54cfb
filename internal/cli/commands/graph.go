package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/archlint/internal/cli/output"
	"github.com/leapstack-labs/archlint/internal/dag"
	"github.com/leapstack-labs/archlint/pkg/arch"
	"github.com/spf13/cobra"
)

// GraphOptions holds options for the graph command.
type GraphOptions struct {
	Source SourceOptions
	Format string // Output format
	Focus  string // Only show this package and what it reaches
}

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	opts := &GraphOptions{}
	cmd := &cobra.Command{
		Use:   "graph [dir]",
		Short: "Show the package dependency graph",
		Long: `Display the package-level dependency graph.

Packages are grouped by level: level 0 packages depend on no other
package, level n packages only depend on lower levels. Dependency
cycles between packages are reported instead when present.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Show the graph of the current module
  archlint graph

  # Show a graph file
  archlint graph --graph classes.yaml

  # Only show what touches one package
  archlint graph --focus sample.service.api

  # Output as JSON
  archlint graph --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Source.Dir = args[0]
			}
			return runGraph(cmd, opts)
		},
	}

	addSourceFlags(cmd, &opts.Source)
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringVar(&opts.Focus, "focus", "", "Only show this package, its dependencies and its dependents")

	return cmd
}

func runGraph(cmd *cobra.Command, opts *GraphOptions) error {
	cmdCtx, err := NewCommandContext(cmd, opts.Format)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	src, err := resolveSource(cmdCtx.Cfg, &opts.Source)
	if err != nil {
		return err
	}
	g, err := loadGraph(cmd.Context(), src, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}

	view, err := buildGraphOutput(src.String(), g, opts.Focus)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(view)
	case output.ModeMarkdown:
		graphMarkdown(r, view)
	default:
		graphText(r, view)
	}
	return nil
}

// buildGraphOutput computes the package-level view of g.
func buildGraphOutput(src string, g *arch.Graph, focus string) (output.GraphOutput, error) {
	pg := dag.FromArch(g)
	if focus != "" {
		if _, ok := pg.GetNode(focus); !ok {
			return output.GraphOutput{}, fmt.Errorf("package %q not found", focus)
		}
		pg = pg.Focus(focus)
	}

	view := output.GraphOutput{
		Source:   src,
		Packages: make([]output.GraphPackage, 0, pg.NodeCount()),
		Roots:    pg.Roots(),
		Leaves:   pg.Leaves(),
	}
	shown := make(map[string]bool, pg.NodeCount())
	for _, n := range pg.Nodes() {
		shown[n.ID] = true
		view.Units += n.Units
		p := arch.ParsePackage(n.ID)
		view.Packages = append(view.Packages, output.GraphPackage{
			Name:      n.ID,
			Units:     n.Units,
			API:       p.IsAPI,
			Internal:  p.IsInternal,
			DependsOn: pg.DependsOn(n.ID),
			UsedBy:    pg.UsedBy(n.ID),
		})
	}

	view.Edges = countEdges(g, shown)

	if cycles := pg.Cycles(); len(cycles) > 0 {
		view.Cycles = cycles
		return view, nil
	}
	levels, err := pg.Levels()
	if err != nil {
		return view, fmt.Errorf("failed to compute levels: %w", err)
	}
	view.Levels = levels
	return view, nil
}

// countEdges counts the unit dependencies whose both ends reside in shown
// packages.
func countEdges(g *arch.Graph, shown map[string]bool) int {
	n := 0
	for _, u := range g.Units() {
		if !shown[u.Package.Name] {
			continue
		}
		for _, d := range u.Dependencies() {
			if shown[d.TargetPackage.Name] {
				n++
			}
		}
	}
	return n
}

func packageKind(p output.GraphPackage) string {
	switch {
	case p.API:
		return "api"
	case p.Internal:
		return "internal"
	default:
		return "-"
	}
}

func packageRows(view output.GraphOutput) [][]string {
	rows := make([][]string, 0, len(view.Packages))
	for _, p := range view.Packages {
		rows = append(rows, []string{
			p.Name,
			packageKind(p),
			fmt.Sprint(p.Units),
			fmt.Sprint(len(p.DependsOn)),
			fmt.Sprint(len(p.UsedBy)),
		})
	}
	return rows
}

// cyclePath renders a cycle as a closed path, a -> b -> a.
func cyclePath(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	return strings.Join(cycle, " -> ") + " -> " + cycle[0]
}

var packageHeaders = []string{"Package", "Kind", "Units", "Depends On", "Used By"}

func graphText(r *output.Renderer, view output.GraphOutput) {
	styles := r.Styles()
	byName := make(map[string]output.GraphPackage, len(view.Packages))
	for _, p := range view.Packages {
		byName[p.Name] = p
	}

	r.Println(styles.Header1.Render("Package Graph"))
	r.Println("")
	r.Table(packageHeaders, packageRows(view))
	r.Println("")

	if len(view.Cycles) > 0 {
		r.Warning(fmt.Sprintf("%d dependency cycles between packages", len(view.Cycles)))
		for _, c := range view.Cycles {
			r.Printf("  %s\n", cyclePath(c))
		}
		r.Println("")
	}

	for i, level := range view.Levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, name := range level {
			p := byName[name]
			r.Printf("  %s\n", styles.Path.Render(name))
			if len(p.DependsOn) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("depends on:"), strings.Join(p.DependsOn, ", "))
			}
			if len(p.UsedBy) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("used by:"), strings.Join(p.UsedBy, ", "))
			}
		}
		r.Println("")
	}

	if len(view.Roots) > 0 {
		r.Printf("%s %s\n", styles.Bold.Render("Roots:"), strings.Join(view.Roots, ", "))
	}
	if len(view.Leaves) > 0 {
		r.Printf("%s %s\n", styles.Bold.Render("Leaves:"), strings.Join(view.Leaves, ", "))
	}
	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d packages, %d units, %d dependencies",
		len(view.Packages), view.Units, view.Edges)))
}

func graphMarkdown(r *output.Renderer, view output.GraphOutput) {
	byName := make(map[string]output.GraphPackage, len(view.Packages))
	for _, p := range view.Packages {
		byName[p.Name] = p
	}

	r.Println(output.FormatHeader(1, "Package Graph"))
	r.Println("")
	r.Table(packageHeaders, packageRows(view))
	r.Println("")

	if len(view.Cycles) > 0 {
		r.Println(output.FormatHeader(2, "Cycles"))
		for _, c := range view.Cycles {
			r.Printf("- %s\n", cyclePath(c))
		}
		r.Println("")
	}

	for i, level := range view.Levels {
		levelName := fmt.Sprintf("Level %d", i)
		if i == 0 {
			levelName = "Level 0 (Foundations)"
		}
		r.Println(output.FormatHeader(2, levelName))
		for _, name := range level {
			p := byName[name]
			r.Printf("- %s\n", name)
			if len(p.DependsOn) > 0 {
				r.Printf("  - depends on: %s\n", strings.Join(p.DependsOn, ", "))
			}
			if len(p.UsedBy) > 0 {
				r.Printf("  - used by: %s\n", strings.Join(p.UsedBy, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Packages", fmt.Sprint(len(view.Packages))))
	r.Println(output.FormatKeyValue("Total Units", fmt.Sprint(view.Units)))
	r.Println(output.FormatKeyValue("Total Dependencies", fmt.Sprint(view.Edges)))
	if len(view.Roots) > 0 {
		r.Println(output.FormatKeyValue("Roots", strings.Join(view.Roots, ", ")))
	}
	if len(view.Leaves) > 0 {
		r.Println(output.FormatKeyValue("Leaves", strings.Join(view.Leaves, ", ")))
	}
}
