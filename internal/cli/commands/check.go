package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/leapstack-labs/archlint/internal/cli/config"
	"github.com/leapstack-labs/archlint/internal/cli/output"
	"github.com/leapstack-labs/archlint/internal/watch"
	"github.com/leapstack-labs/archlint/pkg/arch"
	_ "github.com/leapstack-labs/archlint/pkg/arch/rules" // register all rules
	"github.com/leapstack-labs/archlint/pkg/core"
	"github.com/spf13/cobra"
)

// ErrViolationsFound is returned by check when violations at or above the
// severity threshold exist.
var ErrViolationsFound = errors.New("architecture violations found")

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Source      SourceOptions
	Format      string   // Output format: text, markdown, json
	Disable     []string // Rule IDs to disable
	Rules       []string // Run only specific rules
	Severity    string   // Minimum severity that fails the check
	Concurrency int      // Rules evaluated in parallel
	All         bool     // Also show satisfied findings
	Watch       bool     // Re-run on changes
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Check package architecture conventions",
		Long: `Check a Go module (or a graph file) against the package architecture rules.

Every code unit must live in a package ending in .api or .internal.
Internal packages may only be used by their own api package, slices must
not reach into each other, and dependencies must stay shallow.
Rules can be configured in archlint.yaml.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Check the module in the current directory
  archlint check

  # Check another module
  archlint check ./services/orders

  # Check a graph exported by another analyzer
  archlint check --graph classes.yaml

  # Only fail on errors
  archlint check --severity error

  # Run only the residency and nesting rules
  archlint check --rule AR02,AR03,AR04

  # Re-run whenever a .go file changes
  archlint check --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Source.Dir = args[0]
			}
			return runCheck(cmd, opts)
		},
	}

	addSourceFlags(cmd, &opts.Source)
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Run only specific rules")
	cmd.Flags().StringVar(&opts.Severity, "severity", "", "Minimum severity that fails the check: error, warning, info, hint")
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "j", 0, "Number of rules evaluated in parallel")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Also show satisfied findings")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run the check when files change")

	_ = cmd.RegisterFlagCompletionFunc("severity", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return core.SeverityNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions) error {
	cmdCtx, err := NewCommandContext(cmd, opts.Format)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg

	src, err := resolveSource(cfg, &opts.Source)
	if err != nil {
		return err
	}
	analyzerCfg, err := buildAnalyzerConfig(cfg, opts)
	if err != nil {
		return err
	}
	analyzerCfg.Logger = cmdCtx.Logger
	threshold, err := checkThreshold(cfg, opts)
	if err != nil {
		return err
	}
	showAll := opts.All || cfg.GetCheckConfig().ShowAll

	run := func(ctx context.Context) error {
		g, err := loadGraph(ctx, src, cmdCtx.Logger)
		if err != nil {
			return fmt.Errorf("failed to load graph: %w", err)
		}
		report, err := arch.NewAnalyzer(analyzerCfg).Analyze(ctx, g)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		if err := renderCheckResults(cmdCtx.Renderer, src.String(), report, threshold, showAll); err != nil {
			return err
		}
		if len(report.ViolationsAtOrAbove(threshold)) > 0 {
			return ErrViolationsFound
		}
		return nil
	}

	if !opts.Watch {
		return run(cmd.Context())
	}
	return watchCheck(cmd.Context(), cmdCtx, src, run)
}

// watchCheck runs the check once and again after every change until
// interrupted.
func watchCheck(parent context.Context, cmdCtx *CommandContext, src source, run func(context.Context) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := cmdCtx.Renderer
	report := func(err error) {
		if err != nil && !errors.Is(err, ErrViolationsFound) {
			r.Error(err.Error())
		}
	}
	report(run(ctx))

	opts := watch.Options{Logger: cmdCtx.Logger}
	if src.graph != "" {
		opts.Dir = filepath.Dir(src.graph)
		opts.Files = []string{src.graph}
	} else {
		opts.Dir = src.dir
		opts.Extensions = []string{".go"}
	}

	r.Println(r.Styles().Muted.Render("Watching " + src.String() + " for changes (Ctrl+C to stop)"))
	err := watch.New(opts).Run(ctx, func(ctx context.Context, changed []string) {
		cmdCtx.Logger.Debug("files changed", "count", len(changed))
		r.Println("")
		r.Println(r.Styles().Muted.Render(fmt.Sprintf("Change detected in %s", strings.Join(changed, ", "))))
		report(run(ctx))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildAnalyzerConfig merges the rules section of the config with the CLI
// flags. Flags take precedence.
func buildAnalyzerConfig(cfg *config.Config, opts *CheckOptions) (*arch.AnalyzerConfig, error) {
	analyzerCfg := arch.NewAnalyzerConfig()

	// Apply project config first (lower precedence)
	rulesCfg := cfg.GetRulesConfig()
	for _, id := range rulesCfg.Disabled {
		analyzerCfg.DisabledRules[normalizeRuleID(id)] = true
	}
	for id, sev := range rulesCfg.Severity {
		id = normalizeRuleID(id)
		if strings.EqualFold(strings.TrimSpace(sev), "off") {
			analyzerCfg.DisabledRules[id] = true
			continue
		}
		if s, ok := core.ParseSeverity(sev); ok {
			analyzerCfg.SeverityOverrides[id] = s
		}
	}
	for id, ruleOpts := range rulesCfg.Options {
		analyzerCfg.RuleOptions[normalizeRuleID(id)] = ruleOpts
	}

	// Apply CLI overrides (higher precedence)
	for _, id := range opts.Disable {
		analyzerCfg.DisabledRules[normalizeRuleID(id)] = true
	}

	// If --rule specified, disable all others
	if len(opts.Rules) > 0 {
		enabled := make(map[string]bool)
		for _, id := range opts.Rules {
			id = normalizeRuleID(id)
			if _, ok := arch.GetByID(id); !ok {
				return nil, fmt.Errorf("rule %q not found", id)
			}
			enabled[id] = true
		}
		for _, rule := range arch.GetAll() {
			if !enabled[rule.ID] {
				analyzerCfg.DisabledRules[rule.ID] = true
			} else {
				delete(analyzerCfg.DisabledRules, rule.ID)
			}
		}
	}

	analyzerCfg.Concurrency = cfg.GetCheckConfig().Concurrency
	if opts.Concurrency > 0 {
		analyzerCfg.Concurrency = opts.Concurrency
	}
	return analyzerCfg, nil
}

// normalizeRuleID uppercases IDs, since environment variables deliver
// configuration keys in lower case.
func normalizeRuleID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func checkThreshold(cfg *config.Config, opts *CheckOptions) (core.Severity, error) {
	name := cfg.GetCheckConfig().Severity
	if opts.Severity != "" {
		name = opts.Severity
	}
	sev, ok := core.ParseSeverity(name)
	if !ok {
		return sev, fmt.Errorf("invalid severity %q (valid: %s)", name, strings.Join(core.SeverityNames(), ", "))
	}
	return sev, nil
}

// shownFindings returns the findings a check prints: violations at or above
// the threshold, or every finding when showAll is set.
func shownFindings(report *arch.Report, threshold core.Severity, showAll bool) []arch.Finding {
	if showAll {
		return report.Findings
	}
	return report.ViolationsAtOrAbove(threshold)
}

func renderCheckResults(r *output.Renderer, src string, report *arch.Report, threshold core.Severity, showAll bool) error {
	findings := shownFindings(report, threshold, showAll)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(checkOutput(src, report, findings))
	case output.ModeMarkdown:
		renderCheckMarkdown(r, src, report, findings)
	default:
		renderCheckText(r, report, findings)
	}
	return nil
}

func checkOutput(src string, report *arch.Report, findings []arch.Finding) output.CheckOutput {
	s := report.Summary()
	out := output.CheckOutput{
		RunID:      report.ID,
		Source:     src,
		DurationMS: report.Duration().Milliseconds(),
		Rules:      report.Rules,
		Summary: output.CheckSummary{
			Units:      report.Units,
			Edges:      report.Edges,
			Evaluated:  s.Evaluated,
			Violations: s.Violations,
			Errors:     s.Errors,
			Warnings:   s.Warnings,
			Info:       s.Info,
			Hints:      s.Hints,
		},
		Findings: make([]output.CheckFinding, 0, len(findings)),
	}
	for _, f := range findings {
		out.Findings = append(out.Findings, output.CheckFinding{
			RuleID:       f.RuleID,
			Rule:         ruleName(f.RuleID),
			Severity:     f.Severity.String(),
			Subject:      f.Subject,
			Package:      f.Package,
			Violated:     f.Violated,
			Message:      f.Message,
			Dependencies: f.Dependencies,
		})
	}
	return out
}

func ruleName(id string) string {
	if rule, ok := arch.GetByID(id); ok {
		return rule.Name
	}
	return ""
}

// groupFindings groups findings by rule, keeping the report's rule order.
func groupFindings(report *arch.Report, findings []arch.Finding) ([]string, map[string][]arch.Finding) {
	byRule := make(map[string][]arch.Finding)
	for _, f := range findings {
		byRule[f.RuleID] = append(byRule[f.RuleID], f)
	}
	var ids []string
	for _, id := range report.Rules {
		if len(byRule[id]) > 0 {
			ids = append(ids, id)
		}
	}
	return ids, byRule
}

func renderCheckText(r *output.Renderer, report *arch.Report, findings []arch.Finding) {
	styles := r.Styles()
	ids, byRule := groupFindings(report, findings)

	for _, id := range ids {
		r.Println(styles.Header2.Render(fmt.Sprintf("%s %s", id, ruleName(id))))
		for _, f := range byRule[id] {
			status := styles.StatusSuccess.String()
			if f.Violated {
				status = severityStyle(r, f.Severity)
			}
			r.Printf("  %s  %s\n", status, f.Message)
			for _, dep := range f.Dependencies {
				r.Println(styles.Muted.Render("      " + dep))
			}
		}
		r.Println("")
	}

	s := report.Summary()
	if s.Violations == 0 {
		r.Success(fmt.Sprintf("No architecture violations (%d units, %d rules)", report.Units, len(report.Rules)))
		return
	}
	r.Printf("Summary: %s\n", summaryLine(s, report))
}

func renderCheckMarkdown(r *output.Renderer, src string, report *arch.Report, findings []arch.Finding) {
	s := report.Summary()
	ids, byRule := groupFindings(report, findings)

	r.Println(output.FormatHeader(1, "Architecture Check"))
	r.Println(output.FormatKeyValue("Source", "`"+src+"`"))
	r.Println(output.FormatKeyValue("Run", report.ID))
	r.Println(output.FormatKeyValue("Result", summaryLine(s, report)))
	r.Println("")

	counts := report.ByRule()
	rows := make([][]string, 0, len(report.Rules))
	for _, id := range report.Rules {
		violated := 0
		for _, f := range counts[id] {
			if f.Violated {
				violated++
			}
		}
		rows = append(rows, []string{id, ruleName(id), fmt.Sprint(len(counts[id])), fmt.Sprint(violated)})
	}
	r.Table([]string{"Rule", "Name", "Evaluated", "Violated"}, rows)
	r.Println("")

	for _, id := range ids {
		r.Println(output.FormatHeader(2, fmt.Sprintf("%s - %s", id, ruleName(id))))
		for _, f := range byRule[id] {
			label := "ok"
			if f.Violated {
				label = f.Severity.String()
			}
			r.Printf("- **%s** %s\n", label, f.Message)
			for _, dep := range f.Dependencies {
				r.Printf("  - `%s`\n", dep)
			}
		}
		r.Println("")
	}
}

func summaryLine(s arch.Summary, report *arch.Report) string {
	parts := []string{fmt.Sprintf("%d violations", s.Violations)}
	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", s.Errors))
	}
	if s.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", s.Warnings))
	}
	if s.Info > 0 {
		parts = append(parts, fmt.Sprintf("%d info", s.Info))
	}
	if s.Hints > 0 {
		parts = append(parts, fmt.Sprintf("%d hints", s.Hints))
	}
	return fmt.Sprintf("%s in %d findings over %d units", strings.Join(parts, ", "), s.Evaluated, report.Units)
}

func severityStyle(r *output.Renderer, sev core.Severity) string {
	switch sev {
	case core.SeverityError:
		return r.Styles().Error.Render("error  ")
	case core.SeverityWarning:
		return r.Styles().Warning.Render("warning")
	case core.SeverityInfo:
		return r.Styles().Info.Render("info   ")
	case core.SeverityHint:
		return r.Styles().Muted.Render("hint   ")
	default:
		return r.Styles().Muted.Render("unknown")
	}
}
