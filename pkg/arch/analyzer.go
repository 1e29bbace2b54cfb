package arch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/archlint/pkg/core"
	"golang.org/x/sync/errgroup"
)

// Analyzer runs conformance rules against a graph.
type Analyzer struct {
	config        *AnalyzerConfig
	registry      *Registry
	logger        *slog.Logger
	disabledRules map[string]bool
}

// AnalyzerConfig holds configuration for the analyzer.
type AnalyzerConfig struct {
	// DisabledRules contains rule IDs to skip
	DisabledRules map[string]bool

	// SeverityOverrides changes the default severity of rules
	SeverityOverrides map[string]core.Severity

	// RuleOptions holds rule-specific options keyed by rule ID
	RuleOptions map[string]core.RuleOptions

	// Concurrency is the number of rules evaluated at once (<= 1 is sequential)
	Concurrency int

	// Registry to take rules from; nil means the global registry
	Registry *Registry

	// Logger for progress messages; nil discards
	Logger *slog.Logger
}

// NewAnalyzerConfig creates a default configuration.
func NewAnalyzerConfig() *AnalyzerConfig {
	return &AnalyzerConfig{
		DisabledRules:     make(map[string]bool),
		SeverityOverrides: make(map[string]core.Severity),
		RuleOptions:       make(map[string]core.RuleOptions),
		Concurrency:       1,
	}
}

// NewAnalyzer creates a new analyzer with optional configuration.
func NewAnalyzer(config *AnalyzerConfig) *Analyzer {
	if config == nil {
		config = NewAnalyzerConfig()
	}
	if config.DisabledRules == nil {
		config.DisabledRules = make(map[string]bool)
	}
	registry := config.Registry
	if registry == nil {
		registry = globalRegistry
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{
		config:        config,
		registry:      registry,
		logger:        logger,
		disabledRules: config.DisabledRules,
	}
}

// Rules returns the enabled rules in evaluation order.
func (a *Analyzer) Rules() []RuleDef {
	var rules []RuleDef
	for _, rule := range a.registry.GetAll() {
		if a.isDisabled(rule.ID) {
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}

// Analyze runs every enabled rule against the graph. All rules run to
// completion; errors come only from invalid rule options or cancellation
// of ctx.
func (a *Analyzer) Analyze(ctx context.Context, graph *Graph) (*Report, error) {
	rules := a.Rules()
	for _, rule := range rules {
		if err := rule.ValidateOptions(a.config.RuleOptions[rule.ID]); err != nil {
			return nil, err
		}
	}
	rc := NewContext(graph, a.config.RuleOptions)

	report := &Report{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Units:     rc.Graph().UnitCount(),
		Edges:     rc.Graph().EdgeCount(),
	}

	// Results are stored by rule index so the order never depends on scheduling
	results := make([][]Finding, len(rules))

	if a.config.Concurrency > 1 {
		eg, egctx := errgroup.WithContext(ctx)
		eg.SetLimit(a.config.Concurrency)
		for i, rule := range rules {
			eg.Go(func() error {
				if err := egctx.Err(); err != nil {
					return err
				}
				results[i] = a.runRule(rule, rc)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, rule := range rules {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = a.runRule(rule, rc)
		}
	}

	for i, rule := range rules {
		report.Rules = append(report.Rules, rule.ID)
		report.Findings = append(report.Findings, results[i]...)
	}
	report.FinishedAt = time.Now()

	a.logger.Debug("analysis complete",
		"run_id", report.ID,
		"rules", len(rules),
		"findings", len(report.Findings),
		"violations", len(report.Violations()))

	return report, nil
}

func (a *Analyzer) runRule(rule RuleDef, rc *Context) []Finding {
	findings := rule.Check(rc)
	severity := a.getSeverity(rule.ID, rule.Severity)
	for i := range findings {
		findings[i].RuleID = rule.ID
		findings[i].Severity = severity
	}
	a.logger.Debug("rule evaluated", "rule", rule.ID, "findings", len(findings))
	return findings
}

func (a *Analyzer) isDisabled(ruleID string) bool {
	return a.disabledRules[ruleID]
}

func (a *Analyzer) getSeverity(ruleID string, defaultSev core.Severity) core.Severity {
	if sev, ok := a.config.SeverityOverrides[ruleID]; ok {
		return sev
	}
	return defaultSev
}

// Disable disables a rule by ID.
func (a *Analyzer) Disable(ruleID string) {
	a.disabledRules[ruleID] = true
}

// Enable enables a previously disabled rule.
func (a *Analyzer) Enable(ruleID string) {
	delete(a.disabledRules, ruleID)
}
