package core

// RulesConfig holds rule configuration shared by the CLI and the analyzer.
type RulesConfig struct {
	// Disabled contains rule IDs to skip
	Disabled []string `koanf:"disabled"`

	// Severity maps rule ID to severity override (error, warning, info, hint)
	Severity map[string]string `koanf:"severity"`

	// Options maps rule ID to rule-specific options
	Options map[string]RuleOptions `koanf:"options"`
}

// RuleOptions holds rule-specific configuration options.
type RuleOptions map[string]any
