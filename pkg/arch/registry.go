package arch

import (
	"fmt"
	"sort"
	"sync"

	"github.com/leapstack-labs/archlint/pkg/core"
)

// globalRegistry is the single global registry for conformance rules.
var globalRegistry = NewRegistry()

// Registry stores registered rules for discovery.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]RuleDef // keyed by ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]RuleDef)}
}

// Check is the function signature for rule checks. A check returns one
// finding per evaluated subject. RuleID and Severity are filled in by the
// analyzer.
type Check func(ctx *Context) []Finding

// RuleDef is a conformance rule definition.
type RuleDef struct {
	ID          string        // Unique identifier, e.g., "AR01"
	Name        string        // Human-readable name, e.g., "slice-isolation"
	Group       string        // Category: "placement", "access"
	Description string        // Human-readable description
	Severity    core.Severity // Default severity
	Check       Check         // The check function
	ConfigKeys  []string      // Configuration keys this rule accepts
	Options     func() any    // Returns a pointer to the default options, nil if none

	Rationale   string
	BadExample  string
	GoodExample string
	Fix         string
}

// Info converts the definition into its documentation DTO.
func (r RuleDef) Info() core.RuleInfo {
	return core.RuleInfo{
		ID:              r.ID,
		Name:            r.Name,
		Group:           r.Group,
		Description:     r.Description,
		DefaultSeverity: r.Severity,
		ConfigKeys:      r.ConfigKeys,
		Rationale:       r.Rationale,
		BadExample:      r.BadExample,
		GoodExample:     r.GoodExample,
		Fix:             r.Fix,
	}
}

// Register adds a rule, replacing any rule with the same ID.
func (r *Registry) Register(rule RuleDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.ID] = rule
}

// GetAll returns all rules ordered by ID.
func (r *Registry) GetAll() []RuleDef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]RuleDef, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}

// GetByID returns a rule by its ID.
func (r *Registry) GetByID(id string) (RuleDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[id]
	return rule, ok
}

// GetByGroup returns all rules in a group ordered by ID.
func (r *Registry) GetByGroup(group string) []RuleDef {
	var rules []RuleDef
	for _, rule := range r.GetAll() {
		if rule.Group == group {
			rules = append(rules, rule)
		}
	}
	return rules
}

// Count returns the number of registered rules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Register adds a rule to the global registry.
// Call this from init() functions in rule packages.
func Register(rule RuleDef) {
	globalRegistry.Register(rule)
}

// GetAll returns all globally registered rules ordered by ID.
func GetAll() []RuleDef {
	return globalRegistry.GetAll()
}

// GetByID returns a globally registered rule by its ID.
func GetByID(id string) (RuleDef, bool) {
	return globalRegistry.GetByID(id)
}

// GetByGroup returns all globally registered rules in a group.
func GetByGroup(group string) []RuleDef {
	return globalRegistry.GetByGroup(group)
}

// Count returns the number of globally registered rules.
func Count() int {
	return globalRegistry.Count()
}

// AllRules returns documentation for every globally registered rule.
func AllRules() []core.RuleInfo {
	rules := GetAll()
	infos := make([]core.RuleInfo, len(rules))
	for i, r := range rules {
		infos[i] = r.Info()
	}
	return infos
}

// optionsValidator is implemented by option structs that check their values.
type optionsValidator interface {
	Validate() error
}

// ValidateOptions decodes opts into the rule's option struct and validates
// the result. Rules without options accept only an empty option set.
func (r RuleDef) ValidateOptions(opts core.RuleOptions) error {
	if r.Options == nil {
		if len(opts) > 0 {
			return fmt.Errorf("rule %s does not accept options", r.ID)
		}
		return nil
	}
	target := r.Options()
	ctx := NewContext(nil, map[string]core.RuleOptions{r.ID: opts})
	if err := ctx.DecodeOptions(r.ID, target); err != nil {
		return err
	}
	if v, ok := target.(optionsValidator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("invalid options for rule %s: %w", r.ID, err)
		}
	}
	return nil
}
