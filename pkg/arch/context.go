package arch

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/archlint/pkg/core"
)

// Context provides all data a rule needs: the graph snapshot and the
// rule-specific options. It is read-only and safe for concurrent use.
type Context struct {
	graph   *Graph
	options map[string]core.RuleOptions
}

// NewContext creates a rule context for the given graph.
func NewContext(graph *Graph, options map[string]core.RuleOptions) *Context {
	if graph == nil {
		graph = NewBuilder().Build()
	}
	return &Context{graph: graph, options: options}
}

// Graph returns the graph under analysis.
func (c *Context) Graph() *Graph {
	return c.graph
}

// Units returns all units of the graph sorted by name.
func (c *Context) Units() []*CodeUnit {
	return c.graph.Units()
}

// Options returns the options configured for a rule, or nil.
func (c *Context) Options(ruleID string) core.RuleOptions {
	return c.options[ruleID]
}

// DecodeOptions decodes the options of a rule into out. Fields of out that
// have no configured value keep their current (default) value.
func (c *Context) DecodeOptions(ruleID string, out any) error {
	opts := c.options[ruleID]
	if len(opts) == 0 {
		return nil
	}
	if err := mapstructure.WeakDecode(map[string]any(opts), out); err != nil {
		return fmt.Errorf("invalid options for rule %s: %w", ruleID, err)
	}
	return nil
}
