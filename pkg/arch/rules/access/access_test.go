package access

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/archlint/pkg/arch"
	"github.com/leapstack-labs/archlint/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildGraph creates a graph from "pkg.Unit" names and "from->to" edges.
// The package of a unit is its name without the last segment.
func buildGraph(t *testing.T, units []string, edges ...string) *arch.Graph {
	t.Helper()
	b := arch.NewBuilder()
	for _, u := range units {
		pkg := u[:strings.LastIndex(u, ".")]
		require.NoError(t, b.AddUnit(u, pkg, arch.KindType, ""))
	}
	for _, e := range edges {
		from, to, ok := strings.Cut(e, "->")
		require.True(t, ok, "edge %q", e)
		require.NoError(t, b.AddDependency(from, to, ""))
	}
	return b.Build()
}

func violated(findings []arch.Finding) []string {
	var out []string
	for _, f := range findings {
		if f.Violated {
			out = append(out, f.Subject)
		}
	}
	return out
}

func TestAR01_SliceIsolation(t *testing.T) {
	tests := []struct {
		name       string
		units      []string
		edges      []string
		wantSlices int
		want       []string
	}{
		{
			name: "different slices depend on each other",
			units: []string{
				"org.example.billing.internal.Invoicer",
				"org.example.orders.internal.Repo",
			},
			edges:      []string{"org.example.billing.internal.Invoicer->org.example.orders.internal.Repo"},
			wantSlices: 2,
			want:       []string{"org.example.billing.internal"},
		},
		{
			name: "same slice never flagged",
			units: []string{
				"org.example.orders.internal.Repo",
				"org.example.orders.internal.util.Cache",
			},
			edges: []string{
				"org.example.orders.internal.Repo->org.example.orders.internal.util.Cache",
				"org.example.orders.internal.util.Cache->org.example.orders.internal.Repo",
			},
			wantSlices: 1,
		},
		{
			name: "edges into api packages are not slice edges",
			units: []string{
				"org.example.billing.internal.Invoicer",
				"org.example.orders.api.Orders",
			},
			edges:      []string{"org.example.billing.internal.Invoicer->org.example.orders.api.Orders"},
			wantSlices: 1,
		},
		{
			name: "api units are outside every slice",
			units: []string{
				"org.example.billing.api.Billing",
				"org.example.orders.internal.Repo",
			},
			edges:      []string{"org.example.billing.api.Billing->org.example.orders.internal.Repo"},
			wantSlices: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := arch.NewContext(buildGraph(t, tt.units, tt.edges...), nil)
			findings := checkSliceIsolation(ctx)

			assert.Len(t, findings, tt.wantSlices)
			assert.Equal(t, tt.want, violated(findings))
		})
	}
}

func TestAR01_Message(t *testing.T) {
	g := buildGraph(t,
		[]string{"a.x.internal.X", "a.y.internal.Y", "a.z.internal.Z"},
		"a.x.internal.X->a.z.internal.Z", "a.x.internal.X->a.y.internal.Y")

	findings := checkSliceIsolation(arch.NewContext(g, nil))
	require.Len(t, findings, 3)

	f := findings[0]
	assert.Equal(t, "a.x.internal", f.Subject)
	assert.True(t, f.Violated)
	assert.Equal(t, "Slice a.x.internal depends on slice(s) a.y.internal, a.z.internal", f.Message)
	assert.Equal(t, []string{
		"<a.x.internal.X> depends on <a.y.internal.Y>",
		"<a.x.internal.X> depends on <a.z.internal.Z>",
	}, f.Dependencies)
}

func TestAR05_CrossPackageInternal(t *testing.T) {
	tests := []struct {
		name    string
		units   []string
		edges   []string
		options core.RuleOptions
		want    []string
	}{
		{
			name:  "api unit uses own sibling internal",
			units: []string{"org.example.service.api.Service", "org.example.service.internal.Helper"},
			edges: []string{"org.example.service.api.Service->org.example.service.internal.Helper"},
		},
		{
			name:  "api unit uses other module internal",
			units: []string{"org.example.service.api.Service", "org.example.billing.internal.Ledger"},
			edges: []string{"org.example.service.api.Service->org.example.billing.internal.Ledger"},
			want:  []string{"org.example.service.api.Service"},
		},
		{
			name:  "internal unit uses own package",
			units: []string{"org.example.service.internal.Impl", "org.example.service.internal.Helper"},
			edges: []string{"org.example.service.internal.Impl->org.example.service.internal.Helper"},
		},
		{
			name:  "internal unit uses other module internal",
			units: []string{"org.example.service.internal.Impl", "org.example.billing.internal.Ledger"},
			edges: []string{"org.example.service.internal.Impl->org.example.billing.internal.Ledger"},
			want:  []string{"org.example.service.internal.Impl"},
		},
		{
			name:  "plain package uses own internal",
			units: []string{"org.example.service.Facade", "org.example.service.internal.Helper"},
			edges: []string{"org.example.service.Facade->org.example.service.internal.Helper"},
		},
		{
			name:  "nested module internal is another module",
			units: []string{"org.example.service.api.Service", "org.example.service.creation.internal.Creator"},
			edges: []string{"org.example.service.api.Service->org.example.service.creation.internal.Creator"},
			want:  []string{"org.example.service.api.Service"},
		},
		{
			name:    "api scope skips non-api units",
			units:   []string{"org.example.service.internal.Impl", "org.example.billing.internal.Ledger"},
			edges:   []string{"org.example.service.internal.Impl->org.example.billing.internal.Ledger"},
			options: core.RuleOptions{"scope": ScopeAPI},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := arch.NewContext(buildGraph(t, tt.units, tt.edges...),
				map[string]core.RuleOptions{"AR05": tt.options})
			findings := checkCrossPackageInternal(ctx)

			assert.Equal(t, tt.want, violated(findings))
		})
	}
}

func TestAR05_ReportsOnlyOffendingEdges(t *testing.T) {
	g := buildGraph(t,
		[]string{"p.api.S", "p.internal.H", "q.internal.L", "q.api.Q"},
		"p.api.S->p.internal.H", "p.api.S->q.internal.L", "p.api.S->q.api.Q")

	findings := checkCrossPackageInternal(arch.NewContext(g, nil))

	var f arch.Finding
	for _, candidate := range findings {
		if candidate.Subject == "p.api.S" {
			f = candidate
		}
	}
	require.True(t, f.Violated)
	assert.Equal(t, []string{"<p.api.S> depends on <q.internal.L>"}, f.Dependencies)
	assert.Equal(t, "Access to other packages' internal package found within p.api.S", f.Message)
}

func TestAR06_DepthLimit(t *testing.T) {
	tests := []struct {
		name    string
		units   []string
		edges   []string
		options core.RuleOptions
		want    []string
	}{
		{
			name:  "three levels below common prefix",
			units: []string{"a.b.Caller", "a.b.c.d.e.Target"},
			edges: []string{"a.b.Caller->a.b.c.d.e.Target"},
			want:  []string{"a.b.Caller"},
		},
		{
			name:  "two levels below common prefix",
			units: []string{"a.b.Caller", "a.b.c.d.Target"},
			edges: []string{"a.b.Caller->a.b.c.d.Target"},
		},
		{
			name:  "unrelated roots count from the top",
			units: []string{"a.b.Caller", "x.y.z.Target"},
			edges: []string{"a.b.Caller->x.y.z.Target"},
			want:  []string{"a.b.Caller"},
		},
		{
			name:  "reaching up is never too deep",
			units: []string{"a.b.c.d.Caller", "a.Target"},
			edges: []string{"a.b.c.d.Caller->a.Target"},
		},
		{
			name:  "api and internal status does not matter",
			units: []string{"org.example.service.api.S", "org.example.billing.ledger.api.L"},
			edges: []string{"org.example.service.api.S->org.example.billing.ledger.api.L"},
			want:  []string{"org.example.service.api.S"},
		},
		{
			name:    "configured max depth",
			units:   []string{"a.b.Caller", "a.b.c.d.e.Target"},
			edges:   []string{"a.b.Caller->a.b.c.d.e.Target"},
			options: core.RuleOptions{"max_depth": 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := arch.NewContext(buildGraph(t, tt.units, tt.edges...),
				map[string]core.RuleOptions{"AR06": tt.options})
			findings := checkDepthLimit(ctx)

			assert.Len(t, findings, len(tt.units))
			assert.Equal(t, tt.want, violated(findings))
		})
	}
}

func TestOptionsValidation(t *testing.T) {
	ar05, ok := arch.GetByID("AR05")
	require.True(t, ok)
	assert.NoError(t, ar05.ValidateOptions(core.RuleOptions{"scope": "api"}))
	assert.Error(t, ar05.ValidateOptions(core.RuleOptions{"scope": "everything"}))

	ar06, ok := arch.GetByID("AR06")
	require.True(t, ok)
	assert.NoError(t, ar06.ValidateOptions(core.RuleOptions{"max_depth": "4"}))
	assert.Error(t, ar06.ValidateOptions(core.RuleOptions{"max_depth": 0}))

	ar01, ok := arch.GetByID("AR01")
	require.True(t, ok)
	assert.Error(t, ar01.ValidateOptions(core.RuleOptions{"max_depth": 1}))
}
