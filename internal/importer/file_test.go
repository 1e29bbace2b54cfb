package importer_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/archlint/internal/importer"
	"github.com/leapstack-labs/archlint/pkg/arch"
	_ "github.com/leapstack-labs/archlint/pkg/arch/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphPath(name string) string {
	return filepath.Join("testdata", "graphs", name)
}

func TestLoadFile(t *testing.T) {
	g, err := importer.LoadFile(graphPath("service.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7, g.UnitCount())
	assert.Equal(t, 7, g.EdgeCount())

	impl, ok := g.Unit("org.example.service.internal.ServiceServiceImpl")
	require.True(t, ok)
	assert.Equal(t, "org.example.service.internal", impl.Package.Name)
	assert.Equal(t, arch.KindClass, impl.Kind)
	assert.Equal(t, "ServiceServiceImpl.java:9", impl.Position)

	deps := impl.Dependencies()
	require.Len(t, deps, 3)
	assert.Equal(t, "org.example.service.api.ServiceService", deps[0].Target)
	assert.Contains(t, deps[0].Description, "implements interface")
	assert.Equal(t, "org.example.service.creation.api.ServiceCreator", deps[1].Target)
	assert.Equal(t, "<org.example.service.internal.ServiceServiceImpl> depends on <org.example.service.creation.api.ServiceCreator>",
		deps[1].Description)

	svc, ok := g.Unit("org.example.service.api.ServiceService")
	require.True(t, ok)
	assert.Equal(t, "interface", svc.Kind)
}

func TestLoadFile_JSON(t *testing.T) {
	g, err := importer.LoadFile(graphPath("service.json"))
	require.NoError(t, err)
	assert.Equal(t, 2, g.UnitCount())
	assert.Equal(t, 1, g.EdgeCount())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := importer.LoadFile(graphPath("nope.yaml"))
	require.Error(t, err)
}

func TestParseGraph_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "unknown target",
			doc:     "units:\n  - name: a.api.A\n    dependencies:\n      - target: b.api.B\n",
			wantErr: arch.ErrUnknownUnit,
		},
		{
			name:    "duplicate unit",
			doc:     "units:\n  - name: a.api.A\n  - name: a.api.A\n",
			wantErr: arch.ErrDuplicateUnit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importer.ParseGraph([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	_, err := importer.ParseGraph([]byte("units: ["))
	require.Error(t, err)
}

func TestParseGraph_RootPackage(t *testing.T) {
	g, err := importer.ParseGraph([]byte("units:\n  - name: Main\n"))
	require.NoError(t, err)

	u, ok := g.Unit("Main")
	require.True(t, ok)
	assert.True(t, u.Package.Empty())
}

func TestFromGraph_RoundTrip(t *testing.T) {
	g, err := importer.LoadFile(graphPath("service.yaml"))
	require.NoError(t, err)

	doc := importer.FromGraph(g)
	require.Len(t, doc.Units, g.UnitCount())
	assert.Equal(t, "org.example.service.api.Service", doc.Units[0].Name)
	assert.Equal(t, "org.example.service.api", doc.Units[0].Package)
}

func TestViolationsGraph(t *testing.T) {
	g, err := importer.LoadFile(graphPath("violations.yaml"))
	require.NoError(t, err)

	report, err := arch.NewAnalyzer(nil).Analyze(context.Background(), g)
	require.NoError(t, err)

	got := make(map[string][]string)
	for _, f := range report.Violations() {
		got[f.RuleID] = append(got[f.RuleID], f.Subject)
	}
	assert.Equal(t, map[string][]string{
		"AR01": {"org.example.orders.internal"},
		"AR02": {"org.example.Application"},
		"AR03": {"org.example.orders.internal.audit.api.Audit"},
		"AR05": {
			"org.example.Application",
			"org.example.orders.api.Orders",
			"org.example.orders.internal.OrderRepo",
		},
		"AR06": {"org.example.orders.api.Orders"},
	}, got)
}

func TestServiceGraphConforms(t *testing.T) {
	g, err := importer.LoadFile(graphPath("service.yaml"))
	require.NoError(t, err)

	report, err := arch.NewAnalyzer(nil).Analyze(context.Background(), g)
	require.NoError(t, err)
	assert.Empty(t, report.Violations())
}
