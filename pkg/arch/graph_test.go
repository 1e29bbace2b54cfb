package arch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddUnit("shop.orders.api.Service", "shop.orders.api", KindType, "service.go:3"))
	require.NoError(t, b.AddUnit("shop.orders.internal.serviceImpl", "shop.orders.internal", KindType, ""))
	require.NoError(t, b.AddUnit("shop.billing.api.Invoice", "shop.billing.api", KindType, ""))

	require.NoError(t, b.AddDependency("shop.orders.internal.serviceImpl", "shop.orders.api.Service", ""))
	require.NoError(t, b.AddDependency("shop.orders.internal.serviceImpl", "shop.billing.api.Invoice", "impl uses invoice"))
	// duplicates and self references are ignored
	require.NoError(t, b.AddDependency("shop.orders.internal.serviceImpl", "shop.billing.api.Invoice", "impl uses invoice"))
	require.NoError(t, b.AddDependency("shop.orders.api.Service", "shop.orders.api.Service", ""))

	g := b.Build()

	assert.Equal(t, 3, g.UnitCount())
	assert.Equal(t, 2, g.EdgeCount())

	names := make([]string, 0, g.UnitCount())
	for _, u := range g.Units() {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{
		"shop.billing.api.Invoice",
		"shop.orders.api.Service",
		"shop.orders.internal.serviceImpl",
	}, names)

	impl, ok := g.Unit("shop.orders.internal.serviceImpl")
	require.True(t, ok)
	require.Len(t, impl.Dependencies(), 2)
	assert.Equal(t, "shop.billing.api.Invoice", impl.Dependencies()[0].Target)
	assert.Equal(t, "impl uses invoice", impl.Dependencies()[0].Description)
	assert.True(t, impl.Dependencies()[0].TargetPackage.IsAPI)
	assert.Equal(t, "<shop.orders.internal.serviceImpl> depends on <shop.orders.api.Service>",
		impl.Dependencies()[1].Description)

	pkgs := g.Packages()
	require.Len(t, pkgs, 3)
	assert.Equal(t, "shop.billing.api", pkgs[0].Name)
	assert.Len(t, g.UnitsIn("shop.orders.api"), 1)
	assert.Empty(t, g.UnitsIn("shop.missing"))
}

func TestBuilder_Errors(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddUnit("a.api.A", "a.api", KindType, ""))

	assert.ErrorIs(t, b.AddUnit("a.api.A", "a.api", KindType, ""), ErrDuplicateUnit)
	assert.Error(t, b.AddUnit("", "a.api", KindType, ""))
	assert.ErrorIs(t, b.AddDependency("a.api.A", "b.api.B", ""), ErrUnknownUnit)
	assert.ErrorIs(t, b.AddDependency("b.api.B", "a.api.A", ""), ErrUnknownUnit)
	assert.True(t, b.HasUnit("a.api.A"))
	assert.False(t, b.HasUnit("b.api.B"))
}

func TestGraph_PackageEdges(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddUnit("a.api.A", "a.api", KindType, ""))
	require.NoError(t, b.AddUnit("a.api.A2", "a.api", KindType, ""))
	require.NoError(t, b.AddUnit("a.internal.Impl", "a.internal", KindType, ""))
	require.NoError(t, b.AddUnit("b.api.B", "b.api", KindType, ""))
	require.NoError(t, b.AddDependency("a.internal.Impl", "a.api.A", ""))
	require.NoError(t, b.AddDependency("a.internal.Impl", "a.api.A2", ""))
	require.NoError(t, b.AddDependency("a.internal.Impl", "b.api.B", ""))
	require.NoError(t, b.AddDependency("a.api.A", "a.api.A2", ""))

	edges := b.Build().PackageEdges()

	assert.Equal(t, map[string][]string{
		"a.internal": {"a.api", "b.api"},
	}, edges)
}
