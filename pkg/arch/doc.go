// Package arch provides package-architecture conformance checking.
//
// A check runs over an immutable Graph of code units grouped into
// dot-delimited packages. Two package suffixes carry meaning:
//
//   - ".api" marks the public surface of a package
//   - ".internal" marks the implementation detail of a package
//
// Rules inspect the graph and its dependency edges and return Findings.
// A finding is either satisfied or violated; violations are facts about the
// input graph, not errors of the checker.
//
// # Rule Groups
//
//   - placement (AR02-AR04): where a code unit is allowed to reside
//   - access (AR01, AR05, AR06): which dependency edges are allowed
//
// Rules live in pkg/arch/rules and register themselves with the global
// registry from init().
//
// # Usage
//
// Build a graph, then run the analyzer:
//
//	b := arch.NewBuilder()
//	_ = b.AddUnit("shop.orders.api.Service", "shop.orders.api", arch.KindType, "")
//	graph := b.Build()
//
//	analyzer := arch.NewAnalyzer(nil)
//	report, err := analyzer.Analyze(ctx, graph)
package arch
