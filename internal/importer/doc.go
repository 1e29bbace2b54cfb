// Package importer builds dependency graphs for the conformance checker.
//
// Two sources are supported:
//
//   - LoadGo type-checks a Go module with golang.org/x/tools/go/packages and
//     turns every top-level declaration into a code unit.
//   - LoadFile reads a graph document (YAML or JSON) produced by another
//     analyzer, for example a JVM class importer.
//
// Either way the result is an immutable *arch.Graph that is discarded after
// one check run.
package importer
