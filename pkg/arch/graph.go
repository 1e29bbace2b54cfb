package arch

import (
	"errors"
	"fmt"
	"sort"
)

// Code unit kinds produced by the importers.
const (
	KindType  = "type"
	KindFunc  = "func"
	KindVar   = "var"
	KindConst = "const"
	KindClass = "class"
)

// Errors returned by Builder.
var (
	ErrUnknownUnit   = errors.New("unknown code unit")
	ErrDuplicateUnit = errors.New("duplicate code unit")
)

// CodeUnit is a single named unit of code (a type, a function, a class).
type CodeUnit struct {
	Name     string  `json:"name"`
	Package  Package `json:"package"`
	Kind     string  `json:"kind,omitempty"`
	Position string  `json:"position,omitempty"`

	deps []Dependency
}

// Dependencies returns the direct outgoing dependencies of the unit,
// sorted by target name. The slice must not be modified.
func (u *CodeUnit) Dependencies() []Dependency {
	return u.deps
}

// Dependency is a directed edge from one code unit to another.
type Dependency struct {
	Origin        string  `json:"origin"`
	Target        string  `json:"target"`
	TargetPackage Package `json:"target_package"`
	Description   string  `json:"description"`
}

// Graph is an immutable snapshot of code units and their dependencies,
// partitioned by package name. Build one with Builder.
type Graph struct {
	units     []*CodeUnit
	byName    map[string]*CodeUnit
	byPackage map[string][]*CodeUnit
	packages  []Package
	edges     int
}

// Units returns all code units sorted by name.
func (g *Graph) Units() []*CodeUnit {
	return g.units
}

// Unit returns a code unit by fully-qualified name.
func (g *Graph) Unit(name string) (*CodeUnit, bool) {
	u, ok := g.byName[name]
	return u, ok
}

// Packages returns every package that holds at least one unit, sorted by name.
func (g *Graph) Packages() []Package {
	return g.packages
}

// UnitsIn returns the units residing in the named package.
func (g *Graph) UnitsIn(pkg string) []*CodeUnit {
	return g.byPackage[pkg]
}

// UnitCount returns the number of code units.
func (g *Graph) UnitCount() int {
	return len(g.units)
}

// EdgeCount returns the number of dependency edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// PackageEdges returns the distinct package-to-package dependencies, keyed by
// origin package. Edges inside a single package are omitted.
func (g *Graph) PackageEdges() map[string][]string {
	seen := make(map[[2]string]bool)
	result := make(map[string][]string)
	for _, u := range g.units {
		for _, d := range u.deps {
			from, to := u.Package.Name, d.TargetPackage.Name
			if from == to || seen[[2]string{from, to}] {
				continue
			}
			seen[[2]string{from, to}] = true
			result[from] = append(result[from], to)
		}
	}
	for _, targets := range result {
		sort.Strings(targets)
	}
	return result
}

// Builder accumulates units and dependencies and produces a Graph.
// Units must be added before dependencies that reference them.
type Builder struct {
	units map[string]*CodeUnit
	seen  map[depKey]bool
}

type depKey struct {
	origin, target, description string
}

// NewBuilder creates an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{
		units: make(map[string]*CodeUnit),
		seen:  make(map[depKey]bool),
	}
}

// AddUnit registers a code unit residing in the dot-delimited package pkg.
func (b *Builder) AddUnit(name, pkg, kind, position string) error {
	if name == "" {
		return fmt.Errorf("code unit name is empty")
	}
	if _, exists := b.units[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateUnit, name)
	}
	b.units[name] = &CodeUnit{
		Name:     name,
		Package:  ParsePackage(pkg),
		Kind:     kind,
		Position: position,
	}
	return nil
}

// HasUnit reports whether a unit with the given name was added.
func (b *Builder) HasUnit(name string) bool {
	_, ok := b.units[name]
	return ok
}

// AddDependency records that origin references target. References of a unit
// to itself and exact duplicates are ignored. An empty description is
// replaced by a generic one.
func (b *Builder) AddDependency(origin, target, description string) error {
	from, ok := b.units[origin]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUnit, origin)
	}
	to, ok := b.units[target]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUnit, target)
	}
	if origin == target {
		return nil
	}
	if description == "" {
		description = fmt.Sprintf("<%s> depends on <%s>", origin, target)
	}

	key := depKey{origin, target, description}
	if b.seen[key] {
		return nil
	}
	b.seen[key] = true
	from.deps = append(from.deps, Dependency{
		Origin:        origin,
		Target:        target,
		TargetPackage: to.Package,
		Description:   description,
	})
	return nil
}

// Build freezes the accumulated units into a Graph. The builder must not be
// used afterwards.
func (b *Builder) Build() *Graph {
	g := &Graph{
		units:     make([]*CodeUnit, 0, len(b.units)),
		byName:    make(map[string]*CodeUnit, len(b.units)),
		byPackage: make(map[string][]*CodeUnit),
	}

	for name, u := range b.units {
		sort.Slice(u.deps, func(i, j int) bool {
			if u.deps[i].Target != u.deps[j].Target {
				return u.deps[i].Target < u.deps[j].Target
			}
			return u.deps[i].Description < u.deps[j].Description
		})
		g.units = append(g.units, u)
		g.byName[name] = u
		g.edges += len(u.deps)
	}
	sort.Slice(g.units, func(i, j int) bool {
		return g.units[i].Name < g.units[j].Name
	})

	for _, u := range g.units {
		if _, ok := g.byPackage[u.Package.Name]; !ok {
			g.packages = append(g.packages, u.Package)
		}
		g.byPackage[u.Package.Name] = append(g.byPackage[u.Package.Name], u)
	}
	sort.Slice(g.packages, func(i, j int) bool {
		return g.packages[i].Name < g.packages[j].Name
	})

	b.units = nil
	b.seen = nil
	return g
}
