package importer

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/archlint/pkg/arch"
	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/packages"
)

// ErrNoModule is returned when the directory has no usable go.mod.
var ErrNoModule = errors.New("no go.mod found")

// Options controls how a Go module is imported.
type Options struct {
	// Dir is the module root containing go.mod
	Dir string

	// Patterns passed to the package loader (default "./...")
	Patterns []string

	// IncludeTests also imports _test.go files
	IncludeTests bool

	// Prefix is the first segment of every package name. Defaults to the
	// last element of the module path.
	Prefix string

	// Logger for progress messages; nil discards
	Logger *slog.Logger
}

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedImports | packages.NeedTypes | packages.NeedSyntax |
	packages.NeedTypesInfo | packages.NeedTypesSizes

// LoadGo type-checks the module in opts.Dir and returns its graph.
func LoadGo(ctx context.Context, opts Options) (*arch.Graph, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", opts.Dir, err)
	}
	modulePath, err := ModulePath(dir)
	if err != nil {
		return nil, err
	}

	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     dir,
		Tests:   opts.IncludeTests,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			logger.Warn("package error", "package", pkg.PkgPath, "error", e.Msg)
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = segmentName(path.Base(modulePath))
	}

	c := &collector{
		dir:        dir,
		modulePath: modulePath,
		prefix:     prefix,
		builder:    arch.NewBuilder(),
		logger:     logger,
		underTest:  make(map[string]string),
	}

	var project []*packages.Package
	for _, pkg := range pkgs {
		if !c.isProjectPackage(pkg.PkgPath) || strings.HasSuffix(pkg.PkgPath, ".test") {
			continue
		}
		if pkg.Types == nil || pkg.TypesInfo == nil {
			continue
		}
		if isExternalTest(pkg) {
			c.underTest[pkg.PkgPath] = strings.TrimSuffix(pkg.PkgPath, testSuffix)
		}
		project = append(project, pkg)
	}

	// Units first so edges can point at units of any loaded package.
	for _, pkg := range project {
		c.collectUnits(pkg)
	}
	for _, pkg := range project {
		c.collectDependencies(pkg)
	}

	graph := c.builder.Build()
	logger.Debug("go module imported",
		"module", modulePath,
		"packages", len(project),
		"units", graph.UnitCount(),
		"edges", graph.EdgeCount())
	return graph, nil
}

// ModulePath reads the module path from dir/go.mod.
func ModulePath(dir string) (string, error) {
	gomod := filepath.Join(dir, "go.mod")
	data, err := os.ReadFile(gomod)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w in %s", ErrNoModule, dir)
		}
		return "", fmt.Errorf("cannot read go.mod: %w", err)
	}
	modulePath := modfile.ModulePath(data)
	if modulePath == "" {
		return "", fmt.Errorf("%w: module directive missing in %s", ErrNoModule, gomod)
	}
	return modulePath, nil
}

// collector turns type-checked packages into graph units and edges.
type collector struct {
	dir        string
	modulePath string
	prefix     string
	builder    *arch.Builder
	logger     *slog.Logger

	// underTest maps external test packages (pkg_test) to the package
	// they test.
	underTest map[string]string
}

const testSuffix = "_test"

// isExternalTest reports whether pkg is an external test package, declared
// as "package foo_test" next to the package foo it tests.
func isExternalTest(pkg *packages.Package) bool {
	return strings.HasSuffix(pkg.Name, testSuffix) && strings.HasSuffix(pkg.PkgPath, testSuffix)
}

// isProjectPackage reports whether pkgPath belongs to the analysed module.
func (c *collector) isProjectPackage(pkgPath string) bool {
	return pkgPath == c.modulePath || strings.HasPrefix(pkgPath, c.modulePath+"/")
}

// packageName maps a Go import path inside the module to a dot-delimited
// package name.
// External test packages resolve to the package they test.
func (c *collector) packageName(pkgPath string) string {
	if tested, ok := c.underTest[pkgPath]; ok {
		pkgPath = tested
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(pkgPath, c.modulePath), "/")
	if rel == "" {
		return c.prefix
	}
	parts := strings.Split(rel, "/")
	for i, p := range parts {
		parts[i] = segmentName(p)
	}
	return c.prefix + arch.Separator + strings.Join(parts, arch.Separator)
}

// segmentName keeps a path element usable as a single package segment.
func segmentName(s string) string {
	return strings.ReplaceAll(s, arch.Separator, "_")
}

func (c *collector) unitName(pkgPath, name string) string {
	return c.packageName(pkgPath) + arch.Separator + name
}

func (c *collector) position(pos token.Position) string {
	file := pos.Filename
	if rel, err := filepath.Rel(c.dir, file); err == nil {
		file = filepath.ToSlash(rel)
	}
	return fmt.Sprintf("%s:%d", file, pos.Line)
}

// collectUnits adds one unit per top-level declaration. The first
// declaration of a name wins, which matters when test variants of a
// package are loaded too.
func (c *collector) collectUnits(pkg *packages.Package) {
	pkgName := c.packageName(pkg.PkgPath)
	scope := pkg.Types.Scope()

	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		kind := objectKind(obj)
		if kind == "" || name == "_" {
			continue
		}
		unit := pkgName + arch.Separator + name
		if c.builder.HasUnit(unit) {
			continue
		}
		pos := c.position(pkg.Fset.Position(obj.Pos()))
		if err := c.builder.AddUnit(unit, pkgName, kind, pos); err != nil {
			c.logger.Warn("skipping unit", "unit", unit, "error", err)
		}
	}
}

func objectKind(obj types.Object) string {
	switch obj.(type) {
	case *types.TypeName:
		return arch.KindType
	case *types.Func:
		return arch.KindFunc
	case *types.Var:
		return arch.KindVar
	case *types.Const:
		return arch.KindConst
	default:
		return ""
	}
}

// collectDependencies records an edge for every reference from a top-level
// declaration to another project unit.
func (c *collector) collectDependencies(pkg *packages.Package) {
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				owner := d.Name.Name
				if recv := receiverName(d); recv != "" {
					owner = recv
				}
				c.collectReferences(pkg, []string{owner}, d)
			case *ast.GenDecl:
				for _, spec := range d.Specs {
					switch s := spec.(type) {
					case *ast.TypeSpec:
						c.collectReferences(pkg, []string{s.Name.Name}, s)
					case *ast.ValueSpec:
						var owners []string
						for _, n := range s.Names {
							owners = append(owners, n.Name)
						}
						c.collectReferences(pkg, owners, s)
					}
				}
			}
		}
	}
}

func (c *collector) collectReferences(pkg *packages.Package, owners []string, node ast.Node) {
	var origins []string
	for _, o := range owners {
		if o == "_" {
			continue
		}
		unit := c.unitName(pkg.PkgPath, o)
		if c.builder.HasUnit(unit) {
			origins = append(origins, unit)
		}
	}
	if len(origins) == 0 {
		return
	}

	ast.Inspect(node, func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		if !ok {
			return true
		}
		target := c.targetUnit(pkg.TypesInfo.Uses[id])
		if target == "" || !c.builder.HasUnit(target) {
			return true
		}
		pos := c.position(pkg.Fset.Position(id.Pos()))
		for _, origin := range origins {
			desc := fmt.Sprintf("%s references %s in (%s)", origin, target, pos)
			if err := c.builder.AddDependency(origin, target, desc); err != nil {
				c.logger.Warn("skipping dependency", "origin", origin, "target", target, "error", err)
			}
		}
		return true
	})
}

// targetUnit maps a referenced object to the unit that declares it.
// Methods map to their receiver type; fields and locals map to nothing.
func (c *collector) targetUnit(obj types.Object) string {
	if obj == nil || obj.Pkg() == nil || !c.isProjectPackage(obj.Pkg().Path()) {
		return ""
	}
	if fn, ok := obj.(*types.Func); ok {
		if recv := fn.Type().(*types.Signature).Recv(); recv != nil {
			named := namedType(recv.Type())
			if named == nil {
				return ""
			}
			obj = named.Obj()
		}
	}
	if obj.Parent() != obj.Pkg().Scope() {
		return ""
	}
	return c.unitName(obj.Pkg().Path(), obj.Name())
}

func namedType(t types.Type) *types.Named {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, _ := t.(*types.Named)
	return named
}

// receiverName returns the receiver type name of a method declaration.
func receiverName(fd *ast.FuncDecl) string {
	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		return ""
	}
	expr := fd.Recv.List[0].Type
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.Ident:
			return e.Name
		default:
			return ""
		}
	}
}
