package importer

import (
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/archlint/pkg/arch"
	"gopkg.in/yaml.v3"
)

// GraphFile is the document format read by LoadFile. JSON documents with the
// same shape are accepted too.
//
//	units:
//	  - name: org.example.service.api.Service
//	    kind: class
//	    dependencies:
//	      - target: org.example.service.internal.ServiceImpl
//	        description: Service references ServiceImpl in (Service.java:12)
type GraphFile struct {
	Units []FileUnit `yaml:"units" json:"units"`
}

// FileUnit is one code unit of a graph document. Package defaults to the
// name without its last segment.
type FileUnit struct {
	Name         string           `yaml:"name" json:"name"`
	Package      string           `yaml:"package,omitempty" json:"package,omitempty"`
	Kind         string           `yaml:"kind,omitempty" json:"kind,omitempty"`
	Position     string           `yaml:"position,omitempty" json:"position,omitempty"`
	Dependencies []FileDependency `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// FileDependency is an outgoing edge of a FileUnit.
type FileDependency struct {
	Target      string `yaml:"target" json:"target"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// LoadFile reads a graph document from disk.
func LoadFile(path string) (*arch.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	g, err := ParseGraph(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ParseGraph decodes a graph document. Every dependency target must be a
// unit of the same document.
func ParseGraph(data []byte) (*arch.Graph, error) {
	var doc GraphFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse graph: %w", err)
	}

	b := arch.NewBuilder()
	for i, u := range doc.Units {
		pkg := u.Package
		if pkg == "" {
			pkg = defaultPackage(u.Name)
		}
		kind := u.Kind
		if kind == "" {
			kind = arch.KindClass
		}
		if err := b.AddUnit(u.Name, pkg, kind, u.Position); err != nil {
			return nil, fmt.Errorf("unit %d: %w", i, err)
		}
	}
	for _, u := range doc.Units {
		for _, d := range u.Dependencies {
			if err := b.AddDependency(u.Name, d.Target, d.Description); err != nil {
				return nil, fmt.Errorf("unit %s: %w", u.Name, err)
			}
		}
	}
	return b.Build(), nil
}

// FromGraph converts a graph back into its document form.
func FromGraph(g *arch.Graph) GraphFile {
	var doc GraphFile
	for _, u := range g.Units() {
		fu := FileUnit{
			Name:     u.Name,
			Package:  u.Package.Name,
			Kind:     u.Kind,
			Position: u.Position,
		}
		for _, d := range u.Dependencies() {
			fu.Dependencies = append(fu.Dependencies, FileDependency{
				Target:      d.Target,
				Description: d.Description,
			})
		}
		doc.Units = append(doc.Units, fu)
	}
	return doc
}

func defaultPackage(name string) string {
	if i := strings.LastIndex(name, arch.Separator); i >= 0 {
		return name[:i]
	}
	return ""
}
