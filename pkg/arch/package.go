package arch

import "strings"

// Package naming conventions.
const (
	Separator       = "."
	APISegment      = "api"
	InternalSegment = "internal"

	apiSuffix      = Separator + APISegment
	internalSuffix = Separator + InternalSegment
)

// Package describes a dot-delimited package name. The convention flags are
// computed once at parse time so rules never re-inspect the raw string.
type Package struct {
	Name       string   `json:"name"`
	Segments   []string `json:"-"`
	IsAPI      bool     `json:"is_api"`
	IsInternal bool     `json:"is_internal"`
}

// ParsePackage parses a dot-delimited package name.
// Malformed names (empty, no dots) parse fine; they just carry no flags.
func ParsePackage(name string) Package {
	p := Package{Name: name}
	if name == "" {
		return p
	}
	p.Segments = strings.Split(name, Separator)
	p.IsAPI = strings.HasSuffix(name, apiSuffix)
	p.IsInternal = strings.HasSuffix(name, internalSuffix)
	return p
}

// Empty reports whether the package has no name.
func (p Package) Empty() bool {
	return p.Name == ""
}

// Conventional reports whether the package ends in ".api" or ".internal".
func (p Package) Conventional() bool {
	return p.IsAPI || p.IsInternal
}

// Parent returns the name of the enclosing package, or "" for a root package.
func (p Package) Parent() string {
	if len(p.Segments) <= 1 {
		return ""
	}
	return strings.Join(p.Segments[:len(p.Segments)-1], Separator)
}

// SiblingInternal returns the internal package that belongs to the same
// module as p: one ".api" suffix is stripped (if present) and ".internal"
// is appended.
func (p Package) SiblingInternal() string {
	base := p.Name
	if p.IsAPI {
		base = strings.TrimSuffix(base, apiSuffix)
	}
	return base + internalSuffix
}

// NestedInConvention reports whether any ancestor segment (every segment but
// the last) is "api" or "internal".
func (p Package) NestedInConvention() bool {
	if len(p.Segments) < 2 {
		return false
	}
	for _, seg := range p.Segments[:len(p.Segments)-1] {
		if seg == APISegment || seg == InternalSegment {
			return true
		}
	}
	return false
}

// SliceToken returns the package path up to and including the deepest
// "internal" segment that has at least one segment before it.
func (p Package) SliceToken() (string, bool) {
	for i := len(p.Segments) - 1; i >= 1; i-- {
		if p.Segments[i] == InternalSegment {
			return strings.Join(p.Segments[:i+1], Separator), true
		}
	}
	return "", false
}

// CommonPrefixLen returns the number of leading segments p and other share.
func (p Package) CommonPrefixLen(other Package) int {
	n := 0
	for n < len(p.Segments) && n < len(other.Segments) && p.Segments[n] == other.Segments[n] {
		n++
	}
	return n
}

// DepthFrom returns the segments of p that remain after stripping the longest
// common segment prefix shared with from.
func (p Package) DepthFrom(from Package) []string {
	return p.Segments[from.CommonPrefixLen(p):]
}

// String returns the package name.
func (p Package) String() string {
	return p.Name
}
