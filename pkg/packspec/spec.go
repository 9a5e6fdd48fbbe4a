// Package packspec parses a pack crate's Cargo.toml into an immutable
// declaration: the curated dependencies, their feature groups, the hidden
// filter and the project templates.
package packspec

import (
	"sort"

	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/gobwas/glob"
)

// PackSuffix is the crates.io naming convention for packs
const PackSuffix = "-battery-pack"

// Keyword marks packs on crates.io
const Keyword = "battery-pack"

// AllGroup selects every visible dependency and every augmentation
const AllGroup = "all"

// DependencyDecl is one curated dependency as the pack declares it
type DependencyDecl struct {
	Name     string
	Version  string
	Features []string
	Optional bool
	Kind     manifest.Kind
}

// ResolvedDependency is a dependency selected by a set of groups, carrying
// the union of every feature those groups imply.
type ResolvedDependency struct {
	Name     string
	Version  string
	Features []string
	Optional bool
	Kind     manifest.Kind
}

// Template is a project skeleton shipped inside the pack crate
type Template struct {
	Name        string
	Path        string
	Description string
}

type hiddenPattern struct {
	raw string
	g   glob.Glob
}

// Spec is a parsed pack declaration. It is never mutated after parsing.
type Spec struct {
	Name        string
	Version     string
	Description string
	Repository  string
	Keywords    []string
	// Dir is the crate directory the spec was read from, when known
	Dir string

	deps            []DependencyDecl
	groups          map[string][]string
	declaredDefault bool
	hidden          []hiddenPattern
	templates       []Template
	diagnostics     []Diagnostic
}

// ShortName is the pack name without the -battery-pack suffix
func (s *Spec) ShortName() string {
	if len(s.Name) > len(PackSuffix) && s.Name[len(s.Name)-len(PackSuffix):] == PackSuffix {
		return s.Name[:len(s.Name)-len(PackSuffix)]
	}
	return s.Name
}

// IsHidden reports whether name matches an exact or glob hidden pattern
func (s *Spec) IsHidden(name string) bool {
	for _, p := range s.hidden {
		if p.raw == name || p.g.Match(name) {
			return true
		}
	}
	return false
}

// HiddenPatterns returns the hidden filter as declared
func (s *Spec) HiddenPatterns() []string {
	out := make([]string, len(s.hidden))
	for i, p := range s.hidden {
		out[i] = p.raw
	}
	return out
}

// AllDependencies returns every declaration, hidden ones included, sorted
// by name then kind.
func (s *Spec) AllDependencies() []DependencyDecl {
	return append([]DependencyDecl(nil), s.deps...)
}

// Dependencies returns the visible declarations
func (s *Spec) Dependencies() []DependencyDecl {
	var out []DependencyDecl
	for _, d := range s.deps {
		if !s.IsHidden(d.Name) {
			out = append(out, d)
		}
	}
	return out
}

// Dependency returns the visible declarations of name, one per kind
func (s *Spec) Dependency(name string) []DependencyDecl {
	var out []DependencyDecl
	for _, d := range s.deps {
		if d.Name == name && !s.IsHidden(name) {
			out = append(out, d)
		}
	}
	return out
}

func (s *Spec) declared(name string) bool {
	for _, d := range s.deps {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Groups returns the group names, sorted, with "default" always present
func (s *Spec) Groups() []string {
	names := make([]string, 0, len(s.groups)+1)
	for name := range s.groups {
		names = append(names, name)
	}
	if !s.declaredDefault {
		names = append(names, manifest.DefaultGroup)
	}
	sort.Strings(names)
	return names
}

// HasGroup reports whether group is declared or is the implicit default
func (s *Spec) HasGroup(group string) bool {
	if group == manifest.DefaultGroup || group == AllGroup {
		return true
	}
	_, ok := s.groups[group]
	return ok
}

// GroupMembers returns the visible dependency names a group enables,
// following nested groups, sorted.
func (s *Spec) GroupMembers(group string) []string {
	set := map[string]bool{}
	for _, r := range s.ResolveGroup([]string{group}, false) {
		set[r.Name] = true
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultGroup returns the visible dependency names of the default group
func (s *Spec) DefaultGroup() []string {
	return s.GroupMembers(manifest.DefaultGroup)
}

// HasMeaningfulChoices reports whether picking groups can change the result:
// there is a named group besides default, or an optional visible dependency.
func (s *Spec) HasMeaningfulChoices() bool {
	for name := range s.groups {
		if name != manifest.DefaultGroup {
			return true
		}
	}
	for _, d := range s.Dependencies() {
		if d.Optional {
			return true
		}
	}
	return false
}

// Templates returns the declared templates sorted by name
func (s *Spec) Templates() []Template {
	return append([]Template(nil), s.templates...)
}
