package manifest

import (
	"sort"
	"strings"

	"github.com/arthur-debert/bpack/pkg/errors"
)

// Kind selects one of the three dependency tables
type Kind int

const (
	Runtime Kind = iota
	Dev
	Build
)

// Kinds lists every dependency kind in table order
var Kinds = []Kind{Runtime, Dev, Build}

// Table returns the manifest table holding dependencies of this kind
func (k Kind) Table() string {
	switch k {
	case Dev:
		return "dev-dependencies"
	case Build:
		return "build-dependencies"
	default:
		return "dependencies"
	}
}

func (k Kind) String() string {
	switch k {
	case Dev:
		return "dev"
	case Build:
		return "build"
	default:
		return "runtime"
	}
}

// ParseKind accepts "runtime", "normal", "dev", "build" and the table names
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "runtime", "normal", "dependencies", "":
		return Runtime, nil
	case "dev", "dev-dependencies":
		return Dev, nil
	case "build", "build-dependencies":
		return Build, nil
	}
	return Runtime, errors.Newf(errors.ErrInvalidInput, "unknown dependency kind %q", s)
}

// WorkspaceTable is the path of the shared workspace dependency table
var WorkspaceTable = []string{"workspace", "dependencies"}

// Dependency is one entry of a dependency table
type Dependency struct {
	Name      string
	Version   string
	Features  []string
	Optional  bool
	Workspace bool
	Path      string
	Git       string
}

// HasFeature reports whether f is enabled on the dependency
func (d Dependency) HasFeature(f string) bool {
	for _, have := range d.Features {
		if have == f {
			return true
		}
	}
	return false
}

// MissingFeatures returns the members of want not enabled on d, in order
func (d Dependency) MissingFeatures(want []string) []string {
	var missing []string
	for _, f := range want {
		if !d.HasFeature(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

func decodeDependency(name string, v interface{}) Dependency {
	dep := Dependency{Name: name}
	switch val := v.(type) {
	case string:
		dep.Version = val
	case map[string]interface{}:
		dep.Version, _ = val["version"].(string)
		dep.Optional, _ = val["optional"].(bool)
		dep.Workspace, _ = val["workspace"].(bool)
		dep.Path, _ = val["path"].(string)
		dep.Git, _ = val["git"].(string)
		dep.Features = stringList(val["features"])
	}
	return dep
}

func stringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func dependencyUpdate(dep Dependency) update {
	str := func(v string) string {
		if v == "" {
			return ""
		}
		return renderString(v)
	}
	flag := func(v bool) string {
		if v {
			return "true"
		}
		return ""
	}
	features := ""
	if len(dep.Features) > 0 {
		features = renderStringArray(dep.Features)
	}

	upd := update{fields: []field{
		{key: "workspace", value: flag(dep.Workspace), zero: "false"},
		{key: "version", value: str(dep.Version)},
		{key: "path", value: str(dep.Path)},
		{key: "git", value: str(dep.Git)},
		{key: "features", value: features, zero: "[]"},
		{key: "optional", value: flag(dep.Optional), zero: "false"},
	}}
	if dep.Version != "" && len(dep.Features) == 0 && !dep.Optional && !dep.Workspace && dep.Path == "" && dep.Git == "" {
		upd.short = renderString(dep.Version)
	}
	return upd
}

func (m *Model) getIn(path []string, name string) (Dependency, bool) {
	tbl, ok := m.table(path...)
	if !ok {
		return Dependency{}, false
	}
	v, ok := tbl[name]
	if !ok {
		return Dependency{}, false
	}
	return decodeDependency(name, v), true
}

func (m *Model) listIn(path []string) []Dependency {
	tbl, ok := m.table(path...)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(tbl))
	for name := range tbl {
		names = append(names, name)
	}
	sort.Strings(names)
	deps := make([]Dependency, len(names))
	for i, name := range names {
		deps[i] = decodeDependency(name, tbl[name])
	}
	return deps
}

// GetDependency reads name from the kind's table, whichever style declares it
func (m *Model) GetDependency(kind Kind, name string) (Dependency, bool) {
	return m.getIn([]string{kind.Table()}, name)
}

// Dependencies lists the kind's table sorted by name
func (m *Model) Dependencies(kind Kind) []Dependency {
	return m.listIn([]string{kind.Table()})
}

// SetDependency inserts or updates name in the kind's table. Existing entries
// keep their style and unmanaged keys; new entries follow the table's style.
func (m *Model) SetDependency(kind Kind, name string, dep Dependency) error {
	return m.setEntry([]string{kind.Table()}, name, dependencyUpdate(dep))
}

// RemoveDependency deletes name from the kind's table. A matching
// [workspace.dependencies] entry is removed only when deep is set.
func (m *Model) RemoveDependency(kind Kind, name string, deep bool) bool {
	removed := m.removeEntry([]string{kind.Table()}, name)
	if deep {
		if m.removeEntry(WorkspaceTable, name) {
			removed = true
		}
	}
	return removed
}

// WorkspaceDependency reads name from [workspace.dependencies]
func (m *Model) WorkspaceDependency(name string) (Dependency, bool) {
	return m.getIn(WorkspaceTable, name)
}

// WorkspaceDependencies lists [workspace.dependencies] sorted by name
func (m *Model) WorkspaceDependencies() []Dependency {
	return m.listIn(WorkspaceTable)
}

// SetWorkspaceDependency inserts or updates name in [workspace.dependencies]
func (m *Model) SetWorkspaceDependency(name string, dep Dependency) error {
	dep.Workspace = false
	return m.setEntry(WorkspaceTable, name, dependencyUpdate(dep))
}

// RemoveWorkspaceDependency deletes name from [workspace.dependencies]
func (m *Model) RemoveWorkspaceDependency(name string) bool {
	return m.removeEntry(WorkspaceTable, name)
}

// FindDependency returns the first table declaring name, in Kinds order
func (m *Model) FindDependency(name string) (Dependency, Kind, bool) {
	for _, k := range Kinds {
		if dep, ok := m.GetDependency(k, name); ok {
			return dep, k, true
		}
	}
	return Dependency{}, Runtime, false
}

// IsPackName reports whether a crate name follows the pack naming convention
func IsPackName(name string) bool {
	return name == "battery-pack" || strings.HasSuffix(name, "-battery-pack")
}

// InstalledPacks lists build-dependencies that are packs, sorted
func (m *Model) InstalledPacks() []string {
	var packs []string
	for _, dep := range m.Dependencies(Build) {
		if IsPackName(dep.Name) {
			packs = append(packs, dep.Name)
		}
	}
	return packs
}
