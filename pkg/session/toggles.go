package session

import (
	"github.com/arthur-debert/bpack/pkg/engine"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/packspec"
)

// DepEntry is one dependency row of a pack picker
type DepEntry struct {
	Name     string
	Version  string
	Features []string
	Kind     manifest.Kind
	// Group is the first group listing the dependency, empty when none does
	Group             string
	Enabled           bool
	OriginalKind      manifest.Kind
	OriginallyEnabled bool
}

// GroupToggle is one feature group row of a pack picker
type GroupToggle struct {
	Name              string
	Members           []string
	Enabled           bool
	OriginallyEnabled bool
}

// Has reports whether the group enables dependency name
func (g GroupToggle) Has(name string) bool {
	for _, m := range g.Members {
		if m == name {
			return true
		}
	}
	return false
}

// Row addresses a group (Entry < 0) or a dependency (Group < 0)
type Row struct {
	Group int
	Entry int
}

// PackToggles is the pending selection for one pack
type PackToggles struct {
	Spec      *packspec.Spec
	Installed bool
	Groups    []GroupToggle
	Entries   []DepEntry
}

// NewToggles seeds a picker for spec. selected are the active groups; a
// pack that is not installed starts from its default group. For an
// installed pack a dependency is checked only when the project declares it.
func NewToggles(spec *packspec.Spec, selected []string, installed bool, lookup engine.Lookup) PackToggles {
	if len(selected) == 0 && !installed {
		selected = []string{manifest.DefaultGroup}
	}
	all := false
	active := map[string]bool{}
	for _, g := range selected {
		if g == packspec.AllGroup {
			all = true
		}
		active[g] = true
	}

	p := PackToggles{Spec: spec, Installed: installed}
	for _, name := range groupOrder(spec) {
		members := spec.GroupMembers(name)
		if len(members) == 0 {
			continue
		}
		on := all || active[name]
		p.Groups = append(p.Groups, GroupToggle{Name: name, Members: members, Enabled: on, OriginallyEnabled: on && installed})
	}

	resolved := map[string]packspec.ResolvedDependency{}
	for _, r := range spec.ResolveGroup(selected, false) {
		resolved[r.Name] = r
	}

	for _, d := range spec.Dependencies() {
		e := DepEntry{
			Name:     d.Name,
			Version:  d.Version,
			Features: d.Features,
			Kind:     d.Kind,
			Group:    p.homeGroup(d.Name),
		}
		r, on := resolved[d.Name]
		if on {
			e.Features = r.Features
		}
		if installed && lookup != nil {
			kind, present := declaredKind(lookup, d.Kind, d.Name)
			on = on && present
			if present {
				e.Kind = kind
			}
		}
		e.Enabled = on
		e.OriginallyEnabled = on && installed
		e.OriginalKind = e.Kind
		p.Entries = append(p.Entries, e)
	}
	return p
}

// groupOrder lists default first, then the other groups sorted
func groupOrder(spec *packspec.Spec) []string {
	out := []string{manifest.DefaultGroup}
	for _, g := range spec.Groups() {
		if g != manifest.DefaultGroup {
			out = append(out, g)
		}
	}
	return out
}

func declaredKind(lookup engine.Lookup, preferred manifest.Kind, name string) (manifest.Kind, bool) {
	if _, ok := lookup.Dependency(preferred, name); ok {
		return preferred, true
	}
	for _, k := range manifest.Kinds {
		if _, ok := lookup.Dependency(k, name); ok {
			return k, true
		}
	}
	return preferred, false
}

func (p PackToggles) homeGroup(name string) string {
	for _, g := range p.Groups {
		if g.Has(name) {
			return g.Name
		}
	}
	return ""
}

// Name is the pack name
func (p PackToggles) Name() string {
	return p.Spec.Name
}

// Rows lays out each group followed by the dependencies it is home to.
// Dependencies outside every group come last.
func (p PackToggles) Rows() []Row {
	var rows []Row
	for gi, g := range p.Groups {
		rows = append(rows, Row{Group: gi, Entry: -1})
		for ei, e := range p.Entries {
			if e.Group == g.Name {
				rows = append(rows, Row{Group: -1, Entry: ei})
			}
		}
	}
	for ei, e := range p.Entries {
		if e.Group == "" {
			rows = append(rows, Row{Group: -1, Entry: ei})
		}
	}
	return rows
}

func (p PackToggles) clone() PackToggles {
	p.Groups = append([]GroupToggle(nil), p.Groups...)
	p.Entries = append([]DepEntry(nil), p.Entries...)
	return p
}

// Toggle flips the row's state. It returns the name of the group that
// refused the change, if any.
func (p PackToggles) Toggle(row Row) (PackToggles, string) {
	if row.Group >= 0 {
		return p.ToggleGroup(row.Group), ""
	}
	return p.ToggleEntry(row.Entry)
}

// ToggleGroup turns a group on with all its dependencies, or off with the
// dependencies no other enabled group still requires.
func (p PackToggles) ToggleGroup(i int) PackToggles {
	if i < 0 || i >= len(p.Groups) {
		return p
	}
	p = p.clone()
	g := &p.Groups[i]
	g.Enabled = !g.Enabled
	for _, member := range g.Members {
		on := g.Enabled || p.requiredBy(member, g.Name) != ""
		p.setEnabled(member, on)
	}
	return p
}

// ToggleEntry flips one dependency. Turning it off is refused while an
// enabled group other than its home group requires it.
func (p PackToggles) ToggleEntry(i int) (PackToggles, string) {
	if i < 0 || i >= len(p.Entries) {
		return p, ""
	}
	e := p.Entries[i]
	if e.Enabled {
		if by := p.requiredBy(e.Name, e.Group); by != "" {
			return p, by
		}
	}
	p = p.clone()
	p.Entries[i].Enabled = !e.Enabled
	return p, ""
}

// CycleKind moves a dependency through runtime, dev and build
func (p PackToggles) CycleKind(i int) PackToggles {
	if i < 0 || i >= len(p.Entries) {
		return p
	}
	p = p.clone()
	e := &p.Entries[i]
	switch e.Kind {
	case manifest.Runtime:
		e.Kind = manifest.Dev
	case manifest.Dev:
		e.Kind = manifest.Build
	default:
		e.Kind = manifest.Runtime
	}
	return p
}

// requiredBy names an enabled group other than except that lists name
func (p PackToggles) requiredBy(name, except string) string {
	for _, g := range p.Groups {
		if g.Name != except && g.Enabled && g.Has(name) {
			return g.Name
		}
	}
	return ""
}

func (p PackToggles) setEnabled(name string, on bool) {
	for i := range p.Entries {
		if p.Entries[i].Name == name {
			p.Entries[i].Enabled = on
		}
	}
}

// Enabled reports whether any declaration of name is checked
func (p PackToggles) Enabled(name string) bool {
	for _, e := range p.Entries {
		if e.Name == name && e.Enabled {
			return true
		}
	}
	return false
}

// EnabledGroups lists the checked groups in display order
func (p PackToggles) EnabledGroups() []string {
	out := []string{}
	for _, g := range p.Groups {
		if g.Enabled {
			out = append(out, g.Name)
		}
	}
	return out
}

func (p PackToggles) groupsChanged() bool {
	for _, g := range p.Groups {
		if g.Enabled != g.OriginallyEnabled {
			return true
		}
	}
	return false
}

// chosenKind is the table a newly checked dependency was moved to, if any
func (p PackToggles) chosenKind(name string, planned manifest.Kind) manifest.Kind {
	for _, e := range p.Entries {
		if e.Name == name && e.Enabled && !e.OriginallyEnabled && e.Kind != e.OriginalKind {
			return e.Kind
		}
	}
	return planned
}

// HasChanges reports whether anything differs from the seeded state
func (p PackToggles) HasChanges() bool {
	if !p.Installed {
		for _, e := range p.Entries {
			if e.Enabled {
				return true
			}
		}
		return false
	}
	if p.groupsChanged() {
		return true
	}
	for _, e := range p.Entries {
		if e.Enabled != e.OriginallyEnabled || (e.Enabled && e.Kind != e.OriginalKind) {
			return true
		}
	}
	return false
}

// Plan converts the selection into a change set. Newly checked
// dependencies are planned with engine.PlanAddCrates, unchecked ones of an
// installed pack are removed (never deeply) and moved ones are removed from
// their old table and added to the new one.
func (p PackToggles) Plan(lookup engine.Lookup) (engine.ChangeSet, []error) {
	if !p.HasChanges() {
		return nil, nil
	}

	adds := []string{}
	var removes []string
	var moves []DepEntry
	seen := map[string]bool{}
	for _, e := range p.Entries {
		switch {
		case e.Enabled && !e.OriginallyEnabled:
			if !seen[e.Name] {
				seen[e.Name] = true
				adds = append(adds, e.Name)
			}
		case !e.Enabled && e.OriginallyEnabled && !p.Enabled(e.Name):
			if !seen[e.Name] {
				seen[e.Name] = true
				removes = append(removes, e.Name)
			}
		case e.Enabled && e.OriginallyEnabled && e.Kind != e.OriginalKind:
			moves = append(moves, e)
		}
	}

	var cs engine.ChangeSet
	if !p.Installed {
		cs = append(cs, engine.PlanPackDependency(p.Spec, lookup)...)
	}

	added, errs := engine.PlanAddCrates(p.Spec, p.EnabledGroups(), false, adds, lookup)
	for _, c := range added {
		if c.Action == engine.Register && p.Installed && !p.groupsChanged() {
			continue
		}
		if c.Action == engine.Add {
			c.Kind = p.chosenKind(c.Dependency, c.Kind)
		}
		cs = append(cs, c)
	}

	cs = append(cs, engine.PlanRemoveDeps(p.Spec.Name, removes, lookup)...)

	for _, e := range moves {
		dep, ok := lookup.Dependency(e.OriginalKind, e.Name)
		if !ok {
			continue
		}
		cs = append(cs,
			engine.Change{Pack: p.Spec.Name, Dependency: e.Name, Kind: e.OriginalKind, Action: engine.Remove, ViaWorkspace: dep.Workspace},
			engine.Change{Pack: p.Spec.Name, Dependency: e.Name, Kind: e.Kind, Action: engine.Add, Version: dep.Version, Features: dep.Features, ViaWorkspace: dep.Workspace},
		)
	}
	return cs, errs
}
