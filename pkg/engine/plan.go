package engine

import (
	"sort"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/versions"
)

// PlanAdd adds every dependency the selected groups resolve to. A nil
// selection means the default group. Missing dependencies get an Add;
// present ones get an AddFeatures listing only what is missing. It finishes
// with a Register of the active groups and never bumps a version.
func PlanAdd(spec *packspec.Spec, selected []string, includeAll bool, lookup Lookup) ChangeSet {
	cs, _ := PlanAddCrates(spec, selected, includeAll, nil, lookup)
	return cs
}

// PlanAddCrates is PlanAdd restricted to the named crates. Crates outside
// the selected groups are added with their declared features. Names the
// pack does not declare (or hides) are reported as NOT_FOUND and skipped.
func PlanAddCrates(spec *packspec.Spec, selected []string, includeAll bool, crates []string, lookup Lookup) (ChangeSet, []error) {
	groups := activeGroups(spec, selected, includeAll)
	resolved := spec.ResolveGroup(groups, includeAll)
	var errs []error

	if crates != nil {
		inGroups := map[string][]packspec.ResolvedDependency{}
		for _, r := range resolved {
			inGroups[r.Name] = append(inGroups[r.Name], r)
		}
		resolved = resolved[:0:0]
		seen := map[string]bool{}
		for _, name := range crates {
			if seen[name] {
				continue
			}
			seen[name] = true
			if rs, ok := inGroups[name]; ok {
				resolved = append(resolved, rs...)
				continue
			}
			decls := spec.Dependency(name)
			if len(decls) == 0 {
				errs = append(errs, errors.Newf(errors.ErrNotFound, "%s does not provide %q", spec.Name, name).
					WithDetail("pack", spec.Name).
					WithDetail("dependency", name))
				continue
			}
			for _, d := range decls {
				resolved = append(resolved, packspec.ResolvedDependency{
					Name: d.Name, Version: d.Version, Features: d.Features, Optional: d.Optional, Kind: d.Kind,
				})
			}
		}
	}

	var cs ChangeSet
	planned := map[string]int{}
	for _, r := range resolved {
		for _, k := range placeKinds(lookup, r.Name, r.Kind) {
			key := k.String() + "/" + r.Name
			existing, ok := lookup.Dependency(k, r.Name)
			if i, dup := planned[key]; dup {
				cs[i].Features = mergeFeatures(cs[i].Features, existing.MissingFeatures(r.Features))
				continue
			}
			if !ok {
				planned[key] = len(cs)
				cs = append(cs, Change{
					Pack:       spec.Name,
					Dependency: r.Name,
					Kind:       k,
					Action:     Add,
					Version:    widenedVersion(lookup, r.Name, r.Version),
					Features:   append([]string(nil), r.Features...),
				})
				continue
			}
			if missing := existing.MissingFeatures(r.Features); len(missing) > 0 {
				planned[key] = len(cs)
				cs = append(cs, Change{
					Pack:         spec.Name,
					Dependency:   r.Name,
					Kind:         k,
					Action:       AddFeatures,
					Features:     missing,
					ViaWorkspace: existing.Workspace,
				})
			}
		}
	}

	reg := manifest.Registration{
		Pack:    spec.Name,
		Version: spec.Version,
		Groups:  groups,
	}
	cs = append(cs, Change{Pack: spec.Name, Action: Register, Registration: &reg})
	return cs, errs
}

// activeGroups is what a registration records for a selection. Nil means
// the default group; an empty selection means none at all.
func activeGroups(spec *packspec.Spec, selected []string, includeAll bool) []string {
	if includeAll {
		return []string{packspec.AllGroup}
	}
	if selected == nil {
		return []string{manifest.DefaultGroup}
	}
	groups := []string{}
	seen := map[string]bool{}
	for _, g := range selected {
		if seen[g] || !spec.HasGroup(g) {
			continue
		}
		seen[g] = true
		if g == packspec.AllGroup {
			return []string{packspec.AllGroup}
		}
		groups = append(groups, g)
	}
	if len(groups) == 0 && len(selected) > 0 {
		return []string{manifest.DefaultGroup}
	}
	return groups
}

// placeKinds lists the tables name belongs in once the wanted kinds join
// the ones the project already declares it in. Runtime absorbs everything;
// otherwise every Dev and Build table involved is kept.
func placeKinds(lookup Lookup, name string, want ...manifest.Kind) []manifest.Kind {
	kinds := map[manifest.Kind]bool{}
	for _, k := range want {
		kinds[k] = true
	}
	for _, k := range manifest.Kinds {
		if _, ok := lookup.Dependency(k, name); ok {
			kinds[k] = true
		}
	}
	return widen(kinds)
}

func widen(kinds map[manifest.Kind]bool) []manifest.Kind {
	if kinds[manifest.Runtime] {
		return []manifest.Kind{manifest.Runtime}
	}
	var out []manifest.Kind
	for _, k := range []manifest.Kind{manifest.Dev, manifest.Build} {
		if kinds[k] {
			out = append(out, k)
		}
	}
	return out
}

// widenedVersion keeps a dependency copied into a new table from going
// below what another table already asks for.
func widenedVersion(lookup Lookup, name, recommended string) string {
	v := recommended
	for _, k := range manifest.Kinds {
		if dep, ok := lookup.Dependency(k, name); ok && dep.Version != "" {
			v = versions.Max(v, dep.Version)
		}
	}
	return v
}

// PlanPackDependency keeps the pack itself as a build-dependency: Add when
// absent, BumpVersion when the declared one is older.
func PlanPackDependency(spec *packspec.Spec, lookup Lookup) ChangeSet {
	existing, ok := lookup.Dependency(manifest.Build, spec.Name)
	switch {
	case !ok:
		return ChangeSet{{Pack: spec.Name, Dependency: spec.Name, Kind: manifest.Build, Action: Add, Version: spec.Version}}
	case versions.Older(existing.Version, spec.Version):
		return ChangeSet{{Pack: spec.Name, Dependency: spec.Name, Kind: manifest.Build, Action: BumpVersion, Version: spec.Version, ViaWorkspace: existing.Workspace}}
	}
	return nil
}

// PlanSync brings every dependency tracked by a registration up to its
// pack's recommendation, merged across packs. It bumps strictly older
// versions, adds missing features and re-adds missing dependencies. It never
// removes or downgrades. Registrations whose spec is missing are reported
// as NOT_FOUND and skipped.
func PlanSync(regs []manifest.Registration, specs map[string]*packspec.Spec, lookup Lookup) (ChangeSet, []error) {
	sorted := append([]manifest.Registration(nil), regs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Pack < sorted[j].Pack })

	var errs []error
	var contribs []Contribution
	var cs ChangeSet
	for _, reg := range sorted {
		spec, ok := specs[reg.Pack]
		if !ok || spec == nil {
			errs = append(errs, errors.Newf(errors.ErrNotFound, "no spec available for %s", reg.Pack).
				WithDetail("pack", reg.Pack))
			continue
		}
		for _, r := range spec.ResolveGroup(reg.Groups, false) {
			contribs = append(contribs, Contribution{Pack: reg.Pack, Dependency: r})
		}
		cs = append(cs, PlanPackDependency(spec, lookup)...)
	}

	for _, t := range Merge(contribs) {
		cs = append(cs, syncTarget(t, lookup)...)
	}
	return cs, errs
}

func syncTarget(t Target, lookup Lookup) ChangeSet {
	var cs ChangeSet
	for _, k := range placeKinds(lookup, t.Name, t.Kinds...) {
		existing, ok := lookup.Dependency(k, t.Name)
		if !ok {
			cs = append(cs, Change{
				Pack: t.Pack, Dependency: t.Name, Kind: k, Action: Add,
				Version: widenedVersion(lookup, t.Name, t.Version), Features: append([]string(nil), t.Features...),
			})
			continue
		}
		if versions.Older(existing.Version, t.Version) {
			cs = append(cs, Change{
				Pack: t.Pack, Dependency: t.Name, Kind: k, Action: BumpVersion,
				Version: t.Version, ViaWorkspace: existing.Workspace,
			})
		}
		if missing := existing.MissingFeatures(t.Features); len(missing) > 0 {
			cs = append(cs, Change{
				Pack: t.Pack, Dependency: t.Name, Kind: k, Action: AddFeatures,
				Features: missing, ViaWorkspace: existing.Workspace,
			})
		}
	}
	return cs
}

// PlanRemoveDeps removes the named dependencies wherever they are declared.
// Workspace declarations are kept.
func PlanRemoveDeps(pack string, names []string, lookup Lookup) ChangeSet {
	var cs ChangeSet
	for _, name := range names {
		for _, k := range manifest.Kinds {
			if dep, ok := lookup.Dependency(k, name); ok {
				cs = append(cs, Change{Pack: pack, Dependency: name, Kind: k, Action: Remove, ViaWorkspace: dep.Workspace})
			}
		}
	}
	return cs
}

// PlanRemove unregisters pack, removes its build-dependency and every
// dependency that no other registered pack still tracks. The specs of the
// other packs decide what they track; a missing spec for pack itself only
// limits the removal to the registration and build-dependency.
func PlanRemove(pack string, regs []manifest.Registration, specs map[string]*packspec.Spec, lookup Lookup, deep bool) (ChangeSet, []error) {
	var errs []error
	var target *manifest.Registration
	kept := map[string]bool{}
	for i := range regs {
		reg := regs[i]
		if reg.Pack == pack {
			target = &regs[i]
			continue
		}
		spec, ok := specs[reg.Pack]
		if !ok || spec == nil {
			continue
		}
		for _, r := range spec.ResolveGroup(reg.Groups, false) {
			kept[r.Name] = true
		}
	}

	var cs ChangeSet
	if spec, ok := specs[pack]; ok && spec != nil {
		groups := []string{manifest.DefaultGroup}
		if target != nil {
			groups = target.Groups
		}
		var names []string
		seen := map[string]bool{}
		for _, r := range spec.ResolveGroup(groups, false) {
			if !kept[r.Name] && !seen[r.Name] {
				seen[r.Name] = true
				names = append(names, r.Name)
			}
		}
		cs = append(cs, PlanRemoveDeps(pack, names, lookup)...)
	} else {
		errs = append(errs, errors.Newf(errors.ErrNotFound, "no spec available for %s; only its registration is removed", pack).
			WithDetail("pack", pack))
	}

	if dep, ok := lookup.Dependency(manifest.Build, pack); ok {
		cs = append(cs, Change{Pack: pack, Dependency: pack, Kind: manifest.Build, Action: Remove, ViaWorkspace: dep.Workspace})
	}
	if target != nil {
		reg := *target
		cs = append(cs, Change{Pack: pack, Action: Remove, Registration: &reg})
	}
	for i := range cs {
		cs[i].Deep = deep && cs[i].IsDependencyChange()
	}
	return cs, errs
}
