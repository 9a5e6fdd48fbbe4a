package packspec

import (
	"sort"

	"github.com/arthur-debert/bpack/pkg/manifest"
)

type resolution struct {
	spec    *Spec
	enabled map[string]map[string]bool
	weak    map[string]map[string]bool
	visited map[string]bool
}

func (r *resolution) enable(name string) map[string]bool {
	feats, ok := r.enabled[name]
	if !ok {
		feats = map[string]bool{}
		r.enabled[name] = feats
	}
	return feats
}

func (r *resolution) addWeak(name, feature string) {
	if r.weak[name] == nil {
		r.weak[name] = map[string]bool{}
	}
	r.weak[name][feature] = true
}

func (r *resolution) apply(m member) {
	switch m.kind {
	case memberDep:
		r.enable(m.name)
	case memberAugment:
		r.enable(m.name)[m.feature] = true
	case memberWeakAugment:
		r.addWeak(m.name, m.feature)
	default:
		if _, isGroup := r.spec.groups[m.name]; isGroup {
			r.visit(m.name)
			return
		}
		r.enable(m.name)
	}
}

func (r *resolution) visit(group string) {
	if r.visited[group] {
		return
	}
	r.visited[group] = true
	for _, raw := range r.spec.members(group) {
		r.apply(classify(raw))
	}
}

// members returns a group's raw entries. Without a declared default, the
// default group is every non-optional visible dependency.
func (s *Spec) members(group string) []string {
	if group == manifest.DefaultGroup && !s.declaredDefault {
		var out []string
		seen := map[string]bool{}
		for _, d := range s.deps {
			if !d.Optional && !s.IsHidden(d.Name) && !seen[d.Name] {
				seen[d.Name] = true
				out = append(out, "dep:"+d.Name)
			}
		}
		return out
	}
	return s.groups[group]
}

// ResolveGroup returns the dependencies enabled by the selected groups, each
// carrying its declared features plus every augmentation the selection
// implies. "all" (or includeAll) selects every visible dependency and every
// augmentation. Unknown group names are ignored. The result is sorted by
// name then kind and never contains hidden dependencies.
func (s *Spec) ResolveGroup(selected []string, includeAll bool) []ResolvedDependency {
	r := &resolution{
		spec:    s,
		enabled: map[string]map[string]bool{},
		weak:    map[string]map[string]bool{},
		visited: map[string]bool{},
	}

	for _, g := range selected {
		if g == AllGroup {
			includeAll = true
			continue
		}
		if s.HasGroup(g) {
			r.visit(g)
		}
	}

	if includeAll {
		for _, d := range s.deps {
			r.enable(d.Name)
		}
		for _, g := range s.Groups() {
			for _, raw := range s.members(g) {
				if m := classify(raw); m.kind == memberAugment || m.kind == memberWeakAugment {
					r.enable(m.name)[m.feature] = true
				}
			}
		}
	}

	for name, feats := range r.weak {
		if on, ok := r.enabled[name]; ok {
			for f := range feats {
				on[f] = true
			}
		}
	}

	var out []ResolvedDependency
	for _, d := range s.deps {
		extra, ok := r.enabled[d.Name]
		if !ok || s.IsHidden(d.Name) {
			continue
		}
		out = append(out, ResolvedDependency{
			Name:     d.Name,
			Version:  d.Version,
			Features: unionFeatures(d.Features, extra),
			Optional: d.Optional,
			Kind:     d.Kind,
		})
	}
	return out
}

func unionFeatures(base []string, extra map[string]bool) []string {
	set := map[string]bool{}
	for _, f := range base {
		set[f] = true
	}
	for f := range extra {
		set[f] = true
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
