package engine

import (
	"sort"

	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/versions"
)

// Contribution is one pack's recommendation for a dependency
type Contribution struct {
	Pack       string
	Dependency packspec.ResolvedDependency
}

// Target is the merged recommendation for one dependency across packs
type Target struct {
	Name     string
	Version  string
	Features []string
	Kinds    []manifest.Kind
	// Pack is the contributor whose version won
	Pack  string
	Packs []string
}

// Merge combines recommendations per dependency name. The highest version
// wins whatever the input order, features are unioned, and placement is
// Runtime if anyone wants it, otherwise every requested Dev/Build table.
// Targets are sorted by name.
func Merge(contribs []Contribution) []Target {
	byName := map[string][]Contribution{}
	for _, c := range contribs {
		byName[c.Dependency.Name] = append(byName[c.Dependency.Name], c)
	}

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	targets := make([]Target, 0, len(names))
	for _, name := range names {
		group := byName[name]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Pack < group[j].Pack })

		t := Target{Name: name}
		kinds := map[manifest.Kind]bool{}
		packs := map[string]bool{}
		for _, c := range group {
			if winner := versions.Max(t.Version, c.Dependency.Version); t.Pack == "" || winner != t.Version {
				t.Version = winner
				t.Pack = c.Pack
			}
			t.Features = mergeFeatures(t.Features, c.Dependency.Features)
			kinds[c.Dependency.Kind] = true
			if !packs[c.Pack] {
				packs[c.Pack] = true
				t.Packs = append(t.Packs, c.Pack)
			}
		}
		sort.Strings(t.Features)

		t.Kinds = widen(kinds)
		targets = append(targets, t)
	}
	return targets
}
