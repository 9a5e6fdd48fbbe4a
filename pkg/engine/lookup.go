package engine

import "github.com/arthur-debert/bpack/pkg/manifest"

// Lookup answers what a project already declares
type Lookup interface {
	Dependency(kind manifest.Kind, name string) (manifest.Dependency, bool)
}

// ModelLookup reads a crate manifest, following `workspace = true`
// references into the workspace manifest when one is given.
type ModelLookup struct {
	Crate     *manifest.Model
	Workspace *manifest.Model
}

// Dependency returns the effective declaration: a workspace reference takes
// its version from [workspace.dependencies] and the union of both feature
// lists. Workspace stays set so callers know where it lives.
func (l ModelLookup) Dependency(kind manifest.Kind, name string) (manifest.Dependency, bool) {
	if l.Crate == nil {
		return manifest.Dependency{}, false
	}
	dep, ok := l.Crate.GetDependency(kind, name)
	if !ok || !dep.Workspace {
		return dep, ok
	}
	ws := l.Workspace
	if ws == nil {
		ws = l.Crate
	}
	shared, found := ws.WorkspaceDependency(name)
	if !found {
		return dep, true
	}
	dep.Version = shared.Version
	dep.Path = shared.Path
	dep.Git = shared.Git
	dep.Features = mergeFeatures(shared.Features, dep.Features)
	return dep, true
}

// EmptyLookup declares nothing
type EmptyLookup struct{}

func (EmptyLookup) Dependency(manifest.Kind, string) (manifest.Dependency, bool) {
	return manifest.Dependency{}, false
}

// mergeFeatures appends the members of extra missing from base, keeping order
func mergeFeatures(base, extra []string) []string {
	out := append([]string(nil), base...)
	for _, f := range extra {
		found := false
		for _, have := range out {
			if have == f {
				found = true
				break
			}
		}
		if !found {
			out = append(out, f)
		}
	}
	return out
}
