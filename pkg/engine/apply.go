package engine

import (
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/versions"
)

// Placement selects which part of a change a manifest receives
type Placement int

const (
	// Direct writes full declarations into the crate's dependency tables
	Direct Placement = iota
	// WorkspaceTable writes versions and features into [workspace.dependencies]
	WorkspaceTable
	// WorkspaceRef writes `{ workspace = true }` references and the registration
	WorkspaceRef
)

func (p Placement) String() string {
	switch p {
	case WorkspaceTable:
		return "workspace-table"
	case WorkspaceRef:
		return "workspace-ref"
	}
	return "direct"
}

// Apply executes cs against a clone of m. On success the clone is returned;
// on failure m is returned untouched together with an APPLY_ERROR naming the
// change that failed. The edited text must decode again before it counts as
// a success.
func Apply(cs ChangeSet, m *manifest.Model, placement Placement) (*manifest.Model, error) {
	logger := logging.GetLogger("engine.apply")
	out := m.Clone()
	for i, c := range cs {
		if err := applyChange(out, c, placement); err != nil {
			logger.Debug().Err(err).Str("change", c.String()).Msg("change failed, discarding edits")
			return m, errors.Wrapf(err, errors.ErrApply, "change %d (%s) failed", i+1, c).
				WithDetail("change", c.String()).
				WithDetail("placement", placement.String())
		}
	}
	if err := out.Check(); err != nil {
		logger.Error().Err(err).Int("changes", len(cs)).Msg("edited manifest no longer parses, discarding edits")
		return m, errors.Wrap(err, errors.ErrApply, "edited manifest no longer parses").
			WithDetail("placement", placement.String())
	}
	logger.Debug().Int("changes", len(cs)).Str("placement", placement.String()).Msg("change set applied")
	return out, nil
}

func applyChange(m *manifest.Model, c Change, placement Placement) error {
	switch {
	case c.Action == Register:
		if placement == WorkspaceTable || c.Registration == nil {
			return nil
		}
		return m.SetRegistration(*c.Registration)
	case c.Action == Remove && c.Registration != nil:
		if placement != WorkspaceTable {
			m.RemoveRegistration(c.Registration.Scope, c.Registration.Pack)
		}
		return nil
	}

	switch placement {
	case WorkspaceTable:
		switch c.Action {
		case Add:
			return ensureShared(m, c)
		case BumpVersion, AddFeatures:
			if c.ViaWorkspace {
				return ensureShared(m, c)
			}
		case Remove:
			if c.Deep {
				m.RemoveWorkspaceDependency(c.Dependency)
			}
		}
		return nil

	case WorkspaceRef:
		switch c.Action {
		case Add:
			if _, ok := m.GetDependency(c.Kind, c.Dependency); ok {
				return nil
			}
			return m.SetDependency(c.Kind, c.Dependency, manifest.Dependency{Name: c.Dependency, Workspace: true})
		case BumpVersion, AddFeatures:
			if !c.ViaWorkspace {
				return ensure(m, c)
			}
		case Remove:
			m.RemoveDependency(c.Kind, c.Dependency, false)
		}
		return nil
	}

	if c.Action == Remove {
		m.RemoveDependency(c.Kind, c.Dependency, c.Deep)
		return nil
	}
	return ensure(m, c)
}

// ensure makes the crate table declare at least what c asks for. Versions
// only move forward and features are only added. A `workspace = true`
// reference is completed through the same file's [workspace.dependencies]
// when it has the entry.
func ensure(m *manifest.Model, c Change) error {
	dep, ok := m.GetDependency(c.Kind, c.Dependency)
	if !ok {
		return m.SetDependency(c.Kind, c.Dependency, manifest.Dependency{
			Name:     c.Dependency,
			Version:  c.Version,
			Features: c.Features,
		})
	}
	if dep.Workspace {
		if _, shared := m.WorkspaceDependency(c.Dependency); shared {
			return ensureShared(m, c)
		}
		if c.Action == AddFeatures {
			dep.Features = mergeFeatures(dep.Features, c.Features)
			return m.SetDependency(c.Kind, c.Dependency, dep)
		}
		return nil
	}
	if c.Version != "" && versions.Older(dep.Version, c.Version) {
		dep.Version = c.Version
	}
	dep.Features = mergeFeatures(dep.Features, c.Features)
	return m.SetDependency(c.Kind, c.Dependency, dep)
}

func ensureShared(m *manifest.Model, c Change) error {
	dep, ok := m.WorkspaceDependency(c.Dependency)
	if !ok {
		return m.SetWorkspaceDependency(c.Dependency, manifest.Dependency{
			Name:     c.Dependency,
			Version:  c.Version,
			Features: c.Features,
		})
	}
	if c.Version != "" && versions.Older(dep.Version, c.Version) {
		dep.Version = c.Version
	}
	dep.Features = mergeFeatures(dep.Features, c.Features)
	return m.SetWorkspaceDependency(c.Dependency, dep)
}
