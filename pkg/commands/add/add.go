// Package add implements `bpack add`: it resolves the chosen groups of a
// pack, plans the dependencies they need plus the pack's own
// build-dependency and registration, and applies them to the project.
package add

import (
	"context"

	"github.com/arthur-debert/bpack/pkg/commands/internal"
	"github.com/arthur-debert/bpack/pkg/engine"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/project"
	"github.com/arthur-debert/bpack/pkg/registry"
	"github.com/arthur-debert/bpack/pkg/types"
)

// AddPackOptions contains options for the add command
type AddPackOptions struct {
	// ProjectDir is where the search for Cargo.toml starts
	ProjectDir string

	// Pack is a full or short pack name
	Pack string
	// Path adds the pack crate in this directory instead of a catalog pack
	Path string

	// Crates restricts the add to these dependencies. Empty means every
	// dependency the selected groups resolve to.
	Crates []string

	Groups            []string
	NoDefaultFeatures bool
	AllFeatures       bool

	Target project.Target
	DryRun bool

	Catalog    registry.Finder
	FileSystem filesystem.FS
}

// AddPack adds a pack to the project
func AddPack(ctx context.Context, opts AddPackOptions) (*types.ChangesResult, error) {
	logger := logging.GetLogger("commands.add")
	defer logging.LogOperationStart(logger, "add")()

	catalog, name, err := internal.ResolvePack(ctx, opts.Catalog, opts.Path, opts.Pack)
	if err != nil {
		return nil, err
	}
	p, err := internal.OpenProject(opts.ProjectDir, opts.FileSystem)
	if err != nil {
		return nil, err
	}
	spec, err := catalog.FetchPackSpec(ctx, name)
	if err != nil {
		return nil, err
	}

	result := &types.ChangesResult{Command: "add", Pack: spec.Name}
	selected, unknown := SelectGroups(spec, opts.Groups, opts.NoDefaultFeatures)
	result.Warnings = append(result.Warnings, internal.Messages(unknown)...)
	reg, registered := p.Registration(spec.Name)
	if registered {
		selected = mergeGroups(reg.Groups, selected)
	}
	target := internal.TargetFor(reg, registered, opts.Target)

	logger.Debug().
		Str("pack", spec.Name).
		Strs("groups", selected).
		Bool("all", opts.AllFeatures).
		Strs("crates", opts.Crates).
		Str("target", target.String()).
		Msg("Planning add")

	var crates []string
	if len(opts.Crates) > 0 {
		crates = opts.Crates
	}
	cs, errs := engine.PlanAddCrates(spec, selected, opts.AllFeatures, crates, p.Lookup())
	result.Warnings = append(result.Warnings, internal.Messages(errs)...)
	if len(crates) > 0 && len(errs) == len(crates) {
		return nil, errors.Join(errs...)
	}
	cs = append(engine.PlanPackDependency(spec, p.Lookup()), cs...)

	if err := internal.ApplyChanges(p, cs, target, opts.DryRun, spec.Name+" is already up to date.", result); err != nil {
		return nil, err
	}
	logger.Info().
		Str("pack", spec.Name).
		Int("changes", len(result.Changes)).
		Msg("Command finished")
	return result, nil
}

// SelectGroups turns the requested groups into a selection: default first
// unless excluded, then the named groups the pack declares. Unknown names
// are returned as NOT_FOUND errors.
func SelectGroups(spec *packspec.Spec, groups []string, noDefault bool) ([]string, []error) {
	selected := []string{}
	var errs []error
	if !noDefault {
		selected = append(selected, manifest.DefaultGroup)
	}
	for _, g := range groups {
		if !spec.HasGroup(g) {
			errs = append(errs, errors.Newf(errors.ErrNotFound, "%s has no feature group %q", spec.Name, g).
				WithDetail("pack", spec.Name).
				WithDetail("group", g))
			continue
		}
		selected = mergeGroups(selected, []string{g})
	}
	return selected, errs
}

func mergeGroups(have, more []string) []string {
	out := append([]string{}, have...)
	for _, g := range more {
		found := false
		for _, h := range out {
			if h == g {
				found = true
				break
			}
		}
		if !found {
			out = append(out, g)
		}
	}
	return out
}
