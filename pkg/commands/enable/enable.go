// Package enable implements `bpack enable`, which turns on one more feature
// group of an installed pack.
package enable

import (
	"context"
	"fmt"

	"github.com/arthur-debert/bpack/pkg/commands/internal"
	"github.com/arthur-debert/bpack/pkg/engine"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/packs"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/project"
	"github.com/arthur-debert/bpack/pkg/registry"
	"github.com/arthur-debert/bpack/pkg/types"
)

// EnableGroupOptions contains options for the enable command
type EnableGroupOptions struct {
	ProjectDir string
	Group      string
	// Pack names the pack to enable the group on. When empty the installed
	// packs are searched in order.
	Pack       string
	Target     project.Target
	DryRun     bool
	Catalog    registry.Finder
	FileSystem filesystem.FS
}

// EnableGroup adds a group to a pack's registration and plans the
// dependencies it brings in
func EnableGroup(ctx context.Context, opts EnableGroupOptions) (*types.ChangesResult, error) {
	logger := logging.GetLogger("commands.enable")
	defer logging.LogOperationStart(logger, "enable")()

	if opts.Group == "" {
		return nil, errors.New(errors.ErrInvalidInput, "a group name is required")
	}
	p, err := internal.OpenProject(opts.ProjectDir, opts.FileSystem)
	if err != nil {
		return nil, err
	}

	spec, err := findPack(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	if !spec.HasGroup(opts.Group) {
		return nil, errors.Newf(errors.ErrNotFound, "%s has no feature group %q", spec.Name, opts.Group).
			WithDetail("pack", spec.Name).
			WithDetail("available", spec.Groups())
	}

	result := &types.ChangesResult{Command: "enable", Pack: spec.Name}
	reg, registered := p.Registration(spec.Name)
	groups := []string{manifest.DefaultGroup}
	if registered {
		groups = reg.Groups
	}
	active := fmt.Sprintf("Group '%s' is already active for %s.", opts.Group, spec.Name)
	if registered && (reg.HasGroup(opts.Group) || reg.HasGroup(packspec.AllGroup)) {
		result.Message = active
		return result, nil
	}
	groups = append(append([]string(nil), groups...), opts.Group)

	cs := engine.PlanAdd(spec, groups, false, p.Lookup())
	cs = append(engine.PlanPackDependency(spec, p.Lookup()), cs...)
	target := internal.TargetFor(reg, registered, opts.Target)
	logger.Debug().
		Str("pack", spec.Name).
		Strs("groups", groups).
		Str("target", target.String()).
		Msg("Enabling group")

	if err := internal.ApplyChanges(p, cs, target, opts.DryRun, active, result); err != nil {
		return nil, err
	}
	return result, nil
}

func findPack(ctx context.Context, p *project.Project, opts EnableGroupOptions) (*packspec.Spec, error) {
	if opts.Pack != "" {
		return opts.Catalog.FetchPackSpec(ctx, packs.ResolveName(opts.Pack))
	}

	installed := p.InstalledPacks()
	specs, errs := opts.Catalog.FetchPackSpecs(ctx, installed)
	logger := logging.GetLogger("commands.enable")
	for _, err := range errs {
		logger.Warn().Err(err).Msg("Installed pack unavailable")
	}
	for _, name := range installed {
		spec, ok := specs[name]
		if ok && declares(spec, opts.Group) {
			return spec, nil
		}
	}
	return nil, errors.Newf(errors.ErrNotFound, "no installed battery pack defines group %q", opts.Group).
		WithDetail("group", opts.Group).
		WithDetail("searched", installed)
}

// declares ignores the implicit groups every pack has
func declares(spec *packspec.Spec, group string) bool {
	if group == packspec.AllGroup {
		return false
	}
	for _, g := range spec.Groups() {
		if g == group {
			return true
		}
	}
	return false
}
