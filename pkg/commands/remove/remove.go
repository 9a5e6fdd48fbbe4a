// Package remove implements `bpack remove`.
package remove

import (
	"context"

	"github.com/arthur-debert/bpack/pkg/commands/internal"
	"github.com/arthur-debert/bpack/pkg/engine"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/packs"
	"github.com/arthur-debert/bpack/pkg/project"
	"github.com/arthur-debert/bpack/pkg/registry"
	"github.com/arthur-debert/bpack/pkg/types"
)

// RemovePackOptions contains options for the remove command
type RemovePackOptions struct {
	ProjectDir string
	Pack       string
	// Deep also drops [workspace.dependencies] entries
	Deep       bool
	DryRun     bool
	Catalog    registry.Finder
	FileSystem filesystem.FS
}

// RemovePack unregisters a pack and removes the dependencies no other
// registered pack still tracks, along with the pack's build-dependency
func RemovePack(ctx context.Context, opts RemovePackOptions) (*types.ChangesResult, error) {
	logger := logging.GetLogger("commands.remove")
	defer logging.LogOperationStart(logger, "remove")()

	if opts.Pack == "" {
		return nil, errors.New(errors.ErrInvalidInput, "a pack name is required")
	}
	name := packs.ResolveName(opts.Pack)

	p, err := internal.OpenProject(opts.ProjectDir, opts.FileSystem)
	if err != nil {
		return nil, err
	}
	reg, registered := p.Registration(name)
	if !registered && !isBuildDependency(p, name) {
		return nil, errors.Newf(errors.ErrNotFound, "%s is not installed", name).
			WithDetail("pack", name).
			WithDetail("installed", p.InstalledPacks())
	}

	result := &types.ChangesResult{Command: "remove", Pack: name}
	regs, specs, warnings := internal.InstalledSpecs(ctx, p, opts.Catalog)
	if _, ok := specs[name]; !ok && !registered {
		if spec, err := opts.Catalog.FetchPackSpec(ctx, name); err == nil {
			specs[name] = spec
		}
	}
	result.Warnings = warnings

	cs, errs := engine.PlanRemove(name, regs, specs, p.Lookup(), opts.Deep)
	for _, err := range errs {
		logger.Warn().Err(err).Msg("Partial removal")
	}
	logger.Debug().
		Str("pack", name).
		Bool("deep", opts.Deep).
		Int("changes", len(cs)).
		Msg("Removal planned")

	target := internal.TargetFor(reg, registered, project.TargetDefault)
	if err := internal.ApplyChanges(p, cs, target, opts.DryRun, name+" is not installed.", result); err != nil {
		return nil, err
	}
	return result, nil
}

func isBuildDependency(p *project.Project, name string) bool {
	_, ok := p.Lookup().Dependency(manifest.Build, name)
	return ok
}
