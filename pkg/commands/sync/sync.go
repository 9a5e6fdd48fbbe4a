// Package sync implements `bpack sync`, which brings every registered
// pack's dependencies up to its current recommendation.
package sync

import (
	"context"

	"github.com/arthur-debert/bpack/pkg/commands/internal"
	"github.com/arthur-debert/bpack/pkg/engine"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/project"
	"github.com/arthur-debert/bpack/pkg/registry"
	"github.com/arthur-debert/bpack/pkg/types"
)

// UpToDate is reported when sync has nothing to do
const UpToDate = "All dependencies are up to date."

// SyncPacksOptions contains options for the sync command
type SyncPacksOptions struct {
	ProjectDir string
	Target     project.Target
	DryRun     bool
	Catalog    registry.Finder
	FileSystem filesystem.FS
}

// SyncPacks bumps older versions, adds missing features and re-adds missing
// dependencies. It never removes or downgrades anything.
func SyncPacks(ctx context.Context, opts SyncPacksOptions) (*types.ChangesResult, error) {
	logger := logging.GetLogger("commands.sync")
	defer logging.LogOperationStart(logger, "sync")()

	p, err := internal.OpenProject(opts.ProjectDir, opts.FileSystem)
	if err != nil {
		return nil, err
	}

	result := &types.ChangesResult{Command: "sync"}
	regs, specs, warnings := internal.InstalledSpecs(ctx, p, opts.Catalog)
	result.Warnings = warnings
	if len(regs) == 0 {
		result.Message = "No battery packs installed."
		return result, nil
	}

	cs, errs := engine.PlanSync(regs, specs, p.Lookup())
	for _, err := range errs {
		logger.Warn().Err(err).Msg("Pack skipped")
	}
	logger.Debug().
		Int("packs", len(regs)).
		Int("specs", len(specs)).
		Int("changes", len(cs)).
		Msg("Sync planned")

	if err := internal.ApplyChanges(p, cs, opts.Target, opts.DryRun, UpToDate, result); err != nil {
		return nil, err
	}
	return result, nil
}
