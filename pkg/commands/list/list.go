package list

import (
	"context"

	"github.com/arthur-debert/bpack/pkg/commands/internal"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/registry"
	"github.com/arthur-debert/bpack/pkg/types"
)

// ListPacksOptions defines the options for the ListPacks command.
type ListPacksOptions struct {
	Filter string
	// ProjectDir marks packs the project already uses. Outside a project
	// nothing is marked.
	ProjectDir string
	Catalog    registry.Finder
	FileSystem filesystem.FS
}

// ListPacks finds the packs matching the filter in local sources and the
// registry. A failing source only fails the command when nothing was found.
func ListPacks(ctx context.Context, opts ListPacksOptions) (*types.ListPacksResult, error) {
	log := logging.GetLogger("commands.list")
	log.Debug().Str("command", "ListPacks").Str("filter", opts.Filter).Msg("Executing command")

	found, err := opts.Catalog.FindPacks(ctx, opts.Filter)
	result := &types.ListPacksResult{Filter: opts.Filter, Packs: make([]types.PackInfo, 0, len(found))}
	if err != nil {
		if len(found) == 0 {
			return nil, err
		}
		result.Warnings = append(result.Warnings, err.Error())
	}

	installed := map[string]bool{}
	if p, perr := internal.OpenProject(opts.ProjectDir, opts.FileSystem); perr == nil {
		for _, name := range p.InstalledPacks() {
			installed[name] = true
		}
	} else if !errors.IsErrorCode(perr, errors.ErrNoProject) {
		result.Warnings = append(result.Warnings, perr.Error())
	}

	for _, s := range found {
		result.Packs = append(result.Packs, types.PackInfo{
			Name:        s.Name,
			ShortName:   s.ShortName,
			Version:     s.Version,
			Description: s.Description,
			Source:      string(s.Source),
			Installed:   installed[s.Name],
		})
	}

	log.Info().Str("command", "ListPacks").Int("packCount", len(result.Packs)).Msg("Command finished")
	return result, nil
}
