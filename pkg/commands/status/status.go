// Package status provides the status command implementation for bpack.
//
// For every installed pack it compares what the project declares with what
// the pack currently recommends for its active groups, answering whether a
// sync would change anything.
package status

import (
	"context"
	"time"

	"github.com/arthur-debert/bpack/pkg/commands/internal"
	"github.com/arthur-debert/bpack/pkg/engine"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/registry"
	"github.com/arthur-debert/bpack/pkg/types"
	"github.com/arthur-debert/bpack/pkg/versions"
)

// StatusPacksOptions contains options for the status command
type StatusPacksOptions struct {
	ProjectDir string
	Catalog    registry.Finder
	FileSystem filesystem.FS
}

// StatusPacks reports every installed pack. Outside a Cargo project it
// fails with NO_PROJECT.
func StatusPacks(ctx context.Context, opts StatusPacksOptions) (*types.StatusResult, error) {
	logger := logging.GetLogger("commands.status")
	logger.Debug().Str("projectDir", opts.ProjectDir).Msg("Starting status command")

	p, err := internal.OpenProject(opts.ProjectDir, opts.FileSystem)
	if err != nil {
		return nil, err
	}

	result := &types.StatusResult{
		Command:   "status",
		Project:   p.Name(),
		Timestamp: time.Now(),
	}

	regs, issues := p.Registrations()
	for _, issue := range issues {
		result.Issues = append(result.Issues, issue.String())
	}
	byPack := map[string]manifest.Registration{}
	for _, r := range regs {
		byPack[r.Pack] = r
	}

	installed := p.InstalledPacks()
	specs, errs := opts.Catalog.FetchPackSpecs(ctx, installed)
	failures := map[string]string{}
	for _, err := range errs {
		logger.Warn().Err(err).Msg("Pack unavailable")
		if name, ok := errors.GetErrorDetails(err)["pack"].(string); ok {
			failures[name] = err.Error()
		}
	}

	for _, name := range installed {
		reg, ok := byPack[name]
		if !ok {
			reg = manifest.Registration{Pack: name, Groups: []string{manifest.DefaultGroup}}
		}
		spec := specs[name]
		if spec == nil {
			msg := failures[name]
			if msg == "" {
				msg = "pack spec unavailable; run with -v for details"
			}
			result.Packs = append(result.Packs, types.DisplayPack{
				Name:    name,
				Version: reg.Version,
				Scope:   reg.Scope.String(),
				Groups:  reg.Groups,
				Status:  types.StatusUnknown,
				Message: msg,
			})
			continue
		}
		result.Packs = append(result.Packs, packStatus(reg, spec, p.Lookup()))
	}

	logger.Info().Int("packs", len(result.Packs)).Msg("Status computed")
	return result, nil
}

func packStatus(reg manifest.Registration, spec *packspec.Spec, lookup engine.Lookup) types.DisplayPack {
	dp := types.DisplayPack{
		Name:    spec.Name,
		Version: spec.Version,
		Scope:   reg.Scope.String(),
		Groups:  reg.Groups,
	}
	for _, r := range spec.ResolveGroup(reg.Groups, false) {
		dp.Dependencies = append(dp.Dependencies, Classify(r, lookup))
	}
	dp.Status = dp.GetPackStatus()
	return dp
}

// Classify compares one recommended dependency with the project's
// declaration. A declaration in another table than the recommended one
// still counts.
func Classify(r packspec.ResolvedDependency, lookup engine.Lookup) types.DisplayDependency {
	dd := types.DisplayDependency{
		Name:        r.Name,
		Kind:        r.Kind.String(),
		Recommended: r.Version,
	}
	dep, ok := lookup.Dependency(r.Kind, r.Name)
	for _, k := range manifest.Kinds {
		if ok {
			break
		}
		dep, ok = lookup.Dependency(k, r.Name)
	}
	if !ok {
		dd.Status = types.StatusMissing
		return dd
	}

	dd.Current = dep.Version
	dd.MissingFeatures = dep.MissingFeatures(r.Features)
	switch {
	case len(dd.MissingFeatures) > 0:
		dd.Status = types.StatusMissingFeatures
	case versions.Older(dep.Version, r.Version):
		dd.Status = types.StatusOutdated
	case versions.Older(r.Version, dep.Version):
		dd.Status = types.StatusNewer
	default:
		dd.Status = types.StatusOK
	}
	return dd
}
