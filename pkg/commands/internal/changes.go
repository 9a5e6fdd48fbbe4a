// Package internal holds what the manifest-editing commands share: opening
// the project, fetching the specs of installed packs and applying a change
// set.
package internal

import (
	"context"

	"github.com/arthur-debert/bpack/pkg/engine"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/project"
	"github.com/arthur-debert/bpack/pkg/registry"
	"github.com/arthur-debert/bpack/pkg/types"
)

// OpenProject loads the Cargo project containing dir, the working
// directory when dir is empty
func OpenProject(dir string, fsys filesystem.FS) (*project.Project, error) {
	if dir == "" {
		dir = "."
	}
	return project.Load(dir, fsys)
}

// InstalledSpecs returns the project's registrations with the specs that
// could be fetched. Unreadable registrations and unavailable specs become
// warnings.
func InstalledSpecs(ctx context.Context, p *project.Project, catalog registry.Finder) ([]manifest.Registration, map[string]*packspec.Spec, []string) {
	regs, issues := p.Registrations()
	var warnings []string
	for _, issue := range issues {
		warnings = append(warnings, issue.String())
	}

	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = r.Pack
	}
	specs, errs := catalog.FetchPackSpecs(ctx, names)
	return regs, specs, append(warnings, Messages(errs)...)
}

// Messages renders per-item failures for a result's warnings
func Messages(errs []error) []string {
	var out []string
	for _, err := range errs {
		if err != nil {
			out = append(out, err.Error())
		}
	}
	return out
}

// ApplyChanges stages cs on p and, unless dryRun, commits and saves it. The
// result receives the change list and the written files. An empty change
// set leaves the project untouched and sets noop as the message.
func ApplyChanges(p *project.Project, cs engine.ChangeSet, target project.Target, dryRun bool, noop string, res *types.ChangesResult) error {
	log := logging.GetLogger("commands.apply")
	res.DryRun = dryRun

	staged, err := p.Stage(cs, target)
	if err != nil {
		return err
	}
	p.Commit(staged)
	if len(p.Changed()) == 0 {
		res.Message = noop
		log.Info().Str("command", res.Command).Msg("Nothing to change")
		return nil
	}
	res.Changes = types.ChangesOf(cs)

	if dryRun {
		log.Info().Str("command", res.Command).Int("changes", len(cs)).Msg("Dry run, nothing written")
		return nil
	}
	files, err := p.Save()
	if err != nil {
		return err
	}
	res.Files = files
	log.Info().Str("command", res.Command).Strs("files", files).Msg("Changes applied")
	return nil
}

// TargetFor keeps an existing workspace-scoped registration where it is
// when no explicit target was asked for
func TargetFor(reg manifest.Registration, registered bool, target project.Target) project.Target {
	if registered && target == project.TargetDefault && reg.Scope == manifest.WorkspaceScope {
		return project.TargetWorkspace
	}
	return target
}
