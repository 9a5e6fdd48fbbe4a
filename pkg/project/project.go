// Package project loads the manifests of the crate being edited, applies
// change sets to them with the right placement and writes them back.
package project

import (
	"sort"

	"github.com/arthur-debert/bpack/pkg/engine"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/paths"
)

// Target chooses where added dependencies are declared
type Target int

const (
	// TargetDefault uses [workspace.dependencies] when the crate belongs to a
	// workspace rooted in another manifest, and the crate tables otherwise.
	TargetDefault Target = iota
	// TargetWorkspace always goes through [workspace.dependencies] and records
	// the registration in workspace metadata.
	TargetWorkspace
	// TargetPackage writes full declarations into the crate tables
	TargetPackage
)

func (t Target) String() string {
	switch t {
	case TargetWorkspace:
		return "workspace"
	case TargetPackage:
		return "package"
	}
	return "default"
}

// ParseTarget reads a --target flag value
func ParseTarget(s string) (Target, error) {
	switch s {
	case "", "default":
		return TargetDefault, nil
	case "workspace":
		return TargetWorkspace, nil
	case "package":
		return TargetPackage, nil
	}
	return TargetDefault, errors.Newf(errors.ErrInvalidInput, "invalid target %q (expected default, workspace or package)", s)
}

// Project holds the parsed manifests of one crate and its workspace
type Project struct {
	Context paths.ProjectContext

	fs        filesystem.FS
	crate     *manifest.Model
	workspace *manifest.Model
	original  map[string]string
}

// Load discovers the project above start and opens it
func Load(start string, fsys filesystem.FS) (*Project, error) {
	ctx, err := paths.Discover(start)
	if err != nil {
		return nil, err
	}
	return Open(ctx, fsys)
}

// Open reads and parses the manifests named by ctx. A parse failure aborts
// the whole operation.
func Open(ctx paths.ProjectContext, fsys filesystem.FS) (*Project, error) {
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	p := &Project{Context: ctx, fs: fsys, original: map[string]string{}}

	crate, err := p.read(ctx.CrateManifest)
	if err != nil {
		return nil, err
	}
	p.crate = crate

	if ctx.InWorkspace() && !ctx.SharedManifest() {
		ws, err := p.read(ctx.WorkspaceManifest)
		if err != nil {
			return nil, err
		}
		p.workspace = ws
	}

	logger := logging.GetLogger("project")
	logger.Debug().
		Str("crate", ctx.CrateManifest).
		Bool("workspace", ctx.InWorkspace()).
		Msg("Project opened")
	return p, nil
}

func (p *Project) read(path string) (*manifest.Model, error) {
	data, err := p.fs.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read %s", path).
			WithDetail("path", path)
	}
	m, err := manifest.Load(string(data))
	if err != nil {
		if be, ok := err.(*errors.BpackError); ok {
			return nil, be.WithDetail("path", path)
		}
		return nil, err
	}
	p.original[path] = string(data)
	return m, nil
}

// Crate is the crate manifest
func (p *Project) Crate() *manifest.Model {
	return p.crate
}

// Workspace is the workspace root manifest: the crate manifest itself for a
// single-file workspace, nil outside a workspace.
func (p *Project) Workspace() *manifest.Model {
	switch {
	case p.workspace != nil:
		return p.workspace
	case p.Context.SharedManifest():
		return p.crate
	}
	return nil
}

// Name is the crate's package name
func (p *Project) Name() string {
	return p.crate.PackageName()
}

// Lookup resolves declarations through workspace references
func (p *Project) Lookup() engine.Lookup {
	return engine.ModelLookup{Crate: p.crate, Workspace: p.Workspace()}
}

// Registrations returns the active pack registrations sorted by pack. A
// package-scoped registration shadows a workspace-scoped one for the same
// pack.
func (p *Project) Registrations() ([]manifest.Registration, []manifest.RegistrationIssue) {
	regs, issues := p.crate.Registrations()
	if p.workspace != nil {
		wsRegs, wsIssues := p.workspace.Registrations()
		for _, r := range wsRegs {
			if r.Scope == manifest.WorkspaceScope {
				regs = append(regs, r)
			}
		}
		for _, i := range wsIssues {
			if i.Scope == manifest.WorkspaceScope {
				issues = append(issues, i)
			}
		}
	}

	byPack := map[string]manifest.Registration{}
	for _, r := range regs {
		if have, ok := byPack[r.Pack]; ok && have.Scope == manifest.PackageScope {
			continue
		}
		byPack[r.Pack] = r
	}
	out := make([]manifest.Registration, 0, len(byPack))
	for _, r := range byPack {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pack < out[j].Pack })
	return out, issues
}

// Registration returns the registration of pack, if any
func (p *Project) Registration(pack string) (manifest.Registration, bool) {
	regs, _ := p.Registrations()
	for _, r := range regs {
		if r.Pack == pack {
			return r, true
		}
	}
	return manifest.Registration{}, false
}

// InstalledPacks lists packs that are registered or declared as
// build-dependencies, sorted.
func (p *Project) InstalledPacks() []string {
	seen := map[string]bool{}
	var packs []string
	regs, _ := p.Registrations()
	for _, r := range regs {
		if !seen[r.Pack] {
			seen[r.Pack] = true
			packs = append(packs, r.Pack)
		}
	}
	for _, name := range p.crate.InstalledPacks() {
		if !seen[name] {
			seen[name] = true
			packs = append(packs, name)
		}
	}
	sort.Strings(packs)
	return packs
}

// RegistrationScope is where target records new registrations
func (p *Project) RegistrationScope(target Target) manifest.Scope {
	if target == TargetWorkspace && p.Context.InWorkspace() {
		return manifest.WorkspaceScope
	}
	return manifest.PackageScope
}

// UsesWorkspaceTable reports whether target declares dependencies through
// [workspace.dependencies]
func (p *Project) UsesWorkspaceTable(target Target) bool {
	switch target {
	case TargetWorkspace:
		return p.Context.InWorkspace()
	case TargetDefault:
		return p.Context.InWorkspace() && !p.Context.SharedManifest()
	}
	return false
}

// Staged is the outcome of applying a change set to private copies of the
// project's manifests. Nothing is installed until Commit.
type Staged struct {
	Changes engine.ChangeSet
	Target  Target

	crate     *manifest.Model
	workspace *manifest.Model
}

// Crate is the staged crate manifest
func (s *Staged) Crate() *manifest.Model {
	return s.crate
}

// Stage applies cs to copies of the project's manifests. Either every
// manifest receives its share of the change set or an error is returned;
// the project itself is never modified.
func (p *Project) Stage(cs engine.ChangeSet, target Target) (*Staged, error) {
	if target == TargetWorkspace && !p.Context.InWorkspace() {
		return nil, errors.New(errors.ErrInvalidInput, "--target workspace requires a Cargo workspace")
	}

	var deps, regs engine.ChangeSet
	scope := p.RegistrationScope(target)
	for _, c := range cs {
		if c.IsDependencyChange() {
			deps = append(deps, c)
			continue
		}
		if c.Action == engine.Register {
			reg := *c.Registration
			reg.Scope = scope
			c.Registration = &reg
		}
		regs = append(regs, c)
	}

	crate, workspace := p.crate, p.workspace
	var err error
	switch {
	case !p.UsesWorkspaceTable(target):
		crate, err = engine.Apply(deps, crate, engine.Direct)
	case p.Context.SharedManifest():
		if crate, err = engine.Apply(deps, crate, engine.WorkspaceTable); err == nil {
			crate, err = engine.Apply(deps, crate, engine.WorkspaceRef)
		}
	default:
		if workspace, err = engine.Apply(deps, workspace, engine.WorkspaceTable); err == nil {
			crate, err = engine.Apply(deps, crate, engine.WorkspaceRef)
		}
	}
	if err != nil {
		return nil, err
	}

	for _, c := range regs {
		holder := &crate
		if c.Registration.Scope == manifest.WorkspaceScope && workspace != nil {
			holder = &workspace
		}
		if *holder, err = engine.Apply(engine.ChangeSet{c}, *holder, engine.Direct); err != nil {
			return nil, err
		}
	}

	return &Staged{Changes: cs, Target: target, crate: crate, workspace: workspace}, nil
}

// Commit installs a staged result as the project's manifests
func (p *Project) Commit(s *Staged) {
	p.crate, p.workspace = s.crate, s.workspace
}

// Apply stages cs and commits it on success
func (p *Project) Apply(cs engine.ChangeSet, target Target) error {
	staged, err := p.Stage(cs, target)
	if err != nil {
		return err
	}
	p.Commit(staged)
	return nil
}

// Changed lists the manifests whose serialization differs from disk
func (p *Project) Changed() []string {
	var changed []string
	if p.crate.Serialize() != p.original[p.Context.CrateManifest] {
		changed = append(changed, p.Context.CrateManifest)
	}
	if p.workspace != nil && p.workspace.Serialize() != p.original[p.Context.WorkspaceManifest] {
		changed = append(changed, p.Context.WorkspaceManifest)
	}
	return changed
}

// Save writes every changed manifest atomically and returns their paths.
// The workspace manifest is written first.
func (p *Project) Save() ([]string, error) {
	log := logging.GetLogger("project")
	changed := p.Changed()
	sort.SliceStable(changed, func(i, j int) bool {
		return changed[i] == p.Context.WorkspaceManifest && changed[j] != p.Context.WorkspaceManifest
	})

	for _, path := range changed {
		content := p.crate.Serialize()
		if path != p.Context.CrateManifest {
			content = p.workspace.Serialize()
		}
		if err := filesystem.WriteFileAtomic(p.fs, path, []byte(content)); err != nil {
			return nil, err
		}
		p.original[path] = content
		log.Info().Str("path", path).Msg("Manifest written")
	}
	return changed, nil
}
