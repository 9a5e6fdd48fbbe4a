// Package newproject implements `bpack new`, which creates a project from a
// template shipped by a pack.
package newproject

import (
	"context"

	"github.com/arthur-debert/bpack/pkg/commands/internal"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/registry"
	"github.com/arthur-debert/bpack/pkg/scaffold"
	"github.com/arthur-debert/bpack/pkg/types"
)

// Prompter asks for what the command line left out
type Prompter interface {
	ProjectName(pack string) (string, error)
	Template(pack string, choices []packspec.Template) (string, error)
}

// NewProjectOptions contains options for the new command
type NewProjectOptions struct {
	Pack string
	// Path reads the pack crate in this directory instead
	Path     string
	Template string
	Name     string
	// Directory is where the project directory is created
	Directory string
	// Engine is a scaffold engine name; empty means builtin
	Engine  string
	Authors string

	// Prompter is consulted for a missing name, or a missing template when
	// the pack ships several. Without one those are errors.
	Prompter   Prompter
	Catalog    registry.Finder
	FileSystem filesystem.FS
}

// NewProject materializes a pack template into Directory/Name
func NewProject(ctx context.Context, opts NewProjectOptions) (*types.NewProjectResult, error) {
	logger := logging.GetLogger("commands.new")
	defer logging.LogOperationStart(logger, "new")()

	catalog, name, err := internal.ResolvePack(ctx, opts.Catalog, opts.Path, opts.Pack)
	if err != nil {
		return nil, err
	}
	spec, err := catalog.FetchPackSpec(ctx, name)
	if err != nil {
		return nil, err
	}

	tmpl, err := pickTemplate(spec, opts)
	if err != nil {
		return nil, err
	}

	project := opts.Name
	if project == "" {
		if opts.Prompter == nil {
			return nil, errors.New(errors.ErrInvalidInput, "a project name is required (--name)")
		}
		if project, err = opts.Prompter.ProjectName(spec.Name); err != nil {
			return nil, err
		}
	}
	if err := scaffold.ValidateProjectName(project); err != nil {
		return nil, err
	}

	fsys := opts.FileSystem
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	m, err := scaffold.New(opts.Engine, fsys)
	if err != nil {
		return nil, err
	}

	directory := opts.Directory
	if directory == "" {
		directory = "."
	}
	authors := opts.Authors
	if authors == "" {
		authors = scaffold.DefaultAuthors(ctx)
	}

	logger.Debug().
		Str("pack", spec.Name).
		Str("template", tmpl.Name).
		Str("project", project).
		Str("directory", directory).
		Msg("Materializing template")

	res, err := m.Materialize(ctx, scaffold.Request{
		Pack:      spec,
		Template:  tmpl,
		Name:      project,
		Directory: directory,
		Authors:   authors,
	})
	if err != nil {
		return nil, err
	}

	engine := opts.Engine
	if engine == "" {
		engine = scaffold.EngineBuiltin
	}
	return &types.NewProjectResult{
		Pack:         spec.Name,
		Template:     tmpl.Name,
		Directory:    res.Dir,
		Engine:       engine,
		FilesCreated: res.Files,
	}, nil
}

func pickTemplate(spec *packspec.Spec, opts NewProjectOptions) (packspec.Template, error) {
	tmpl, err := spec.ResolveTemplate(opts.Template)
	if err == nil || opts.Template != "" || opts.Prompter == nil || len(spec.Templates()) == 0 {
		return tmpl, err
	}
	chosen, perr := opts.Prompter.Template(spec.Name, spec.Templates())
	if perr != nil {
		return packspec.Template{}, perr
	}
	return spec.ResolveTemplate(chosen)
}
