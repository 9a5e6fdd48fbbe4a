// Package scaffold turns a pack template into a new project directory.
package scaffold

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/packspec"
)

// Engine names accepted by scaffold.engine
const (
	EngineBuiltin       = "builtin"
	EngineCargoGenerate = "cargo-generate"
)

// Request describes one project to create
type Request struct {
	Pack     *packspec.Spec
	Template packspec.Template
	// Name is the project name; the project is created at Directory/Name
	Name      string
	Directory string
	Authors   string
}

// Dir is where the project will be created
func (r Request) Dir() string {
	return filepath.Join(r.Directory, r.Name)
}

// TemplateDir is the template's directory inside the pack crate
func (r Request) TemplateDir() string {
	return filepath.Join(r.Pack.Dir, filepath.FromSlash(r.Template.Path))
}

// Result reports what was created
type Result struct {
	Dir   string
	Files []string
}

// Materializer creates projects from templates
type Materializer interface {
	Materialize(ctx context.Context, req Request) (*Result, error)
}

// New returns the materializer for a configured engine name
func New(engine string, fsys filesystem.FS) (Materializer, error) {
	switch engine {
	case "", EngineBuiltin:
		return &Builtin{FS: fsys}, nil
	case EngineCargoGenerate:
		return &CargoGenerate{}, nil
	}
	return nil, errors.Newf(errors.ErrInvalidInput, "unknown scaffold engine %q", engine).
		WithDetail("available", []string{EngineBuiltin, EngineCargoGenerate})
}

// ValidateProjectName checks that name can be used as a package name
func ValidateProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New(errors.ErrInvalidInput, "project name cannot be empty")
	}
	if !manifest.ValidCrateName(name) {
		return errors.Newf(errors.ErrInvalidInput,
			"%q is not a valid package name (letters, digits, '-' and '_', starting with a letter)", name)
	}
	return nil
}

// CrateName is the Rust identifier for a project name
func CrateName(project string) string {
	return strings.ReplaceAll(project, "-", "_")
}

// DefaultAuthors builds "Name <email>" from git configuration, falling back
// to the USER environment variable.
func DefaultAuthors(ctx context.Context) string {
	get := func(key string) string {
		out, err := exec.CommandContext(ctx, "git", "config", "--get", key).Output()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(out))
	}
	name, email := get("user.name"), get("user.email")
	switch {
	case name != "" && email != "":
		return name + " <" + email + ">"
	case name != "":
		return name
	}
	return os.Getenv("USER")
}

func checkRequest(fsys filesystem.FS, req Request) error {
	if err := ValidateProjectName(req.Name); err != nil {
		return err
	}
	if req.Pack == nil || req.Pack.Dir == "" {
		return errors.New(errors.ErrTemplate, "pack has no local directory to read templates from")
	}
	if info, err := fsys.Stat(req.TemplateDir()); err != nil || !info.IsDir() {
		return errors.Newf(errors.ErrTemplate, "template %s not found at %s", req.Template.Name, req.TemplateDir()).
			WithDetail("template", req.Template.Name)
	}
	if filesystem.Exists(fsys, req.Dir()) {
		return errors.Newf(errors.ErrAlreadyExists, "%s already exists", req.Dir()).
			WithDetail("path", req.Dir())
	}
	return nil
}
