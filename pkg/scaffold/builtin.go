package scaffold

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/logging"
)

// skipped files configure cargo-generate and are not part of the project
var skipped = map[string]bool{
	"cargo-generate.toml": true,
	".git":                true,
}

// Builtin copies the template directory, substituting cargo-generate
// style placeholders in file names and contents.
type Builtin struct {
	FS filesystem.FS
}

func (b *Builtin) fs() filesystem.FS {
	if b.FS == nil {
		return filesystem.NewOS()
	}
	return b.FS
}

func placeholders(req Request) *strings.Replacer {
	return strings.NewReplacer(
		"{{project-name}}", req.Name,
		"{{ project-name }}", req.Name,
		"{{crate_name}}", CrateName(req.Name),
		"{{ crate_name }}", CrateName(req.Name),
		"{{authors}}", req.Authors,
		"{{ authors }}", req.Authors,
	)
}

// Materialize creates the project. A failure part way removes the partial
// project directory.
func (b *Builtin) Materialize(ctx context.Context, req Request) (*Result, error) {
	logger := logging.GetLogger("scaffold.builtin")
	fsys := b.fs()
	if err := checkRequest(fsys, req); err != nil {
		return nil, err
	}

	res := &Result{Dir: req.Dir()}
	if err := b.copyDir(ctx, placeholders(req), req.TemplateDir(), res.Dir, "", res); err != nil {
		_ = fsys.RemoveAll(res.Dir)
		return nil, err
	}
	sort.Strings(res.Files)

	logger.Info().
		Str("template", req.Template.Name).
		Str("dir", res.Dir).
		Int("files", len(res.Files)).
		Msg("Project created")
	return res, nil
}

func (b *Builtin) copyDir(ctx context.Context, repl *strings.Replacer, src, dst, rel string, res *Result) error {
	fsys := b.fs()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fsys.MkdirAll(dst, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dst)
	}

	entries, err := fsys.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "failed to read template directory %s", src)
	}
	for _, e := range entries {
		if skipped[e.Name()] {
			continue
		}
		name := repl.Replace(e.Name())
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, name)
		relPath := filepath.ToSlash(filepath.Join(rel, name))

		if e.IsDir() {
			if err := b.copyDir(ctx, repl, from, to, relPath, res); err != nil {
				return err
			}
			continue
		}
		if e.Type()&fs.ModeType != 0 {
			continue
		}

		data, err := fsys.ReadFile(from)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileRead, "failed to read %s", from)
		}
		mode := fs.FileMode(0644)
		if info, err := e.Info(); err == nil {
			mode = info.Mode().Perm()
		}
		if err := fsys.WriteFile(to, []byte(repl.Replace(string(data))), mode); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", to)
		}
		res.Files = append(res.Files, relPath)
	}
	return nil
}
