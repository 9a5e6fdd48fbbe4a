package registry

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/packs"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/paths"
)

// loadConcurrency bounds parallel manifest reads
const loadConcurrency = 8

// LocalSource reads packs from disk. Each path is either a pack directory or
// a directory whose children are pack directories.
type LocalSource struct {
	Paths []string
	FS    filesystem.FS
}

type candidate struct {
	dir string
	// nested candidates come from scanning a parent directory and must
	// follow the pack naming convention
	nested bool
}

func (l *LocalSource) fs() filesystem.FS {
	if l.FS == nil {
		return filesystem.NewOS()
	}
	return l.FS
}

func (l *LocalSource) candidates() []candidate {
	fsys := l.fs()
	var out []candidate
	seen := map[string]bool{}
	add := func(c candidate) {
		if !seen[c.dir] {
			seen[c.dir] = true
			out = append(out, c)
		}
	}

	for _, p := range l.Paths {
		dir, err := filepath.Abs(paths.ExpandHome(p))
		if err != nil {
			continue
		}
		if filesystem.Exists(fsys, filepath.Join(dir, paths.ManifestName)) {
			add(candidate{dir: dir})
			continue
		}
		entries, err := fsys.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			child := filepath.Join(dir, e.Name())
			if e.IsDir() && filesystem.Exists(fsys, filepath.Join(child, paths.ManifestName)) {
				add(candidate{dir: child, nested: true})
			}
		}
	}
	return out
}

// List parses every local pack concurrently. A pack that fails to parse is
// reported in the error list and the others are still returned, sorted by
// name.
func (l *LocalSource) List(ctx context.Context) ([]*packspec.Spec, []error) {
	logger := logging.GetLogger("registry.local")
	cands := l.candidates()

	var (
		mu    sync.Mutex
		specs []*packspec.Spec
		errs  []error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for _, c := range cands {
		c := c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			spec, err := packspec.Load(c.dir)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				if c.nested && (!packs.IsPackName(filepath.Base(c.dir)) || !errors.IsErrorCode(err, errors.ErrSpec)) {
					logger.Debug().Err(err).Str("dir", c.dir).Msg("Skipping directory")
					return nil
				}
				errs = append(errs, err)
			case c.nested && !packs.IsPackName(spec.Name):
				logger.Trace().Str("dir", c.dir).Str("crate", spec.Name).Msg("Not a pack")
			default:
				specs = append(specs, spec)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	logger.Debug().Int("packs", len(specs)).Int("errors", len(errs)).Msg("Local packs loaded")
	return specs, errs
}

// Find returns the local pack named name
func (l *LocalSource) Find(ctx context.Context, name string) (*packspec.Spec, bool) {
	specs, _ := l.List(ctx)
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}
