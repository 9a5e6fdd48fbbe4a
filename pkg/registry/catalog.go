package registry

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/packspec"
)

// readmeNames are tried in order
var readmeNames = []string{"README.md", "README", "readme.md", "Readme.md"}

// Example is a runnable example shipped with a pack
type Example struct {
	Name        string `json:"name" yaml:"name"`
	Path        string `json:"path" yaml:"path"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PackDetail is everything shown about one pack
type PackDetail struct {
	Spec     *packspec.Spec
	Summary  PackSummary
	Owners   []Owner
	Readme   string
	Examples []Example
	// Warnings are non-fatal lookup failures, such as unreachable owners
	Warnings []error
}

// Catalog merges local and registry packs. Either source may be nil.
type Catalog struct {
	Remote Remote
	Local  *LocalSource
	FS     filesystem.FS
}

func (c *Catalog) fs() filesystem.FS {
	if c.FS == nil {
		return filesystem.NewOS()
	}
	return c.FS
}

// FindPacks returns the packs matching filter from both sources. A failing
// source is reported in the error and the other's results are still
// returned.
func (c *Catalog) FindPacks(ctx context.Context, filter string) ([]PackSummary, error) {
	idx := NewIndex()
	var (
		mu   sync.Mutex
		errs []error
	)
	report := func(e ...error) {
		mu.Lock()
		errs = append(errs, e...)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	if c.Local != nil {
		g.Go(func() error {
			specs, lerrs := c.Local.List(gctx)
			report(lerrs...)
			for _, s := range specs {
				if matches(s, filter) {
					idx.Put(SummaryOf(s, SourceLocal))
				}
			}
			return nil
		})
	}
	if c.Remote != nil {
		g.Go(func() error {
			found, err := c.Remote.Search(gctx, filter)
			if err != nil {
				report(err)
				return nil
			}
			for _, s := range found {
				idx.Put(s)
			}
			return nil
		})
	}
	_ = g.Wait()

	logger := logging.GetLogger("registry.catalog")
	logger.Debug().
		Str("filter", filter).
		Int("packs", idx.Count()).
		Msg("Catalog listed")
	return idx.List(), errors.Join(errs...)
}

func matches(s *packspec.Spec, filter string) bool {
	if filter == "" {
		return true
	}
	f := strings.ToLower(filter)
	return strings.Contains(strings.ToLower(s.Name), f) || strings.Contains(strings.ToLower(s.Description), f)
}

// FetchPackSpec finds a pack's spec, preferring a local copy
func (c *Catalog) FetchPackSpec(ctx context.Context, name string) (*packspec.Spec, error) {
	spec, _, err := c.lookup(ctx, name)
	return spec, err
}

func (c *Catalog) lookup(ctx context.Context, name string) (*packspec.Spec, Source, error) {
	if c.Local != nil {
		if spec, ok := c.Local.Find(ctx, name); ok {
			return spec, SourceLocal, nil
		}
	}
	if c.Remote == nil {
		return nil, "", errors.Newf(errors.ErrNotFound, "pack %s not found in local sources", name).
			WithDetail("pack", name)
	}
	spec, err := c.Remote.FetchSpec(ctx, name)
	if err != nil {
		return nil, "", err
	}
	return spec, SourceRegistry, nil
}

// FetchPackSpecs fetches several specs concurrently. Failures are reported
// per pack and do not stop the others.
func (c *Catalog) FetchPackSpecs(ctx context.Context, names []string) (map[string]*packspec.Spec, []error) {
	var (
		mu    sync.Mutex
		specs = make(map[string]*packspec.Spec, len(names))
		errs  []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for _, name := range names {
		name := name
		g.Go(func() error {
			spec, _, err := c.lookup(gctx, name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			specs[name] = spec
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return specs, errs
}

// FetchDetail assembles the full description of a pack. Only a missing spec
// is an error; owners, README and examples are best effort.
func (c *Catalog) FetchDetail(ctx context.Context, name string) (*PackDetail, error) {
	spec, source, err := c.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	d := &PackDetail{Spec: spec, Summary: SummaryOf(spec, source)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	if c.Remote != nil && source == SourceRegistry {
		g.Go(func() error {
			owners, err := c.Remote.Owners(gctx, name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				d.Warnings = append(d.Warnings, err)
				return nil
			}
			d.Owners = owners
			return nil
		})
	}
	if spec.Dir != "" {
		g.Go(func() error {
			readme := readReadme(c.fs(), spec.Dir)
			mu.Lock()
			d.Readme = readme
			mu.Unlock()
			return nil
		})
		g.Go(func() error {
			examples := scanExamples(c.fs(), spec.Dir)
			mu.Lock()
			d.Examples = examples
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return d, nil
}

func readReadme(fsys filesystem.FS, dir string) string {
	for _, name := range readmeNames {
		if data, err := fsys.ReadFile(filepath.Join(dir, name)); err == nil {
			return string(data)
		}
	}
	return ""
}

// scanExamples lists examples/*.rs and examples/*/main.rs, describing each
// with its leading //! doc comment.
func scanExamples(fsys filesystem.FS, dir string) []Example {
	root := filepath.Join(dir, "examples")
	entries, err := fsys.ReadDir(root)
	if err != nil {
		return nil
	}

	var out []Example
	for _, e := range entries {
		var file, name string
		switch {
		case !e.IsDir() && strings.HasSuffix(e.Name(), ".rs"):
			file = filepath.Join(root, e.Name())
			name = strings.TrimSuffix(e.Name(), ".rs")
		case e.IsDir():
			file = filepath.Join(root, e.Name(), "main.rs")
			name = e.Name()
		default:
			continue
		}
		data, err := fsys.ReadFile(file)
		if err != nil {
			continue
		}
		rel, _ := filepath.Rel(dir, file)
		out = append(out, Example{Name: name, Path: filepath.ToSlash(rel), Description: docComment(data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// docComment returns the first paragraph of the leading //! block
func docComment(src []byte) string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(src))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "//!") {
			if line == "" && len(lines) == 0 {
				continue
			}
			break
		}
		text := strings.TrimSpace(strings.TrimPrefix(line, "//!"))
		if text == "" {
			if len(lines) > 0 {
				break
			}
			continue
		}
		lines = append(lines, text)
	}
	return strings.Join(lines, " ")
}
