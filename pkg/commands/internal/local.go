package internal

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/packs"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/registry"
)

// ResolvePack picks the pack a command works on. With a --path dir the pack
// crate there is used, and name may be empty; the returned finder then only
// sees that crate.
func ResolvePack(ctx context.Context, catalog registry.Finder, dir, name string) (registry.Finder, string, error) {
	if dir == "" {
		if name == "" {
			return nil, "", errors.New(errors.ErrInvalidInput, "a pack name is required")
		}
		return catalog, packs.ResolveName(name), nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", dir)
	}
	spec, err := packspec.Load(abs)
	if err != nil {
		return nil, "", err
	}
	if name != "" && packs.ResolveName(name) != spec.Name {
		return nil, "", errors.Newf(errors.ErrInvalidInput, "%s contains %s, not %s", dir, spec.Name, packs.ResolveName(name)).
			WithDetail("path", abs)
	}
	local := &registry.Catalog{Local: &registry.LocalSource{Paths: []string{abs}}}
	return local, spec.Name, nil
}
