package registry

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/internal/hashutil"
	"github.com/arthur-debert/bpack/pkg/logging"
)

// maxCrateSize bounds the extracted size of one crate archive
const maxCrateSize = 64 << 20

// Download fetches name@version from the CDN, checks it against checksum
// when one is given and extracts it into the cache. An already extracted
// crate is reused without a request.
func (c *Client) Download(ctx context.Context, name, version, checksum string) (string, error) {
	logger := logging.GetLogger("registry.download")
	base := name + "-" + version
	dest := filepath.Join(c.CratesDir(), base)

	if filesystem.Exists(c.fs, filepath.Join(dest, "Cargo.toml")) {
		logger.Debug().Str("crate", base).Msg("Using cached crate")
		return dest, nil
	}

	rawURL := fmt.Sprintf("%s/%s/%s.crate", c.opts.CDN, url.PathEscape(name), url.PathEscape(base))
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if err := hashutil.Verify(body, checksum); err != nil {
		return "", errors.Wrapf(err, errors.ErrFetch, "refusing %s", base).WithDetail("crate", base)
	}

	if err := c.fs.MkdirAll(c.CratesDir(), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create cache directory %s", c.CratesDir())
	}
	staging := fmt.Sprintf("%s.partial-%d", dest, time.Now().UnixNano())
	if err := extractCrate(c.fs, bytes.NewReader(body), base, staging); err != nil {
		_ = c.fs.RemoveAll(staging)
		return "", err
	}

	if err := c.fs.Rename(staging, dest); err != nil {
		_ = c.fs.RemoveAll(staging)
		// Another process may have finished the same download first.
		if filesystem.Exists(c.fs, filepath.Join(dest, "Cargo.toml")) {
			return dest, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileWrite, "failed to move crate into %s", dest)
	}

	logger.Info().Str("crate", base).Str("dir", dest).Msg("Crate downloaded")
	return dest, nil
}

// extractCrate unpacks a gzipped tar whose entries all live under prefix/
// into dest. Entries escaping prefix, links and special files are rejected
// or skipped.
func extractCrate(fsys filesystem.FS, r io.Reader, prefix, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return errors.Wrap(err, errors.ErrFetch, "crate archive is not gzip data")
	}
	defer func() { _ = gz.Close() }()

	if err := fsys.MkdirAll(dest, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dest)
	}

	var total int64
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrFetch, "corrupt crate archive")
		}

		rel, err := entryPath(hdr.Name, prefix)
		if err != nil {
			return err
		}
		if rel == "" {
			continue
		}
		target := filepath.Join(dest, filepath.FromSlash(rel))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fsys.MkdirAll(target, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", target)
			}
		case tar.TypeReg:
			total += hdr.Size
			if total > maxCrateSize {
				return errors.Newf(errors.ErrFetch, "crate archive exceeds %d bytes", maxCrateSize)
			}
			data, err := io.ReadAll(io.LimitReader(tr, hdr.Size))
			if err != nil {
				return errors.Wrapf(err, errors.ErrFetch, "failed to read %s from archive", hdr.Name)
			}
			if err := fsys.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(target))
			}
			if err := fsys.WriteFile(target, data, 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", target)
			}
		}
	}
	return nil
}

// entryPath returns hdr's path relative to prefix, or an error when the
// entry would land outside it.
func entryPath(name, prefix string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(name, "./"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.Newf(errors.ErrFetch, "archive entry %q escapes the crate directory", name)
	}
	if clean == prefix {
		return "", nil
	}
	rel, ok := strings.CutPrefix(clean, prefix+"/")
	if !ok {
		return "", errors.Newf(errors.ErrFetch, "archive entry %q is outside %s/", name, prefix)
	}
	return rel, nil
}
