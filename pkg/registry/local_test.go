package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/bpack/pkg/errors"
)

func writePack(t *testing.T, dir, name, extra string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	content := "[package]\nname = \"" + name + "\"\nversion = \"1.0.0\"\ndescription = \"" + name + " pack\"\n\n[dependencies]\nanyhow = \"1\"\n" + extra
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(content), 0644))
}

func TestLocalSourceList(t *testing.T) {
	root := t.TempDir()
	writePack(t, filepath.Join(root, "packs", "cli-battery-pack"), "cli-battery-pack", "")
	writePack(t, filepath.Join(root, "packs", "web-battery-pack"), "web-battery-pack", "")
	writePack(t, filepath.Join(root, "packs", "helper"), "helper", "")
	writePack(t, filepath.Join(root, "packs", "bad-battery-pack"), "bad-battery-pack", "[features]\ndefault = [\"missing\"]\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "packs", "empty"), 0755))
	writePack(t, filepath.Join(root, "single"), "solo-battery-pack", "")

	src := &LocalSource{Paths: []string{
		filepath.Join(root, "packs"),
		filepath.Join(root, "single"),
		filepath.Join(root, "does-not-exist"),
	}}

	specs, errs := src.List(context.Background())

	var names []string
	for _, s := range specs {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"cli-battery-pack", "solo-battery-pack", "web-battery-pack"}, names)
	require.Len(t, errs, 1, "only the malformed pack is reported")
	assert.True(t, errors.IsErrorCode(errs[0], errors.ErrSpec))
}

func TestLocalSourceFind(t *testing.T) {
	root := t.TempDir()
	writePack(t, filepath.Join(root, "cli-battery-pack"), "cli-battery-pack", "")

	src := &LocalSource{Paths: []string{root}}

	spec, ok := src.Find(context.Background(), "cli-battery-pack")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "cli-battery-pack"), spec.Dir)

	_, ok = src.Find(context.Background(), "web-battery-pack")
	assert.False(t, ok)
}
