package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, ManifestName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDirectories(t *testing.T) {
	t.Run("env overrides", func(t *testing.T) {
		t.Setenv(EnvCacheDir, "/custom/cache")
		t.Setenv(EnvConfigDir, "/custom/config")

		assert.Equal(t, "/custom/cache", CacheDir())
		assert.Equal(t, "/custom/config/config.toml", ConfigFile())
		assert.Equal(t, "/custom/cache/crates", CratesCacheDir(""))
	})

	t.Run("xdg defaults", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "/xdg/cache")
		t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
		xdg.Reload()
		defer xdg.Reload()

		assert.Equal(t, "/xdg/cache/bpack", CacheDir())
		assert.Equal(t, "/xdg/config/bpack", ConfigDir())
	})

	t.Run("explicit cache dir", func(t *testing.T) {
		assert.Equal(t, "/elsewhere/crates", CratesCacheDir("/elsewhere"))
	})

	t.Run("tilde expansion", func(t *testing.T) {
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		t.Setenv(EnvCacheDir, "~/bp-cache")
		assert.Equal(t, filepath.Join(home, "bp-cache"), CacheDir())
	})
}

func TestDiscover(t *testing.T) {
	t.Run("single crate", func(t *testing.T) {
		root := t.TempDir()
		manifest := writeManifest(t, root, "[package]\nname = \"app\"\n")
		sub := filepath.Join(root, "src", "bin")
		require.NoError(t, os.MkdirAll(sub, 0755))

		ctx, err := Discover(sub)
		require.NoError(t, err)
		assert.Equal(t, manifest, ctx.CrateManifest)
		assert.Equal(t, root, ctx.CrateDir)
		assert.False(t, ctx.InWorkspace())
	})

	t.Run("member of workspace", func(t *testing.T) {
		root := t.TempDir()
		ws := writeManifest(t, root, "[workspace]\nmembers = [\"crates/*\"]\n")
		member := writeManifest(t, filepath.Join(root, "crates", "app"), "[package]\nname = \"app\"\n")

		ctx, err := Discover(filepath.Join(root, "crates", "app"))
		require.NoError(t, err)
		assert.Equal(t, member, ctx.CrateManifest)
		assert.Equal(t, ws, ctx.WorkspaceManifest)
		assert.Equal(t, root, ctx.WorkspaceDir)
		assert.True(t, ctx.InWorkspace())
		assert.False(t, ctx.SharedManifest())
	})

	t.Run("root package is the workspace", func(t *testing.T) {
		root := t.TempDir()
		manifest := writeManifest(t, root, "[package]\nname = \"app\"\n\n[workspace.dependencies]\nserde = \"1\"\n")

		ctx, err := Discover(root)
		require.NoError(t, err)
		assert.True(t, ctx.SharedManifest())
		assert.Equal(t, manifest, ctx.WorkspaceManifest)
	})

	t.Run("no project", func(t *testing.T) {
		_, err := Discover(t.TempDir())
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrNoProject))
	})
}
