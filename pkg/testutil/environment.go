package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/paths"
	"github.com/arthur-debert/bpack/pkg/registry"
)

// TestEnvironment is an isolated project plus a directory of local packs
type TestEnvironment struct {
	Root string
	// ProjectDir holds the crate manifest being edited
	ProjectDir string
	// WorkspaceDir is set by SetupWorkspace
	WorkspaceDir string
	PacksDir     string

	t *testing.T
}

// NewTestEnvironment creates the directories and points the XDG variables
// inside them, so nothing outside the test is read or written
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	env := &TestEnvironment{
		Root:       root,
		ProjectDir: filepath.Join(root, "project"),
		PacksDir:   filepath.Join(root, "packs"),
		t:          t,
	}
	for _, dir := range []string{env.ProjectDir, env.PacksDir} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}

	t.Setenv("HOME", filepath.Join(root, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	// xdg reads its variables once; the bpack overrides are read per call
	t.Setenv(paths.EnvConfigDir, filepath.Join(root, "config", "bpack"))
	t.Setenv(paths.EnvCacheDir, filepath.Join(root, "cache", "bpack"))
	t.Setenv(logging.EnvStateDir, filepath.Join(root, "state", "bpack"))
	return env
}

// SetupProject writes the crate manifest
func (env *TestEnvironment) SetupProject(manifest string) string {
	env.t.Helper()
	return WriteFile(env.t, filepath.Join(env.ProjectDir, "Cargo.toml"), manifest)
}

// SetupWorkspace writes a workspace root manifest and makes ProjectDir a
// member crate called member
func (env *TestEnvironment) SetupWorkspace(root, member, manifest string) {
	env.t.Helper()
	env.WorkspaceDir = filepath.Join(env.Root, "workspace")
	WriteFile(env.t, filepath.Join(env.WorkspaceDir, "Cargo.toml"), root)
	env.ProjectDir = filepath.Join(env.WorkspaceDir, member)
	env.SetupProject(manifest)
}

// Manifest reads the crate manifest back
func (env *TestEnvironment) Manifest() string {
	env.t.Helper()
	return ReadFile(env.t, filepath.Join(env.ProjectDir, "Cargo.toml"))
}

// WorkspaceManifest reads the workspace root manifest back
func (env *TestEnvironment) WorkspaceManifest() string {
	env.t.Helper()
	require.NotEmpty(env.t, env.WorkspaceDir, "no workspace set up")
	return ReadFile(env.t, filepath.Join(env.WorkspaceDir, "Cargo.toml"))
}

// Catalog sees only the local packs of the environment
func (env *TestEnvironment) Catalog() *registry.Catalog {
	return &registry.Catalog{Local: &registry.LocalSource{Paths: []string{env.PacksDir}}}
}

// WriteFile creates path and its parents
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// ReadFile fails the test when path cannot be read
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
