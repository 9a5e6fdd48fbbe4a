package remove_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/bpack/pkg/commands/remove"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/testutil"
)

const twoPacks = `[package]
name = "my-app"
version = "0.1.0"

[dependencies]
anyhow = "1"
axum = "0.7"
clap = { version = "4.5", features = ["derive"] }
dialoguer = "0.11"

[build-dependencies]
cli-battery-pack = "0.3.0"
web-battery-pack = "1.0.0"

[package.metadata.battery-pack]
cli-battery-pack = "0.3.0"
web-battery-pack = "1.0.0"
`

func setup(t *testing.T) *testutil.TestEnvironment {
	t.Helper()
	env := testutil.NewTestEnvironment(t)
	env.SetupProject(twoPacks)
	env.SetupPack("cli-battery-pack", testutil.PackConfig{Manifest: testutil.CLIPack})
	env.SetupPack("web-battery-pack", testutil.PackConfig{
		Manifest: testutil.PackManifest("web-battery-pack", "1.0.0", "axum = \"0.7\"\nclap = \"4\"\n"),
	})
	return env
}

func TestRemovePack_KeepsSharedAndForeignDependencies(t *testing.T) {
	env := setup(t)

	result, err := remove.RemovePack(context.Background(), remove.RemovePackOptions{
		ProjectDir: env.ProjectDir,
		Pack:       "cli",
		Catalog:    env.Catalog(),
	})
	require.NoError(t, err)
	assert.Equal(t, "cli-battery-pack", result.Pack)
	assert.Len(t, result.Files, 1)

	text := env.Manifest()
	testutil.AssertNoDependency(t, text, "dialoguer")
	testutil.AssertNoDependency(t, text, "cli-battery-pack")
	testutil.AssertDependency(t, text, manifest.Runtime, "clap", "4.5")
	testutil.AssertDependency(t, text, manifest.Runtime, "anyhow", "1")
	testutil.AssertDependency(t, text, manifest.Runtime, "axum", "0.7")

	regs, _ := testutil.LoadManifest(t, text).Registrations()
	require.Len(t, regs, 1)
	assert.Equal(t, "web-battery-pack", regs[0].Pack)

	var unregistered bool
	for _, c := range result.Changes {
		if c.Action == "unregister" {
			unregistered = true
		}
	}
	assert.True(t, unregistered)
}

func TestRemovePack_LastPackTakesItsDependencies(t *testing.T) {
	env := setup(t)
	opts := remove.RemovePackOptions{ProjectDir: env.ProjectDir, Catalog: env.Catalog()}

	opts.Pack = "web"
	_, err := remove.RemovePack(context.Background(), opts)
	require.NoError(t, err)
	text := env.Manifest()
	testutil.AssertNoDependency(t, text, "axum")
	testutil.AssertDependency(t, text, manifest.Runtime, "clap", "4.5")

	opts.Pack = "cli"
	_, err = remove.RemovePack(context.Background(), opts)
	require.NoError(t, err)
	text = env.Manifest()
	testutil.AssertNoDependency(t, text, "clap")
	testutil.AssertDependency(t, text, manifest.Runtime, "anyhow", "1")
}

func TestRemovePack_WorkspaceDeclarationsNeedDeep(t *testing.T) {
	for _, deep := range []bool{false, true} {
		env := testutil.NewTestEnvironment(t)
		env.SetupWorkspace(`[workspace]
members = ["app"]

[workspace.dependencies]
dialoguer = "0.11"
`, "app", `[package]
name = "app"
version = "0.1.0"

[dependencies]
dialoguer = { workspace = true }

[package.metadata.battery-pack]
cli-battery-pack = "0.3.0"
`)
		env.SetupPack("cli-battery-pack", testutil.PackConfig{Manifest: testutil.CLIPack})

		_, err := remove.RemovePack(context.Background(), remove.RemovePackOptions{
			ProjectDir: env.ProjectDir,
			Pack:       "cli",
			Deep:       deep,
			Catalog:    env.Catalog(),
		})
		require.NoError(t, err)

		testutil.AssertNoDependency(t, env.Manifest(), "dialoguer")
		_, shared := testutil.LoadManifest(t, env.WorkspaceManifest()).WorkspaceDependency("dialoguer")
		assert.Equal(t, !deep, shared, "deep=%v", deep)
	}
}

func TestRemovePack_UnavailableSpecOnlyUnregisters(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.SetupProject(twoPacks)

	result, err := remove.RemovePack(context.Background(), remove.RemovePackOptions{
		ProjectDir: env.ProjectDir,
		Pack:       "cli",
		Catalog:    env.Catalog(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warnings)

	text := env.Manifest()
	testutil.AssertNoDependency(t, text, "cli-battery-pack")
	testutil.AssertDependency(t, text, manifest.Runtime, "dialoguer", "0.11")
}

func TestRemovePack_NotInstalled(t *testing.T) {
	env := setup(t)

	_, err := remove.RemovePack(context.Background(), remove.RemovePackOptions{
		ProjectDir: env.ProjectDir,
		Pack:       "tui",
		Catalog:    env.Catalog(),
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.Equal(t, twoPacks, env.Manifest())
}

func TestRemovePack_DryRun(t *testing.T) {
	env := setup(t)

	result, err := remove.RemovePack(context.Background(), remove.RemovePackOptions{
		ProjectDir: env.ProjectDir,
		Pack:       "cli",
		DryRun:     true,
		Catalog:    env.Catalog(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Changes)
	assert.Empty(t, result.Files)
	assert.Equal(t, twoPacks, env.Manifest())
}
