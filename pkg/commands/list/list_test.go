package list_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/bpack/pkg/commands/list"
	"github.com/arthur-debert/bpack/pkg/testutil"
)

func setup(t *testing.T) *testutil.TestEnvironment {
	t.Helper()
	env := testutil.NewTestEnvironment(t)
	env.SetupPack("cli-battery-pack", testutil.PackConfig{Manifest: testutil.CLIPack})
	env.SetupPack("web-battery-pack", testutil.PackConfig{
		Manifest: testutil.PackManifest("web-battery-pack", "1.0.0", "axum = \"0.7\"\n"),
	})
	return env
}

func TestListPacks_All(t *testing.T) {
	env := setup(t)

	result, err := list.ListPacks(context.Background(), list.ListPacksOptions{
		ProjectDir: t.TempDir(),
		Catalog:    env.Catalog(),
	})
	require.NoError(t, err)
	require.Len(t, result.Packs, 2)
	assert.Empty(t, result.Warnings, "outside a project nothing is marked and nothing is reported")

	cli := result.Packs[0]
	assert.Equal(t, "cli-battery-pack", cli.Name)
	assert.Equal(t, "cli", cli.ShortName)
	assert.Equal(t, "0.3.0", cli.Version)
	assert.Equal(t, "local", cli.Source)
	assert.False(t, cli.Installed)
}

func TestListPacks_Filter(t *testing.T) {
	env := setup(t)

	result, err := list.ListPacks(context.Background(), list.ListPacksOptions{
		Filter:     "command line",
		ProjectDir: t.TempDir(),
		Catalog:    env.Catalog(),
	})
	require.NoError(t, err)
	require.Len(t, result.Packs, 1)
	assert.Equal(t, "cli-battery-pack", result.Packs[0].Name)
	assert.Equal(t, "command line", result.Filter)
}

func TestListPacks_MarksInstalled(t *testing.T) {
	env := setup(t)
	env.SetupProject(`[package]
name = "my-app"
version = "0.1.0"

[build-dependencies]
web-battery-pack = "1.0.0"
`)

	result, err := list.ListPacks(context.Background(), list.ListPacksOptions{
		ProjectDir: env.ProjectDir,
		Catalog:    env.Catalog(),
	})
	require.NoError(t, err)
	require.Len(t, result.Packs, 2)
	assert.False(t, result.Packs[0].Installed)
	assert.True(t, result.Packs[1].Installed)
}

func TestListPacks_BrokenPackIsAWarning(t *testing.T) {
	env := setup(t)
	env.SetupPack("broken-battery-pack", testutil.PackConfig{Manifest: "[package]\nname = \"broken-battery-pack\"\n"})

	result, err := list.ListPacks(context.Background(), list.ListPacksOptions{
		ProjectDir: t.TempDir(),
		Catalog:    env.Catalog(),
	})
	require.NoError(t, err)
	assert.Len(t, result.Packs, 2)
	assert.NotEmpty(t, result.Warnings)
}
