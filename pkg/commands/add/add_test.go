package add_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/bpack/pkg/commands/add"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/project"
	"github.com/arthur-debert/bpack/pkg/testutil"
	"github.com/arthur-debert/bpack/pkg/types"
)

func setup(t *testing.T) *testutil.TestEnvironment {
	t.Helper()
	env := testutil.NewTestEnvironment(t)
	env.SetupProject(testutil.AppManifest)
	env.SetupPack("cli-battery-pack", testutil.PackConfig{Manifest: testutil.CLIPack})
	return env
}

func run(t *testing.T, env *testutil.TestEnvironment, opts add.AddPackOptions) (*types.ChangesResult, error) {
	t.Helper()
	opts.ProjectDir = env.ProjectDir
	opts.Catalog = env.Catalog()
	return add.AddPack(context.Background(), opts)
}

func TestAddPack_DefaultGroup(t *testing.T) {
	env := setup(t)

	result, err := add.AddPack(context.Background(), add.AddPackOptions{
		ProjectDir: env.ProjectDir,
		Pack:       "cli",
		Catalog:    env.Catalog(),
	})
	require.NoError(t, err)
	assert.Equal(t, "cli-battery-pack", result.Pack)
	assert.Len(t, result.Files, 1)
	assert.False(t, result.DryRun)

	text := env.Manifest()
	clap := testutil.AssertDependency(t, text, manifest.Runtime, "clap", "4.5")
	assert.Equal(t, []string{"derive"}, clap.Features)
	testutil.AssertDependency(t, text, manifest.Runtime, "dialoguer", "0.11")
	testutil.AssertDependency(t, text, manifest.Build, "cli-battery-pack", "0.3.0")
	testutil.AssertNoDependency(t, text, "indicatif")
	testutil.AssertNoDependency(t, text, "serde")
	assert.Equal(t, []string{"default"}, testutil.AssertRegistered(t, text, "cli-battery-pack"))
}

func TestAddPack_NamedGroupWithoutDefaults(t *testing.T) {
	env := setup(t)

	_, err := run(t, env, add.AddPackOptions{
		Pack:              "cli-battery-pack",
		Groups:            []string{"indicators"},
		NoDefaultFeatures: true,
	})
	require.NoError(t, err)

	text := env.Manifest()
	testutil.AssertDependency(t, text, manifest.Runtime, "indicatif", "0.17")
	testutil.AssertDependency(t, text, manifest.Runtime, "console", "0.15")
	testutil.AssertNoDependency(t, text, "clap")
	assert.Equal(t, []string{"indicators"}, testutil.AssertRegistered(t, text, "cli-battery-pack"))
}

func TestAddPack_NoDefaultFeaturesAloneAddsNothing(t *testing.T) {
	env := setup(t)

	_, err := run(t, env, add.AddPackOptions{Pack: "cli", NoDefaultFeatures: true})
	require.NoError(t, err)

	text := env.Manifest()
	testutil.AssertNoDependency(t, text, "clap")
	testutil.AssertNoDependency(t, text, "dialoguer")
	testutil.AssertDependency(t, text, manifest.Build, "cli-battery-pack", "0.3.0")
}

func TestAddPack_AllFeatures(t *testing.T) {
	env := setup(t)

	_, err := run(t, env, add.AddPackOptions{Pack: "cli", AllFeatures: true})
	require.NoError(t, err)

	text := env.Manifest()
	for _, name := range []string{"clap", "dialoguer", "indicatif", "console"} {
		testutil.AssertDependency(t, text, manifest.Runtime, name, "")
	}
	testutil.AssertNoDependency(t, text, "serde")
	assert.Equal(t, []string{"all"}, testutil.AssertRegistered(t, text, "cli-battery-pack"))
}

func TestAddPack_UnknownGroupIsAWarning(t *testing.T) {
	env := setup(t)

	result, err := add.AddPack(context.Background(), add.AddPackOptions{
		ProjectDir: env.ProjectDir,
		Pack:       "cli",
		Groups:     []string{"nope"},
		Catalog:    env.Catalog(),
	})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `"nope"`)
	testutil.AssertDependency(t, env.Manifest(), manifest.Runtime, "clap", "4.5")
}

func TestAddPack_SpecificCrates(t *testing.T) {
	t.Run("valid names proceed", func(t *testing.T) {
		env := setup(t)
		result, err := add.AddPack(context.Background(), add.AddPackOptions{
			ProjectDir: env.ProjectDir,
			Pack:       "cli",
			Crates:     []string{"indicatif", "nope"},
			Catalog:    env.Catalog(),
		})
		require.NoError(t, err)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "nope")

		text := env.Manifest()
		testutil.AssertDependency(t, text, manifest.Runtime, "indicatif", "0.17")
		testutil.AssertNoDependency(t, text, "clap")
	})

	t.Run("only unknown names fail", func(t *testing.T) {
		env := setup(t)
		_, err := run(t, env, add.AddPackOptions{Pack: "cli", Crates: []string{"nope"}})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
		assert.Equal(t, testutil.AppManifest, env.Manifest())
	})

	t.Run("hidden crates cannot be picked", func(t *testing.T) {
		env := setup(t)
		_, err := run(t, env, add.AddPackOptions{Pack: "cli", Crates: []string{"serde"}})
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})
}

func TestAddPack_DryRunWritesNothing(t *testing.T) {
	env := setup(t)

	result, err := add.AddPack(context.Background(), add.AddPackOptions{
		ProjectDir: env.ProjectDir,
		Pack:       "cli",
		DryRun:     true,
		Catalog:    env.Catalog(),
	})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.NotEmpty(t, result.Changes)
	assert.Empty(t, result.Files)
	assert.Equal(t, testutil.AppManifest, env.Manifest())
}

func TestAddPack_Twice(t *testing.T) {
	env := setup(t)

	_, err := run(t, env, add.AddPackOptions{Pack: "cli"})
	require.NoError(t, err)
	first := env.Manifest()

	result, err := add.AddPack(context.Background(), add.AddPackOptions{
		ProjectDir: env.ProjectDir,
		Pack:       "cli",
		Catalog:    env.Catalog(),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Changes)
	assert.Contains(t, result.Message, "already up to date")
	assert.Equal(t, first, env.Manifest())
}

func TestAddPack_ExtendsRegisteredGroups(t *testing.T) {
	env := setup(t)

	_, err := run(t, env, add.AddPackOptions{Pack: "cli"})
	require.NoError(t, err)
	_, err = run(t, env, add.AddPackOptions{Pack: "cli", Groups: []string{"indicators"}})
	require.NoError(t, err)

	text := env.Manifest()
	assert.Equal(t, []string{"default", "indicators"}, testutil.AssertRegistered(t, text, "cli-battery-pack"))
	testutil.AssertDependency(t, text, manifest.Runtime, "indicatif", "0.17")
}

func TestAddPack_WorkspaceMember(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.SetupWorkspace(testutil.WorkspaceRoot, "app", testutil.AppManifest)
	env.SetupPack("cli-battery-pack", testutil.PackConfig{Manifest: testutil.CLIPack})

	result, err := add.AddPack(context.Background(), add.AddPackOptions{
		ProjectDir: env.ProjectDir,
		Pack:       "cli",
		Catalog:    env.Catalog(),
	})
	require.NoError(t, err)
	assert.Len(t, result.Files, 2)

	ws := testutil.LoadManifest(t, env.WorkspaceManifest())
	shared, ok := ws.WorkspaceDependency("clap")
	require.True(t, ok)
	assert.Equal(t, "4.5", shared.Version)

	member := testutil.AssertDependency(t, env.Manifest(), manifest.Runtime, "clap", "")
	assert.True(t, member.Workspace)
	testutil.AssertRegistered(t, env.Manifest(), "cli-battery-pack")
}

func TestAddPack_PackageTarget(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.SetupWorkspace(testutil.WorkspaceRoot, "app", testutil.AppManifest)
	env.SetupPack("cli-battery-pack", testutil.PackConfig{Manifest: testutil.CLIPack})

	_, err := run(t, env, add.AddPackOptions{Pack: "cli", Target: project.TargetPackage})
	require.NoError(t, err)

	assert.Equal(t, testutil.WorkspaceRoot, env.WorkspaceManifest())
	member := testutil.AssertDependency(t, env.Manifest(), manifest.Runtime, "clap", "4.5")
	assert.False(t, member.Workspace)
}

func TestAddPack_FromPath(t *testing.T) {
	env := setup(t)
	dir := env.PacksDir + "/cli-battery-pack"

	result, err := add.AddPack(context.Background(), add.AddPackOptions{
		ProjectDir: env.ProjectDir,
		Path:       dir,
	})
	require.NoError(t, err)
	assert.Equal(t, "cli-battery-pack", result.Pack)
	testutil.AssertDependency(t, env.Manifest(), manifest.Runtime, "clap", "4.5")

	_, err = add.AddPack(context.Background(), add.AddPackOptions{
		ProjectDir: env.ProjectDir,
		Path:       dir,
		Pack:       "web",
	})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestAddPack_Failures(t *testing.T) {
	t.Run("unknown pack", func(t *testing.T) {
		env := setup(t)
		_, err := run(t, env, add.AddPackOptions{Pack: "web"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})

	t.Run("no pack name", func(t *testing.T) {
		env := setup(t)
		_, err := run(t, env, add.AddPackOptions{})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})

	t.Run("outside a project", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		env.SetupPack("cli-battery-pack", testutil.PackConfig{Manifest: testutil.CLIPack})
		_, err := add.AddPack(context.Background(), add.AddPackOptions{
			ProjectDir: t.TempDir(),
			Pack:       "cli",
			Catalog:    env.Catalog(),
		})
		assert.True(t, errors.IsErrorCode(err, errors.ErrNoProject))
	})
}

func TestSelectGroups(t *testing.T) {
	spec, err := packspec.Parse([]byte(testutil.CLIPack))
	require.NoError(t, err)

	tests := []struct {
		name      string
		groups    []string
		noDefault bool
		want      []string
		errs      int
	}{
		{"default only", nil, false, []string{"default"}, 0},
		{"named group", []string{"indicators"}, false, []string{"default", "indicators"}, 0},
		{"no default", []string{"indicators"}, true, []string{"indicators"}, 0},
		{"duplicates collapse", []string{"default", "indicators", "indicators"}, false, []string{"default", "indicators"}, 0},
		{"unknown reported", []string{"fancy"}, false, []string{"default"}, 1},
		{"no default and no groups selects nothing", nil, true, []string{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := add.SelectGroups(spec, tt.groups, tt.noDefault)
			assert.Equal(t, tt.want, got)
			assert.Len(t, errs, tt.errs)
		})
	}
}
