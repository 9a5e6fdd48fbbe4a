package newproject_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/bpack/pkg/commands/newproject"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/testutil"
)

type fakePrompter struct {
	name     string
	template string
	asked    []string
}

func (f *fakePrompter) ProjectName(string) (string, error) {
	f.asked = append(f.asked, "name")
	return f.name, nil
}

func (f *fakePrompter) Template(_ string, choices []packspec.Template) (string, error) {
	f.asked = append(f.asked, "template")
	if f.template == "" {
		return choices[0].Name, nil
	}
	return f.template, nil
}

const twoTemplates = `[package]
name = "svc-battery-pack"
version = "0.1.0"

[dependencies]
tokio = "1"

[package.metadata.battery.templates]
api = { path = "templates/api" }
worker = { path = "templates/worker" }
`

func setup(t *testing.T) *testutil.TestEnvironment {
	t.Helper()
	env := testutil.NewTestEnvironment(t)
	env.SetupPack("cli-battery-pack", testutil.PackConfig{Manifest: testutil.CLIPack}).AddTemplate("templates/simple")
	svc := env.SetupPack("svc-battery-pack", testutil.PackConfig{Manifest: twoTemplates})
	svc.AddTemplate("templates/api")
	svc.AddTemplate("templates/worker")
	return env
}

func TestNewProject(t *testing.T) {
	env := setup(t)
	dest := t.TempDir()

	result, err := newproject.NewProject(context.Background(), newproject.NewProjectOptions{
		Pack:      "cli",
		Name:      "hello-cli",
		Directory: dest,
		Authors:   "Ada <ada@example.com>",
		Catalog:   env.Catalog(),
	})
	require.NoError(t, err)
	assert.Equal(t, "cli-battery-pack", result.Pack)
	assert.Equal(t, "simple", result.Template)
	assert.Equal(t, "builtin", result.Engine)
	assert.Equal(t, filepath.Join(dest, "hello-cli"), result.Directory)
	assert.ElementsMatch(t, []string{"Cargo.toml", "src/main.rs"}, result.FilesCreated)

	cargo := testutil.ReadFile(t, filepath.Join(dest, "hello-cli", "Cargo.toml"))
	assert.Contains(t, cargo, `name = "hello-cli"`)
	assert.Contains(t, cargo, "Ada <ada@example.com>")
	main := testutil.ReadFile(t, filepath.Join(dest, "hello-cli", "src", "main.rs"))
	assert.Contains(t, main, "hello_cli")
}

func TestNewProject_Prompts(t *testing.T) {
	env := setup(t)
	p := &fakePrompter{name: "svc", template: "worker"}

	result, err := newproject.NewProject(context.Background(), newproject.NewProjectOptions{
		Pack:      "svc",
		Directory: t.TempDir(),
		Authors:   "Ada",
		Prompter:  p,
		Catalog:   env.Catalog(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"template", "name"}, p.asked)
	assert.Equal(t, "worker", result.Template)
}

func TestNewProject_Failures(t *testing.T) {
	tests := []struct {
		name string
		opts newproject.NewProjectOptions
		code errors.ErrorCode
	}{
		{"name required without a prompter", newproject.NewProjectOptions{Pack: "cli"}, errors.ErrInvalidInput},
		{"invalid name", newproject.NewProjectOptions{Pack: "cli", Name: "1up"}, errors.ErrInvalidInput},
		{"ambiguous template", newproject.NewProjectOptions{Pack: "svc", Name: "svc"}, errors.ErrNotFound},
		{"unknown template", newproject.NewProjectOptions{Pack: "cli", Name: "x", Template: "fancy"}, errors.ErrNotFound},
		{"unknown engine", newproject.NewProjectOptions{Pack: "cli", Name: "x", Engine: "cookiecutter"}, errors.ErrInvalidInput},
		{"unknown pack", newproject.NewProjectOptions{Pack: "web", Name: "x"}, errors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setup(t)
			tt.opts.Directory = t.TempDir()
			tt.opts.Authors = "Ada"
			tt.opts.Catalog = env.Catalog()
			_, err := newproject.NewProject(context.Background(), tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}

func TestNewProject_ExistingDirectory(t *testing.T) {
	env := setup(t)
	dest := t.TempDir()
	opts := newproject.NewProjectOptions{Pack: "cli", Name: "hello", Directory: dest, Authors: "Ada", Catalog: env.Catalog()}

	_, err := newproject.NewProject(context.Background(), opts)
	require.NoError(t, err)
	_, err = newproject.NewProject(context.Background(), opts)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
}
