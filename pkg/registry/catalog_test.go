package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/packspec"
)

type fakeRemote struct {
	summaries []PackSummary
	specs     map[string]*packspec.Spec
	searchErr error
	ownersErr error
}

func (f *fakeRemote) Search(ctx context.Context, filter string) ([]PackSummary, error) {
	return f.summaries, f.searchErr
}

func (f *fakeRemote) FetchSpec(ctx context.Context, name string) (*packspec.Spec, error) {
	if s, ok := f.specs[name]; ok {
		return s, nil
	}
	return nil, errors.Newf(errors.ErrNotFound, "%s not found", name)
}

func (f *fakeRemote) Owners(ctx context.Context, name string) ([]Owner, error) {
	if f.ownersErr != nil {
		return nil, f.ownersErr
	}
	return []Owner{{Login: "octo"}}, nil
}

func mustSpec(t *testing.T, name string) *packspec.Spec {
	t.Helper()
	spec, err := packspec.Parse([]byte("[package]\nname = \"" + name + "\"\nversion = \"2.0.0\"\n\n[dependencies]\nanyhow = \"1\"\n"))
	require.NoError(t, err)
	return spec
}

func TestCatalogFindPacksLocalWins(t *testing.T) {
	root := t.TempDir()
	writePack(t, filepath.Join(root, "cli-battery-pack"), "cli-battery-pack", "")

	remote := &fakeRemote{summaries: []PackSummary{
		{Name: "cli-battery-pack", Version: "9.9.9", Source: SourceRegistry},
		{Name: "web-battery-pack", Version: "0.1.0", Source: SourceRegistry},
	}}
	cat := &Catalog{Remote: remote, Local: &LocalSource{Paths: []string{root}}}

	list, err := cat.FindPacks(context.Background(), "")
	assert.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, SourceLocal, list[0].Source)
	assert.Equal(t, "1.0.0", list[0].Version)
	assert.Equal(t, SourceRegistry, list[1].Source)
}

func TestCatalogFindPacksSurvivesRemoteFailure(t *testing.T) {
	root := t.TempDir()
	writePack(t, filepath.Join(root, "cli-battery-pack"), "cli-battery-pack", "")

	cat := &Catalog{
		Remote: &fakeRemote{searchErr: errors.New(errors.ErrFetch, "offline")},
		Local:  &LocalSource{Paths: []string{root}},
	}

	list, err := cat.FindPacks(context.Background(), "cli")
	assert.True(t, errors.IsErrorCode(err, errors.ErrFetch))
	require.Len(t, list, 1)
	assert.Equal(t, "cli-battery-pack", list[0].Name)

	list, _ = cat.FindPacks(context.Background(), "web")
	assert.Empty(t, list)
}

func TestCatalogFetchPackSpec(t *testing.T) {
	remote := &fakeRemote{specs: map[string]*packspec.Spec{"web-battery-pack": mustSpec(t, "web-battery-pack")}}
	cat := &Catalog{Remote: remote}

	spec, source, err := cat.lookup(context.Background(), "web-battery-pack")
	require.NoError(t, err)
	assert.Equal(t, SourceRegistry, source)
	assert.Equal(t, "2.0.0", spec.Version)

	_, err = cat.FetchPackSpec(context.Background(), "nope-battery-pack")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	offline := &Catalog{}
	_, err = offline.FetchPackSpec(context.Background(), "web-battery-pack")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestCatalogFetchPackSpecs(t *testing.T) {
	remote := &fakeRemote{specs: map[string]*packspec.Spec{
		"a-battery-pack": mustSpec(t, "a-battery-pack"),
		"b-battery-pack": mustSpec(t, "b-battery-pack"),
	}}
	cat := &Catalog{Remote: remote}

	specs, errs := cat.FetchPackSpecs(context.Background(), []string{"a-battery-pack", "b-battery-pack", "c-battery-pack"})
	assert.Len(t, specs, 2)
	require.Len(t, errs, 1)
	assert.True(t, errors.IsErrorCode(errs[0], errors.ErrNotFound))
}

func TestCatalogFetchDetail(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "cli-battery-pack")
	writePack(t, dir, "cli-battery-pack", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# CLI\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "examples", "tree"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "examples", "basic.rs"), []byte("//! Parse flags.\n//! With clap.\n//!\n//! Details.\nfn main() {}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "examples", "tree", "main.rs"), []byte("fn main() {}\n"), 0644))

	cat := &Catalog{Remote: &fakeRemote{}, Local: &LocalSource{Paths: []string{root}}}

	d, err := cat.FetchDetail(context.Background(), "cli-battery-pack")
	require.NoError(t, err)
	assert.Equal(t, "# CLI\n", d.Readme)
	assert.Empty(t, d.Owners, "owners are only fetched for registry packs")
	assert.Equal(t, []Example{
		{Name: "basic", Path: "examples/basic.rs", Description: "Parse flags. With clap."},
		{Name: "tree", Path: "examples/tree/main.rs"},
	}, d.Examples)
}

func TestCatalogFetchDetailOwnersFailureIsAWarning(t *testing.T) {
	remote := &fakeRemote{
		specs:     map[string]*packspec.Spec{"web-battery-pack": mustSpec(t, "web-battery-pack")},
		ownersErr: errors.New(errors.ErrFetch, "timeout"),
	}
	cat := &Catalog{Remote: remote}

	d, err := cat.FetchDetail(context.Background(), "web-battery-pack")
	require.NoError(t, err)
	require.Len(t, d.Warnings, 1)
	assert.Empty(t, d.Readme)
}

func TestDocComment(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"single line", "//! Hello.\nfn main() {}", "Hello."},
		{"leading blank lines", "\n\n//! Hello.\n", "Hello."},
		{"first paragraph only", "//! One.\n//! Two.\n//!\n//! Three.\n", "One. Two."},
		{"no doc comment", "// plain\nfn main() {}", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, docComment([]byte(tt.src)))
		})
	}
}
