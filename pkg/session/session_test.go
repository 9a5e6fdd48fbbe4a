package session

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/bpack/pkg/engine"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/project"
	"github.com/arthur-debert/bpack/pkg/registry"
)

const appManifest = `[package]
name = "app"
version = "0.1.0"
edition = "2021"
`

const installedManifest = appManifest + `
[dev-dependencies]
clap = { version = "4.3", features = ["derive"] }
dialoguer = "0.11"

[build-dependencies]
cli-battery-pack = "0.3.0"

[package.metadata.battery-pack]
cli-battery-pack = "0.3.0"
`

func openProject(t *testing.T, text string) *project.Project {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(text), 0644))
	p, err := project.Load(dir, nil)
	require.NoError(t, err)
	return p
}

func press(t *testing.T, m Model, keys ...string) (Model, []Effect) {
	t.Helper()
	var effects []Effect
	for _, k := range keys {
		var runes []rune
		if len([]rune(k)) == 1 {
			runes = []rune(k)
		}
		m, effects = Update(m, Key{Name: k, Runes: runes})
	}
	return m, effects
}

func summaries3() []registry.PackSummary {
	return []registry.PackSummary{
		{Name: "cli-battery-pack", ShortName: "cli", Version: "0.3.0", Description: "CLI essentials"},
		{Name: "error-battery-pack", ShortName: "error", Version: "0.2.0", Description: "Error handling"},
		{Name: "web-battery-pack", ShortName: "web", Version: "1.0.0", Description: "HTTP services"},
	}
}

func detailOf(t *testing.T) *registry.PackDetail {
	spec := mustSpec(t, cliPack)
	return &registry.PackDetail{Spec: spec, Summary: registry.SummaryOf(spec, registry.SourceLocal)}
}

func startList(t *testing.T, ws Workspace) Model {
	t.Helper()
	m, effects := New(ws, Options{Entry: EntryList})
	require.Len(t, effects, 1)
	fetch, ok := effects[0].(FetchList)
	require.True(t, ok)
	m, _ = Update(m, ListLoaded{Seq: fetch.Seq, Packs: summaries3()})
	require.IsType(t, List{}, m.Screen)
	return m
}

func openDetail(t *testing.T, m Model) Model {
	t.Helper()
	m, effects := press(t, m, "enter")
	require.Len(t, effects, 1)
	fetch := effects[0].(FetchDetail)
	m, _ = Update(m, DetailLoaded{Seq: fetch.Seq, Detail: detailOf(t)})
	require.IsType(t, Detail{}, m.Screen)
	return m
}

func TestNewStartsLoading(t *testing.T) {
	m, effects := New(nil, Options{Entry: EntryDetail, Pack: "cli-battery-pack"})

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, Running, m.Outcome)
	require.IsType(t, Loading{}, m.Screen)
	require.Len(t, effects, 1)
	assert.Equal(t, FetchDetail{Seq: 1, Pack: "cli-battery-pack"}, effects[0])
	assert.Equal(t, 0, m.Depth())
}

func TestStaleResultsAreDropped(t *testing.T) {
	m, _ := New(nil, Options{Entry: EntryList})

	next, _ := Update(m, ListLoaded{Seq: 99, Packs: summaries3()})
	assert.IsType(t, Loading{}, next.Screen)

	next, _ = Update(m, DetailLoaded{Seq: 1, Detail: detailOf(t)})
	assert.IsType(t, Loading{}, next.Screen, "a detail cannot complete a list fetch")
}

func TestFetchFailureIsRetryable(t *testing.T) {
	m, _ := New(nil, Options{Entry: EntryList, Filter: "cli"})

	m, _ = Update(m, FetchFailed{Seq: 1, Err: errors.New(errors.ErrFetch, "crates.io unreachable")})
	errScreen, ok := m.Screen.(Error)
	require.True(t, ok)
	assert.Contains(t, errScreen.Message, "crates.io unreachable")
	assert.Equal(t, Running, m.Outcome, "a fetch failure never ends the session")

	m, effects := press(t, m, "r")
	require.IsType(t, Loading{}, m.Screen)
	assert.Equal(t, []Effect{FetchList{Seq: 2, Filter: "cli"}}, effects)

	m, _ = Update(m, FetchFailed{Seq: 2, Err: stderrors.New("still down")})
	m, _ = press(t, m, "esc")
	assert.Equal(t, Discarded, m.Outcome, "dismissing with nothing behind discards")
}

func TestListCursorWraps(t *testing.T) {
	m := startList(t, nil)

	m, _ = press(t, m, "up")
	assert.Equal(t, 2, m.Screen.(List).Cursor)
	m, _ = press(t, m, "down")
	assert.Equal(t, 0, m.Screen.(List).Cursor)
	m, _ = press(t, m, "k", "k", "k", "k")
	assert.Equal(t, 2, m.Screen.(List).Cursor)
}

func TestListFuzzySearch(t *testing.T) {
	m := startList(t, nil)

	m, _ = press(t, m, "/", "w", "e")
	list := m.Screen.(List)
	assert.True(t, list.Searching)
	assert.Equal(t, "we", list.Query)
	require.NotEmpty(t, list.Visible())
	assert.Equal(t, "web-battery-pack", list.Visible()[0].Name)

	m, _ = press(t, m, "q")
	assert.Equal(t, Running, m.Outcome, "q is text while searching")
	assert.Equal(t, "weq", m.Screen.(List).Query)

	m, _ = press(t, m, "backspace", "enter")
	list = m.Screen.(List)
	assert.False(t, list.Searching)
	selected, ok := list.Selected()
	require.True(t, ok)
	assert.Equal(t, "web-battery-pack", selected.Name)

	m, _ = press(t, m, "/", "esc")
	assert.Equal(t, "", m.Screen.(List).Query)
	assert.Len(t, m.Screen.(List).Visible(), 3)
}

func TestDetailItemsAndURLs(t *testing.T) {
	m := openDetail(t, startList(t, nil))
	d := m.Screen.(Detail)

	var kinds []ItemKind
	for _, it := range d.Items {
		kinds = append(kinds, it.Kind)
	}
	assert.Equal(t, []ItemKind{ItemDependency, ItemDependency, ItemDependency, ItemDependency, ItemOpen, ItemAdd, ItemNewProject}, kinds)
	for _, it := range d.Items {
		assert.NotEqual(t, "serde", it.Name)
	}

	m, effects := press(t, m, "enter")
	assert.Equal(t, []Effect{OpenURL{URL: "https://crates.io/crates/clap"}}, effects)
	assert.Equal(t, "https://crates.io/crates/clap", m.Status)
	assert.IsType(t, Detail{}, m.Screen)

	m, _ = press(t, m, "up")
	assert.Equal(t, len(d.Items)-1, m.Screen.(Detail).Cursor)
}

func TestDetailAddOutsideProject(t *testing.T) {
	m := openDetail(t, startList(t, nil))

	m, _ = press(t, m, "up", "up", "enter")
	assert.IsType(t, Detail{}, m.Screen)
	assert.Equal(t, "Not inside a Cargo project", m.Status)
}

func TestAddFromDetailCommits(t *testing.T) {
	p := openProject(t, appManifest)
	m := openDetail(t, startList(t, p))

	m, _ = press(t, m, "up", "up", "enter")
	expand, ok := m.Screen.(Expand)
	require.True(t, ok)
	assert.Equal(t, []string{"clap", "dialoguer"}, enabled(expand.Pack))
	assert.Equal(t, 2, m.Depth())

	m, _ = press(t, m, "enter")
	require.Equal(t, Committed, m.Outcome)
	require.NotNil(t, m.Result.Staged)
	assert.Equal(t, 3, m.Result.Changes.Count(engine.Add))

	crate := m.Result.Staged.Crate()
	clap, ok := crate.GetDependency(manifest.Dev, "clap")
	require.True(t, ok)
	assert.Equal(t, "4.5", clap.Version)
	_, ok = crate.GetDependency(manifest.Build, "cli-battery-pack")
	assert.True(t, ok)

	assert.Empty(t, p.Changed(), "the project is untouched until the caller commits")
}

func TestExpandCancelKeepsProject(t *testing.T) {
	p := openProject(t, appManifest)
	m := openDetail(t, startList(t, p))

	m, _ = press(t, m, "up", "up", "enter", "down", " ")
	require.IsType(t, Expand{}, m.Screen)
	assert.Equal(t, []string{"dialoguer"}, enabled(m.Screen.(Expand).Pack))

	m, _ = press(t, m, "esc")
	assert.IsType(t, Detail{}, m.Screen)
	m, _ = press(t, m, "esc")
	assert.IsType(t, List{}, m.Screen)
	m, _ = press(t, m, "esc")
	assert.Equal(t, Discarded, m.Outcome)
	assert.Empty(t, p.Changed())
}

func TestExpandCursorWraps(t *testing.T) {
	p := openProject(t, appManifest)
	m, effects := New(p, Options{Entry: EntryExpand, Pack: "cli-battery-pack"})
	m, _ = Update(m, ExpandLoaded{Seq: SeqOf(effects[0]), Spec: mustSpec(t, cliPack)})
	require.IsType(t, Expand{}, m.Screen)

	rows := len(m.Screen.(Expand).Pack.Rows())
	m, _ = press(t, m, "up")
	assert.Equal(t, rows-1, m.Screen.(Expand).Cursor)
	m, _ = press(t, m, "down", "down")
	assert.Equal(t, 1, m.Screen.(Expand).Cursor)
}

func TestExpandRefusalSetsStatus(t *testing.T) {
	p := openProject(t, appManifest)
	m, effects := New(p, Options{Entry: EntryExpand, Pack: "cli-battery-pack"})
	m, _ = Update(m, ExpandLoaded{Seq: SeqOf(effects[0]), Spec: mustSpec(t, cliPack)})

	// rows: [default] clap dialoguer [fancy] console indicatif [indicators]
	m, _ = press(t, m, "up", " ", "up", " ")
	assert.Equal(t, "indicatif is required by indicators", m.Status)
	assert.True(t, m.Screen.(Expand).Pack.Enabled("indicatif"))
}

func TestApplyFailureShowsErrorAndKeepsSelection(t *testing.T) {
	p := openProject(t, appManifest+"\n[dev-dependencies]\nclap.version = \"4.0\"\n")
	m, effects := New(p, Options{Entry: EntryExpand, Pack: "cli-battery-pack"})
	m, _ = Update(m, ExpandLoaded{Seq: SeqOf(effects[0]), Spec: mustSpec(t, cliPack)})

	m, _ = press(t, m, "enter")
	errScreen, ok := m.Screen.(Error)
	require.True(t, ok)
	assert.Contains(t, errScreen.Message, "APPLY_ERROR")
	assert.Equal(t, Running, m.Outcome)
	assert.Empty(t, p.Changed())

	m, _ = press(t, m, "esc")
	assert.IsType(t, Expand{}, m.Screen)
}

func TestFormValidation(t *testing.T) {
	m := openDetail(t, startList(t, nil))

	m, _ = press(t, m, "up", "enter")
	form, ok := m.Screen.(Form)
	require.True(t, ok)
	assert.Equal(t, ".", form.Directory)
	assert.Equal(t, FieldDirectory, form.Focus)

	m, _ = press(t, m, "backspace", "enter")
	assert.Equal(t, "Directory is required", m.Screen.(Form).Message)
	assert.Equal(t, Running, m.Outcome)

	m, _ = press(t, m, "o", "u", "t", "tab", "enter")
	assert.Equal(t, "Project name is required", m.Screen.(Form).Message)

	m, _ = press(t, m, "q", "a", "p", "p")
	assert.Equal(t, Running, m.Outcome, "q is text in a form")
	m, _ = press(t, m, "backspace", "backspace", "backspace", "enter")
	require.Equal(t, Committed, m.Outcome)
	assert.Equal(t, &NewProjectRequest{Pack: "cli-battery-pack", Directory: "out", Name: "q"}, m.Result.NewProject)
}

func TestQuitDiscardsOutsideTextEntry(t *testing.T) {
	m := startList(t, nil)
	m, _ = press(t, m, "q")
	assert.Equal(t, Discarded, m.Outcome)

	m = openDetail(t, startList(t, nil))
	m, _ = press(t, m, "up", "enter", "ctrl+c")
	assert.Equal(t, Discarded, m.Outcome)

	next, effects := press(t, m, "enter")
	assert.Equal(t, m, next, "a finished session ignores input")
	assert.Empty(t, effects)
}

func startReview(t *testing.T, p *project.Project) Model {
	t.Helper()
	m, effects := New(p, Options{Entry: EntryReview})
	require.Equal(t, []Effect{FetchInstalled{Seq: 1}}, effects)
	reg, ok := p.Registration("cli-battery-pack")
	require.True(t, ok)
	m, _ = Update(m, InstalledLoaded{Seq: 1, Packs: []InstalledPack{{Registration: reg, Spec: mustSpec(t, cliPack)}}})
	require.IsType(t, Review{}, m.Screen)
	return m
}

func TestReviewRemovesUntoggledDependency(t *testing.T) {
	p := openProject(t, installedManifest)
	m := startReview(t, p)

	m, _ = press(t, m, "enter")
	assert.Equal(t, "No changes to apply", m.Status)
	assert.Equal(t, Running, m.Outcome)

	m, _ = press(t, m, "down", "down", " ", "enter")
	require.Equal(t, Committed, m.Outcome)
	require.Len(t, m.Result.Changes, 1)
	c := m.Result.Changes[0]
	assert.Equal(t, engine.Remove, c.Action)
	assert.Equal(t, "dialoguer", c.Dependency)
	assert.False(t, c.Deep)

	_, ok := m.Result.Staged.Crate().GetDependency(manifest.Dev, "dialoguer")
	assert.False(t, ok)
	_, ok = m.Result.Staged.Crate().GetDependency(manifest.Dev, "clap")
	assert.True(t, ok)
}

func TestReviewCyclesKind(t *testing.T) {
	p := openProject(t, installedManifest)
	m := startReview(t, p)

	m, _ = press(t, m, "d")
	assert.Equal(t, "", m.Status, "group rows have no kind")
	m, _ = press(t, m, "down", "d", "enter")
	require.Equal(t, Committed, m.Outcome)

	crate := m.Result.Staged.Crate()
	_, ok := crate.GetDependency(manifest.Dev, "clap")
	assert.False(t, ok)
	clap, ok := crate.GetDependency(manifest.Build, "clap")
	require.True(t, ok)
	assert.Equal(t, "4.3", clap.Version)
}

func TestReviewSync(t *testing.T) {
	p := openProject(t, installedManifest)
	m := startReview(t, p)

	m, _ = press(t, m, "s")
	require.Equal(t, Committed, m.Outcome)
	assert.Equal(t, 1, m.Result.Changes.Count(engine.BumpVersion))
	assert.Zero(t, m.Result.Changes.Count(engine.Remove))

	clap, _ := m.Result.Staged.Crate().GetDependency(manifest.Dev, "clap")
	assert.Equal(t, "4.5", clap.Version)
}

func TestReviewBrowseAndBack(t *testing.T) {
	p := openProject(t, installedManifest)
	m := startReview(t, p)

	m, effects := press(t, m, "tab")
	require.Len(t, effects, 1)
	assert.IsType(t, FetchList{}, effects[0])

	m, _ = press(t, m, "esc")
	assert.IsType(t, Review{}, m.Screen)
	m, _ = press(t, m, "esc")
	assert.Equal(t, Discarded, m.Outcome)
}
