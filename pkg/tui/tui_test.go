package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/bpack/pkg/engine"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/project"
	"github.com/arthur-debert/bpack/pkg/registry"
	"github.com/arthur-debert/bpack/pkg/session"
)

type fakeCatalog struct {
	packs    []registry.PackSummary
	findErr  error
	specs    map[string]*packspec.Spec
	detail   *registry.PackDetail
	lastFind string
}

func (f *fakeCatalog) FindPacks(_ context.Context, filter string) ([]registry.PackSummary, error) {
	f.lastFind = filter
	return f.packs, f.findErr
}

func (f *fakeCatalog) FetchDetail(_ context.Context, name string) (*registry.PackDetail, error) {
	if f.detail == nil {
		return nil, errors.Newf(errors.ErrNotFound, "pack %s not found", name)
	}
	return f.detail, nil
}

func (f *fakeCatalog) FetchPackSpec(_ context.Context, name string) (*packspec.Spec, error) {
	if s, ok := f.specs[name]; ok {
		return s, nil
	}
	return nil, errors.Newf(errors.ErrNotFound, "pack %s not found", name)
}

func (f *fakeCatalog) FetchPackSpecs(ctx context.Context, names []string) (map[string]*packspec.Spec, []error) {
	out := map[string]*packspec.Spec{}
	var errs []error
	for _, n := range names {
		s, err := f.FetchPackSpec(ctx, n)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[n] = s
	}
	return out, errs
}

type fakeWorkspace struct {
	regs []manifest.Registration
}

func (w fakeWorkspace) Lookup() engine.Lookup { return engine.EmptyLookup{} }

func (w fakeWorkspace) Registrations() ([]manifest.Registration, []manifest.RegistrationIssue) {
	return w.regs, nil
}

func (w fakeWorkspace) Stage(engine.ChangeSet, project.Target) (*project.Staged, error) {
	return nil, errors.New(errors.ErrApply, "read-only workspace")
}

const cliPack = `[package]
name = "cli-battery-pack"
version = "0.3.0"

[dev-dependencies]
clap = { version = "4.5", features = ["derive"] }
indicatif = { version = "0.17", optional = true }

[features]
default = ["clap"]
indicators = ["indicatif"]
`

func mustSpec(t *testing.T) *packspec.Spec {
	t.Helper()
	spec, err := packspec.Parse([]byte(cliPack))
	require.NoError(t, err)
	return spec
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyEvent(t *testing.T) {
	tests := []struct {
		name  string
		msg   tea.KeyMsg
		want  string
		runes []rune
	}{
		{"arrow", tea.KeyMsg{Type: tea.KeyUp}, "up", nil},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, "enter", nil},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, "esc", nil},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, "ctrl+c", nil},
		{"shift+tab", tea.KeyMsg{Type: tea.KeyShiftTab}, "shift+tab", nil},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, " ", []rune{' '}},
		{"letter", runes("q"), "q", []rune("q")},
		{"alt letter has no text", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q"), Alt: true}, "alt+q", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := keyEvent(tt.msg)
			assert.Equal(t, tt.want, k.Name)
			assert.Equal(t, tt.runes, k.Runes)
		})
	}
}

func TestFetcherListKeepsPartialResults(t *testing.T) {
	cat := &fakeCatalog{
		packs:   []registry.PackSummary{{Name: "cli-battery-pack", ShortName: "cli"}},
		findErr: errors.New(errors.ErrFetch, "registry unreachable"),
	}
	f := fetcher{catalog: cat}

	ev := f.list(session.FetchList{Seq: 3, Filter: "cli"})
	loaded, ok := ev.(session.ListLoaded)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, 3, loaded.Seq)
	assert.Len(t, loaded.Packs, 1)
	assert.Equal(t, "cli", cat.lastFind)

	cat.packs = nil
	ev = f.list(session.FetchList{Seq: 4})
	failed, ok := ev.(session.FetchFailed)
	require.True(t, ok, "got %T", ev)
	assert.True(t, errors.IsErrorCode(failed.Err, errors.ErrFetch))
}

func TestFetcherInstalled(t *testing.T) {
	cat := &fakeCatalog{specs: map[string]*packspec.Spec{"cli-battery-pack": mustSpec(t)}}

	t.Run("outside a project", func(t *testing.T) {
		ev := fetcher{catalog: cat}.installed(session.FetchInstalled{Seq: 1})
		failed, ok := ev.(session.FetchFailed)
		require.True(t, ok)
		assert.True(t, errors.IsErrorCode(failed.Err, errors.ErrNoProject))
	})

	t.Run("unavailable packs are left out", func(t *testing.T) {
		ws := fakeWorkspace{regs: []manifest.Registration{
			{Pack: "cli-battery-pack", Groups: []string{"default"}},
			{Pack: "gone-battery-pack", Groups: []string{"default"}},
		}}
		ev := fetcher{catalog: cat, workspace: ws}.installed(session.FetchInstalled{Seq: 2})
		loaded, ok := ev.(session.InstalledLoaded)
		require.True(t, ok, "got %T", ev)
		require.Len(t, loaded.Packs, 1)
		assert.Equal(t, "cli-battery-pack", loaded.Packs[0].Registration.Pack)
	})

	t.Run("nothing available fails", func(t *testing.T) {
		ws := fakeWorkspace{regs: []manifest.Registration{{Pack: "gone-battery-pack"}}}
		ev := fetcher{catalog: cat, workspace: ws}.installed(session.FetchInstalled{Seq: 3})
		_, ok := ev.(session.FetchFailed)
		assert.True(t, ok)
	})
}

// drive feeds a message and runs the resulting command once, returning the
// message it produced
func drive(t *testing.T, m model, msg tea.Msg) (model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(model)
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func TestModelBrowseAndQuit(t *testing.T) {
	cat := &fakeCatalog{packs: []registry.PackSummary{
		{Name: "cli-battery-pack", ShortName: "cli", Version: "0.3.0", Description: "CLI essentials"},
		{Name: "web-battery-pack", ShortName: "web", Version: "1.0.0", Description: "Web stack"},
	}}
	sess, effects := session.New(nil, session.Options{Entry: session.EntryList})
	m := newModel(context.Background(), cat, nil, sess, effects, Options{})
	require.Len(t, effects, 1)

	assert.Contains(t, m.View(), "Searching packs...")

	ev := m.fetch.cmd(effects[0])()
	m, _ = drive(t, m, ev)
	view := m.View()
	assert.Contains(t, view, "cli")
	assert.Contains(t, view, "Web stack")
	assert.Contains(t, view, "quit")

	m, _ = drive(t, m, tea.KeyMsg{Type: tea.KeyDown})
	sel, ok := m.session.Screen.(session.List).Selected()
	require.True(t, ok)
	assert.Equal(t, "web-battery-pack", sel.Name)

	m, msg := drive(t, m, runes("q"))
	assert.Equal(t, session.Discarded, m.session.Outcome)
	assert.IsType(t, tea.QuitMsg{}, msg)
	assert.Empty(t, m.View())
}

func TestModelOpenDetailFailureShowsRetry(t *testing.T) {
	cat := &fakeCatalog{}
	sess, effects := session.New(nil, session.Options{Entry: session.EntryDetail, Pack: "cli-battery-pack"})
	m := newModel(context.Background(), cat, nil, sess, effects, Options{})

	m, _ = drive(t, m, m.fetch.cmd(effects[0])())
	require.IsType(t, session.Error{}, m.session.Screen)
	assert.Contains(t, m.View(), "not found")
	assert.Contains(t, m.View(), "retry")

	cat.detail = &registry.PackDetail{
		Spec:    mustSpec(t),
		Summary: registry.SummaryOf(mustSpec(t), registry.SourceLocal),
	}
	m, ev := drive(t, m, runes("r"))
	require.IsType(t, session.Loading{}, m.session.Screen)
	require.NotNil(t, ev)

	m, _ = drive(t, m, ev)
	require.IsType(t, session.Detail{}, m.session.Screen)
	view := m.View()
	assert.Contains(t, view, "cli-battery-pack 0.3.0")
	assert.Contains(t, view, "Dependencies")
	assert.Contains(t, view, "Create new project")
}

func TestModelExpandView(t *testing.T) {
	cat := &fakeCatalog{specs: map[string]*packspec.Spec{"cli-battery-pack": mustSpec(t)}}
	ws := fakeWorkspace{}
	sess, effects := session.New(ws, session.Options{Entry: session.EntryExpand, Pack: "cli-battery-pack"})
	m := newModel(context.Background(), cat, ws, sess, effects, Options{})

	m, _ = drive(t, m, m.fetch.cmd(effects[0])())
	require.IsType(t, session.Expand{}, m.session.Screen)
	view := m.View()
	assert.Contains(t, view, "Add cli-battery-pack")
	assert.Contains(t, view, "[x]")
	assert.Contains(t, view, "indicatif")

	m, _ = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.IsType(t, session.Error{}, m.session.Screen, "a failed apply is shown, not fatal")
	assert.Contains(t, m.View(), "read-only workspace")
}

func TestWindowSize(t *testing.T) {
	sess, effects := session.New(nil, session.Options{})
	m := newModel(context.Background(), &fakeCatalog{}, nil, sess, effects, Options{})
	next, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Nil(t, cmd)
	assert.Equal(t, 120, next.(model).width)
	assert.Equal(t, 120, next.(model).help.Width)
}
