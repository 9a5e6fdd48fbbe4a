package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/registry"
	"github.com/arthur-debert/bpack/pkg/session"
)

// Catalog is what the session fetches from. *registry.Catalog satisfies it.
type Catalog = registry.Finder

// fetcher runs session effects as bubbletea commands. Each command returns
// the session event completing its effect.
type fetcher struct {
	ctx       context.Context
	catalog   Catalog
	workspace session.Workspace
	timeout   time.Duration
}

func (f fetcher) cmds(effects []session.Effect) tea.Cmd {
	var cmds []tea.Cmd
	for _, e := range effects {
		if cmd := f.cmd(e); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (f fetcher) cmd(e session.Effect) tea.Cmd {
	switch e := e.(type) {
	case session.FetchList:
		return func() tea.Msg { return f.list(e) }
	case session.FetchDetail:
		return func() tea.Msg { return f.detail(e) }
	case session.FetchExpand:
		return func() tea.Msg { return f.expand(e) }
	case session.FetchInstalled:
		return func() tea.Msg { return f.installed(e) }
	case session.OpenURL:
		logger().Info().Str("url", e.URL).Msg("Open link")
	}
	return nil
}

func (f fetcher) context() (context.Context, context.CancelFunc) {
	ctx := f.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}

// list keeps partial results: a failed source only fails the fetch when
// nothing was found at all
func (f fetcher) list(e session.FetchList) session.Event {
	ctx, cancel := f.context()
	defer cancel()
	packs, err := f.catalog.FindPacks(ctx, e.Filter)
	if err != nil {
		logger().Warn().Err(err).Int("packs", len(packs)).Msg("Pack search incomplete")
		if len(packs) == 0 {
			return session.FetchFailed{Seq: e.Seq, Err: err}
		}
	}
	return session.ListLoaded{Seq: e.Seq, Packs: packs}
}

func (f fetcher) detail(e session.FetchDetail) session.Event {
	ctx, cancel := f.context()
	defer cancel()
	d, err := f.catalog.FetchDetail(ctx, e.Pack)
	if err != nil {
		return session.FetchFailed{Seq: e.Seq, Err: err}
	}
	for _, w := range d.Warnings {
		logger().Debug().Err(w).Str("pack", e.Pack).Msg("Detail lookup warning")
	}
	return session.DetailLoaded{Seq: e.Seq, Detail: d}
}

func (f fetcher) expand(e session.FetchExpand) session.Event {
	ctx, cancel := f.context()
	defer cancel()
	spec, err := f.catalog.FetchPackSpec(ctx, e.Pack)
	if err != nil {
		return session.FetchFailed{Seq: e.Seq, Err: err}
	}
	return session.ExpandLoaded{Seq: e.Seq, Spec: spec}
}

// installed pairs each registration with its spec. Packs whose spec cannot
// be fetched are logged and left out.
func (f fetcher) installed(e session.FetchInstalled) session.Event {
	if f.workspace == nil {
		return session.FetchFailed{Seq: e.Seq, Err: errors.New(errors.ErrNoProject, "not inside a Cargo project")}
	}
	regs, issues := f.workspace.Registrations()
	for _, issue := range issues {
		logger().Warn().Str("pack", issue.Pack).Str("reason", issue.Reason).Msg("Unreadable registration")
	}

	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = r.Pack
	}
	ctx, cancel := f.context()
	defer cancel()
	specs, errs := f.catalog.FetchPackSpecs(ctx, names)
	for _, err := range errs {
		logger().Warn().Err(err).Msg("Installed pack unavailable")
	}
	if len(regs) > 0 && len(specs) == 0 {
		return session.FetchFailed{Seq: e.Seq, Err: errors.Join(errs...)}
	}

	packs := make([]session.InstalledPack, 0, len(regs))
	for _, r := range regs {
		if spec, ok := specs[r.Pack]; ok {
			packs = append(packs, session.InstalledPack{Registration: r, Spec: spec})
		}
	}
	return session.InstalledLoaded{Seq: e.Seq, Packs: packs}
}
