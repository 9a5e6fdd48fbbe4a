// Package tui runs an interactive session in the terminal with bubbletea.
//
// All decisions live in pkg/session: this package translates key presses
// into session events, performs the fetch effects the session asks for and
// draws the current screen.
package tui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/session"
)

func logger() *zerolog.Logger {
	l := logging.GetLogger("tui")
	return &l
}

// Options configure the terminal program
type Options struct {
	// Timeout bounds each fetch
	Timeout      time.Duration
	AltScreen    bool
	GlamourStyle string
	// Input and Output default to stdin and stderr
	Input  io.Reader
	Output io.Writer
}

// model adapts a session.Model to tea.Model
type model struct {
	session session.Model
	fetch   fetcher
	spinner spinner.Model
	help    help.Model
	md      *markdown
	initial []session.Effect
	width   int
	height  int
}

func newModel(ctx context.Context, catalog Catalog, ws session.Workspace, sess session.Model, initial []session.Effect, opts Options) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return model{
		session: sess,
		fetch:   fetcher{ctx: ctx, catalog: catalog, workspace: ws, timeout: opts.Timeout},
		spinner: sp,
		help:    help.New(),
		md:      newMarkdown(opts.GlamourStyle),
		initial: initial,
		width:   80,
	}
}

// Init implements tea.Model
func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch.cmds(m.initial))
}

// Update implements tea.Model
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.step(keyEvent(msg))

	case session.Event:
		return m.step(msg)
	}
	return m, nil
}

func (m model) step(ev session.Event) (tea.Model, tea.Cmd) {
	before := m.session.Screen
	var effects []session.Effect
	m.session, effects = session.Update(m.session, ev)
	if m.session.Done() {
		logger().Debug().
			Str("session", m.session.ID).
			Str("outcome", m.session.Outcome.String()).
			Msg("Session finished")
		return m, tea.Quit
	}
	if screenName(before) != screenName(m.session.Screen) {
		logger().Trace().
			Str("session", m.session.ID).
			Str("screen", screenName(m.session.Screen)).
			Msg("Screen changed")
	}
	return m, m.fetch.cmds(effects)
}

// Run starts a session and blocks until it commits or is discarded. The
// returned model carries the outcome and, when committed, the result for
// the caller to save.
func Run(ctx context.Context, catalog Catalog, ws session.Workspace, sessOpts session.Options, opts Options) (session.Model, error) {
	sess, effects := session.New(ws, sessOpts)
	log := logger().With().Str("session", sess.ID).Logger()
	log.Info().Int("entry", int(sessOpts.Entry)).Str("pack", sessOpts.Pack).Msg("Session started")

	m := newModel(ctx, catalog, ws, sess, effects, opts)

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	} else {
		progOpts = append(progOpts, tea.WithOutput(os.Stderr))
	}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(m, progOpts...).Run()
	if err != nil {
		return sess, err
	}
	result := final.(model).session
	if !result.Done() {
		result.Outcome = session.Discarded
	}
	log.Info().Str("outcome", result.Outcome.String()).Msg("Session ended")
	return result, nil
}
