package bpack

import (
	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/bpack/pkg/commands/newproject"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/project"
	"github.com/arthur-debert/bpack/pkg/scaffold"
	"github.com/arthur-debert/bpack/pkg/session"
	"github.com/arthur-debert/bpack/pkg/tui"
	"github.com/arthur-debert/bpack/pkg/types"
)

// manager opens the installed packs of the current project, or the pack
// browser outside one
func (a *app) manager(cmd *cobra.Command, target project.Target) error {
	entry := session.EntryReview
	if _, err := project.Load(".", nil); errors.IsErrorCode(err, errors.ErrNoProject) {
		entry = session.EntryList
	}
	return a.runSession(cmd, session.Options{Entry: entry, Target: target})
}

// runSession runs the terminal UI and carries out what it committed
func (a *app) runSession(cmd *cobra.Command, opts session.Options) error {
	ctx := cmd.Context()
	catalog := a.catalog()

	p, err := project.Load(".", nil)
	var ws session.Workspace
	switch {
	case err == nil:
		ws = p
	case errors.IsErrorCode(err, errors.ErrNoProject):
		p = nil
	default:
		return err
	}

	// the session owns the terminal until it ends
	logging.SetupFileOnly(a.verbosity)
	sess, err := tui.Run(ctx, catalog, ws, opts, tui.Options{
		Timeout:      a.cfg.Registry.Timeout,
		AltScreen:    a.cfg.TUI.AltScreen,
		GlamourStyle: a.cfg.Output.GlamourStyle,
	})
	logging.SetupLogger(a.verbosity)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "interactive session failed")
	}
	if sess.Outcome != session.Committed {
		log.Debug().Str("session", sess.ID).Msg("Session discarded")
		return nil
	}

	switch res := sess.Result; {
	case res.NewProject != nil:
		result, err := newproject.NewProject(ctx, newproject.NewProjectOptions{
			Pack:      res.NewProject.Pack,
			Template:  res.NewProject.Template,
			Name:      res.NewProject.Name,
			Directory: res.NewProject.Directory,
			Engine:    a.cfg.Scaffold.Engine,
			Catalog:   catalog,
		})
		if err != nil {
			return err
		}
		return a.render(cmd, result)

	case res.Staged != nil && p != nil:
		p.Commit(res.Staged)
		result := &types.ChangesResult{
			Command: "manager",
			DryRun:  a.dryRun,
			Changes: types.ChangesOf(res.Changes),
		}
		switch {
		case len(p.Changed()) == 0:
			result.Message = MsgSessionNoChanges
		case !a.dryRun:
			if result.Files, err = p.Save(); err != nil {
				return err
			}
		}
		return a.render(cmd, result)
	}
	return nil
}

// huhPrompter asks for a project name and template with huh forms
type huhPrompter struct{}

var _ newproject.Prompter = huhPrompter{}

func (huhPrompter) ProjectName(pack string) (string, error) {
	var name string
	err := huh.NewInput().
		Title("Project name").
		Description("New project from " + pack).
		Validate(scaffold.ValidateProjectName).
		Value(&name).
		Run()
	return name, promptErr(err)
}

func (huhPrompter) Template(pack string, choices []packspec.Template) (string, error) {
	options := make([]huh.Option[string], len(choices))
	for i, c := range choices {
		label := c.Name
		if c.Description != "" {
			label += " - " + c.Description
		}
		options[i] = huh.NewOption(label, c.Name)
	}
	var picked string
	err := huh.NewSelect[string]().
		Title("Template for " + pack).
		Options(options...).
		Value(&picked).
		Run()
	return picked, promptErr(err)
}

func promptErr(err error) error {
	if err == nil {
		return nil
	}
	if err == huh.ErrUserAborted {
		return errors.New(errors.ErrInvalidInput, "cancelled")
	}
	return errors.Wrap(err, errors.ErrInternal, "prompt failed")
}
