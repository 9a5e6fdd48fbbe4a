package bpack

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/bpack/internal/version"
	"github.com/arthur-debert/bpack/pkg/cobrax/topics"
	"github.com/arthur-debert/bpack/pkg/config"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/packs"
	"github.com/arthur-debert/bpack/pkg/paths"
	"github.com/arthur-debert/bpack/pkg/project"
	"github.com/arthur-debert/bpack/pkg/registry"
	"github.com/arthur-debert/bpack/pkg/style"
	"github.com/arthur-debert/bpack/pkg/ui"
)

//go:embed topics
var topicsFS embed.FS

// app holds the global flags and what is derived from them once per run
type app struct {
	verbosity  int
	dryRun     bool
	format     string
	configFile string

	cfg *config.Config
	// help renders topic pages; it follows the output settings once loaded
	help *topics.GlamourRenderer
	// rendered is set once a result has been written to stdout
	rendered bool
	// baseDir anchors relative local pack paths: the crate directory when
	// one is found, the working directory otherwise
	baseDir string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

// Execute runs the command line and reports a failure in the selected
// output format. It returns the process exit code.
func Execute() int {
	a := &app{}
	rootCmd := newRootCmd(a)
	if err := rootCmd.Execute(); err != nil {
		a.reportError(rootCmd, err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	cobra.AddTemplateFuncs(newHelpFormatter(os.Stdout).funcs())

	rootCmd := &cobra.Command{
		Use:     "bpack",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(a.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return a.loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.interactive(false) {
				return a.manager(cmd, project.TargetDefault)
			}
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&a.format, "format", "", MsgFlagFormat)
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", MsgFlagConfig)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "pack", Title: "PACK AUTHORING:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newAddCmd(a))
	rootCmd.AddCommand(newSyncCmd(a))
	rootCmd.AddCommand(newEnableCmd(a))
	rootCmd.AddCommand(newRemoveCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newStatusCmd(a))
	rootCmd.AddCommand(newNewCmd(a))
	rootCmd.AddCommand(newValidateCmd(a))
	rootCmd.AddCommand(newTopicsCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	a.help = topics.NewGlamourRenderer()
	if sub, err := fs.Sub(topicsFS, "topics"); err == nil {
		opts := topics.Options{
			Extensions: []string{".txt", ".md"},
			Renderer:   a.help,
		}
		if err := topics.InitializeWithOptions(rootCmd, sub, opts); err != nil {
			log.Warn().Err(err).Msg("Help topics unavailable")
		}
	}

	return rootCmd
}

// loadConfig merges the configuration layers. The project layer is read
// from the nearest crate, when there is one.
func (a *app) loadConfig(cmd *cobra.Command) error {
	wd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "failed to read the working directory")
	}
	a.baseDir = wd

	opts := config.LoadOptions{UserConfigFile: a.configFile}
	if opts.UserConfigFile == "" {
		opts.UserConfigFile = paths.ConfigFile()
	}
	if ctx, err := paths.Discover(wd); err == nil {
		opts.ProjectDir = ctx.CrateDir
		a.baseDir = ctx.CrateDir
	}
	if cmd.Flags().Changed("format") {
		if _, err := ui.ParseFormat(a.format); err != nil {
			return errors.Wrap(err, errors.ErrInvalidInput, "invalid --format")
		}
		opts.Overrides = map[string]interface{}{"output.format": a.format}
	}

	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}
	a.cfg = cfg
	packs.Suffix = cfg.Packs.Suffix
	if a.help != nil {
		a.help.Style = cfg.Output.GlamourStyle
		a.help.Width = cfg.Output.WordWrap
	}
	log.Debug().
		Str("config", opts.UserConfigFile).
		Str("project", opts.ProjectDir).
		Str("format", cfg.Output.Format).
		Msg("Configuration loaded")
	return nil
}

func (a *app) outputFormat() ui.Format {
	f, err := ui.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return ui.FormatAuto
	}
	return f
}

func (a *app) renderer(w io.Writer) (ui.Renderer, error) {
	return ui.NewRendererWithOptions(a.outputFormat(), w, ui.Options{
		GlamourStyle: a.cfg.Output.GlamourStyle,
		WordWrap:     a.cfg.Output.WordWrap,
	})
}

// render writes a command result in the configured format
func (a *app) render(cmd *cobra.Command, result interface{}) error {
	r, err := a.renderer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	a.rendered = true
	return r.RenderResult(result)
}

// reportError writes err as a document on stdout for the machine formats,
// unless a result already went there, and styled on stderr otherwise
func (a *app) reportError(cmd *cobra.Command, err error) {
	if a.cfg != nil && !a.rendered {
		switch a.outputFormat() {
		case ui.FormatJSON, ui.FormatYAML, ui.FormatXML:
			if r, rerr := a.renderer(cmd.OutOrStdout()); rerr == nil && r.RenderError(err) == nil {
				return
			}
		}
	}
	msg := style.ErrorStyle.Render("Error: " + err.Error())
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		msg += " " + style.MutedStyle.Render("("+string(code)+")")
	}
	fmt.Fprintln(cmd.ErrOrStderr(), msg)
}

// interactive reports whether a full-screen session may run: both ends are
// terminals and the output format is meant for people
func (a *app) interactive(disabled bool) bool {
	if disabled {
		return false
	}
	if !a.outputFormat().ForPeople() {
		return false
	}
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func (a *app) localPaths() []string {
	out := make([]string, 0, len(a.cfg.Packs.LocalPaths))
	for _, p := range a.cfg.Packs.LocalPaths {
		p = paths.ExpandHome(p)
		if !filepath.IsAbs(p) {
			p = filepath.Join(a.baseDir, p)
		}
		out = append(out, p)
	}
	return out
}

// catalog searches the configured local paths first, then crates.io
func (a *app) catalog() *registry.Catalog {
	c := &registry.Catalog{Remote: registry.NewClient(registry.OptionsFromConfig(a.cfg))}
	if local := a.localPaths(); len(local) > 0 {
		c.Local = &registry.LocalSource{Paths: local}
	}
	return c
}
