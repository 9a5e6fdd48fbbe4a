package bpack

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/bpack/internal/version"
	"github.com/arthur-debert/bpack/pkg/commands/add"
	"github.com/arthur-debert/bpack/pkg/commands/enable"
	"github.com/arthur-debert/bpack/pkg/commands/list"
	"github.com/arthur-debert/bpack/pkg/commands/newproject"
	"github.com/arthur-debert/bpack/pkg/commands/remove"
	"github.com/arthur-debert/bpack/pkg/commands/show"
	"github.com/arthur-debert/bpack/pkg/commands/status"
	"github.com/arthur-debert/bpack/pkg/commands/sync"
	"github.com/arthur-debert/bpack/pkg/commands/validate"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/packs"
	"github.com/arthur-debert/bpack/pkg/project"
	"github.com/arthur-debert/bpack/pkg/session"
)

// packNamesCompletion completes pack names from the catalog
func (a *app) packNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if a.cfg == nil {
		if err := a.loadConfig(cmd); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
	}
	result, err := list.ListPacks(cmd.Context(), list.ListPacksOptions{Filter: toComplete, Catalog: a.catalog()})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names := make([]string, 0, len(result.Packs))
	for _, p := range result.Packs {
		names = append(names, p.ShortName)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// installedCompletion completes the packs the current project uses
func installedCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	p, err := project.Load(".", nil)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var names []string
	for _, name := range p.InstalledPacks() {
		names = append(names, packs.ShortName(name))
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func parseTarget(s string) (project.Target, error) {
	t, err := project.ParseTarget(s)
	if err != nil {
		return t, errors.Wrap(err, errors.ErrInvalidInput, "invalid --target")
	}
	return t, nil
}

func newAddCmd(a *app) *cobra.Command {
	var (
		groups      []string
		noDefault   bool
		allFeatures bool
		target      string
		path        string
	)
	cmd := &cobra.Command{
		Use:               "add [pack] [crates...]",
		Short:             MsgAddShort,
		Long:              MsgAddLong,
		Example:           MsgAddExample,
		GroupID:           "core",
		ValidArgsFunction: a.packNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTarget(target)
			if err != nil {
				return err
			}
			if len(args) == 0 && path == "" {
				if a.interactive(false) {
					return a.manager(cmd, t)
				}
				return errors.New(errors.ErrInvalidInput, MsgErrPackRequired)
			}

			var pack string
			var crates []string
			if len(args) > 0 {
				pack, crates = args[0], args[1:]
			}
			catalog := a.catalog()

			choices := cmd.Flags().Changed("features") || noDefault || allFeatures
			if path == "" && len(crates) == 0 && !choices && a.interactive(false) {
				name := packs.ResolveName(pack)
				spec, err := catalog.FetchPackSpec(cmd.Context(), name)
				if err != nil {
					return err
				}
				if spec.HasMeaningfulChoices() {
					return a.runSession(cmd, session.Options{Entry: session.EntryExpand, Pack: name, Target: t})
				}
			}

			log.Info().Str("pack", pack).Str("path", path).Strs("groups", groups).Msg("Adding pack")
			result, err := add.AddPack(cmd.Context(), add.AddPackOptions{
				Pack:              pack,
				Path:              path,
				Crates:            crates,
				Groups:            groups,
				NoDefaultFeatures: noDefault,
				AllFeatures:       allFeatures,
				Target:            t,
				DryRun:            a.dryRun,
				Catalog:           catalog,
			})
			if err != nil {
				return err
			}
			return a.render(cmd, result)
		},
	}
	cmd.Flags().StringSliceVarP(&groups, "features", "F", nil, MsgFlagFeatures)
	cmd.Flags().BoolVar(&noDefault, "no-default-features", false, MsgFlagNoDefault)
	cmd.Flags().BoolVar(&allFeatures, "all-features", false, MsgFlagAllFeatures)
	cmd.Flags().StringVar(&target, "target", "default", MsgFlagTarget)
	cmd.Flags().StringVar(&path, "path", "", MsgFlagPath)
	cmd.MarkFlagsMutuallyExclusive("all-features", "no-default-features")
	return cmd
}

func newSyncCmd(a *app) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:     "sync",
		Short:   MsgSyncShort,
		Long:    MsgSyncLong,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTarget(target)
			if err != nil {
				return err
			}
			result, err := sync.SyncPacks(cmd.Context(), sync.SyncPacksOptions{
				Target:  t,
				DryRun:  a.dryRun,
				Catalog: a.catalog(),
			})
			if err != nil {
				return err
			}
			return a.render(cmd, result)
		},
	}
	cmd.Flags().StringVar(&target, "target", "default", MsgFlagTarget)
	return cmd
}

func newEnableCmd(a *app) *cobra.Command {
	var (
		pack   string
		target string
	)
	cmd := &cobra.Command{
		Use:     "enable <group>",
		Short:   MsgEnableShort,
		Long:    MsgEnableLong,
		Args:    cobra.ExactArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTarget(target)
			if err != nil {
				return err
			}
			result, err := enable.EnableGroup(cmd.Context(), enable.EnableGroupOptions{
				Group:   args[0],
				Pack:    pack,
				Target:  t,
				DryRun:  a.dryRun,
				Catalog: a.catalog(),
			})
			if err != nil {
				return err
			}
			return a.render(cmd, result)
		},
	}
	cmd.Flags().StringVarP(&pack, "pack", "p", "", MsgFlagPack)
	cmd.Flags().StringVar(&target, "target", "default", MsgFlagTarget)
	_ = cmd.RegisterFlagCompletionFunc("pack", installedCompletion)
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	var deep bool
	cmd := &cobra.Command{
		Use:               "remove <pack>",
		Aliases:           []string{"rm"},
		Short:             MsgRemoveShort,
		Long:              MsgRemoveLong,
		Args:              cobra.ExactArgs(1),
		GroupID:           "core",
		ValidArgsFunction: installedCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := remove.RemovePack(cmd.Context(), remove.RemovePackOptions{
				Pack:    args[0],
				Deep:    deep,
				DryRun:  a.dryRun,
				Catalog: a.catalog(),
			})
			if err != nil {
				return err
			}
			return a.render(cmd, result)
		},
	}
	cmd.Flags().BoolVar(&deep, "deep", false, MsgFlagDeep)
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var nonInteractive bool
	cmd := &cobra.Command{
		Use:     "list [filter]",
		Aliases: []string{"ls"},
		Short:   MsgListShort,
		Long:    MsgListLong,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter string
			if len(args) > 0 {
				filter = args[0]
			}
			if a.interactive(nonInteractive) {
				return a.runSession(cmd, session.Options{Entry: session.EntryList, Filter: filter})
			}
			result, err := list.ListPacks(cmd.Context(), list.ListPacksOptions{
				Filter:  filter,
				Catalog: a.catalog(),
			})
			if err != nil {
				return err
			}
			return a.render(cmd, result)
		},
	}
	cmd.Flags().BoolVarP(&nonInteractive, "non-interactive", "N", false, MsgFlagNonInteractive)
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var (
		path           string
		nonInteractive bool
	)
	cmd := &cobra.Command{
		Use:               "show [pack]",
		Short:             MsgShowShort,
		Long:              MsgShowLong,
		Args:              cobra.MaximumNArgs(1),
		GroupID:           "core",
		ValidArgsFunction: a.packNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			var pack string
			if len(args) > 0 {
				pack = args[0]
			}
			if path == "" && pack != "" && a.interactive(nonInteractive) {
				return a.runSession(cmd, session.Options{Entry: session.EntryDetail, Pack: packs.ResolveName(pack)})
			}
			result, err := show.ShowPack(cmd.Context(), show.ShowPackOptions{
				Pack:    pack,
				Path:    path,
				Catalog: a.catalog(),
			})
			if err != nil {
				return err
			}
			return a.render(cmd, result)
		},
	}
	cmd.Flags().StringVar(&path, "path", "", MsgFlagPath)
	cmd.Flags().BoolVarP(&nonInteractive, "non-interactive", "N", false, MsgFlagNonInteractive)
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"st"},
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := status.StatusPacks(cmd.Context(), status.StatusPacksOptions{Catalog: a.catalog()})
			if err != nil {
				return err
			}
			return a.render(cmd, result)
		},
	}
}

func newNewCmd(a *app) *cobra.Command {
	var (
		name      string
		template  string
		path      string
		directory string
		engine    string
	)
	cmd := &cobra.Command{
		Use:               "new [pack]",
		Short:             MsgNewShort,
		Long:              MsgNewLong,
		Example:           MsgNewExample,
		Args:              cobra.MaximumNArgs(1),
		GroupID:           "core",
		ValidArgsFunction: a.packNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := newproject.NewProjectOptions{
				Path:      path,
				Template:  template,
				Name:      name,
				Directory: directory,
				Engine:    engine,
				Catalog:   a.catalog(),
			}
			if len(args) > 0 {
				opts.Pack = args[0]
			}
			if opts.Engine == "" {
				opts.Engine = a.cfg.Scaffold.Engine
			}
			if a.interactive(false) {
				opts.Prompter = huhPrompter{}
			}
			result, err := newproject.NewProject(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.render(cmd, result)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", MsgFlagName)
	cmd.Flags().StringVarP(&template, "template", "t", "", MsgFlagTemplate)
	cmd.Flags().StringVar(&path, "path", "", MsgFlagPath)
	cmd.Flags().StringVarP(&directory, "directory", "C", "", MsgFlagDirectory)
	cmd.Flags().StringVar(&engine, "engine", "", MsgFlagEngine)
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:     "validate",
		Short:   MsgValidateShort,
		Long:    MsgValidateLong,
		Args:    cobra.NoArgs,
		GroupID: "pack",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := validate.ValidatePack(validate.ValidatePackOptions{Path: path})
			if err != nil {
				return err
			}
			if err := a.render(cmd, result); err != nil {
				return err
			}
			return validate.Failure(result)
		},
	}
	cmd.Flags().StringVar(&path, "path", "", MsgFlagPath)
	return cmd
}

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "topics",
		Short:   MsgTopicsShort,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			helpCmd, _, err := cmd.Root().Find([]string{"help"})
			if err != nil || helpCmd.Run == nil {
				return errors.New(errors.ErrInternal, "help command not found")
			}
			helpCmd.Run(helpCmd, []string{"topics"})
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
