package bpack

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort       = "Manage battery packs in a Cargo project"
	MsgAddShort        = "Add a battery pack's dependencies to the crate"
	MsgSyncShort       = "Bring installed packs' dependencies up to date"
	MsgEnableShort     = "Enable an extra group of an installed pack"
	MsgRemoveShort     = "Remove a battery pack and the dependencies only it uses"
	MsgListShort       = "Search for battery packs"
	MsgShowShort       = "Show a battery pack's details"
	MsgStatusShort     = "Show how installed packs compare to the project"
	MsgValidateShort   = "Check a battery pack crate"
	MsgNewShort        = "Create a project from a pack template"
	MsgVersionShort    = "Print version information"
	MsgTopicsShort     = "Display available documentation topics"
	MsgCompletionShort = "Generate shell completion script"

	MsgDryRunNotice     = "DRY RUN MODE - No files were written"
	MsgSessionNoChanges = "No changes."
	MsgVersionFormat    = "bpack %s\n  commit: %s\n  built:  %s\n"

	MsgErrPackRequired = "a pack name is required"
	MsgErrNoCommand    = "no command specified"

	// Flag descriptions
	MsgFlagVerbose        = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun         = "Preview changes without writing files"
	MsgFlagFormat         = "Output format: auto, term, text, json, yaml, xml"
	MsgFlagConfig         = "Config file (default $XDG_CONFIG_HOME/bpack/config.toml)"
	MsgFlagFeatures       = "Groups to enable, comma separated or repeated"
	MsgFlagNoDefault      = "Do not enable the default group"
	MsgFlagAllFeatures    = "Enable every group"
	MsgFlagTarget         = "Where dependencies are declared: default, workspace or package"
	MsgFlagPath           = "Read the pack from a local directory"
	MsgFlagPack           = "Pack that defines the group"
	MsgFlagDeep           = "Also remove workspace declarations"
	MsgFlagNonInteractive = "Print plain output instead of opening the browser"
	MsgFlagName           = "Project name"
	MsgFlagTemplate       = "Template to use"
	MsgFlagDirectory      = "Directory the project is created in"
	MsgFlagEngine         = "Scaffold engine: builtin or cargo-generate"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)

	//go:embed msgs/add-long.txt
	msgAddLongRaw string
	MsgAddLong    = strings.TrimSpace(msgAddLongRaw)

	//go:embed msgs/add-example.txt
	msgAddExampleRaw string
	MsgAddExample    = strings.TrimRight(msgAddExampleRaw, "\n")

	//go:embed msgs/sync-long.txt
	msgSyncLongRaw string
	MsgSyncLong    = strings.TrimSpace(msgSyncLongRaw)

	//go:embed msgs/enable-long.txt
	msgEnableLongRaw string
	MsgEnableLong    = strings.TrimSpace(msgEnableLongRaw)

	//go:embed msgs/remove-long.txt
	msgRemoveLongRaw string
	MsgRemoveLong    = strings.TrimSpace(msgRemoveLongRaw)

	//go:embed msgs/list-long.txt
	msgListLongRaw string
	MsgListLong    = strings.TrimSpace(msgListLongRaw)

	//go:embed msgs/show-long.txt
	msgShowLongRaw string
	MsgShowLong    = strings.TrimSpace(msgShowLongRaw)

	//go:embed msgs/status-long.txt
	msgStatusLongRaw string
	MsgStatusLong    = strings.TrimSpace(msgStatusLongRaw)

	//go:embed msgs/validate-long.txt
	msgValidateLongRaw string
	MsgValidateLong    = strings.TrimSpace(msgValidateLongRaw)

	//go:embed msgs/new-long.txt
	msgNewLongRaw string
	MsgNewLong    = strings.TrimSpace(msgNewLongRaw)

	//go:embed msgs/new-example.txt
	msgNewExampleRaw string
	MsgNewExample    = strings.TrimRight(msgNewExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)
