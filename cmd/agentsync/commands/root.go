// Package commands defines the agentsync command line. Each command parses
// flags, builds the shared environment and delegates to pkg/commands; no
// sync logic lives here.
package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/agentsync-dev/agentsync/internal/version"
	"github.com/agentsync-dev/agentsync/pkg/commands"
	"github.com/agentsync-dev/agentsync/pkg/config"
	"github.com/agentsync-dev/agentsync/pkg/filesystem"
	"github.com/agentsync-dev/agentsync/pkg/logging"
	"github.com/agentsync-dev/agentsync/pkg/paths"
	"github.com/agentsync-dev/agentsync/pkg/ui"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	verbosity int
	force     bool
	global    bool
	providers []string
	sourceDir string
	format    string
}

// NewRootCmd builds the agentsync command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "agentsync",
		Short: "Sync AI assistant configuration across provider ecosystems",
		Long: `agentsync keeps agents, commands, skills, rules and settings from one
canonical source directory in sync across AI coding assistants, each with
its own layout and format. Re-running is safe: unchanged installations are
skipped, user edits are never silently overwritten, and deleted files stay
deleted unless you force a reinstall.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&flags.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	pf.BoolVar(&flags.force, "force", false, "Override conflicts and reinstall user-deleted files")
	pf.BoolVarP(&flags.global, "global", "g", false, "Target the home scope instead of the project")
	pf.StringSliceVarP(&flags.providers, "provider", "p", nil, "Providers to sync (default from config)")
	pf.StringVar(&flags.sourceDir, "source-dir", "", "Canonical source directory override")
	pf.StringVarP(&flags.format, "format", "f", "auto", "Output format: auto, term, text, json")

	rootCmd.AddCommand(
		newPlanCmd(flags),
		newApplyCmd(flags),
		newStatusCmd(flags),
		newUninstallCmd(flags),
		newVersionCmd(),
	)
	return rootCmd
}

// newEnv resolves paths and config, applies flag overrides and wires the
// command environment.
func newEnv(cmd *cobra.Command, flags *rootFlags) (*commands.Env, *ui.Renderer, error) {
	p, err := paths.New("")
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(p.ConfigFilePath())
	if err != nil {
		return nil, nil, err
	}

	// flags beat config file and environment
	if len(flags.providers) > 0 {
		cfg.Providers = flags.providers
	}
	if cmd.Flags().Changed("force") {
		cfg.Force = flags.force
	}
	if cmd.Flags().Changed("global") {
		cfg.Global = flags.global
	}
	if flags.sourceDir != "" {
		cfg.SourceDir = flags.sourceDir
	}

	format, err := ui.ParseFormat(flags.format)
	if err != nil {
		return nil, nil, err
	}
	renderer := ui.NewRenderer(ui.Resolve(format, os.Stdout), cmd.OutOrStdout())

	if p.UsedFallback() {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: not inside a git repository, using the current directory as project root")
	}

	env := commands.NewEnv(filesystem.NewOS(), p, cfg, version.Version)
	return env, renderer, nil
}
