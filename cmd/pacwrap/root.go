// Package pacwrap is the thin cobra shell tying pacwrap.yml
// configuration, the container registry, the Transaction Aggregator
// and agent launcher together into the sync/remove/compose/query
// subcommands, grounded on the teacher's main.go root-command shape
// and cmd/npm/npm.go's command-per-concern dispatch pattern.
package pacwrap

import (
	"github.com/spf13/cobra"

	"github.com/pacwrap/pacwrap/cmd/version"
	"github.com/pacwrap/pacwrap/config"
	"github.com/pacwrap/pacwrap/internal/eventlog"
	"github.com/pacwrap/pacwrap/internal/ui"
)

// NewRootCommand builds the pacwrap CLI's root command.
func NewRootCommand() *cobra.Command {
	var cfg config.Global

	root := &cobra.Command{
		Use:           "pacwrap",
		Short:         "Compose, update, and execute unprivileged sandboxed containers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			cfg = loaded

			level := ui.VerbosityLevelNormal
			if cfg.Verbose {
				level = ui.VerbosityLevelVerbose
			}
			ui.SetVerbosityLevel(level)

			if err := eventlog.Initialize(cmd.Name()); err != nil {
				ui.ShowWarning("could not open event log: " + err.Error())
			}
			return nil
		},
	}

	config.ApplyCobraFlags(root, &cfg)

	root.AddCommand(newSyncCommand(&cfg))
	root.AddCommand(newRemoveCommand(&cfg))
	root.AddCommand(newComposeCommand(&cfg))
	root.AddCommand(newQueryCommand(&cfg))
	root.AddCommand(version.NewVersionCommand())

	return root
}

// Execute runs the root command, printing any error via
// ui.ErrorExit's usefulerror-aware rendering, the way the teacher's
// main.go funnels its own cobra Execute() error.
func Execute() {
	defer eventlog.Close()

	if err := NewRootCommand().Execute(); err != nil {
		eventlog.Logf("command failed: %v", err)
		ui.ErrorExit(err)
	}
}
