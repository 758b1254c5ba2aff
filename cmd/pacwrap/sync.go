package pacwrap

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pacwrap/pacwrap/alpm"
	"github.com/pacwrap/pacwrap/config"
	"github.com/pacwrap/pacwrap/container"
	"github.com/pacwrap/pacwrap/internal/eventlog"
	"github.com/pacwrap/pacwrap/internal/ui"
	"github.com/pacwrap/pacwrap/lock"
	"github.com/pacwrap/pacwrap/transaction"
	"github.com/pacwrap/pacwrap/usefulerror"
)

// newSyncCommand implements the upgrade/install path of spec.md §4,
// grounded on original_source's `-S`/`--sync` operand.
func newSyncCommand(cfg *config.Global) *cobra.Command {
	var refresh, force, noConfirm, preview, filesystemSync bool
	var target string

	cmd := &cobra.Command{
		Use:   "sync [containers...]",
		Short: "Synchronize and upgrade one or more containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := transaction.FlagNone
			if noConfirm {
				flags |= transaction.FlagNoConfirm
			}
			if preview {
				flags |= transaction.FlagPreview
			}
			if force {
				flags |= transaction.FlagForceDatabase
			}
			if filesystemSync {
				flags |= transaction.FlagFilesystemSync
			}

			action := transaction.NewUpgrade(true, refresh, force)

			withLock(func() error {
				agg, _, _, err := buildAggregator(cfg, action, flags, target, alpmFactoryStub)
				if err != nil {
					return err
				}
				eventlog.Logf("sync started: target=%q refresh=%t force=%t", target, refresh, force)
				interaction := ui.DefaultAggregationInteraction()
				interaction.SetStatus("synchronizing containers")

				ui.StartProgressWriter()
				tracker := ui.TrackProgress("sync", 1)
				err = agg.Aggregate(context.Background())
				tracker.MarkAsDone()
				ui.StopProgressWriter()

				interaction.ClearStatus()
				if err != nil {
					eventlog.Logf("sync failed: %v", err)
				} else {
					eventlog.Log("sync completed")
				}
				return err
			})
			return nil
		},
	}

	cmd.Flags().BoolVarP(&refresh, "refresh", "y", false, "refresh sync databases before upgrading")
	cmd.Flags().BoolVar(&force, "force", false, "allow downgrades and force-database operations")
	cmd.Flags().BoolVar(&noConfirm, "no-confirm", false, "skip the download-summary confirmation prompt")
	cmd.Flags().BoolVar(&preview, "preview", false, "resolve the transaction without committing it")
	cmd.Flags().BoolVar(&filesystemSync, "filesystem-sync", false, "force a filesystem state sync even if nothing changed")
	cmd.Flags().StringVar(&target, "target", "", "limit the operation to a single container")

	return cmd
}

// withLock serializes a whole-registry operation behind the
// single-writer lock (spec.md §4's "no concurrent aggregation" note),
// grounded on original_source's instance-lockfile guard in sync.rs.
func withLock(fn func() error) {
	loc, err := container.DefaultLocations()
	if err != nil {
		ui.ErrorExit(err)
		return
	}

	l := lock.New(filepath.Join(loc.DataDir, "pacwrap.lock"))
	if err := l.Lock(); err != nil {
		ui.ErrorExit(err)
		return
	}
	defer l.Unlock()

	if err := fn(); err != nil {
		ui.ErrorExit(err)
	}
}

// alpmFactoryStub is the parent-side half of the alpm non-goal
// boundary (see cmd/pacwrap-agent's instantiateAlpm): the parent never
// opens a real alpm handle of its own either, since every package
// query and mutation in spec.md §4 happens inside the agent's mount
// namespace once committed. It is still invoked during Prepare/Stage
// to read sync/local package state before a commit, which a real
// build wires to the same libalpm binding pacwrap-agent uses.
func alpmFactoryStub(handle *container.Handle) (alpm.Handle, error) {
	return nil, usefulerror.Useful().
		WithCode(usefulerror.ErrCodeInitializationFailure).
		WithHumanError("no package library binding is configured for " + handle.Key).
		WithHelp("This build of pacwrap was compiled without a libalpm binding.").
		Msg("alpm binding not implemented")
}
