package pacwrap

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pacwrap/pacwrap/config"
	"github.com/pacwrap/pacwrap/internal/ui"
	"github.com/pacwrap/pacwrap/transaction"
)

// newRemoveCommand implements the removal path of spec.md §4.7,
// grounded on original_source's `-R`/`--remove` operand.
func newRemoveCommand(cfg *config.Global) *cobra.Command {
	var cascade, explicit, noConfirm, preview bool

	cmd := &cobra.Command{
		Use:   "remove <container> <packages...>",
		Short: "Remove packages from a container",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := transaction.FlagNone
			if noConfirm {
				flags |= transaction.FlagNoConfirm
			}
			if preview {
				flags |= transaction.FlagPreview
			}

			action := transaction.NewRemove(true, cascade, explicit)
			key := args[0]
			queue := args[1:]

			withLock(func() error {
				agg, _, _, err := buildAggregator(cfg, action, flags, key, alpmFactoryStub)
				if err != nil {
					return err
				}
				agg.Queue = map[string][]string{key: queue}
				interaction := ui.DefaultAggregationInteraction()
				interaction.SetStatus("removing packages from " + key)
				err = agg.Aggregate(context.Background())
				interaction.ClearStatus()
				return err
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&cascade, "cascade", false, "also remove packages that depend on the targets")
	cmd.Flags().BoolVar(&explicit, "explicit", false, "remove explicit dependencies no longer required")
	cmd.Flags().BoolVar(&noConfirm, "no-confirm", false, "skip the removal-summary confirmation prompt")
	cmd.Flags().BoolVar(&preview, "preview", false, "resolve the transaction without committing it")

	return cmd
}
