package pacwrap

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pacwrap/pacwrap/config"
	"github.com/pacwrap/pacwrap/container"
	"github.com/pacwrap/pacwrap/internal/ui"
	"github.com/pacwrap/pacwrap/registry"
)

// newQueryCommand implements spec.md §4.1's registry listing
// (populate() + the typed subsets), grounded on original_source's
// `-Q`/`--query` operand's container-table output.
func newQueryCommand(cfg *config.Global) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "List registered containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := container.DefaultLocations()
			if err != nil {
				return err
			}

			reg, warnings := registry.Populate(loc)
			for _, w := range warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), w)
			}

			ui.PrintInfoSection("Locations", map[string]string{
				"Data directory":   loc.DataDir,
				"Config directory": loc.ConfigDir,
				"Cache directory":  loc.CacheDir,
			})

			t := table.NewWriter()
			t.AppendHeader(table.Row{"Container", "Type", "Dependencies"})
			for _, key := range reg.Registered() {
				h := reg.GetOption(key)
				if h == nil {
					continue
				}
				t.AppendRow(table.Row{h.Key, h.Type(), h.Dependencies()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	return cmd
}
