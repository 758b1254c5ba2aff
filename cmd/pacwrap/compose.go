package pacwrap

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pacwrap/pacwrap/config"
	"github.com/pacwrap/pacwrap/container"
	"github.com/pacwrap/pacwrap/internal/ui"
)

// newComposeCommand implements container creation (spec.md §3/§8
// property 2), grounded on original_source's `-C`/`--compose` operand.
func newComposeCommand(cfg *config.Global) *cobra.Command {
	var ctype string
	var deps []string

	cmd := &cobra.Command{
		Use:   "compose <container>",
		Short: "Compose a new Base, Slice, or Aggregate container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			t := container.Type(ctype)
			if !t.Valid() {
				return fmt.Errorf("unknown container type %q", ctype)
			}
			if t == container.TypeBase && len(deps) > 0 {
				return fmt.Errorf("a Base container cannot declare dependencies")
			}

			loc, err := container.DefaultLocations()
			if err != nil {
				return err
			}

			vars := container.NewVariables(loc, key)
			inst := container.NewInstance(t, deps, nil)

			if err := config.SaveContainer(vars.ConfigPath, inst); err != nil {
				return err
			}

			ui.SetStatus(fmt.Sprintf("composed container %q (%s)", key, t))
			ui.ClearStatus()
			return nil
		},
	}

	cmd.Flags().StringVar(&ctype, "type", string(container.TypeBase), "container type: Base, Slice, Aggregate, or Symbolic")
	cmd.Flags().StringSliceVar(&deps, "deps", nil, "dependency container keys, dependency-first order")

	return cmd
}
