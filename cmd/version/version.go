package version

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pacwrap/pacwrap/internal/ui"
	pacwrapversion "github.com/pacwrap/pacwrap/internal/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(os.Stdout, ui.GeneratePacwrapBanner(pacwrapversion.Version, pacwrapversion.Commit))
			fmt.Fprintf(os.Stdout, "Version: %s\n", pacwrapversion.Version)
			fmt.Fprintf(os.Stdout, "CommitSHA: %s\n", pacwrapversion.Commit)

			return nil
		},
	}
}
