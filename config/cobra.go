package config

import "github.com/spf13/cobra"

// ApplyCobraFlags binds pacwrap.yml's global settings onto cmd's
// persistent flags, the same way the teacher's config package binds
// its own settings in config/cobra.go.
func ApplyCobraFlags(cmd *cobra.Command, cfg *Global) {
	cmd.PersistentFlags().BoolVar(&cfg.Verbose, "verbose", false, "print debug diagnostics to stderr")
	cmd.PersistentFlags().BoolVar(&cfg.SummaryPreview, "preview", true, "render the download summary before committing a transaction")
}
