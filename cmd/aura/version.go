package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xaenox/aura/internal/server"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	// skip config loading
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "aura %s (api %s)\n", Version, server.Version)
	},
}
