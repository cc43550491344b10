// Package cli implements the veeox command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the veeox command tree
func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "veeox",
		Short:        "veeox HTTP toolkit server",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults to $VEEOX_CONFIG)")

	cmd.AddCommand(
		serveCmd(&configPath),
		namesCmd(),
		versionCmd(),
	)
	return cmd
}
