package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/blockmd/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	// Skip config loading.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "blockmd %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
