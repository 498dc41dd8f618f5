package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/blockmd/internal/toc"
)

var tocCmd = &cobra.Command{
	Use:   "toc <file.md>",
	Short: "Print the table of contents of a Markdown file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), toc.Build(string(data)))
		return err
	},
}

func init() {
	rootCmd.AddCommand(tocCmd)
}
