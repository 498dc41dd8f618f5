package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/blockmd/internal/memstore"
	"github.com/dgallion1/blockmd/internal/notion"
)

var dumpOut string

var dumpCmd = &cobra.Command{
	Use:   "dump <page-id|url>",
	Short: "Save a page's raw block tree as a JSON snapshot",
	Long: `Fetch every block under a page and write the raw payloads as a JSON
snapshot. Snapshots can be converted offline with "blockmd import page.json".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateNotion(); err != nil {
			return err
		}
		pageID, err := notion.ParseID(args[0])
		if err != nil {
			return err
		}
		rt, err := newRuntime(cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		snap, err := memstore.Dump(cmd.Context(), rt.client, pageID)
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if dumpOut != "" && dumpOut != "-" {
			f, err := os.Create(dumpOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		if err := memstore.WriteSnapshot(w, snap); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		logger.Info("snapshot written", "page_id", pageID, "out", dumpOut, "requests", rt.client.Stats().Snapshot().Count)
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpOut, "out", "o", "", "Snapshot file (default stdout)")
	rootCmd.AddCommand(dumpCmd)
}
