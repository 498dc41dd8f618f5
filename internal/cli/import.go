package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/blockmd/internal/document"
	"github.com/dgallion1/blockmd/internal/pipeline"
	"github.com/dgallion1/blockmd/internal/source"
)

var importOpts convertFlags

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Convert a local document through the block converters",
	Long: `Import a local file (md, markdown, txt, csv, html, htm, docx, pdf, or a JSON
snapshot written by "blockmd dump") into a block tree and render it exactly as
a Notion page would be rendered.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opts, err := importOpts.options(cmd)
		if err != nil {
			return err
		}
		imp, err := source.ForFile(path)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		tree, err := imp.Import(f, filepath.Base(path))
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		logger.Debug("imported document", "path", path, "blocks", tree.Store.Len())

		ctx := cmd.Context()
		root, err := tree.Root(ctx, logger)
		if err != nil {
			return err
		}
		w := pipeline.NewWorker(tree.Store, newRenderer(cfg, logger), nil, cfg.OutputDir, logger)
		out, err := w.Render(ctx, root, opts)
		if err != nil {
			return err
		}
		if importOpts.stdout {
			_, err := cmd.OutOrStdout().Write(out.Data)
			return err
		}
		target := pipeline.OutputPath(cfg.OutputDir, tree.Title, tree.RootID, out.Format)
		if err := document.Save(target, out.Data); err != nil {
			return err
		}
		formatSummary(cmd.OutOrStdout(), summary{
			Doc:    out.Document,
			Format: string(out.Format),
			Path:   target,
			Bytes:  len(out.Data),
		})
		return nil
	},
}

func init() {
	importOpts.register(importCmd)
	rootCmd.AddCommand(importCmd)
}
