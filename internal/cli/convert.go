package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/blockmd/internal/export"
	"github.com/dgallion1/blockmd/internal/notion"
	"github.com/dgallion1/blockmd/internal/pipeline"
)

// convertFlags are shared by convert and import. Values override the
// configuration only when the flag was given.
type convertFlags struct {
	out          string
	format       string
	maxDepth     int
	noTOC        bool
	headingShift int
	numberLists  bool
	force        bool
	stdout       bool
}

func (f *convertFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output directory (default OUTPUT_DIR)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "md", "Output format: md, html, docx, pdf")
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", 5, "Deepest block level to render")
	cmd.Flags().BoolVar(&f.noTOC, "no-toc", false, "Do not prepend a table of contents")
	cmd.Flags().IntVar(&f.headingShift, "heading-shift", 1, "Levels added to every heading")
	cmd.Flags().BoolVar(&f.numberLists, "number-lists", false, "Number ordered list items sequentially")
	cmd.Flags().BoolVar(&f.stdout, "stdout", false, "Write the document to stdout instead of a file")
}

// options merges the flags that were set over the configured defaults.
func (f *convertFlags) options(cmd *cobra.Command) (pipeline.Options, error) {
	opts := pipeline.OptionsFromConfig(cfg)
	flags := cmd.Flags()
	var err error
	if opts.Format, err = export.ParseFormat(f.format); err != nil {
		return opts, err
	}
	if flags.Changed("max-depth") {
		opts.MaxDepth = f.maxDepth
	}
	if flags.Changed("no-toc") {
		opts.AddTOC = !f.noTOC
	}
	if flags.Changed("heading-shift") {
		opts.HeadingShift = f.headingShift
	}
	if flags.Changed("number-lists") {
		opts.NumberLists = f.numberLists
	}
	opts.Force = f.force
	if f.out != "" {
		cfg.OutputDir = f.out
	}
	return opts, opts.Validate()
}

var convertOpts convertFlags

var convertCmd = &cobra.Command{
	Use:   "convert <page-id|url>",
	Short: "Convert a Notion page to Markdown",
	Long: `Convert a Notion page and its nested blocks to a Markdown document.

The page is fetched through the Notion API (NOTION_SECRET_KEY). The document is
written to the output directory as <title>.<ext> unless --stdout is given, and
skipped when the conversion manifest shows identical content (use --force to
rewrite).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateNotion(); err != nil {
			return err
		}
		pageID, err := notion.ParseID(args[0])
		if err != nil {
			return err
		}
		opts, err := convertOpts.options(cmd)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		out, err := rt.worker.Convert(ctx, pageID, opts)
		if err != nil {
			return err
		}
		if convertOpts.stdout {
			_, err := cmd.OutOrStdout().Write(out.Data)
			return err
		}
		path, err := rt.worker.Write(ctx, pageID, out, opts.Force)
		unchanged := errors.Is(err, pipeline.ErrUnchanged)
		if err != nil && !unchanged {
			return fmt.Errorf("write %s: %w", pageID, err)
		}
		formatSummary(cmd.OutOrStdout(), summary{
			Doc:       out.Document,
			Format:    string(out.Format),
			Path:      path,
			Bytes:     len(out.Data),
			Unchanged: unchanged,
		})
		return nil
	},
}

func init() {
	convertOpts.register(convertCmd)
	convertCmd.Flags().BoolVar(&convertOpts.force, "force", false, "Rewrite output even when unchanged")
	rootCmd.AddCommand(convertCmd)
}
