// Package cli implements the blockmd command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/blockmd/internal/config"
	"github.com/dgallion1/blockmd/internal/logging"
	"github.com/dgallion1/blockmd/internal/version"
)

var (
	configPath string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "blockmd",
	Short: "Convert Notion pages and local documents to Markdown",
	Long: `blockmd walks a Notion page's block tree and renders it as a Markdown
document with an optional table of contents. Local files (md, txt, csv, html,
docx, pdf, JSON snapshots) can be imported through the same converters, and
documents can be exported as HTML, DOCX or PDF.

Configuration comes from environment variables (NOTION_SECRET_KEY, MAX_DEPTH,
ADD_TOC, ...) optionally overlaid by a YAML file named by BLOCKMD_CONFIG.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			os.Setenv("BLOCKMD_CONFIG", configPath)
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger = logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
		return nil
	},
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("blockmd %s\n", version.String()))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (overrides BLOCKMD_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warning, error, critical")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		os.Exit(1)
	}
}
