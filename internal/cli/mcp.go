package cli

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/dgallion1/blockmd/internal/mcptools"
	"github.com/dgallion1/blockmd/internal/pipeline"
	"github.com/dgallion1/blockmd/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve blockmd tools over MCP stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.NotionSecretKey == "" {
			logger.Warn("NOTION_SECRET_KEY not set, blockmd_convert_page will find no pages")
		}
		rt, err := newRuntime(cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		tools := mcptools.New(rt.worker, pipeline.OptionsFromConfig(cfg), logger)
		srv := mcptools.NewServer(version.Version, tools)
		logger.Info("serving mcp on stdio")
		return srv.Run(cmd.Context(), &mcp.StdioTransport{})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
