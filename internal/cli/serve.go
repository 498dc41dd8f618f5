package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP conversion service",
	Long: `Run the HTTP API. Requires NOTION_SECRET_KEY and BLOCKMD_API_KEY; every
/api route expects "Authorization: Bearer <BLOCKMD_API_KEY>".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			cfg.Port = servePort
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return Serve(ctx, cfg, logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen port (default PORT)")
	rootCmd.AddCommand(serveCmd)
}
