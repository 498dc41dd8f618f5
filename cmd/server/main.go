package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/blockmd/internal/cli"
	"github.com/dgallion1/blockmd/internal/config"
	"github.com/dgallion1/blockmd/internal/logging"
)

func main() {
	cfg, err := config.Load()
	log := logging.New(os.Stdout, cfg.LogLevel, "json")
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log = logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Serve(ctx, cfg, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
