package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/blockmd/internal/api"
	"github.com/dgallion1/blockmd/internal/block"
	"github.com/dgallion1/blockmd/internal/config"
	"github.com/dgallion1/blockmd/internal/export"
	"github.com/dgallion1/blockmd/internal/manifest"
	"github.com/dgallion1/blockmd/internal/memstore"
	"github.com/dgallion1/blockmd/internal/notion"
	"github.com/dgallion1/blockmd/internal/pipeline"
)

// runtime is the set of long-lived clients a command works with.
type runtime struct {
	client   *notion.Client
	manifest *manifest.Store
	worker   *pipeline.Worker
}

// newRuntime wires the Notion client, manifest and worker from cfg. Without
// a secret key the worker reads from an empty in-memory store, which is
// enough for rendering imported files.
func newRuntime(cfg config.Config, log *slog.Logger) (*runtime, error) {
	rt := &runtime{}
	var store block.Store
	if cfg.NotionSecretKey != "" {
		rt.client = notion.NewClient(cfg.NotionSecretKey, notion.Options{
			BaseURL:       cfg.NotionAPIURL,
			Version:       cfg.NotionVersion,
			Timeout:       cfg.NotionTimeout,
			RatePerSecond: cfg.NotionRateLimit,
			Logger:        log,
		})
		store = rt.client
	} else {
		store = memstore.New()
	}

	if cfg.ManifestPath != "" {
		m, err := manifest.Open(cfg.ManifestPath)
		if err != nil {
			return nil, err
		}
		rt.manifest = m
	}

	rt.worker = pipeline.NewWorker(store, newRenderer(cfg, log), rt.manifest, cfg.OutputDir, log)
	return rt, nil
}

func newRenderer(cfg config.Config, log *slog.Logger) *export.Renderer {
	return &export.Renderer{PDF: &export.PDFPrinter{ControlURL: cfg.ChromeURL, Logger: log}}
}

func (rt *runtime) storeStats() *notion.Stats {
	if rt.client == nil {
		return nil
	}
	return rt.client.Stats()
}

func (rt *runtime) Close() {
	if rt.client != nil {
		rt.client.Close()
	}
	if rt.manifest != nil {
		rt.manifest.Close()
	}
}

// Serve runs the HTTP service until ctx is cancelled.
func Serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	rt, err := newRuntime(cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, rt.worker, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, rt.storeStats(), rt.manifest, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting blockmd", "port", cfg.Port)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		orch.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	err = httpServer.Shutdown(shutdownCtx)
	orch.Stop()
	return err
}
