package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/blockmd/internal/config"
	"github.com/dgallion1/blockmd/internal/manifest"
	"github.com/dgallion1/blockmd/internal/notion"
	"github.com/dgallion1/blockmd/internal/pipeline"
)

// Server is the HTTP API server for blockmd.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	storeStats   *notion.Stats
	manifest     *manifest.Store
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. storeStats and m may be
// nil; the endpoints that need them then report 503.
func NewServer(orch *pipeline.Orchestrator, storeStats *notion.Stats, m *manifest.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		storeStats:   storeStats,
		manifest:     m,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/convert", s.handleConvert)
		r.Post("/api/jobs", s.handleSubmitJob)
		r.Get("/api/jobs", s.handleListJobs)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Post("/api/import", s.handleImport)
		r.Post("/api/toc", s.handleTOC)
		r.Get("/api/stats/store", s.handleStoreStats)
		r.Get("/api/conversions", s.handleListConversions)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
