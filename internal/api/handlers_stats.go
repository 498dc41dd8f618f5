package api

import (
	"net/http"
	"strconv"

	"github.com/dgallion1/blockmd/internal/manifest"
)

func (s *Server) handleStoreStats(w http.ResponseWriter, r *http.Request) {
	if s.storeStats == nil {
		jsonError(w, "store stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"store": "notion",
		"stats": s.storeStats.Snapshot(),
	})
}

func (s *Server) handleListConversions(w http.ResponseWriter, r *http.Request) {
	if s.manifest == nil {
		jsonError(w, "manifest unavailable", http.StatusServiceUnavailable)
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries, err := s.manifest.List(r.Context(), limit)
	if err != nil {
		jsonError(w, "failed to list conversions: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []manifest.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversions": entries})
}
