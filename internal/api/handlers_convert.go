package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dgallion1/blockmd/internal/block"
	"github.com/dgallion1/blockmd/internal/convert"
	"github.com/dgallion1/blockmd/internal/export"
	"github.com/dgallion1/blockmd/internal/notion"
	"github.com/dgallion1/blockmd/internal/pipeline"
)

// convertRequest is the body of /api/convert and /api/jobs. Unset optional
// fields fall back to the configured defaults.
type convertRequest struct {
	PageID       string `json:"page_id"`
	Format       string `json:"format"`
	AddTOC       *bool  `json:"add_toc"`
	MaxDepth     *int   `json:"max_depth"`
	HeadingShift *int   `json:"heading_shift"`
	NumberLists  *bool  `json:"number_lists"`
	Force        bool   `json:"force"`
}

func (r convertRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PageID, validation.Required, validation.By(validPageID)),
		validation.Field(&r.Format, validation.By(validFormat)),
	)
}

func validPageID(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	_, err := notion.ParseID(s)
	return err
}

func validFormat(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	_, err := export.ParseFormat(s)
	return err
}

// options merges the request over defaults and returns the normalised page id.
func (r convertRequest) options(defaults pipeline.Options) (string, pipeline.Options, error) {
	id, err := notion.ParseID(r.PageID)
	if err != nil {
		return "", defaults, err
	}
	opts := defaults
	if r.Format != "" {
		if opts.Format, err = export.ParseFormat(r.Format); err != nil {
			return "", defaults, err
		}
	}
	if r.AddTOC != nil {
		opts.AddTOC = *r.AddTOC
	}
	if r.MaxDepth != nil {
		opts.MaxDepth = *r.MaxDepth
	}
	if r.HeadingShift != nil {
		opts.HeadingShift = *r.HeadingShift
	}
	if r.NumberLists != nil {
		opts.NumberLists = *r.NumberLists
	}
	opts.Force = r.Force
	return id, opts, opts.Validate()
}

func (s *Server) decodeConvert(w http.ResponseWriter, r *http.Request) (string, pipeline.Options, bool) {
	var req convertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return "", pipeline.Options{}, false
	}
	if err := req.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return "", pipeline.Options{}, false
	}
	id, opts, err := req.options(pipeline.OptionsFromConfig(s.cfg))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return "", pipeline.Options{}, false
	}
	return id, opts, true
}

// handleConvert converts a page synchronously and returns the document body.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	pageID, opts, ok := s.decodeConvert(w, r)
	if !ok {
		return
	}
	out, err := s.orchestrator.Worker().Convert(r.Context(), pageID, opts)
	if err != nil {
		s.log.Error("convert failed", "page_id", pageID, "error", err)
		jsonError(w, err.Error(), convertStatus(err))
		return
	}
	writeDocument(w, out)
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	pageID, opts, ok := s.decodeConvert(w, r)
	if !ok {
		return
	}
	job := pipeline.NewJob(pageID, opts)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"page_id":  job.PageID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"jobs": s.orchestrator.Jobs()})
}

func writeDocument(w http.ResponseWriter, out *pipeline.Output) {
	w.Header().Set("Content-Type", out.Format.ContentType())
	w.Header().Set("X-Content-Hash", out.Document.Hash)
	w.Header().Set("X-Blocks-Rendered", strconv.Itoa(out.Document.Stats.Rendered))
	w.WriteHeader(http.StatusOK)
	w.Write(out.Data)
}

func convertStatus(err error) int {
	var apiErr *notion.APIError
	switch {
	case errors.Is(err, block.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, convert.ErrInvalidPayload):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
