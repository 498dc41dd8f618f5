package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dgallion1/blockmd/internal/export"
	"github.com/dgallion1/blockmd/internal/pipeline"
	"github.com/dgallion1/blockmd/internal/source"
	"github.com/dgallion1/blockmd/internal/toc"
)

// handleImport converts an uploaded local document through the block tree.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !source.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	opts, err := formOptions(r, pipeline.OptionsFromConfig(s.cfg))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	imp, err := source.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	tree, err := imp.Import(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Error("import failed", "filename", filename, "error", err)
		jsonError(w, "import: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	root, err := tree.Root(r.Context(), s.log)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out, err := s.orchestrator.Worker().Render(r.Context(), root, opts)
	if err != nil {
		s.log.Error("render failed", "filename", filename, "error", err)
		jsonError(w, err.Error(), convertStatus(err))
		return
	}
	s.log.Info("imported document", "filename", filename, "title", tree.Title, "blocks", tree.Store.Len())
	writeDocument(w, out)
}

// formOptions reads optional conversion fields from a multipart form.
func formOptions(r *http.Request, opts pipeline.Options) (pipeline.Options, error) {
	var err error
	if v := r.FormValue("format"); v != "" {
		if opts.Format, err = export.ParseFormat(v); err != nil {
			return opts, err
		}
	}
	if v := r.FormValue("add_toc"); v != "" {
		if opts.AddTOC, err = strconv.ParseBool(v); err != nil {
			return opts, fmt.Errorf("add_toc: %w", err)
		}
	}
	if v := r.FormValue("number_lists"); v != "" {
		if opts.NumberLists, err = strconv.ParseBool(v); err != nil {
			return opts, fmt.Errorf("number_lists: %w", err)
		}
	}
	if v := r.FormValue("max_depth"); v != "" {
		if opts.MaxDepth, err = strconv.Atoi(v); err != nil {
			return opts, fmt.Errorf("max_depth: %w", err)
		}
	}
	if v := r.FormValue("heading_shift"); v != "" {
		if opts.HeadingShift, err = strconv.Atoi(v); err != nil {
			return opts, fmt.Errorf("heading_shift: %w", err)
		}
	}
	return opts, opts.Validate()
}

type tocRequest struct {
	Markdown string `json:"markdown"`
}

func (r tocRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Markdown, validation.Required),
	)
}

// handleTOC builds a table of contents for posted Markdown.
func (s *Server) handleTOC(w http.ResponseWriter, r *http.Request) {
	var req tocRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	headings := toc.Headings(req.Markdown)
	if headings == nil {
		headings = []toc.Heading{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"toc":      toc.Build(req.Markdown),
		"headings": headings,
	})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
