package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/blockmd/internal/block"
	"github.com/dgallion1/blockmd/internal/document"
	"github.com/dgallion1/blockmd/internal/export"
	"github.com/dgallion1/blockmd/internal/manifest"
)

// ErrUnchanged is returned by Write when the manifest already holds an
// identical document at the same path.
var ErrUnchanged = errors.New("document unchanged")

// Output is one rendered document.
type Output struct {
	Document *document.Document
	Format   export.Format
	Data     []byte
}

// Worker converts pages from a block store into finished documents.
type Worker struct {
	store     block.Store
	renderer  *export.Renderer
	manifest  *manifest.Store
	outputDir string
	log       *slog.Logger
}

// NewWorker returns a worker. m may be nil to disable change tracking.
func NewWorker(store block.Store, renderer *export.Renderer, m *manifest.Store, outputDir string, log *slog.Logger) *Worker {
	if renderer == nil {
		renderer = &export.Renderer{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		store:     store,
		renderer:  renderer,
		manifest:  m,
		outputDir: outputDir,
		log:       log,
	}
}

// Fetch retrieves the root block of pageID.
func (w *Worker) Fetch(ctx context.Context, pageID string) (*block.Node, error) {
	return block.Fetch(ctx, w.store, w.log, pageID)
}

// Render walks root and renders it in the requested format.
func (w *Worker) Render(ctx context.Context, root *block.Node, opts Options) (*Output, error) {
	if opts.Format == "" {
		opts.Format = export.Markdown
	}
	asm := document.NewAssembler(opts.Walker(w.log), opts.AddTOC, w.log)
	doc, err := asm.Assemble(ctx, root)
	if err != nil {
		return nil, err
	}
	data, err := w.renderer.Render(ctx, opts.Format, doc.Markdown, doc.Title)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", opts.Format, err)
	}
	return &Output{Document: doc, Format: opts.Format, Data: data}, nil
}

// Convert fetches and renders pageID without writing anything.
func (w *Worker) Convert(ctx context.Context, pageID string, opts Options) (*Output, error) {
	root, err := w.Fetch(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return w.Render(ctx, root, opts)
}

// Write saves out under the output directory and records it in the
// manifest. Unless force is set it returns the path and ErrUnchanged when
// the recorded conversion matches.
func (w *Worker) Write(ctx context.Context, pageID string, out *Output, force bool) (string, error) {
	path := w.resolvePath(ctx, pageID, out)
	if w.manifest != nil && !force {
		entry, err := w.manifest.Lookup(ctx, pageID)
		if err != nil {
			w.log.Warn("manifest lookup failed, writing anyway", "page_id", pageID, "error", err)
		} else if manifest.Unchanged(entry, out.Document.Hash, path, string(out.Format)) {
			return path, ErrUnchanged
		}
	}
	if err := document.Save(path, out.Data); err != nil {
		return "", err
	}
	w.log.Info("document saved", "page_id", pageID, "path", path, "bytes", len(out.Data))
	if w.manifest != nil {
		err := w.manifest.Record(ctx, manifest.Entry{
			PageID:      pageID,
			Title:       out.Document.Title,
			OutputPath:  path,
			ContentHash: out.Document.Hash,
			Format:      string(out.Format),
		})
		if err != nil {
			return path, err
		}
	}
	return path, nil
}

// resolvePath picks the title path unless the manifest records another page
// at it, in which case the page id is added to the file name.
func (w *Worker) resolvePath(ctx context.Context, pageID string, out *Output) string {
	path := OutputPath(w.outputDir, out.Document.Title, pageID, out.Format)
	if w.manifest == nil {
		return path
	}
	owner, err := w.manifest.Owner(ctx, path)
	if err != nil {
		w.log.Warn("manifest owner lookup failed", "path", path, "error", err)
		return PageOutputPath(w.outputDir, out.Document.Title, pageID, out.Format)
	}
	if owner != "" && owner != pageID {
		alt := PageOutputPath(w.outputDir, out.Document.Title, pageID, out.Format)
		w.log.Info("output path taken by another page", "path", path, "owner", owner, "using", alt)
		return alt
	}
	return path
}

// Process runs the full conversion pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "page_id", job.PageID)

	// Phase 1: Fetch root
	job.SetStatus(StatusFetching, "fetching")
	root, err := block.Fetch(ctx, w.store, log, job.PageID)
	if err != nil {
		log.Error("fetch failed", "error", err)
		job.AddError(fmt.Sprintf("fetch: %s", err))
		job.SetStatus(StatusFailed, "fetching")
		return
	}

	// Phase 2: Walk and render
	job.SetStatus(StatusRendering, "rendering")
	out, err := w.Render(ctx, root, job.Options)
	if err != nil {
		log.Error("render failed", "error", err)
		job.AddError(fmt.Sprintf("render: %s", err))
		job.SetStatus(StatusFailed, "rendering")
		return
	}
	doc := out.Document
	job.SetResult(doc.Title, doc.Hash, doc.Stats, len(out.Data))
	if doc.Stats.Unknown > 0 {
		job.AddWarning(fmt.Sprintf("%d blocks of unsupported type skipped", doc.Stats.Unknown))
	}
	if doc.Stats.DepthCut > 0 {
		job.AddWarning(fmt.Sprintf("%d subtrees beyond max depth %d skipped", doc.Stats.DepthCut, job.Options.MaxDepth))
	}

	// Phase 3: Write
	job.SetStatus(StatusWriting, "writing")
	path, err := w.Write(ctx, job.PageID, out, job.Options.Force)
	switch {
	case errors.Is(err, ErrUnchanged):
		log.Info("document unchanged, skipping write", "path", path)
		job.SetOutputPath(path)
		job.SetStatus(StatusUnchanged, "done")
	case err != nil && path != "":
		log.Warn("manifest record failed", "error", err)
		job.SetOutputPath(path)
		job.AddWarning(fmt.Sprintf("manifest: %s", err))
		job.SetStatus(StatusCompleted, "done")
	case err != nil:
		log.Error("write failed", "error", err)
		job.AddError(fmt.Sprintf("write: %s", err))
		job.SetStatus(StatusFailed, "writing")
	default:
		job.SetOutputPath(path)
		job.SetStatus(StatusCompleted, "done")
	}
}
