// Package document assembles a full Markdown document from a block tree.
package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/blockmd/internal/block"
	"github.com/dgallion1/blockmd/internal/toc"
	"github.com/dgallion1/blockmd/internal/walker"
)

// Document is a finished conversion.
type Document struct {
	Title    string        `json:"title"`
	Markdown string        `json:"markdown"`
	Stats    walker.Stats  `json:"stats"`
	Hash     string        `json:"hash"`
	Elapsed  time.Duration `json:"elapsed"`
}

type Assembler struct {
	Walker *walker.Walker
	AddTOC bool
	log    *slog.Logger
}

func NewAssembler(w *walker.Walker, addTOC bool, log *slog.Logger) *Assembler {
	if log == nil {
		log = slog.Default()
	}
	if w == nil {
		w = walker.New(log)
	}
	return &Assembler{Walker: w, AddTOC: addTOC, log: log.With("component", "assembler")}
}

// Assemble walks root, cleans the result and prepends the table of contents
// when requested and non-empty.
func (a *Assembler) Assemble(ctx context.Context, root *block.Node) (*Document, error) {
	start := time.Now()
	res, err := a.Walker.Walk(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root.ID(), err)
	}
	body := walker.Clean(res.Markdown)
	if a.AddTOC {
		if t := toc.Build(body); t != "" {
			body = strings.TrimRight(t, "\n") + "\n\n" + body
		}
	}
	doc := &Document{
		Title:    res.Title,
		Markdown: body,
		Stats:    res.Stats,
		Hash:     ContentHashHex([]byte(body)),
		Elapsed:  time.Since(start),
	}
	a.log.Info("document assembled",
		"block_id", root.ID(),
		"title", doc.Title,
		"rendered", doc.Stats.Rendered,
		"unknown", doc.Stats.Unknown,
		"depth_cut", doc.Stats.DepthCut,
		"elapsed", doc.Elapsed,
	)
	return doc, nil
}

// ContentHashHex returns the hex-encoded SHA-256 of data.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Save writes data to path atomically: a temporary file in the same
// directory is written, synced and renamed over path.
func Save(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
