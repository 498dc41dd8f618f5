// Package source imports local documents as block trees, so a file can be
// converted through the same walker as a Notion page.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/blockmd/internal/block"
	"github.com/dgallion1/blockmd/internal/memstore"
)

// Importer builds a block tree from raw document bytes.
type Importer interface {
	Import(r io.Reader, filename string) (*Tree, error)
}

// Tree is an imported document: a child_page root titled after the
// document, with the content as its descendants.
type Tree struct {
	Store  *memstore.Store
	RootID string
	Title  string
}

func newTree(title string) *Tree {
	s := memstore.New()
	root := s.Add("", memstore.ChildPage(title))
	return &Tree{Store: s, RootID: root, Title: title}
}

// Add appends p under parentID and returns the new block id.
func (t *Tree) Add(parentID string, p map[string]any) string {
	return t.Store.Add(parentID, p)
}

// Root returns the root node for walking.
func (t *Tree) Root(ctx context.Context, log *slog.Logger) (*block.Node, error) {
	return block.Fetch(ctx, t.Store, log, t.RootID)
}

// SupportedExtensions lists file extensions that can be imported.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".json":     true,
}

// ForFile returns the importer for a filename.
func ForFile(filename string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextImporter{}, nil
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".csv":
		return &CSVImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".pdf":
		return &PDFImporter{}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	case ".json":
		return &SnapshotImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// baseTitle is the file name without directory or extension.
func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
