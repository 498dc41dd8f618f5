package source

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/blockmd/internal/memstore"
)

// PDFImporter handles PDF files. Each page with text becomes a heading_2
// followed by its blank-line separated paragraphs.
type PDFImporter struct{}

func (p *PDFImporter) Import(r io.Reader, filename string) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	pages, err := extractPDFPages(data)
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	tree := newTree(baseTitle(filename))
	for i, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		tree.Add(tree.RootID, memstore.Heading(2, memstore.Text(fmt.Sprintf("Page %d", i+1))))
		for _, para := range splitParagraphs(page) {
			tree.Add(tree.RootID, memstore.Paragraph(memstore.Text(para)))
		}
	}
	return tree, nil
}

func extractPDFPages(data []byte) ([]string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	numPages := reader.NumPage()
	pages := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages[i-1] = text
	}
	return pages, nil
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
