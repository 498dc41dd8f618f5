package export

import (
	"bytes"
	"context"
	"fmt"
)

// Renderer turns a finished Markdown document into one output format.
type Renderer struct {
	PDF *PDFPrinter
}

// Render returns the document bytes for format f.
func (r *Renderer) Render(ctx context.Context, f Format, markdown, title string) ([]byte, error) {
	switch f {
	case Markdown:
		return []byte(markdown), nil
	case HTML:
		return RenderHTML(markdown, title)
	case DOCX:
		var buf bytes.Buffer
		if err := RenderDOCX(markdown, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case PDF:
		printer := r.PDF
		if printer == nil {
			printer = &PDFPrinter{}
		}
		var buf bytes.Buffer
		if err := printer.RenderPDF(ctx, markdown, title, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported output format %q", f)
}
