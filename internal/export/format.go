// Package export renders assembled Markdown into other output formats.
package export

import (
	"fmt"
	"strings"
)

type Format string

const (
	Markdown Format = "md"
	HTML     Format = "html"
	DOCX     Format = "docx"
	PDF      Format = "pdf"
)

// Formats lists every supported output format.
var Formats = []Format{Markdown, HTML, DOCX, PDF}

// ParseFormat accepts a format name or common alias. Empty means Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "md", "markdown":
		return Markdown, nil
	case "html", "htm":
		return HTML, nil
	case "docx", "word":
		return DOCX, nil
	case "pdf":
		return PDF, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case HTML:
		return "text/html; charset=utf-8"
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case PDF:
		return "application/pdf"
	}
	return "text/markdown; charset=utf-8"
}
