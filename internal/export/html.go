package export

import (
	"bytes"
	"fmt"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		// Underline is emitted as raw <u>; bluemonday sanitises afterwards.
		goldmark.WithRendererOptions(goldhtml.WithUnsafe()),
	)
	sanitizer = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	return p
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; max-width: 48rem; margin: 2rem auto; line-height: 1.5; }
pre { background: #f6f8fa; padding: 1rem; overflow-x: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d0d7de; padding: 0.25rem 0.75rem; }
blockquote { border-left: 4px solid #d0d7de; margin-left: 0; padding-left: 1rem; color: #57606a; }
</style>
</head>
<body>
%s</body>
</html>
`

// HTMLFragment renders Markdown to sanitised HTML without a page wrapper.
func HTMLFragment(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return sanitizer.SanitizeBytes(buf.Bytes()), nil
}

// RenderHTML renders Markdown as a standalone HTML page.
func RenderHTML(markdown, title string) ([]byte, error) {
	body, err := HTMLFragment(markdown)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf(pageTemplate, html.EscapeString(title), body)), nil
}
