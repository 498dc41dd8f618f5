package source

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/blockmd/internal/memstore"
)

// MarkdownImporter handles Markdown files using goldmark with GFM tables
// and strikethrough. A front matter title names the document.
type MarkdownImporter struct{}

type mdMeta struct {
	Title string `yaml:"title" toml:"title" json:"title"`
}

func (p *MarkdownImporter) Import(r io.Reader, filename string) (*Tree, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var meta mdMeta
	src, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = baseTitle(filename)
	}
	tree := newTree(title)
	importMarkdown(tree, tree.RootID, src)
	return tree, nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// importMarkdown parses src and adds its blocks under parentID.
func importMarkdown(tree *Tree, parentID string, src []byte) {
	doc := markdown.Parser().Parse(text.NewReader(src))
	b := &mdBuilder{tree: tree, src: src}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		b.block(parentID, n)
	}
}

type mdBuilder struct {
	tree *Tree
	src  []byte
}

type style struct {
	bold, italic, strike, code bool
	href                       string
}

func (b *mdBuilder) block(parentID string, n ast.Node) {
	switch node := n.(type) {
	case *ast.Heading:
		b.tree.Add(parentID, memstore.Heading(node.Level, b.inlines(node)...))
	case *ast.Paragraph, *ast.TextBlock:
		if img, ok := soleImage(node); ok {
			caption := b.inlines(img)
			b.tree.Add(parentID, memstore.Image(string(img.Destination), caption...))
			return
		}
		b.tree.Add(parentID, memstore.Paragraph(b.inlines(node)...))
	case *ast.Blockquote:
		var runs []map[string]any
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			if len(runs) > 0 {
				runs = append(runs, memstore.Text("\n"))
			}
			runs = append(runs, b.inlines(c)...)
		}
		b.tree.Add(parentID, memstore.Quote(runs...))
	case *ast.List:
		numbered := node.IsOrdered()
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			b.listItem(parentID, item, numbered)
		}
	case *ast.FencedCodeBlock:
		lang := string(node.Language(b.src))
		if lang == "" {
			lang = "plain text"
		}
		b.tree.Add(parentID, memstore.Code(lang, b.lines(node)))
	case *ast.CodeBlock:
		b.tree.Add(parentID, memstore.Code("plain text", b.lines(node)))
	case *ast.ThematicBreak:
		b.tree.Add(parentID, memstore.Divider())
	case *ast.HTMLBlock:
		if s := strings.TrimSpace(b.lines(node)); s != "" {
			b.tree.Add(parentID, memstore.Paragraph(memstore.Text(s)))
		}
	case *extast.Table:
		b.table(parentID, node)
	}
}

func (b *mdBuilder) listItem(parentID string, item ast.Node, numbered bool) {
	first := item.FirstChild()
	var runs []map[string]any
	if first != nil {
		switch first.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			runs = b.inlines(first)
			first = first.NextSibling()
		}
	}
	id := b.tree.Add(parentID, memstore.ListItem(numbered, runs...))
	for c := first; c != nil; c = c.NextSibling() {
		b.block(id, c)
	}
}

func (b *mdBuilder) table(parentID string, node *extast.Table) {
	width := len(node.Alignments)
	id := b.tree.Add(parentID, memstore.Table(width, true))
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		var cells [][]map[string]any
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, b.inlines(cell))
		}
		b.tree.Add(id, memstore.TableRowRuns(cells...))
	}
}

func (b *mdBuilder) lines(n ast.Node) string {
	var buf strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(b.src))
	}
	return strings.TrimRight(buf.String(), "\n")
}

// inlines flattens the inline children of n into rich-text runs.
func (b *mdBuilder) inlines(n ast.Node) []map[string]any {
	var out []map[string]any
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = b.inline(out, c, style{})
	}
	return mergeRuns(out)
}

func (b *mdBuilder) inline(out []map[string]any, n ast.Node, st style) []map[string]any {
	switch node := n.(type) {
	case *ast.Text:
		s := string(node.Value(b.src))
		switch {
		case node.HardLineBreak():
			s += "\n"
		case node.SoftLineBreak():
			s += " "
		}
		return append(out, st.run(s))
	case *ast.String:
		return append(out, st.run(string(node.Value)))
	case *ast.CodeSpan:
		var buf strings.Builder
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Value(b.src))
			}
		}
		code := st
		code.code = true
		return append(out, code.run("`"+buf.String()+"`"))
	case *ast.Emphasis:
		if node.Level >= 2 {
			st.bold = true
		} else {
			st.italic = true
		}
	case *extast.Strikethrough:
		st.strike = true
	case *ast.Link:
		st.href = string(node.Destination)
	case *ast.AutoLink:
		url := string(node.URL(b.src))
		st.href = url
		return append(out, st.run(string(node.Label(b.src))))
	case *ast.Image:
		// Inline images keep their alt text.
	case *ast.RawHTML:
		var buf strings.Builder
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			buf.Write(seg.Value(b.src))
		}
		return append(out, st.run(buf.String()))
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = b.inline(out, c, st)
	}
	return out
}

func (st style) run(s string) map[string]any {
	if !st.bold && !st.italic && !st.strike && !st.code && st.href == "" {
		return memstore.Text(s)
	}
	return memstore.Styled(s, st.bold, st.italic, st.strike, false, st.code, st.href)
}

// mergeRuns joins adjacent unstyled runs.
func mergeRuns(runs []map[string]any) []map[string]any {
	var out []map[string]any
	for _, r := range runs {
		if len(out) > 0 && plain(r) && plain(out[len(out)-1]) {
			prev := out[len(out)-1]["plain_text"].(string)
			out[len(out)-1] = memstore.Text(prev + r["plain_text"].(string))
			continue
		}
		out = append(out, r)
	}
	return out
}

func plain(r map[string]any) bool {
	_, styled := r["annotations"]
	return !styled && r["type"] == "text"
}

func soleImage(n ast.Node) (*ast.Image, bool) {
	if n.ChildCount() != 1 {
		return nil, false
	}
	img, ok := n.FirstChild().(*ast.Image)
	return img, ok
}
