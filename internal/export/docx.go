package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Half-point sizes for heading levels 1 to 4.
var headingSizes = []string{"36", "30", "26", "24"}

const monoFont = "Courier New"

// RenderDOCX writes Markdown as a Word document.
func RenderDOCX(markdown string, w io.Writer) error {
	src := []byte(markdown)
	doc := mdRenderer.Parser().Parse(text.NewReader(src))

	d := docx.New().WithDefaultTheme()
	b := &docxBuilder{d: d, src: src}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		b.block(n, 0)
	}
	if _, err := d.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

type docxBuilder struct {
	d   *docx.Docx
	src []byte
}

type runStyle struct {
	bold, italic, strike, underline, code bool
}

func (b *docxBuilder) block(n ast.Node, indent int) {
	switch node := n.(type) {
	case *ast.Heading:
		p := b.d.AddParagraph()
		level := min(max(node.Level, 1), len(headingSizes))
		p.Style("Heading" + strconv.Itoa(level))
		b.inlines(p, node, runStyle{bold: true}, headingSizes[level-1])
	case *ast.Paragraph, *ast.TextBlock:
		p := b.d.AddParagraph()
		b.prefix(p, indent, "")
		b.inlines(p, node, runStyle{}, "")
	case *ast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			p := b.d.AddParagraph()
			p.AddText("    ")
			b.inlines(p, c, runStyle{italic: true}, "")
		}
	case *ast.List:
		ordinal := node.Start
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "• "
			if node.IsOrdered() {
				marker = strconv.Itoa(max(ordinal, 1)) + ". "
				ordinal++
			}
			b.listItem(item, indent, marker)
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			line := strings.TrimRight(string(seg.Value(b.src)), "\n")
			b.d.AddParagraph().AddText(line).Font(monoFont, monoFont, monoFont, "default")
		}
	case *ast.ThematicBreak:
		b.d.AddParagraph()
	case *extast.Table:
		b.table(node)
	}
}

func (b *docxBuilder) listItem(item ast.Node, indent int, marker string) {
	first := true
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			p := b.d.AddParagraph()
			if first {
				b.prefix(p, indent, marker)
			} else {
				b.prefix(p, indent+1, "")
			}
			b.inlines(p, c, runStyle{}, "")
		default:
			b.block(c, indent+1)
		}
		first = false
	}
}

func (b *docxBuilder) prefix(p *docx.Paragraph, indent int, marker string) {
	if s := strings.Repeat("    ", indent) + marker; s != "" {
		p.AddText(s)
	}
}

func (b *docxBuilder) table(node *extast.Table) {
	var rows [][]ast.Node
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []ast.Node
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, cell)
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return
	}
	cols := len(node.Alignments)
	t := b.d.AddTable(len(rows), cols, 0, nil)
	for i, cells := range rows {
		for j, cell := range cells {
			if j >= cols {
				break
			}
			p := t.TableRows[i].TableCells[j].AddParagraph()
			b.inlines(p, cell, runStyle{bold: i == 0}, "")
		}
	}
}

func (b *docxBuilder) inlines(p *docx.Paragraph, n ast.Node, st runStyle, size string) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		st = b.inline(p, c, st, size)
	}
}

// inline adds runs for n and returns the style in effect afterwards; raw
// <u> and </u> tags toggle underline for the following siblings.
func (b *docxBuilder) inline(p *docx.Paragraph, n ast.Node, st runStyle, size string) runStyle {
	switch node := n.(type) {
	case *ast.Text:
		s := string(node.Value(b.src))
		if node.SoftLineBreak() || node.HardLineBreak() {
			s += " "
		}
		b.text(p, s, st, size)
		return st
	case *ast.String:
		b.text(p, string(node.Value), st, size)
		return st
	case *ast.CodeSpan:
		inner := st
		inner.code = true
		b.inlines(p, node, inner, size)
		return st
	case *ast.Emphasis:
		inner := st
		if node.Level >= 2 {
			inner.bold = true
		} else {
			inner.italic = true
		}
		b.inlines(p, node, inner, size)
		return st
	case *extast.Strikethrough:
		inner := st
		inner.strike = true
		b.inlines(p, node, inner, size)
		return st
	case *ast.Link:
		p.AddLink(plainText(node, b.src), string(node.Destination))
		return st
	case *ast.AutoLink:
		url := string(node.URL(b.src))
		p.AddLink(string(node.Label(b.src)), url)
		return st
	case *ast.Image:
		b.text(p, plainText(node, b.src), runStyle{italic: true}, size)
		return st
	case *ast.RawHTML:
		var raw strings.Builder
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			raw.Write(seg.Value(b.src))
		}
		switch strings.ToLower(raw.String()) {
		case "<u>":
			st.underline = true
		case "</u>":
			st.underline = false
		}
		return st
	}
	b.inlines(p, n, st, size)
	return st
}

func (b *docxBuilder) text(p *docx.Paragraph, s string, st runStyle, size string) {
	if s == "" {
		return
	}
	r := p.AddText(s)
	if st.bold {
		r.Bold()
	}
	if st.italic {
		r.Italic()
	}
	if st.strike {
		r.Strike(true)
	}
	if st.underline {
		r.Underline("single")
	}
	if st.code {
		r.Font(monoFont, monoFont, monoFont, "default")
	}
	if size != "" {
		r.Size(size)
	}
}

func plainText(n ast.Node, src []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Value(src))
		case *ast.String:
			sb.Write(t.Value)
		default:
			sb.WriteString(plainText(c, src))
		}
	}
	return sb.String()
}
