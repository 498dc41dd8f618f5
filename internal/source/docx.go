package source

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/blockmd/internal/memstore"
)

// DOCXImporter handles .docx files. Heading styles become headings, list
// styles become bulleted items, tables become tables and everything else a
// paragraph. Run-level bold, italic, underline and strike are kept.
type DOCXImporter struct{}

func (p *DOCXImporter) Import(r io.Reader, filename string) (*Tree, error) {
	// go-docx needs a ReaderAt and a size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	tree := newTree(baseTitle(filename))
	for _, item := range doc.Document.Body.Items {
		switch o := item.(type) {
		case *docx.Paragraph:
			addDocxParagraph(tree, o)
		case *docx.Table:
			addDocxTable(tree, o)
		}
	}
	return tree, nil
}

func addDocxParagraph(tree *Tree, para *docx.Paragraph) {
	runs := docxRuns(para)
	if len(runs) == 0 {
		return
	}
	style := docxStyle(para)
	switch {
	case docxHeadingLevel(style) > 0:
		tree.Add(tree.RootID, memstore.Heading(docxHeadingLevel(style), runs...))
	case strings.HasPrefix(strings.ToLower(style), "listnumber"):
		tree.Add(tree.RootID, memstore.ListItem(true, runs...))
	case strings.HasPrefix(strings.ToLower(style), "list"):
		tree.Add(tree.RootID, memstore.ListItem(false, runs...))
	case strings.EqualFold(style, "Quote") || strings.EqualFold(style, "IntenseQuote"):
		tree.Add(tree.RootID, memstore.Quote(runs...))
	default:
		tree.Add(tree.RootID, memstore.Paragraph(runs...))
	}
}

func addDocxTable(tree *Tree, tbl *docx.Table) {
	if len(tbl.TableRows) == 0 {
		return
	}
	width := len(tbl.TableRows[0].TableCells)
	id := tree.Add(tree.RootID, memstore.Table(width, true))
	for _, row := range tbl.TableRows {
		cells := make([][]map[string]any, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			var runs []map[string]any
			for i, para := range cell.Paragraphs {
				if i > 0 {
					runs = append(runs, memstore.Text(" "))
				}
				runs = append(runs, docxRuns(para)...)
			}
			cells = append(cells, runs)
		}
		tree.Add(id, memstore.TableRowRuns(cells...))
	}
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func docxHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	switch {
	case s == "title", s == "heading1":
		return 1
	case s == "heading2":
		return 2
	case strings.HasPrefix(s, "heading") && len(s) == len("heading")+1:
		return 3
	}
	return 0
}

func docxRuns(para *docx.Paragraph) []map[string]any {
	var out []map[string]any
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			if r, ok := docxRun(c); ok {
				out = append(out, r)
			}
		case *docx.Hyperlink:
			if r, ok := docxRun(&c.Run); ok {
				out = append(out, r)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return mergeRuns(out)
}

func docxRun(run *docx.Run) (map[string]any, bool) {
	var buf strings.Builder
	for _, rc := range run.Children {
		switch t := rc.(type) {
		case *docx.Text:
			buf.WriteString(t.Text)
		case *docx.Tab:
			buf.WriteString("\t")
		}
	}
	if buf.Len() == 0 {
		return nil, false
	}
	st := style{}
	underline := false
	if rp := run.RunProperties; rp != nil {
		st.bold = rp.Bold != nil
		st.italic = rp.Italic != nil
		st.strike = rp.Strike != nil && rp.Strike.Val != "false" && rp.Strike.Val != "0"
		underline = rp.Underline != nil && rp.Underline.Val != "none"
	}
	if underline {
		return memstore.Styled(buf.String(), st.bold, st.italic, st.strike, true, false, ""), true
	}
	return st.run(buf.String()), true
}
