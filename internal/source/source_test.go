package source

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/google/go-cmp/cmp"

	"github.com/dgallion1/blockmd/internal/block"
	"github.com/dgallion1/blockmd/internal/memstore"
	"github.com/dgallion1/blockmd/internal/walker"
)

// render walks an imported tree with heading shift 0 so imported headings
// keep their level.
func render(t *testing.T, tree *Tree) string {
	t.Helper()
	ctx := context.Background()
	root, err := tree.Root(ctx, nil)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	kids, err := root.Children(ctx)
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	w := walker.New(nil)
	w.HeadingShift = 0
	var sb strings.Builder
	for _, k := range kids {
		res, err := w.Walk(ctx, k)
		if err != nil {
			t.Fatalf("walk: %v", err)
		}
		sb.WriteString(res.Markdown)
	}
	return walker.Clean(sb.String())
}

func types(t *testing.T, tree *Tree, id string) []string {
	t.Helper()
	kids, err := tree.Store.ListChildren(context.Background(), id)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var out []string
	for _, k := range kids {
		out = append(out, k["type"].(string))
	}
	return out
}

func TestMarkdownImporter_Blocks(t *testing.T) {
	input := `---
title: Field Guide
---
# Title

Intro with **bold**, *italic*, ~~gone~~ and [a link](https://go.dev).

- one
- two
  - two.a
1. first

> quoted

` + "```go\nfmt.Println(1)\n```" + `

---

| A | B |
|---|---|
| 1 | 2 |
`
	tree, err := (&MarkdownImporter{}).Import(strings.NewReader(input), "notes/guide.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "Field Guide" {
		t.Errorf("expected front matter title, got %q", tree.Title)
	}

	want := []string{
		"heading_1", "paragraph", "bulleted_list_item", "bulleted_list_item",
		"numbered_list_item", "quote", "code", "divider", "table",
	}
	if diff := cmp.Diff(want, types(t, tree, tree.RootID)); diff != "" {
		t.Errorf("block types mismatch (-want +got):\n%s", diff)
	}

	got := render(t, tree)
	wantMD := "# Title\n\n" +
		"Intro with **bold**, *italic*, ~~gone~~ and [a link](https://go.dev).\n\n" +
		"- one\n\n" +
		"- two\n\n" +
		"    - two.a\n\n" +
		"1. first\n\n" +
		"> quoted\n\n" +
		"```go\nfmt.Println(1)\n```\n\n" +
		"| A | B |\n| --- | --- |\n| 1 | 2 |\n"
	if diff := cmp.Diff(wantMD, got); diff != "" {
		t.Errorf("markdown mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkdownImporter_TitleFromFilename(t *testing.T) {
	tree, err := (&MarkdownImporter{}).Import(strings.NewReader("plain"), "dir/readme.markdown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "readme" {
		t.Errorf("expected title %q, got %q", "readme", tree.Title)
	}
	root, _ := tree.Store.Retrieve(context.Background(), tree.RootID)
	if root["type"] != "child_page" {
		t.Errorf("expected child_page root, got %v", root["type"])
	}
}

func TestMarkdownImporter_Image(t *testing.T) {
	tree, err := (&MarkdownImporter{}).Import(strings.NewReader("![diagram](https://img/x.png)\n"), "a.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := render(t, tree); got != "![diagram](https://img/x.png)\n" {
		t.Errorf("got %q", got)
	}
}

func TestTextImporter_Paragraphs(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\n\n\nThird paragraph."
	tree, err := (&TextImporter{}).Import(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", tree.Title)
	}
	if got := types(t, tree, tree.RootID); len(got) != 3 {
		t.Fatalf("expected 3 paragraphs, got %v", got)
	}
	want := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph.\n"
	if got := render(t, tree); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTextImporter_Empty(t *testing.T) {
	tree, err := (&TextImporter{}).Import(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := types(t, tree, tree.RootID); len(got) != 0 {
		t.Errorf("expected no blocks, got %v", got)
	}
}

func TestCSVImporter(t *testing.T) {
	input := "name,qty\napple,3\npear\n"
	tree, err := (&CSVImporter{}).Import(strings.NewReader(input), "stock.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "| name | qty |\n| --- | --- |\n| apple | 3 |\n| pear |  |\n"
	if got := render(t, tree); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHTMLImporter(t *testing.T) {
	input := `<html><head><title>Release Notes</title><style>p{}</style></head>
<body><nav>menu</nav><h1>Changes</h1><p>Now with <strong>speed</strong>.</p>
<ul><li>fast</li><li>small</li></ul><script>x()</script></body></html>`
	tree, err := (&HTMLImporter{}).Import(strings.NewReader(input), "notes.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "Release Notes" {
		t.Errorf("expected title from <title>, got %q", tree.Title)
	}
	got := render(t, tree)
	for _, want := range []string{"# Changes", "Now with **speed**.", "- fast", "- small"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output:\n%s", want, got)
		}
	}
	for _, unwanted := range []string{"menu", "x()"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("unexpected %q in output:\n%s", unwanted, got)
		}
	}
}

func TestDOCXImporter(t *testing.T) {
	d := docx.New().WithDefaultTheme()
	heading := d.AddParagraph()
	heading.AddText("Overview").Bold()
	heading.Style("Heading1")
	d.AddParagraph().AddText("Body text.")
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	tree, err := (&DOCXImporter{}).Import(&buf, "report.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "report" {
		t.Errorf("expected title %q, got %q", "report", tree.Title)
	}
	if diff := cmp.Diff([]string{"heading_1", "paragraph"}, types(t, tree, tree.RootID)); diff != "" {
		t.Errorf("block types mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotImporter(t *testing.T) {
	s := memstore.New()
	root := s.Add("", memstore.ChildPage("Saved Page"))
	s.Add(root, memstore.Paragraph(memstore.Text("kept")))
	snap, err := memstore.Dump(context.Background(), s, root)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	var buf bytes.Buffer
	if err := memstore.WriteSnapshot(&buf, snap); err != nil {
		t.Fatalf("write: %v", err)
	}

	tree, err := (&SnapshotImporter{}).Import(&buf, "page.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "Saved Page" || tree.RootID != root {
		t.Errorf("unexpected tree %+v", tree)
	}
	n, err := block.Fetch(context.Background(), tree.Store, nil, tree.RootID)
	if err != nil || !n.HasChildren() {
		t.Errorf("expected root with children, err=%v", err)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		wantErr  bool
	}{
		{"a.md", "*source.MarkdownImporter", false},
		{"a.MARKDOWN", "*source.MarkdownImporter", false},
		{"a.txt", "*source.TextImporter", false},
		{"a.csv", "*source.CSVImporter", false},
		{"a.htm", "*source.HTMLImporter", false},
		{"a.pdf", "*source.PDFImporter", false},
		{"a.docx", "*source.DOCXImporter", false},
		{"a.json", "*source.SnapshotImporter", false},
		{"a.exe", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			imp, err := ForFile(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				if IsSupportedExtension(tt.filename) {
					t.Error("expected extension to be unsupported")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := typeName(imp); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			if !IsSupportedExtension(tt.filename) {
				t.Error("expected extension to be supported")
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *MarkdownImporter:
		return "*source.MarkdownImporter"
	case *TextImporter:
		return "*source.TextImporter"
	case *CSVImporter:
		return "*source.CSVImporter"
	case *HTMLImporter:
		return "*source.HTMLImporter"
	case *PDFImporter:
		return "*source.PDFImporter"
	case *DOCXImporter:
		return "*source.DOCXImporter"
	case *SnapshotImporter:
		return "*source.SnapshotImporter"
	}
	return "?"
}
