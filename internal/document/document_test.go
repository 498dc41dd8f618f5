package document

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dgallion1/blockmd/internal/block"
	"github.com/dgallion1/blockmd/internal/memstore"
	"github.com/dgallion1/blockmd/internal/walker"
)

func buildPage(t *testing.T) (*block.Node, string) {
	t.Helper()
	s := memstore.New()
	root := s.Add("", memstore.ChildPage("Guide"))
	s.Add(root, memstore.Heading(1, memstore.Text("Intro")))
	s.Add(root, memstore.Paragraph(memstore.Text("Hello.")))
	s.Add(root, memstore.Divider())
	s.Add(root, memstore.Heading(2, memstore.Text("Details")))

	n, err := block.Fetch(context.Background(), s, nil, root)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	return n, strings.ReplaceAll(root, "-", "")
}

func TestAssemble_WithTOC(t *testing.T) {
	root, compact := buildPage(t)
	a := NewAssembler(walker.New(nil), true, nil)

	doc, err := a.Assemble(context.Background(), root)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	want := "- [Guide](#guide)\n" +
		"    - [Intro](#intro)\n" +
		"        - [Details](#details)\n" +
		"\n" +
		"# [Guide](https://www.notion.so/" + compact + ")\n\n" +
		"## Intro\n\n" +
		"Hello.\n\n" +
		"### Details\n"
	if diff := cmp.Diff(want, doc.Markdown); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
	if doc.Title != "Guide" {
		t.Errorf("expected title %q, got %q", "Guide", doc.Title)
	}
	if doc.Hash != ContentHashHex([]byte(doc.Markdown)) {
		t.Error("hash does not match markdown")
	}
}

func TestAssemble_WithoutTOC(t *testing.T) {
	root, _ := buildPage(t)
	doc, err := NewAssembler(walker.New(nil), false, nil).Assemble(context.Background(), root)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !strings.HasPrefix(doc.Markdown, "# [Guide]") {
		t.Errorf("expected body to start with page heading, got %q", doc.Markdown)
	}
	if !strings.HasSuffix(doc.Markdown, "### Details\n") {
		t.Errorf("expected single trailing newline, got %q", doc.Markdown)
	}
}

func TestAssemble_EmptyTOCNotPrepended(t *testing.T) {
	s := memstore.New()
	root := s.Add("", memstore.Paragraph(memstore.Text("no headings")))
	n, _ := block.Fetch(context.Background(), s, nil, root)

	doc, err := NewAssembler(nil, true, nil).Assemble(context.Background(), n)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if doc.Markdown != "no headings\n" {
		t.Errorf("got %q", doc.Markdown)
	}
}

func TestSave_Atomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "page.md")

	if err := Save(path, []byte("first\n")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := Save(path, []byte("second ✓\n")); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "second ✓\n" {
		t.Errorf("got %q", got)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the output file, found %d entries", len(entries))
	}
}

func TestContentHashHex(t *testing.T) {
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got := ContentHashHex([]byte("hello world")); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
