package walker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dgallion1/blockmd/internal/block"
	"github.com/dgallion1/blockmd/internal/convert"
	"github.com/dgallion1/blockmd/internal/memstore"
)

func walkTree(t *testing.T, w *Walker, s *memstore.Store, root string) *Result {
	t.Helper()
	ctx := context.Background()
	n, err := block.Fetch(ctx, s, nil, root)
	if err != nil {
		t.Fatalf("fetch root: %v", err)
	}
	res, err := w.Walk(ctx, n)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return res
}

func TestWalk_NestedLists(t *testing.T) {
	s := memstore.New()
	root := s.Add("", memstore.ChildPage("Doc"))
	a := s.Add(root, memstore.ListItem(false, memstore.Text("a")))
	a1 := s.Add(a, memstore.ListItem(false, memstore.Text("a1")))
	s.Add(a1, memstore.ListItem(false, memstore.Text("a1x")))
	s.Add(root, memstore.Paragraph(memstore.Text("after")))

	res := walkTree(t, New(nil), s, root)

	want := fmt.Sprintf("# [Doc](https://www.notion.so/%s)\n\n", strings.ReplaceAll(root, "-", "")) +
		"- a\n\n" +
		"    - a1\n\n" +
		"        - a1x\n\n" +
		"after\n\n"
	if diff := cmp.Diff(want, res.Markdown); diff != "" {
		t.Errorf("markdown mismatch (-want +got):\n%s", diff)
	}
	if res.Title != "Doc" {
		t.Errorf("expected title %q, got %q", "Doc", res.Title)
	}
	if res.Stats.Rendered != 5 {
		t.Errorf("expected 5 rendered blocks, got %d", res.Stats.Rendered)
	}
}

func TestWalk_NestingOnlyForSameListKind(t *testing.T) {
	s := memstore.New()
	root := s.Add("", memstore.Toggle(memstore.Text("t")))
	item := s.Add(root, memstore.ListItem(false, memstore.Text("bullet")))
	s.Add(item, memstore.ListItem(true, memstore.Text("numbered child")))
	// A toggle whose first child is a toggle does not indent.
	inner := s.Add(root, memstore.Toggle(memstore.Text("t2")))
	s.Add(inner, memstore.Toggle(memstore.Text("t3")))

	res := walkTree(t, New(nil), s, root)
	want := "t\n\n- bullet\n\n1. numbered child\n\nt2\n\nt3\n\n"
	if diff := cmp.Diff(want, res.Markdown); diff != "" {
		t.Errorf("markdown mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_DepthLimit(t *testing.T) {
	const depth = 8
	s := memstore.New()
	parent := s.Add("", memstore.Toggle(memstore.Text("d0")))
	root := parent
	for i := 1; i <= depth; i++ {
		parent = s.Add(parent, memstore.Toggle(memstore.Text(fmt.Sprintf("d%d", i))))
	}

	for _, limit := range []int{0, 2, 5} {
		t.Run(fmt.Sprintf("limit %d", limit), func(t *testing.T) {
			var buf bytes.Buffer
			w := New(slog.New(slog.NewTextHandler(&buf, nil)))
			w.MaxDepth = limit
			res := walkTree(t, w, s, root)

			for i := 0; i <= depth; i++ {
				frag := fmt.Sprintf("d%d\n", i)
				has := strings.Contains(res.Markdown, frag)
				if i <= limit && !has {
					t.Errorf("expected fragment from depth %d", i)
				}
				if i > limit && has {
					t.Errorf("unexpected fragment from depth %d", i)
				}
			}
			if res.Stats.DepthCut != 1 {
				t.Errorf("expected 1 depth cut, got %d", res.Stats.DepthCut)
			}
			if !strings.Contains(buf.String(), "max depth reached") {
				t.Error("expected a max depth warning")
			}
		})
	}
}

func TestWalk_UnknownTypeWarnsAndContinues(t *testing.T) {
	s := memstore.New()
	root := s.Add("", memstore.Toggle(memstore.Text("start")))
	s.Add(root, memstore.Paragraph(memstore.Text("before")))
	s.Add(root, map[string]any{"type": "synced_block", "synced_block": map[string]any{}})
	s.Add(root, memstore.Paragraph(memstore.Text("after")))

	var buf bytes.Buffer
	w := New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	res := walkTree(t, w, s, root)

	if want := "start\n\nbefore\n\nafter\n\n"; res.Markdown != want {
		t.Errorf("got %q, want %q", res.Markdown, want)
	}
	if c := strings.Count(buf.String(), "level=WARN"); c != 1 {
		t.Errorf("expected exactly one warning, got %d:\n%s", c, buf.String())
	}
	if !strings.Contains(buf.String(), "synced_block") {
		t.Error("expected warning to name the block type")
	}
	if res.Stats.Unknown != 1 {
		t.Errorf("expected 1 unknown block, got %d", res.Stats.Unknown)
	}
}

func TestWalk_MissingTypeSkipped(t *testing.T) {
	s := memstore.New()
	root := s.Add("", memstore.Toggle(memstore.Text("start")))
	s.Add(root, map[string]any{"object": "block"})
	s.Add(root, memstore.Paragraph(memstore.Text("end")))

	res := walkTree(t, New(nil), s, root)
	if want := "start\n\nend\n\n"; res.Markdown != want {
		t.Errorf("got %q, want %q", res.Markdown, want)
	}
}

func TestWalk_TablesAndColumns(t *testing.T) {
	s := memstore.New()
	root := s.Add("", memstore.Toggle(memstore.Text("page")))
	tbl := s.Add(root, memstore.Table(2, true))
	s.Add(tbl, memstore.TableRow("A", "B"))
	s.Add(tbl, memstore.TableRow("1", "2"))
	cols := s.Add(root, memstore.ColumnList())
	left := s.Add(cols, memstore.Column())
	s.Add(left, memstore.Paragraph(memstore.Text("left")))
	right := s.Add(cols, memstore.Column())
	s.Add(right, memstore.Paragraph(memstore.Text("right")))

	res := walkTree(t, New(nil), s, root)
	want := "page\n\n| A | B |\n| --- | --- |\n| 1 | 2 |\n\n\n\nleft\n\nright\n\n"
	if diff := cmp.Diff(want, res.Markdown); diff != "" {
		t.Errorf("markdown mismatch (-want +got):\n%s", diff)
	}
	if res.Stats.Skipped != 4 {
		t.Errorf("expected 4 skipped blocks (2 rows, 2 columns), got %d", res.Stats.Skipped)
	}

	cleaned := Clean(res.Markdown)
	if strings.Contains(cleaned, "\n\n\n") {
		t.Errorf("expected blank runs collapsed, got %q", cleaned)
	}
}

func TestWalk_NumberLists(t *testing.T) {
	build := func() (*memstore.Store, string) {
		s := memstore.New()
		root := s.Add("", memstore.Toggle(memstore.Text("list")))
		for _, txt := range []string{"one", "two", "three"} {
			s.Add(root, memstore.ListItem(true, memstore.Text(txt)))
		}
		s.Add(root, memstore.Paragraph(memstore.Text("break")))
		s.Add(root, memstore.ListItem(true, memstore.Text("again")))
		return s, root
	}

	s, root := build()
	res := walkTree(t, New(nil), s, root)
	if want := "list\n\n1. one\n\n1. two\n\n1. three\n\nbreak\n\n1. again\n\n"; res.Markdown != want {
		t.Errorf("default numbering: got %q", res.Markdown)
	}

	s, root = build()
	w := New(nil)
	w.NumberLists = true
	res = walkTree(t, w, s, root)
	if want := "list\n\n1. one\n\n2. two\n\n3. three\n\nbreak\n\n1. again\n\n"; res.Markdown != want {
		t.Errorf("running numbering: got %q", res.Markdown)
	}
}

func TestWalk_HeadingShift(t *testing.T) {
	s := memstore.New()
	root := s.Add("", memstore.Toggle(memstore.Text("p")))
	s.Add(root, memstore.Heading(1, memstore.Text("H")))

	w := New(nil)
	w.HeadingShift = 0
	res := walkTree(t, w, s, root)
	if want := "p\n\n# H\n\n"; res.Markdown != want {
		t.Errorf("got %q, want %q", res.Markdown, want)
	}
}

type failingStore struct{ *memstore.Store }

func (f failingStore) ListChildren(context.Context, string) ([]map[string]any, error) {
	return nil, errors.New("boom")
}

func TestWalk_StoreErrorAborts(t *testing.T) {
	s := memstore.New()
	root := s.Add("", memstore.Toggle(memstore.Text("p")))
	s.Add(root, memstore.Paragraph(memstore.Text("x")))

	ctx := context.Background()
	n, err := block.Fetch(ctx, failingStore{s}, nil, root)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := New(nil).Walk(ctx, n); err == nil {
		t.Error("expected store error to abort the walk")
	}
}

func TestWalk_ValidationErrorAborts(t *testing.T) {
	n := block.New(nil, nil, map[string]any{"type": "paragraph"})
	_, err := New(nil).Walk(context.Background(), n)
	if !errors.Is(err, convert.ErrMissingBody) {
		t.Errorf("expected ErrMissingBody, got %v", err)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "\n"},
		{"\n\n# A\n\n\n\nB\n\n", "# A\n\nB\n"},
		{"a\n\n\n\n\n\nb", "a\n\nb\n"},
		{"   x   ", "x\n"},
	}
	for _, tt := range tests {
		got := Clean(tt.in)
		if got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := Clean(got); again != got {
			t.Errorf("Clean not idempotent for %q: %q then %q", tt.in, got, again)
		}
	}
}
