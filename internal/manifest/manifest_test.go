package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndLookup(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	e, err := s.Lookup(ctx, "page-1")
	if err != nil || e != nil {
		t.Fatalf("expected no entry, got %v, %v", e, err)
	}

	at := time.UnixMilli(1_700_000_000_000)
	if err := s.Record(ctx, Entry{PageID: "page-1", Title: "One", OutputPath: "/tmp/one.md", ContentHash: "h1", ConvertedAt: at}); err != nil {
		t.Fatalf("record: %v", err)
	}
	e, err = s.Lookup(ctx, "page-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if e.Title != "One" || e.ContentHash != "h1" || e.Format != "md" || !e.ConvertedAt.Equal(at) {
		t.Errorf("unexpected entry %+v", e)
	}

	if err := s.Record(ctx, Entry{PageID: "page-1", Title: "One v2", OutputPath: "/tmp/one.html", ContentHash: "h2", Format: "html"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	e, _ = s.Lookup(ctx, "page-1")
	if e.Title != "One v2" || e.ContentHash != "h2" || e.Format != "html" {
		t.Errorf("expected upserted entry, got %+v", e)
	}
}

func TestList(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)
	for i, id := range []string{"a", "b", "c"} {
		err := s.Record(ctx, Entry{PageID: id, OutputPath: id + ".md", ContentHash: id, ConvertedAt: base.Add(time.Duration(i) * time.Minute)})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	entries, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].PageID != "c" || entries[1].PageID != "b" {
		t.Errorf("expected most recent first, got %+v", entries)
	}
}

func TestUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.md")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := &Entry{PageID: "p", OutputPath: path, ContentHash: "h", Format: "md"}

	tests := []struct {
		name   string
		entry  *Entry
		hash   string
		path   string
		format string
		want   bool
	}{
		{"same", e, "h", path, "md", true},
		{"no entry", nil, "h", path, "md", false},
		{"hash changed", e, "h2", path, "md", false},
		{"format changed", e, "h", path, "html", false},
		{"other path", e, "h", filepath.Join(dir, "other.md"), "md", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unchanged(tt.entry, tt.hash, tt.path, tt.format); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	os.Remove(path)
	if Unchanged(e, "h", path, "md") {
		t.Error("expected missing output file to count as changed")
	}
}

func TestOwner(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	owner, err := s.Owner(ctx, "out/notes.md")
	if err != nil || owner != "" {
		t.Fatalf("expected no owner, got %q, %v", owner, err)
	}
	if err := s.Record(ctx, Entry{PageID: "a", OutputPath: "out/notes.md", ContentHash: "h"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(ctx, Entry{PageID: "b", OutputPath: "out/notes-b.md", ContentHash: "h"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	tests := []struct {
		path, want string
	}{
		{"out/notes.md", "a"},
		{"out/notes-b.md", "b"},
		{"out/other.md", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := s.Owner(ctx, tt.path)
			if err != nil {
				t.Fatalf("owner: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blockmd.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected database file: %v", err)
	}
}
