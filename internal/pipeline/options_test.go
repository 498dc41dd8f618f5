package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/dgallion1/blockmd/internal/config"
	"github.com/dgallion1/blockmd/internal/export"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Getting Started", "getting-started"},
		{"  Q&A: Notes!  ", "q-a-notes"},
		{"***", ""},
		{"already-slugged", "already-slugged"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	id := "1c2d3e4f-0000-4000-8000-000000000001"
	tests := []struct {
		name   string
		title  string
		format export.Format
		want   string
	}{
		{"title", "Team Wiki", export.Markdown, filepath.Join("out", "team-wiki.md")},
		{"pdf", "Team Wiki", export.PDF, filepath.Join("out", "team-wiki.pdf")},
		{"no title", "", export.HTML, filepath.Join("out", "1c2d3e4f000040008000000000000001.html")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputPath("out", tt.title, id, tt.format); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPageOutputPath(t *testing.T) {
	id := "1c2d3e4f-0000-4000-8000-000000000001"
	compact := "1c2d3e4f000040008000000000000001"
	tests := []struct {
		name   string
		title  string
		pageID string
		want   string
	}{
		{"title and id", "Team Wiki", id, filepath.Join("out", "team-wiki-"+compact+".md")},
		{"no title", "", id, filepath.Join("out", compact+".md")},
		{"nothing", "", "", filepath.Join("out", "page.md")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PageOutputPath("out", tt.title, tt.pageID, export.Markdown); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.NumberLists = true
	opts := OptionsFromConfig(cfg)
	if opts.Format != export.Markdown || !opts.AddTOC || opts.MaxDepth != 5 || opts.HeadingShift != 1 || !opts.NumberLists {
		t.Errorf("unexpected options %+v", opts)
	}
	w := opts.Walker(nil)
	if w.MaxDepth != 5 || w.HeadingShift != 1 || !w.NumberLists || w.PageURL != cfg.NotionPageURL {
		t.Errorf("walker not configured from options: %+v", w)
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"valid", Options{Format: export.HTML, MaxDepth: 3}, false},
		{"missing format", Options{}, true},
		{"bad format", Options{Format: "rtf"}, true},
		{"negative depth", Options{Format: export.Markdown, MaxDepth: -1}, true},
		{"negative shift", Options{Format: export.Markdown, HeadingShift: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
