package pipeline

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dgallion1/blockmd/internal/config"
	"github.com/dgallion1/blockmd/internal/export"
	"github.com/dgallion1/blockmd/internal/notion"
	"github.com/dgallion1/blockmd/internal/walker"
)

// Options controls one conversion.
type Options struct {
	Format       export.Format `json:"format"`
	AddTOC       bool          `json:"add_toc"`
	MaxDepth     int           `json:"max_depth"`
	HeadingShift int           `json:"heading_shift"`
	NumberLists  bool          `json:"number_lists"`
	PageURL      string        `json:"page_url,omitempty"`
	// Force rewrites output even when the manifest says it is unchanged.
	Force bool `json:"force"`
}

// OptionsFromConfig returns the conversion defaults configured for the service.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Format:       export.Markdown,
		AddTOC:       cfg.AddTOC,
		MaxDepth:     cfg.MaxDepth,
		HeadingShift: cfg.HeadingShift,
		NumberLists:  cfg.NumberLists,
		PageURL:      cfg.NotionPageURL,
	}
}

func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Format, validation.Required, validation.In(export.Markdown, export.HTML, export.DOCX, export.PDF)),
		validation.Field(&o.MaxDepth, validation.Min(0)),
		validation.Field(&o.HeadingShift, validation.Min(0)),
	)
}

// Walker builds a tree walker configured by o.
func (o Options) Walker(log *slog.Logger) *walker.Walker {
	w := walker.New(log)
	w.MaxDepth = o.MaxDepth
	w.HeadingShift = o.HeadingShift
	w.NumberLists = o.NumberLists
	if o.PageURL != "" {
		w.PageURL = o.PageURL
	}
	return w
}

const maxSlugLen = 80

var (
	nonSlug = regexp.MustCompile(`[^a-z0-9-]`)
	dashRun = regexp.MustCompile(`-+`)
)

// Slugify converts a title to a path-safe file name stem.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	s = dashRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	return s
}

// OutputPath returns dir/<slug(title)>.<ext>, falling back to the compact
// page id when the title has no usable characters.
func OutputPath(dir, title, pageID string, f export.Format) string {
	stem := Slugify(title)
	if stem == "" {
		stem = notion.CompactID(pageID)
	}
	if stem == "" {
		stem = "page"
	}
	return filepath.Join(dir, stem+f.Extension())
}

// PageOutputPath is OutputPath with the compact page id appended to the
// stem. Pages whose titles slug to the same name are written here.
func PageOutputPath(dir, title, pageID string, f export.Format) string {
	stem := Slugify(title)
	id := notion.CompactID(pageID)
	switch {
	case stem == "" && id == "":
		stem = "page"
	case stem == "":
		stem = id
	case id != "":
		stem += "-" + id
	}
	return filepath.Join(dir, stem+f.Extension())
}
