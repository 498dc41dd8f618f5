// Package toc builds a table of contents from finished Markdown.
package toc

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dgallion1/blockmd/internal/richtext"
)

// Heading is one heading line found in a document.
type Heading struct {
	Level   int    `json:"level"`
	Title   string `json:"title"`
	Display string `json:"display"`
	Anchor  string `json:"anchor"`
}

var lower = cases.Lower(language.Und)

// Headings scans lines that start with '#'. The level is the length of the
// text before the first space. Anchors are not de-duplicated.
func Headings(markdown string) []Heading {
	var out []Heading
	for _, line := range strings.Split(markdown, "\n") {
		if !strings.HasPrefix(line, "#") {
			continue
		}
		marker, _, _ := strings.Cut(line, " ")
		title := strings.TrimSpace(strings.ReplaceAll(line, "#", ""))
		display := richtext.StripEmphasis(title)
		out = append(out, Heading{
			Level:   len(marker),
			Title:   title,
			Display: display,
			Anchor:  Anchor(display),
		})
	}
	return out
}

// Anchor lowercases s and replaces spaces with hyphens.
func Anchor(s string) string {
	return strings.ReplaceAll(lower.String(s), " ", "-")
}

// Build returns one indented bullet per heading, or "" when there are none.
func Build(markdown string) string {
	var sb strings.Builder
	for _, h := range Headings(markdown) {
		sb.WriteString(strings.Repeat("    ", max(h.Level-1, 0)))
		sb.WriteString("- [")
		sb.WriteString(h.Display)
		sb.WriteString("](#")
		sb.WriteString(h.Anchor)
		sb.WriteString(")\n")
	}
	return sb.String()
}
