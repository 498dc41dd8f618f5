// Package richtext renders Notion rich-text runs as inline Markdown.
package richtext

import (
	"regexp"
	"strings"

	"github.com/dgallion1/blockmd/internal/payload"
)

// Run types.
const (
	TypeText     = "text"
	TypeEquation = "equation"
)

// Annotations holds the style flags of a run.
type Annotations struct {
	Bold          bool
	Italic        bool
	Strikethrough bool
	Underline     bool
}

// Run is one styled span of inline text.
type Run struct {
	Type        string
	Content     string
	Annotations Annotations
	Href        string
}

// RunFromPayload decodes a rich-text object. Content is taken from
// plain_text, then from the type-specific object, so every run type (text,
// equation, mention, ...) carries usable content.
func RunFromPayload(m map[string]any) Run {
	typ := payload.StringOr(m, "type", TypeText)
	content, ok := m["plain_text"].(string)
	if !ok {
		body := payload.Map(m, typ)
		if typ == TypeEquation {
			content = payload.String(body, "expression")
		} else {
			content = payload.String(body, "content")
		}
	}
	ann := payload.Map(m, "annotations")
	href := payload.String(m, "href")
	if href == "" {
		href = payload.String(payload.Map(payload.Map(m, TypeText), "link"), "url")
	}
	return Run{
		Type:    typ,
		Content: content,
		Annotations: Annotations{
			Bold:          payload.Bool(ann, "bold"),
			Italic:        payload.Bool(ann, "italic"),
			Strikethrough: payload.Bool(ann, "strikethrough"),
			Underline:     payload.Bool(ann, "underline"),
		},
		Href: href,
	}
}

// RunsFromPayload decodes a single rich-text object or a list of them.
func RunsFromPayload(v any) []Run {
	maps := payload.Maps(v)
	runs := make([]Run, 0, len(maps))
	for _, m := range maps {
		runs = append(runs, RunFromPayload(m))
	}
	return runs
}

// Render converts one run to inline Markdown. Equations are never styled.
// Styles nest bold, italic, strikethrough, underline, with the link outermost.
func Render(r Run) string {
	if r.Type == TypeEquation {
		return "$" + r.Content + "$"
	}
	text := r.Content
	if r.Annotations.Bold {
		text = "**" + strings.TrimSpace(text) + "**"
	}
	if r.Annotations.Italic {
		text = "*" + strings.TrimSpace(text) + "*"
	}
	if r.Annotations.Strikethrough {
		text = "~~" + strings.TrimSpace(text) + "~~"
	}
	if r.Annotations.Underline {
		text = "<u>" + strings.TrimSpace(text) + "</u>"
	}
	if r.Href != "" {
		text = "[" + text + "](" + r.Href + ")"
	}
	return text
}

// RenderAll concatenates the rendered runs with no separator.
func RenderAll(runs []Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(Render(r))
	}
	return sb.String()
}

// RenderPayload decodes and renders a rich-text payload value.
func RenderPayload(v any) string {
	return RenderAll(RunsFromPayload(v))
}

// PlainAll concatenates the unstyled content of the runs.
func PlainAll(runs []Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Content)
	}
	return sb.String()
}

var edgeStars = regexp.MustCompile(`^\*+|\*+\s?$`)

// StripLink reduces "[text](url)" to "text". Strings without a link are
// returned unchanged.
func StripLink(s string) string {
	before, _, found := strings.Cut(s, "](")
	if !found {
		return s
	}
	if before == "" {
		return before
	}
	return before[1:]
}

// StripEmphasis removes a wrapping link and leading or trailing '*' runs.
func StripEmphasis(s string) string {
	return edgeStars.ReplaceAllString(StripLink(s), "")
}
