package convert

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/blockmd/internal/payload"
	"github.com/dgallion1/blockmd/internal/richtext"
)

// maxHeadingLevel caps shifted headings.
const maxHeadingLevel = 4

func richText(in Input) string {
	return richtext.RenderPayload(in.Body["rich_text"])
}

func paragraph(_ context.Context, in Input, _ Options) (Result, error) {
	return Result{Markdown: richText(in)}, nil
}

func quote(_ context.Context, in Input, _ Options) (Result, error) {
	return Result{Markdown: "> " + richText(in)}, nil
}

func bulleted(_ context.Context, in Input, _ Options) (Result, error) {
	return Result{Markdown: "- " + richText(in)}, nil
}

func numbered(_ context.Context, in Input, opts Options) (Result, error) {
	return Result{Markdown: strconv.Itoa(opts.Number) + ". " + richText(in)}, nil
}

func heading(_ context.Context, in Input, opts Options) (Result, error) {
	_, suffix, _ := strings.Cut(string(in.Kind), "_")
	base, err := strconv.Atoi(suffix)
	if err != nil {
		return Result{}, fmt.Errorf("block %q: heading level %q: %w", in.ID, suffix, ErrInvalidPayload)
	}
	level := min(base+opts.ShiftBy, maxHeadingLevel)
	level = max(level, 1)
	text := strings.TrimSpace(richtext.StripEmphasis(richText(in)))
	return Result{Markdown: strings.Repeat("#", level) + " " + text}, nil
}

func equation(_ context.Context, in Input, _ Options) (Result, error) {
	return Result{Markdown: "$$ " + payload.String(in.Body, "expression") + " $$"}, nil
}

func image(_ context.Context, in Input, _ Options) (Result, error) {
	url := payload.String(payload.Map(in.Body, "file"), "url")
	if url == "" {
		url = payload.String(payload.Map(in.Body, "external"), "url")
	}
	caption := richtext.RenderPayload(in.Body["caption"])
	return Result{Markdown: "![" + caption + "](" + url + ")"}, nil
}

func childPage(_ context.Context, in Input, opts Options) (Result, error) {
	title := payload.String(in.Body, "title")
	id := strings.ReplaceAll(in.ID, "-", "")
	base := strings.TrimRight(opts.PageURL, "/")
	return Result{
		Markdown: "# [" + title + "](" + base + "/" + id + ")",
		Name:     title,
	}, nil
}

func bookmark(_ context.Context, in Input, _ Options) (Result, error) {
	url := payload.String(in.Body, "url")
	caption := richtext.RenderPayload(in.Body["caption"])
	if caption == "" {
		caption = url
	}
	return Result{Markdown: "- [" + caption + "](" + url + ")"}, nil
}

func code(_ context.Context, in Input, _ Options) (Result, error) {
	lang := payload.StringOr(in.Body, "language", "plain text")
	src := richtext.PlainAll(richtext.RunsFromPayload(in.Body["rich_text"]))
	return Result{Markdown: "```" + lang + "\n" + src + "\n```"}, nil
}

func empty(context.Context, Input, Options) (Result, error) {
	return Result{}, nil
}

// table renders the table's row children. Without a node there are no rows
// to read and the fragment is empty.
func table(ctx context.Context, in Input, _ Options) (Result, error) {
	if in.Node == nil {
		return Result{}, nil
	}
	rows, err := in.Node.Children(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(rows) == 0 {
		return Result{}, nil
	}
	header := tableRow(rows[0].Attrs())
	cols := strings.Count(header, "|") - 1
	sep := make([]string, max(cols, 0))
	for i := range sep {
		sep[i] = "---"
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, header, "| "+strings.Join(sep, " | ")+" |")
	for _, r := range rows[1:] {
		lines = append(lines, tableRow(r.Attrs()))
	}
	return Result{Markdown: strings.Join(lines, "\n")}, nil
}

func tableRow(attrs map[string]any) string {
	cells := payload.List(payload.Map(attrs, string(TableRow)), "cells")
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = richtext.RenderPayload(c)
	}
	return "| " + strings.Join(out, " | ") + " |"
}
