package memstore

import "fmt"

// Text builds a plain rich-text run.
func Text(s string) map[string]any {
	return map[string]any{
		"type":       "text",
		"text":       map[string]any{"content": s, "link": nil},
		"plain_text": s,
		"href":       nil,
	}
}

// Styled builds a rich-text run with annotations and an optional link.
func Styled(s string, bold, italic, strike, underline, code bool, href string) map[string]any {
	r := Text(s)
	r["annotations"] = map[string]any{
		"bold":          bold,
		"italic":        italic,
		"strikethrough": strike,
		"underline":     underline,
		"code":          code,
		"color":         "default",
	}
	if href != "" {
		r["href"] = href
		r["text"] = map[string]any{"content": s, "link": map[string]any{"url": href}}
	}
	return r
}

func runs(rs []map[string]any) []any {
	out := make([]any, len(rs))
	for i, r := range rs {
		out[i] = r
	}
	return out
}

func textBlock(typ string, rs []map[string]any) map[string]any {
	return map[string]any{
		"object": "block",
		"type":   typ,
		typ:      map[string]any{"rich_text": runs(rs), "color": "default"},
	}
}

func Paragraph(rs ...map[string]any) map[string]any { return textBlock("paragraph", rs) }
func Quote(rs ...map[string]any) map[string]any     { return textBlock("quote", rs) }
func Toggle(rs ...map[string]any) map[string]any    { return textBlock("toggle", rs) }

// Heading builds a heading_1, heading_2 or heading_3 block.
func Heading(level int, rs ...map[string]any) map[string]any {
	level = min(max(level, 1), 3)
	return textBlock(fmt.Sprintf("heading_%d", level), rs)
}

// ListItem builds a bulleted or numbered list item.
func ListItem(numbered bool, rs ...map[string]any) map[string]any {
	if numbered {
		return textBlock("numbered_list_item", rs)
	}
	return textBlock("bulleted_list_item", rs)
}

func Code(language, code string) map[string]any {
	b := textBlock("code", []map[string]any{Text(code)})
	body := b["code"].(map[string]any)
	body["language"] = language
	body["caption"] = []any{}
	return b
}

func Equation(expr string) map[string]any {
	return map[string]any{
		"object":   "block",
		"type":     "equation",
		"equation": map[string]any{"expression": expr},
	}
}

func Divider() map[string]any {
	return map[string]any{"object": "block", "type": "divider", "divider": map[string]any{}}
}

func Image(url string, caption ...map[string]any) map[string]any {
	return map[string]any{
		"object": "block",
		"type":   "image",
		"image": map[string]any{
			"type":    "file",
			"file":    map[string]any{"url": url},
			"caption": runs(caption),
		},
	}
}

func Bookmark(url string, caption ...map[string]any) map[string]any {
	return map[string]any{
		"object":   "block",
		"type":     "bookmark",
		"bookmark": map[string]any{"url": url, "caption": runs(caption)},
	}
}

func ChildPage(title string) map[string]any {
	return map[string]any{
		"object":     "block",
		"type":       "child_page",
		"child_page": map[string]any{"title": title},
	}
}

// Table builds a table block; rows are added as children with TableRow.
func Table(width int, hasHeader bool) map[string]any {
	return map[string]any{
		"object": "block",
		"type":   "table",
		"table": map[string]any{
			"table_width":       width,
			"has_column_header": hasHeader,
			"has_row_header":    false,
		},
	}
}

// TableRow builds a table_row whose cells hold one plain run each.
func TableRow(cells ...string) map[string]any {
	cs := make([]any, len(cells))
	for i, c := range cells {
		cs[i] = []any{Text(c)}
	}
	return map[string]any{
		"object":    "block",
		"type":      "table_row",
		"table_row": map[string]any{"cells": cs},
	}
}

func ColumnList() map[string]any {
	return map[string]any{"object": "block", "type": "column_list", "column_list": map[string]any{}}
}

func Column() map[string]any {
	return map[string]any{"object": "block", "type": "column", "column": map[string]any{}}
}

// TableRowRuns builds a table_row whose cells are rich-text run lists.
func TableRowRuns(cells ...[]map[string]any) map[string]any {
	cs := make([]any, len(cells))
	for i, c := range cells {
		cs[i] = runs(c)
	}
	return map[string]any{
		"object":    "block",
		"type":      "table_row",
		"table_row": map[string]any{"cells": cs},
	}
}
