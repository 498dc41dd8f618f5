// Package walker renders a block tree into one Markdown string.
package walker

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dgallion1/blockmd/internal/block"
	"github.com/dgallion1/blockmd/internal/convert"
)

const (
	DefaultMaxDepth     = 5
	DefaultHeadingShift = 1

	indentUnit = "    "
)

// Stats counts what a walk did with the blocks it visited.
type Stats struct {
	Visited  int `json:"visited"`
	Rendered int `json:"rendered"`
	Skipped  int `json:"skipped"`
	Unknown  int `json:"unknown"`
	DepthCut int `json:"depth_cut"`
}

// Walker traverses a tree depth-first, pre-order. The zero value is not
// ready for use; build one with New.
type Walker struct {
	MaxDepth     int
	HeadingShift int
	// NumberLists numbers consecutive numbered_list_item siblings 1, 2, 3...
	// When false every item is rendered as "1.".
	NumberLists bool
	PageURL     string

	log *slog.Logger
}

func New(log *slog.Logger) *Walker {
	if log == nil {
		log = slog.Default()
	}
	return &Walker{
		MaxDepth:     DefaultMaxDepth,
		HeadingShift: DefaultHeadingShift,
		PageURL:      convert.DefaultPageURL,
		log:          log.With("component", "walker"),
	}
}

// Result is the raw output of one walk.
type Result struct {
	Markdown string
	// Title is the name of the first page-like block rendered.
	Title string
	Stats Stats
}

type walk struct {
	w     *Walker
	sb    strings.Builder
	title string
	stats Stats
}

// Walk renders root and its descendants. Validation and store errors abort
// the walk. Unknown block types and subtrees past MaxDepth are skipped with
// a warning.
func (w *Walker) Walk(ctx context.Context, root *block.Node) (*Result, error) {
	st := &walk{w: w}
	if err := st.visit(ctx, root, 0, 0, 1); err != nil {
		return nil, err
	}
	return &Result{Markdown: st.sb.String(), Title: st.title, Stats: st.stats}, nil
}

func (st *walk) visit(ctx context.Context, n *block.Node, depth, nesting, ordinal int) error {
	if depth > st.w.MaxDepth {
		st.stats.DepthCut++
		st.w.log.Warn("max depth reached, skipping subtree",
			"block_id", n.ID(), "type", n.Type(), "depth", depth, "max_depth", st.w.MaxDepth)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	st.stats.Visited++

	if err := st.render(ctx, n, nesting, ordinal); err != nil {
		return err
	}
	if !n.HasChildren() {
		return nil
	}

	kids, err := n.Children(ctx)
	if err != nil {
		return err
	}
	if len(kids) == 0 {
		return nil
	}
	kind := convert.Kind(n.Type())
	if kids[0].Type() == string(kind) && kind.IsList() {
		nesting++
	}

	next := 0
	for _, k := range kids {
		if k.Type() == string(convert.NumberedListItem) {
			next++
		} else {
			next = 0
		}
		if err := st.visit(ctx, k, depth+1, nesting, max(next, 1)); err != nil {
			return err
		}
	}
	return nil
}

func (st *walk) render(ctx context.Context, n *block.Node, nesting, ordinal int) error {
	typ := n.Type()
	if convert.Excluded(typ) {
		st.stats.Skipped++
		st.w.log.Debug("ignoring block type", "type", typ, "block_id", n.ID())
		return nil
	}
	if _, ok := convert.Lookup(typ); !ok {
		st.stats.Unknown++
		st.w.log.Warn("no converter for block type", "type", typ, "block_id", n.ID())
		return nil
	}

	opts := convert.Options{Number: 1, ShiftBy: st.w.HeadingShift, PageURL: st.w.PageURL}
	if st.w.NumberLists {
		opts.Number = ordinal
	}
	res, err := convert.FromNode(ctx, n, opts)
	if err != nil {
		var uk *convert.UnknownKindError
		if errors.As(err, &uk) {
			st.stats.Unknown++
			return nil
		}
		return err
	}
	if typ == string(convert.ChildPage) {
		st.w.log.Info("parsing child page", "title", res.Name, "block_id", n.ID())
		if st.title == "" {
			st.title = res.Name
		}
	}
	st.stats.Rendered++
	st.sb.WriteString(strings.Repeat(indentUnit, nesting))
	st.sb.WriteString(res.Markdown)
	st.sb.WriteString("\n\n")
	return nil
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Clean collapses runs of three or more newlines to two, trims surrounding
// whitespace and ends the text with exactly one newline.
func Clean(text string) string {
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text) + "\n"
}
