// Package convert turns individual blocks into Markdown fragments.
//
// Each recognised block type maps to a Func in a fixed registry. A
// conversion runs as soon as it is requested; there is no deferred state.
// Payloads that lack a type, or lack the body object keyed by that type,
// fail validation with an error wrapping ErrInvalidPayload.
package convert

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgallion1/blockmd/internal/block"
	"github.com/dgallion1/blockmd/internal/payload"
)

// Kind is a block type tag.
type Kind string

const (
	Paragraph        Kind = "paragraph"
	Quote            Kind = "quote"
	BulletedListItem Kind = "bulleted_list_item"
	NumberedListItem Kind = "numbered_list_item"
	TableOfContents  Kind = "table_of_contents"
	Heading1         Kind = "heading_1"
	Heading2         Kind = "heading_2"
	Heading3         Kind = "heading_3"
	Equation         Kind = "equation"
	Image            Kind = "image"
	ChildPage        Kind = "child_page"
	Bookmark         Kind = "bookmark"
	Code             Kind = "code"
	Toggle           Kind = "toggle"
	Divider          Kind = "divider"
	ColumnList       Kind = "column_list"
	Column           Kind = "column"
	Table            Kind = "table"
	TableRow         Kind = "table_row"
)

// IsList reports whether k is a list item kind.
func (k Kind) IsList() bool {
	return k == BulletedListItem || k == NumberedListItem
}

// DefaultPageURL is the base for child page links.
const DefaultPageURL = "https://www.notion.so"

var (
	ErrInvalidPayload = errors.New("invalid block payload")
	ErrMissingType    = fmt.Errorf("%w: missing type", ErrInvalidPayload)
	ErrMissingBody    = fmt.Errorf("%w: missing type body", ErrInvalidPayload)
)

// Options are per-conversion overrides supplied by the walker.
type Options struct {
	// Number is the ordinal for numbered list items. Values below 1 mean 1.
	Number int
	// ShiftBy is added to a heading's level.
	ShiftBy int
	// PageURL is the base for child page links.
	PageURL string
}

func DefaultOptions() Options {
	return Options{Number: 1, ShiftBy: 1, PageURL: DefaultPageURL}
}

func (o Options) normalize() Options {
	if o.Number < 1 {
		o.Number = 1
	}
	if o.PageURL == "" {
		o.PageURL = DefaultPageURL
	}
	return o
}

// Result is a converted fragment. Name is set for page-like blocks.
type Result struct {
	Markdown string
	Name     string
}

// Input is what a Func sees: the validated payload and, when the block came
// from a tree, its node. Node is nil for raw payloads.
type Input struct {
	Kind  Kind
	ID    string
	Attrs map[string]any
	Body  map[string]any
	Node  *block.Node
}

// Func converts one block.
type Func func(ctx context.Context, in Input, opts Options) (Result, error)

// FromNode converts a tree node. Blocks that derive their output from
// children, such as tables, read them through the node.
func FromNode(ctx context.Context, n *block.Node, opts Options) (Result, error) {
	in, err := validate(n.Attrs())
	if err != nil {
		return Result{}, err
	}
	in.Node = n
	return run(ctx, in, opts)
}

// FromPayload converts a raw payload with no store behind it.
func FromPayload(ctx context.Context, attrs map[string]any, opts Options) (Result, error) {
	in, err := validate(attrs)
	if err != nil {
		return Result{}, err
	}
	return run(ctx, in, opts)
}

func run(ctx context.Context, in Input, opts Options) (Result, error) {
	fn, ok := Lookup(string(in.Kind))
	if !ok {
		return Result{}, &UnknownKindError{Kind: string(in.Kind)}
	}
	return fn(ctx, in, opts.normalize())
}

func validate(attrs map[string]any) (Input, error) {
	id := payload.String(attrs, "id")
	typ := payload.String(attrs, "type")
	if typ == "" {
		return Input{}, fmt.Errorf("block %q: %w", id, ErrMissingType)
	}
	body := payload.Map(attrs, typ)
	if body == nil {
		return Input{}, fmt.Errorf("block %q (%s): %w", id, typ, ErrMissingBody)
	}
	return Input{Kind: Kind(typ), ID: id, Attrs: attrs, Body: body}, nil
}

// UnknownKindError is returned when no converter is registered for a kind.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("no converter for block type %q", e.Kind)
}
