// Package block wraps a content-store block payload with lazily fetched
// children and parent.
package block

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/blockmd/internal/payload"
)

// UnknownType is reported when a payload has no type field.
const UnknownType = "unknown"

// ErrNotFound is wrapped by stores when a block id does not exist.
var ErrNotFound = errors.New("block not found")

// Store is the read-only content store the tree is fetched from. ListChildren
// returns every child in document order; pagination is the store's concern.
type Store interface {
	Retrieve(ctx context.Context, id string) (map[string]any, error)
	ListChildren(ctx context.Context, id string) ([]map[string]any, error)
}

// Node is one block in the tree. Children and parent are fetched at most once
// and cached. A Node is not safe for concurrent use.
type Node struct {
	store Store
	log   *slog.Logger
	attrs map[string]any

	typ     string
	typSet  bool
	hasKids bool
	kidsSet bool

	children       []*Node
	childrenLoaded bool

	parent       *Node
	parentLoaded bool
}

// New builds a node from an already known payload.
func New(store Store, log *slog.Logger, attrs map[string]any) *Node {
	if log == nil {
		log = slog.Default()
	}
	if attrs == nil {
		attrs = map[string]any{}
	}
	return &Node{store: store, log: log, attrs: attrs}
}

// Fetch retrieves the payload for id and builds a node from it.
func Fetch(ctx context.Context, store Store, log *slog.Logger, id string) (*Node, error) {
	if store == nil {
		return nil, fmt.Errorf("fetch block %s: no store", id)
	}
	attrs, err := store.Retrieve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch block %s: %w", id, err)
	}
	return New(store, log, attrs), nil
}

func (n *Node) ID() string {
	return payload.String(n.attrs, "id")
}

// Attrs returns the raw payload.
func (n *Node) Attrs() map[string]any {
	return n.attrs
}

func (n *Node) Store() Store {
	return n.store
}

// Type returns the block type, or UnknownType with a warning when the payload
// carries none.
func (n *Node) Type() string {
	if n.typSet {
		return n.typ
	}
	n.typSet = true
	n.typ = payload.String(n.attrs, "type")
	if n.typ == "" {
		n.log.Warn("block has no type", "block_id", n.ID())
		n.typ = UnknownType
	}
	return n.typ
}

func (n *Node) HasChildren() bool {
	if !n.kidsSet {
		n.kidsSet = true
		n.hasKids = payload.Bool(n.attrs, "has_children")
	}
	return n.hasKids
}

// Children returns the child nodes in document order. Blocks that report no
// children return an empty list without contacting the store.
func (n *Node) Children(ctx context.Context) ([]*Node, error) {
	if !n.childrenLoaded {
		if err := n.loadChildren(ctx); err != nil {
			return nil, err
		}
	}
	return n.children, nil
}

func (n *Node) loadChildren(ctx context.Context) error {
	if !n.HasChildren() {
		n.children = []*Node{}
		n.childrenLoaded = true
		return nil
	}
	if n.store == nil {
		return fmt.Errorf("list children of %s: no store", n.ID())
	}
	raw, err := n.store.ListChildren(ctx, n.ID())
	if err != nil {
		return fmt.Errorf("list children of %s: %w", n.ID(), err)
	}
	kids := make([]*Node, 0, len(raw))
	for _, attrs := range raw {
		kids = append(kids, New(n.store, n.log, attrs))
	}
	n.children = kids
	n.childrenLoaded = true
	return nil
}

// Parent fetches and caches the parent block. It returns nil when the payload
// names no parent block id.
func (n *Node) Parent(ctx context.Context) (*Node, error) {
	if n.parentLoaded {
		return n.parent, nil
	}
	id := ParentID(n.attrs)
	if id == "" {
		n.parentLoaded = true
		return nil, nil
	}
	p, err := Fetch(ctx, n.store, n.log, id)
	if err != nil {
		return nil, err
	}
	n.parent = p
	n.parentLoaded = true
	return p, nil
}

// ParentID reads parent.<kind>_id, falling back to parent.id.
func ParentID(attrs map[string]any) string {
	parent := payload.Map(attrs, "parent")
	if parent == nil {
		return ""
	}
	if kind := payload.String(parent, "type"); kind != "" {
		if id := payload.String(parent, kind); id != "" {
			return id
		}
	}
	return payload.String(parent, "id")
}

// ChildTypes returns the set of types found among the children.
func (n *Node) ChildTypes(ctx context.Context) (map[string]bool, error) {
	kids, err := n.Children(ctx)
	if err != nil {
		return nil, err
	}
	types := make(map[string]bool, len(kids))
	for _, k := range kids {
		types[k.Type()] = true
	}
	return types, nil
}

// ChildrenOfType returns the children whose type is typ, in order.
func (n *Node) ChildrenOfType(ctx context.Context, typ string) ([]*Node, error) {
	kids, err := n.Children(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Node
	for _, k := range kids {
		if k.Type() == typ {
			out = append(out, k)
		}
	}
	return out, nil
}
