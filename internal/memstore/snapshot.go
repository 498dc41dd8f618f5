package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/blockmd/internal/block"
	"github.com/dgallion1/blockmd/internal/payload"
)

// Snapshot is a block payload together with its children, recursively.
type Snapshot struct {
	Block    map[string]any `json:"block"`
	Children []*Snapshot    `json:"children,omitempty"`
}

// Dump captures the subtree rooted at id from any store.
func Dump(ctx context.Context, store block.Store, id string) (*Snapshot, error) {
	attrs, err := store.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}
	return dumpChildren(ctx, store, attrs)
}

func dumpChildren(ctx context.Context, store block.Store, attrs map[string]any) (*Snapshot, error) {
	snap := &Snapshot{Block: attrs}
	if !payload.Bool(attrs, "has_children") {
		return snap, nil
	}
	kids, err := store.ListChildren(ctx, payload.String(attrs, "id"))
	if err != nil {
		return nil, err
	}
	for _, k := range kids {
		child, err := dumpChildren(ctx, store, k)
		if err != nil {
			return nil, err
		}
		snap.Children = append(snap.Children, child)
	}
	return snap, nil
}

// Load rebuilds a store from a snapshot and returns the root id.
func Load(snap *Snapshot) (*Store, string, error) {
	if snap == nil || snap.Block == nil {
		return nil, "", fmt.Errorf("empty snapshot")
	}
	s := New()
	root := s.addSnapshot("", snap)
	return s, root, nil
}

func (s *Store) addSnapshot(parentID string, snap *Snapshot) string {
	id := s.Add(parentID, snap.Block)
	for _, c := range snap.Children {
		if c == nil || c.Block == nil {
			continue
		}
		s.addSnapshot(id, c)
	}
	return id
}

// ReadSnapshot decodes a JSON snapshot and loads it into a new store.
func ReadSnapshot(r io.Reader) (*Store, string, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, "", fmt.Errorf("decode snapshot: %w", err)
	}
	return Load(&snap)
}

// WriteSnapshot encodes snap as indented JSON.
func WriteSnapshot(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
