// Package memstore is an in-memory content store. Documents imported from
// local files are built into one, and tests use it in place of the Notion API.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/dgallion1/blockmd/internal/block"
)

var ErrNotFound = block.ErrNotFound

// Calls counts store accesses.
type Calls struct {
	Retrieve     int
	ListChildren int
}

type Store struct {
	mu       sync.RWMutex
	blocks   map[string]map[string]any
	children map[string][]string
	calls    Calls
}

func New() *Store {
	return &Store{
		blocks:   make(map[string]map[string]any),
		children: make(map[string][]string),
	}
}

// NewID returns a fresh block identifier in dashed UUID form.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Add stores p under parentID and returns its id. An id is assigned when p
// has none. The parent's has_children flag is set and p's parent reference
// is filled in. An empty parentID adds a root block.
func (s *Store) Add(parentID string, p map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := p["id"].(string)
	if id == "" {
		id = NewID()
		p["id"] = id
	}
	if _, ok := p["has_children"]; !ok {
		p["has_children"] = false
	}
	if parentID != "" {
		if _, ok := p["parent"]; !ok {
			p["parent"] = map[string]any{"type": "block_id", "block_id": parentID}
		}
		s.children[parentID] = append(s.children[parentID], id)
		if parent, ok := s.blocks[parentID]; ok {
			parent["has_children"] = true
		}
	}
	if len(s.children[id]) > 0 {
		p["has_children"] = true
	}
	s.blocks[id] = p
	return id
}

func (s *Store) Retrieve(_ context.Context, id string) (map[string]any, error) {
	s.mu.Lock()
	s.calls.Retrieve++
	b, ok := s.blocks[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("retrieve %s: %w", id, ErrNotFound)
	}
	return maps.Clone(b), nil
}

func (s *Store) ListChildren(_ context.Context, id string) ([]map[string]any, error) {
	s.mu.Lock()
	s.calls.ListChildren++
	ids := s.children[id]
	_, known := s.blocks[id]
	out := make([]map[string]any, 0, len(ids))
	for _, cid := range ids {
		out = append(out, maps.Clone(s.blocks[cid]))
	}
	s.mu.Unlock()
	if !known && len(ids) == 0 {
		return nil, fmt.Errorf("list children of %s: %w", id, ErrNotFound)
	}
	return out, nil
}

// Calls returns a copy of the access counters.
func (s *Store) Calls() Calls {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}

// Len returns the number of stored blocks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blocks)
}
