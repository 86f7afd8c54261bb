package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nathoo/clinicquest/engine/state"
	"github.com/nathoo/clinicquest/types"
)

// Compile-time assertion that MemStore satisfies the Store interface.
var _ Store = (*MemStore)(nil)

// MemStore is a thread-safe, in-memory implementation of [Store].
// It is suitable for single-process play and testing.
// The zero value is ready to use.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]*record
}

type record struct {
	mu sync.Mutex
	p  *types.Protagonist
}

// NewMemStore returns an initialised [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]*record)}
}

// Create implements [Store.Create].
func (s *MemStore) Create(ctx context.Context, p *types.Protagonist) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.records == nil {
		s.records = make(map[string]*record)
	}
	if _, exists := s.records[p.ID]; exists {
		return fmt.Errorf("%q: %w", p.ID, ErrDuplicateID)
	}
	s.records[p.ID] = &record{p: state.Clone(p)}
	return nil
}

// Get implements [Store.Get].
func (s *MemStore) Get(ctx context.Context, id string) (*types.Protagonist, error) {
	r, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return state.Clone(r.p), nil
}

// Update implements [Store.Update].
func (s *MemStore) Update(ctx context.Context, id string, fn UpdateFunc) error {
	r, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	draft := state.Clone(r.p)
	if err := fn(draft); err != nil {
		return err
	}
	r.p = draft
	return nil
}

// List implements [Store.List].
func (s *MemStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemStore) lookup(ctx context.Context, id string) (*record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("protagonist %q: %w", id, types.ErrNotFound)
	}
	return r, nil
}
