package store

import (
	"context"
	"sync"
)

// MemoryStore keeps diagrams in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	diagrams map[string]*Diagram
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{diagrams: make(map[string]*Diagram)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Diagram, error) {
	s.mu.RLock()
	d, ok := s.diagrams[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if d.IsExpired() {
		s.mu.Lock()
		delete(s.diagrams, id)
		s.mu.Unlock()
		return nil, ErrExpired
	}
	cp := *d
	return &cp, nil
}

func (s *MemoryStore) Save(ctx context.Context, d *Diagram) error {
	cp := *d
	s.mu.Lock()
	s.diagrams[d.ID] = &cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.diagrams, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, d := range s.diagrams {
		if d.IsExpired() {
			delete(s.diagrams, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored diagrams, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.diagrams)
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
