package repository

import (
	"context"
	"sync"

	apperrors "github.com/gunaso-platform/grievance/pkg/errors"

	"github.com/gunaso-platform/grievance/internal/model"
)

// MemoryStore is the in-memory case store: an ordered slice with an ID
// index. The intake service serializes case mutation; the lock here
// only protects the slice and index structure itself.
type MemoryStore struct {
	mu    sync.RWMutex
	cases []*model.Case
	byID  map[string]*model.Case
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]*model.Case),
	}
}

// Append stores a newly created case.
func (s *MemoryStore) Append(_ context.Context, c *model.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[c.ID]; exists {
		return apperrors.Conflict("case already exists: " + c.ID)
	}

	s.cases = append(s.cases, c)
	s.byID[c.ID] = c
	return nil
}

// Get returns the case with the given ID.
func (s *MemoryStore) Get(_ context.Context, id string) (*model.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.byID[id]
	if !exists {
		return nil, apperrors.NotFound("case", id)
	}
	return c, nil
}

// Update is a no-op beyond existence checking: callers mutate the
// stored case in place under the intake service's write lock.
func (s *MemoryStore) Update(_ context.Context, c *model.Case) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.byID[c.ID]; !exists {
		return apperrors.NotFound("case", c.ID)
	}
	return nil
}

// All returns every case in insertion order.
func (s *MemoryStore) All(_ context.Context) ([]*model.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Case, len(s.cases))
	copy(out, s.cases)
	return out, nil
}

// Count returns the number of stored cases.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cases), nil
}
