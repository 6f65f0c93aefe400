package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/twentyfive/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Instance
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Instance),
	}
}

// Save persists the instance in memory.
func (s *Store) Save(ctx context.Context, instanceID string, inst *domain.Instance) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := inst.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[instanceID] = copied
	return nil
}

// Load retrieves the instance from memory.
func (s *Store) Load(ctx context.Context, instanceID string) (*domain.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.data[instanceID]
	if !ok {
		return nil, domain.ErrInstanceNotFound
	}

	// Copy on read so the caller can't mutate store state by pointer
	return inst.Snapshot(), nil
}

// Delete removes the instance.
func (s *Store) Delete(ctx context.Context, instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, instanceID)
	return nil
}

// List returns stored instance IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
