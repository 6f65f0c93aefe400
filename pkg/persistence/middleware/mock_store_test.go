package middleware_test

import (
	"context"

	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/aretw0/twentyfive/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]*domain.Instance
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.Instance),
	}
}

func (s *MockStore) Save(ctx context.Context, instanceID string, inst *domain.Instance) error {
	s.data[instanceID] = inst.Snapshot()
	return nil
}

func (s *MockStore) Load(ctx context.Context, instanceID string) (*domain.Instance, error) {
	inst, ok := s.data[instanceID]
	if !ok {
		return nil, domain.ErrInstanceNotFound
	}
	return inst.Snapshot(), nil
}

func (s *MockStore) Delete(ctx context.Context, instanceID string) error {
	delete(s.data, instanceID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.StateStore = (*MockStore)(nil)
