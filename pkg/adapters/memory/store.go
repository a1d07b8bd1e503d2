package memory

import (
	"context"
	"sync"

	"github.com/actiflow/actiflow/pkg/domain"
)

// InstanceStore implements ports.InstanceStore in memory.
// Safe for concurrent use.
type InstanceStore struct {
	data map[string]*domain.InstanceState
	mu   sync.RWMutex
}

// NewInstanceStore creates a new in-memory instance store.
func NewInstanceStore() *InstanceStore {
	return &InstanceStore{
		data: make(map[string]*domain.InstanceState),
	}
}

// Save persists the state in memory. The state is copied so later caller
// mutations cannot leak into the store.
func (s *InstanceStore) Save(ctx context.Context, instanceID string, state *domain.InstanceState) error {
	copied := state.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[instanceID] = copied
	return nil
}

// Load retrieves a copy of the state from memory.
func (s *InstanceStore) Load(ctx context.Context, instanceID string) (*domain.InstanceState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[instanceID]
	if !ok {
		return nil, domain.ErrInstanceNotFound
	}
	return state.Clone(), nil
}

// Delete removes the state.
func (s *InstanceStore) Delete(ctx context.Context, instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, instanceID)
	return nil
}

// List returns active instance ids.
func (s *InstanceStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
