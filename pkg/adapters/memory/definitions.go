package memory

import (
	"context"
	"sync"

	"github.com/actiflow/actiflow/pkg/domain"
)

// DefinitionStore implements ports.DefinitionStore in memory.
// Definitions are immutable after compilation, so storing the pointer
// directly is safe.
type DefinitionStore struct {
	data map[string]*domain.Definition
	mu   sync.RWMutex
}

// NewDefinitionStore creates a new in-memory definition store.
func NewDefinitionStore() *DefinitionStore {
	return &DefinitionStore{
		data: make(map[string]*domain.Definition),
	}
}

// Store persists the definition, overwriting any previous version.
func (s *DefinitionStore) Store(ctx context.Context, def *domain.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[def.ID] = def
	return nil
}

// GetByID retrieves a definition.
func (s *DefinitionStore) GetByID(ctx context.Context, id string) (*domain.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.data[id]
	if !ok {
		return nil, domain.ErrDefinitionNotFound
	}
	return def, nil
}

// Exists reports whether a definition is stored.
func (s *DefinitionStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[id]
	return ok, nil
}
