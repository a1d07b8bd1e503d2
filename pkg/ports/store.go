package ports

import (
	"context"

	"github.com/actiflow/actiflow/pkg/domain"
)

// DefinitionStore persists compiled workflow definitions.
// A caller stores a definition once after compilation and retrieves it by id
// on every subsequent turn.
type DefinitionStore interface {
	// Store persists the definition, overwriting any previous version.
	Store(ctx context.Context, def *domain.Definition) error

	// GetByID retrieves a definition.
	// Returns domain.ErrDefinitionNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*domain.Definition, error)

	// Exists reports whether a definition with the given id is stored.
	Exists(ctx context.Context, id string) (bool, error)
}

// InstanceStore persists per-instance execution state.
// This allows for durable execution, enabling "stop & resume" workflows.
type InstanceStore interface {
	// Save persists the state for a given instance ID.
	Save(ctx context.Context, instanceID string, state *domain.InstanceState) error

	// Load retrieves the state for a given instance ID.
	// Returns domain.ErrInstanceNotFound if the instance does not exist.
	Load(ctx context.Context, instanceID string) (*domain.InstanceState, error)

	// Delete removes the state for a given instance ID.
	Delete(ctx context.Context, instanceID string) error

	// List returns the ids of all stored instances.
	List(ctx context.Context) ([]string, error)
}
