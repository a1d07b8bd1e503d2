package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/actiflow/actiflow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.InstanceStore and ports.DefinitionStore using
// Redis, with JSON-encoded values.
type Store struct {
	client    *backend.Client
	prefix    string
	defPrefix string
	ttl       time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the expiration for instance state keys.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix + "instance:"
		s.defPrefix = prefix + "definition:"
	}
}

// New creates a Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client:    client,
		prefix:    "actiflow:instance:",
		defPrefix: "actiflow:definition:",
		ttl:       0, // no expiration by default
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Save persists the instance state.
func (s *Store) Save(ctx context.Context, instanceID string, state *domain.InstanceState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode instance state: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+instanceID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis error saving instance: %w", err)
	}
	return nil
}

// Load retrieves the instance state.
func (s *Store) Load(ctx context.Context, instanceID string) (*domain.InstanceState, error) {
	data, err := s.client.Get(ctx, s.prefix+instanceID).Bytes()
	if err == backend.Nil {
		return nil, domain.ErrInstanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis error loading instance: %w", err)
	}

	var state domain.InstanceState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode instance state: %w", err)
	}
	if state.Variables == nil {
		state.Variables = make(map[string]string)
	}
	return &state, nil
}

// Delete removes the instance state.
func (s *Store) Delete(ctx context.Context, instanceID string) error {
	if err := s.client.Del(ctx, s.prefix+instanceID).Err(); err != nil {
		return fmt.Errorf("redis error deleting instance: %w", err)
	}
	return nil
}

// List returns the ids of all stored instances.
func (s *Store) List(ctx context.Context) ([]string, error) {
	keys, err := s.client.Keys(ctx, s.prefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("redis error listing instances: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, key[len(s.prefix):])
	}
	return ids, nil
}

// StoreDefinition persists a compiled definition.
func (s *Store) StoreDefinition(ctx context.Context, def *domain.Definition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to encode definition: %w", err)
	}
	if err := s.client.Set(ctx, s.defPrefix+def.ID, data, 0).Err(); err != nil {
		return fmt.Errorf("redis error saving definition: %w", err)
	}
	return nil
}

// GetDefinitionByID retrieves a compiled definition.
func (s *Store) GetDefinitionByID(ctx context.Context, id string) (*domain.Definition, error) {
	data, err := s.client.Get(ctx, s.defPrefix+id).Bytes()
	if err == backend.Nil {
		return nil, domain.ErrDefinitionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis error loading definition: %w", err)
	}

	var def domain.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to decode definition: %w", err)
	}
	return &def, nil
}

// DefinitionExists reports whether a definition is stored.
func (s *Store) DefinitionExists(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.defPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("redis error checking definition: %w", err)
	}
	return n > 0, nil
}

// Definitions adapts the store to ports.DefinitionStore.
func (s *Store) Definitions() *DefinitionStore {
	return &DefinitionStore{store: s}
}

// DefinitionStore is the ports.DefinitionStore view of a Store.
type DefinitionStore struct {
	store *Store
}

func (d *DefinitionStore) Store(ctx context.Context, def *domain.Definition) error {
	return d.store.StoreDefinition(ctx, def)
}

func (d *DefinitionStore) GetByID(ctx context.Context, id string) (*domain.Definition, error) {
	return d.store.GetDefinitionByID(ctx, id)
}

func (d *DefinitionStore) Exists(ctx context.Context, id string) (bool, error) {
	return d.store.DefinitionExists(ctx, id)
}
