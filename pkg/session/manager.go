package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/actiflow/actiflow/internal/logging"
	"github.com/actiflow/actiflow/pkg/domain"
	"github.com/actiflow/actiflow/pkg/ports"
)

// lockEntry holds the mutex and the reference count for one instance.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager tracks per-instance execution state: the current node id and a
// flat map of named variables. Distinct instances never block one another;
// updates to a single instance run under a per-instance critical section so
// an action's variable updates and the subsequent transition cannot race.
//
// Lock entries are reference counted and garbage collected when idle.
type Manager struct {
	store ports.InstanceStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for deferred errors.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager over the given instance store.
func NewManager(store ports.InstanceStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
func (m *Manager) acquire(instanceID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[instanceID]
	if !exists {
		entry = &lockEntry{}
		m.locks[instanceID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and drops idle entries.
func (m *Manager) release(instanceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[instanceID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, instanceID)
	}
}

// WithLock executes fn while holding the per-instance lock (and, when
// configured, the distributed lock).
func (m *Manager) WithLock(ctx context.Context, instanceID string, fn func(context.Context) error) error {
	entry := m.acquire(instanceID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(instanceID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, instanceID, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"instance_id", instanceID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// LoadOrStart loads an instance, initializing it at startNodeID when it
// does not exist yet. The new state is persisted immediately to reserve
// the id. The boolean reports whether a fresh instance was created.
func (m *Manager) LoadOrStart(ctx context.Context, instanceID, startNodeID string) (*domain.InstanceState, bool, error) {
	var state *domain.InstanceState
	created := false
	err := m.WithLock(ctx, instanceID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, instanceID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrInstanceNotFound) {
			return fmt.Errorf("failed to check instance existence: %w", err)
		}

		state = domain.NewInstanceState(startNodeID)
		if err := m.store.Save(ctx, instanceID, state); err != nil {
			return fmt.Errorf("failed to initialize instance: %w", err)
		}
		created = true
		return nil
	})
	return state, created, err
}

// CurrentNode returns the node the instance currently occupies.
func (m *Manager) CurrentNode(ctx context.Context, instanceID string) (string, error) {
	var nodeID string
	err := m.WithLock(ctx, instanceID, func(ctx context.Context) error {
		state, err := m.store.Load(ctx, instanceID)
		if err != nil {
			return err
		}
		nodeID = state.CurrentNodeID
		return nil
	})
	return nodeID, err
}

// SetCurrentNode moves the instance to the given node. Last writer wins,
// but each individual update is atomic.
func (m *Manager) SetCurrentNode(ctx context.Context, instanceID, nodeID string) error {
	return m.WithLock(ctx, instanceID, func(ctx context.Context) error {
		state, err := m.store.Load(ctx, instanceID)
		if err != nil {
			return err
		}
		state.CurrentNodeID = nodeID
		return m.store.Save(ctx, instanceID, state)
	})
}

// Variable returns the named variable for the instance. A missing variable
// resolves to the empty string, not an error.
func (m *Manager) Variable(ctx context.Context, instanceID, name string) (string, error) {
	var value string
	err := m.WithLock(ctx, instanceID, func(ctx context.Context) error {
		state, err := m.store.Load(ctx, instanceID)
		if err != nil {
			return err
		}
		value = state.Variables[name]
		return nil
	})
	return value, err
}

// SetVariable sets one named variable for the instance.
func (m *Manager) SetVariable(ctx context.Context, instanceID, name, value string) error {
	return m.WithLock(ctx, instanceID, func(ctx context.Context) error {
		state, err := m.store.Load(ctx, instanceID)
		if err != nil {
			return err
		}
		if state.Variables == nil {
			state.Variables = make(map[string]string)
		}
		state.Variables[name] = value
		return m.store.Save(ctx, instanceID, state)
	})
}

// ApplyUpdates merges a batch of variable updates in a single critical
// section, so a handler's result set is applied atomically before the next
// state calculation reads instance variables.
func (m *Manager) ApplyUpdates(ctx context.Context, instanceID string, updates map[string]string) error {
	if len(updates) == 0 {
		return nil
	}
	return m.WithLock(ctx, instanceID, func(ctx context.Context) error {
		state, err := m.store.Load(ctx, instanceID)
		if err != nil {
			return err
		}
		if state.Variables == nil {
			state.Variables = make(map[string]string)
		}
		for k, v := range updates {
			state.Variables[k] = v
		}
		return m.store.Save(ctx, instanceID, state)
	})
}

// Snapshot returns a copy of the full instance state.
func (m *Manager) Snapshot(ctx context.Context, instanceID string) (*domain.InstanceState, error) {
	var state *domain.InstanceState
	err := m.WithLock(ctx, instanceID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, instanceID)
		return err
	})
	return state, err
}

// Delete removes the instance from the store.
func (m *Manager) Delete(ctx context.Context, instanceID string) error {
	return m.WithLock(ctx, instanceID, func(ctx context.Context) error {
		return m.store.Delete(ctx, instanceID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying instance store.
func (m *Manager) Store() ports.InstanceStore {
	return m.store
}
