package registry

import (
	"context"
	"fmt"
	"sync"
)

// HandlerFunc is the signature for an action handler. It receives the
// resolved parameter map and may return a set of variable updates to apply
// to the instance.
type HandlerFunc func(ctx context.Context, params map[string]string) (map[string]string, error)

// Registry maps action names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]HandlerFunc),
	}
}

// Register adds a handler. An existing handler with the same name is
// overwritten.
func (r *Registry) Register(name string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = fn
}

// Lookup returns the handler for a name.
func (r *Registry) Lookup(name string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[name]
	return fn, ok
}

// Execute looks up a handler by name and invokes it.
// Returns an error if the handler is not registered.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]string) (map[string]string, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("action not registered: %s", name)
	}
	return fn(ctx, params)
}
