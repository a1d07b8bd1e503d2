package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/actiflow/actiflow/internal/logging"
	"github.com/actiflow/actiflow/pkg/domain"
	"github.com/actiflow/actiflow/pkg/registry"
	"github.com/actiflow/actiflow/pkg/session"
)

// templateRe matches {{variableName}} markers: double-brace-delimited
// identifiers of letters, digits, '.' and '_'.
var templateRe = regexp.MustCompile(`\{\{([A-Za-z0-9._]+)\}\}`)

// Outcome reports the result of one dispatch attempt. Dispatch failures are
// absorbed, never raised: callers inspect the outcome for diagnostics while
// the workflow is guaranteed forward progress.
type Outcome struct {
	OK      bool
	Action  string
	Reason  string
	Updates map[string]string
}

// Dispatcher resolves a node's embedded action descriptor, substitutes
// template variables from instance state, invokes the registered handler
// and applies returned variable updates atomically.
type Dispatcher struct {
	registry *registry.Registry
	sessions *session.Manager
	logger   *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher wires a registry and a session manager.
func NewDispatcher(reg *registry.Registry, sessions *session.Manager, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs the action embedded in the node, if any, for the given
// instance. Exactly one handler runs per dispatch; its variable updates are
// applied before Dispatch returns, so the next state calculation observes
// them. Handler panics, errors and context cancellation all degrade to an
// unsuccessful outcome with no updates.
func (d *Dispatcher) Dispatch(ctx context.Context, instanceID string, node *domain.Node) Outcome {
	desc, ok := domain.ParseActionDescriptor(node.JSONMetadata)
	if !ok {
		return Outcome{OK: false, Reason: "node carries no actionable metadata"}
	}

	params, err := d.resolveParams(ctx, instanceID, desc.Params)
	if err != nil {
		d.logger.Warn("failed to resolve action parameters", "action", desc.Action, "instance_id", instanceID, "err", err)
		return Outcome{OK: false, Action: desc.Action, Reason: err.Error()}
	}

	handler, found := d.registry.Lookup(desc.Action)
	if !found {
		d.logger.Warn("unknown action name", "action", desc.Action, "node", node.ID)
		return Outcome{OK: false, Action: desc.Action, Reason: "action not registered"}
	}

	updates, err := d.invoke(ctx, handler, params)
	if err != nil {
		d.logger.Warn("action handler failed", "action", desc.Action, "instance_id", instanceID, "err", err)
		return Outcome{OK: false, Action: desc.Action, Reason: err.Error()}
	}
	if err := ctx.Err(); err != nil {
		// Cancellation is treated like a handler failure: no updates.
		return Outcome{OK: false, Action: desc.Action, Reason: err.Error()}
	}

	if err := d.sessions.ApplyUpdates(ctx, instanceID, updates); err != nil {
		d.logger.Warn("failed to apply variable updates", "action", desc.Action, "instance_id", instanceID, "err", err)
		return Outcome{OK: false, Action: desc.Action, Reason: err.Error()}
	}
	return Outcome{OK: true, Action: desc.Action, Updates: updates}
}

// invoke runs the handler with panic containment: externally supplied
// handler code must never abort the workflow.
func (d *Dispatcher) invoke(ctx context.Context, handler registry.HandlerFunc, params map[string]string) (updates map[string]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			updates = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, params)
}

// resolveParams substitutes {{name}} markers in every parameter value from
// the instance's variable map. Missing variables resolve to the empty
// string rather than failing the whole substitution.
func (d *Dispatcher) resolveParams(ctx context.Context, instanceID string, params map[string]string) (map[string]string, error) {
	state, err := d.sessions.Snapshot(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]string, len(params))
	for key, value := range params {
		resolved[key] = templateRe.ReplaceAllStringFunc(value, func(marker string) string {
			name := templateRe.FindStringSubmatch(marker)[1]
			return state.Variables[name]
		})
	}
	return resolved, nil
}
