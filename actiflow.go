package actiflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/actiflow/actiflow/internal/compiler"
	"github.com/actiflow/actiflow/internal/logging"
	"github.com/actiflow/actiflow/internal/runtime"
	"github.com/actiflow/actiflow/pkg/adapters/memory"
	"github.com/actiflow/actiflow/pkg/dispatch"
	"github.com/actiflow/actiflow/pkg/domain"
	"github.com/actiflow/actiflow/pkg/observability"
	"github.com/actiflow/actiflow/pkg/ports"
	"github.com/actiflow/actiflow/pkg/registry"
	"github.com/actiflow/actiflow/pkg/session"
)

// Engine is the high-level entry point for the actiflow library.
// It wires the compiler, state calculator, session manager and action
// dispatcher behind a simplified API.
type Engine struct {
	definitions ports.DefinitionStore
	instances   ports.InstanceStore
	locker      ports.DistributedLocker
	sessions    *session.Manager
	registry    *registry.Registry
	dispatcher  *dispatch.Dispatcher
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDefinitionStore injects a custom definition store (default: memory).
func WithDefinitionStore(store ports.DefinitionStore) Option {
	return func(e *Engine) {
		e.definitions = store
	}
}

// WithInstanceStore injects a custom instance store (default: memory).
func WithInstanceStore(store ports.InstanceStore) Option {
	return func(e *Engine) {
		e.instances = store
	}
}

// WithLocker enables distributed locking for instance updates.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithRegistry injects a pre-populated action handler registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// New initializes an Engine. Without options it runs fully in memory with a
// no-op logger and an empty action registry.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.definitions == nil {
		e.definitions = memory.NewDefinitionStore()
	}
	if e.instances == nil {
		e.instances = memory.NewInstanceStore()
	}
	if e.registry == nil {
		e.registry = registry.NewRegistry()
	}

	sessionOpts := []session.Option{session.WithLogger(e.logger)}
	if e.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(e.locker))
	}
	e.sessions = session.NewManager(e.instances, sessionOpts...)
	e.dispatcher = dispatch.NewDispatcher(e.registry, e.sessions, dispatch.WithLogger(e.logger))

	return e
}

// Registry exposes the action handler registry for host registration.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Sessions exposes the instance manager.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Compile parses a document into a definition and persists it in the
// definition store. Skipped constructs are logged, not fatal; only a
// document with no nodes fails.
func (e *Engine) Compile(ctx context.Context, documentText, definitionID, definitionName string) (*domain.Definition, error) {
	def, _, err := e.CompileWithDiagnostics(ctx, documentText, definitionID, definitionName)
	return def, err
}

// CompileWithDiagnostics is Compile plus the parser's diagnostics list.
func (e *Engine) CompileWithDiagnostics(ctx context.Context, documentText, definitionID, definitionName string) (*domain.Definition, []compiler.Diagnostic, error) {
	started := time.Now()
	parser := compiler.NewParser(compiler.WithLogger(e.logger))
	def, err := parser.Parse(documentText, definitionID, definitionName)
	diags := parser.Diagnostics()

	if e.metrics != nil {
		e.metrics.CompileDuration.Observe(time.Since(started).Seconds())
		e.metrics.DiagnosticsTotal.Add(float64(len(diags)))
		if err != nil {
			e.metrics.CompileFailures.Inc()
		} else {
			e.metrics.CompilesTotal.Inc()
		}
	}
	if err != nil {
		return nil, diags, err
	}

	for _, d := range diags {
		e.logger.Debug("compile diagnostic", "definition_id", definitionID, "line", d.Line, "reason", d.Reason)
	}
	if err := def.Validate(); err != nil {
		// Referential integrity is a compiler invariant; surface loudly.
		return nil, diags, fmt.Errorf("definition %s failed validation: %w", definitionID, err)
	}
	if err := e.definitions.Store(ctx, def); err != nil {
		return nil, diags, fmt.Errorf("failed to store definition: %w", err)
	}
	return def, diags, nil
}

// Definition retrieves a previously compiled definition by id.
func (e *Engine) Definition(ctx context.Context, id string) (*domain.Definition, error) {
	return e.definitions.GetByID(ctx, id)
}

// StartNode resolves the entry node of a definition, auto-advancing through
// a bare structural start marker.
func (e *Engine) StartNode(def *domain.Definition) (string, error) {
	return runtime.StartNode(def)
}

// Payload computes the renderable state for an arbitrary node.
func (e *Engine) Payload(def *domain.Definition, nodeID string) (*domain.StatePayload, error) {
	return runtime.Payload(def, nodeID)
}

// Begin positions an instance at the definition's start node (resuming it
// if it already exists) and returns the first payload. On a fresh instance,
// an action embedded in the start node is dispatched before the payload is
// computed.
func (e *Engine) Begin(ctx context.Context, def *domain.Definition, instanceID string) (*domain.StatePayload, error) {
	startID, err := runtime.StartNode(def)
	if err != nil {
		return nil, err
	}

	state, created, err := e.sessions.LoadOrStart(ctx, instanceID, startID)
	if err != nil {
		return nil, err
	}
	if created {
		e.runNodeAction(ctx, def, instanceID, startID)
	}
	return runtime.Payload(def, state.CurrentNodeID)
}

// CurrentPayload computes the payload for wherever the instance currently is.
func (e *Engine) CurrentPayload(ctx context.Context, def *domain.Definition, instanceID string) (*domain.StatePayload, error) {
	nodeID, err := e.sessions.CurrentNode(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	return runtime.Payload(def, nodeID)
}

// Advance moves an instance along an existing transition to targetNodeID.
// If the target node embeds an action descriptor, it is dispatched before
// the move is persisted, so variable updates are visible to the next state
// calculation. Dispatch failures are absorbed (logged and counted), never
// fatal.
func (e *Engine) Advance(ctx context.Context, def *domain.Definition, instanceID, targetNodeID string) (*domain.StatePayload, error) {
	currentID, err := e.sessions.CurrentNode(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	valid := false
	for _, t := range def.TransitionsFrom(currentID) {
		if t.ToNodeID == targetNodeID {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("no transition from %q to %q", currentID, targetNodeID)
	}

	e.runNodeAction(ctx, def, instanceID, targetNodeID)

	if err := e.sessions.SetCurrentNode(ctx, instanceID, targetNodeID); err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.AdvancesTotal.Inc()
	}
	return runtime.Payload(def, targetNodeID)
}

// AdvanceChoice advances along the option at the given index of the
// instance's current choice payload.
func (e *Engine) AdvanceChoice(ctx context.Context, def *domain.Definition, instanceID string, index int) (*domain.StatePayload, error) {
	payload, err := e.CurrentPayload(ctx, def, instanceID)
	if err != nil {
		return nil, err
	}
	if !payload.IsChoice {
		return nil, fmt.Errorf("current node is not a choice")
	}
	if index < 0 || index >= len(payload.Choices) {
		return nil, fmt.Errorf("choice index %d out of range (%d options)", index, len(payload.Choices))
	}
	return e.Advance(ctx, def, instanceID, payload.Choices[index].TargetNodeID)
}

// Continue follows the single outgoing edge of a non-choice node. The
// boolean is false when the instance sits on a terminal node (no outgoing
// transitions), which ends the workflow.
func (e *Engine) Continue(ctx context.Context, def *domain.Definition, instanceID string) (*domain.StatePayload, bool, error) {
	currentID, err := e.sessions.CurrentNode(ctx, instanceID)
	if err != nil {
		return nil, false, err
	}
	outgoing := def.TransitionsFrom(currentID)
	if len(outgoing) == 0 {
		return nil, false, nil
	}

	payload, err := e.Advance(ctx, def, instanceID, outgoing[0].ToNodeID)
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// runNodeAction dispatches the node's embedded action, if any. Outcomes are
// absorbed: an unknown action or failing handler leaves variables unchanged
// and execution continues.
func (e *Engine) runNodeAction(ctx context.Context, def *domain.Definition, instanceID, nodeID string) {
	node := def.NodeByID(nodeID)
	if node == nil || node.JSONMetadata == "" {
		return
	}
	outcome := e.dispatcher.Dispatch(ctx, instanceID, node)
	e.metrics.ObserveDispatch(outcome.OK)
	if !outcome.OK {
		e.logger.Debug("dispatch unsuccessful",
			"instance_id", instanceID,
			"node", nodeID,
			"action", outcome.Action,
			"reason", outcome.Reason,
		)
	}
}
