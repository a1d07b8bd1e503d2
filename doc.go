/*
Package actiflow compiles PlantUML-style activity-diagram documents into
immutable workflow graphs and drives chat-style executions over them.

The high-level Engine wraps three layers:

  - the compiler, which turns a document into a domain.Definition (a graph
    of nodes and conditional transitions) in a single best-effort pass;
  - the state calculator, a pure function producing the renderable payload
    (a message or a set of choices) for any current node;
  - the instance layer, which tracks each running workflow's current node
    and variables, and dispatches embedded action metadata to registered
    handlers as instances advance.

A minimal session:

	eng := actiflow.New()
	def, _ := eng.Compile(ctx, documentText, "onboarding", "Onboarding Flow")
	payload, _ := eng.Begin(ctx, def, "instance-1")
	if payload.IsChoice {
		payload, _ = eng.AdvanceChoice(ctx, def, "instance-1", 0)
	}

Persistence of definitions and instance state lives behind the interfaces
in pkg/ports; pkg/adapters provides in-memory and Redis implementations.
*/
package actiflow
