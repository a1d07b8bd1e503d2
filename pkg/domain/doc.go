/*
Package domain contains the core value types of the actiflow engine.

It defines the compiled graph model (Definition, Node, Transition,
StartPoint), the renderable state payload produced by the calculator, the
per-instance runtime state, and the embedded action descriptor format. This
package is kept pure and free of I/O or persistence concerns, following
Hexagonal Architecture principles.

# Key Entities

  - Definition: the immutable output of one parse (nodes + transitions).
  - Node: one activity in the diagram, optionally carrying note text and
    an embedded JSON action descriptor.
  - Transition: a directed, optionally guarded edge between two nodes.
  - StatePayload: what the UI layer renders for a given current node.
  - InstanceState: the mutable cursor and variables of one running workflow.
*/
package domain
