// Package hsm provides a generic hierarchical state machine engine for Go.
//
// A topology of states, triggers, guarded transitions and entry/exit actions is
// declared once with a Builder and frozen into an immutable Topology. Any number
// of StateMachine instances can then run on the same topology, each with its own
// current state and context value. The engine supports:
//
//   - Generic types for states, triggers and the context threaded through callbacks
//   - Guard conditions, with mutual exclusion checked when firing
//   - Entry and exit actions, optionally bound to the incoming trigger
//   - Hierarchical states (substates inherit the triggers of their superstates)
//   - Dynamic, reentry and internal transitions
//   - External storage of the current state
//   - Introspection and graph generation
//
// # Basic Usage
//
// Configure the topology:
//
//	b := hsm.NewBuilder[State, Trigger, *Call]()
//	b.Configure(StateA).
//	    Permit(TriggerX, StateB).
//	    OnEntry(func(t hsm.Transition[State, Trigger], c *Call) error { return nil })
//	topology, err := b.Build()
//
// Create a machine and fire triggers:
//
//	sm := hsm.NewStateMachine(topology, StateA, call)
//	err = sm.Fire(TriggerX)
//
// # Guards
//
// Add conditions to transitions. Guards for one trigger in one state must be
// mutually exclusive; Fire returns a *GuardAmbiguityError otherwise.
//
//	b.Configure(StateA).
//	    PermitIf(TriggerX, StateB, func(c *Call) bool { return c.Ready })
//
// # Hierarchical States
//
// Create state hierarchies:
//
//	b.Configure(StateB).SubstateOf(StateA)
//
// Entering StateB from outside StateA runs the entry actions of StateA, then
// those of StateB. Leaving runs them in the opposite order.
//
// # Tracing
//
// A Tracer set with SetTracer sees every fired trigger and every completed
// transition. Tracers that also implement CompletionTracer learn how each
// Fire ended. Package observe provides tracers for slog, Prometheus and
// OpenTelemetry.
//
// # Graph Generation
//
// Export to DOT or Mermaid format:
//
//	import "github.com/atlekbai/hsm/graph"
//	dot := graph.UmlDotGraph(sm.Info())
package hsm
