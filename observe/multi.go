package observe

import (
	"reflect"

	"github.com/atlekbai/hsm"
)

// MultiTracer forwards every event to each of its tracers in order.
type MultiTracer[TState, TTrigger comparable] []hsm.Tracer[TState, TTrigger]

// Multi combines tracers into one. Nil tracers, including nil pointers of
// concrete tracer types, are dropped.
func Multi[TState, TTrigger comparable](tracers ...hsm.Tracer[TState, TTrigger]) MultiTracer[TState, TTrigger] {
	m := make(MultiTracer[TState, TTrigger], 0, len(tracers))
	for _, t := range tracers {
		if t == nil {
			continue
		}
		if rv := reflect.ValueOf(t); rv.Kind() == reflect.Pointer && rv.IsNil() {
			continue
		}
		m = append(m, t)
	}
	return m
}

func (m MultiTracer[TState, TTrigger]) Trigger(trigger TTrigger) {
	for _, t := range m {
		t.Trigger(trigger)
	}
}

func (m MultiTracer[TState, TTrigger]) Transition(transition hsm.Transition[TState, TTrigger]) {
	for _, t := range m {
		t.Transition(transition)
	}
}

// Completed is forwarded to the tracers that implement hsm.CompletionTracer.
func (m MultiTracer[TState, TTrigger]) Completed(trigger TTrigger, err error) {
	for _, t := range m {
		if c, ok := t.(hsm.CompletionTracer[TTrigger]); ok {
			c.Completed(trigger, err)
		}
	}
}
