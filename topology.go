package hsm

// Topology is an immutable set of configured states. It is produced by
// Builder.Build and can be shared by any number of state machines, including
// machines running on different goroutines.
type Topology[TState, TTrigger comparable, TContext any] struct {
	nodes []*StateRepresentation[TState, TTrigger, TContext]
	index map[TState]stateID
}

func newTopology[TState, TTrigger comparable, TContext any]() *Topology[TState, TTrigger, TContext] {
	return &Topology[TState, TTrigger, TContext]{
		index: make(map[TState]stateID),
	}
}

// Representation returns the representation of state, if it was configured.
func (t *Topology[TState, TTrigger, TContext]) Representation(state TState) (*StateRepresentation[TState, TTrigger, TContext], bool) {
	id, ok := t.index[state]
	if !ok {
		return nil, false
	}
	return t.nodes[id], true
}

// States returns every configured state in the order it was first configured.
func (t *Topology[TState, TTrigger, TContext]) States() []TState {
	states := make([]TState, len(t.nodes))
	for i, rep := range t.nodes {
		states[i] = rep.state
	}
	return states
}

// representationOf returns the configured representation of state, or a
// detached empty one when the state was never configured.
func (t *Topology[TState, TTrigger, TContext]) representationOf(state TState) *StateRepresentation[TState, TTrigger, TContext] {
	if rep, ok := t.Representation(state); ok {
		return rep
	}
	return NewStateRepresentation[TState, TTrigger, TContext](state)
}

// getOrCreate is used while building.
func (t *Topology[TState, TTrigger, TContext]) getOrCreate(state TState) *StateRepresentation[TState, TTrigger, TContext] {
	if rep, ok := t.Representation(state); ok {
		return rep
	}
	rep := NewStateRepresentation[TState, TTrigger, TContext](state)
	rep.topology = t
	t.index[state] = stateID(len(t.nodes))
	t.nodes = append(t.nodes, rep)
	return rep
}

func (t *Topology[TState, TTrigger, TContext]) clone() *Topology[TState, TTrigger, TContext] {
	out := &Topology[TState, TTrigger, TContext]{
		nodes: make([]*StateRepresentation[TState, TTrigger, TContext], len(t.nodes)),
		index: make(map[TState]stateID, len(t.index)),
	}
	for state, id := range t.index {
		out.index[state] = id
	}
	for i, rep := range t.nodes {
		out.nodes[i] = rep.clone(out)
	}
	return out
}

// setSuperstate links child under parent. The caller has checked for cycles.
func (t *Topology[TState, TTrigger, TContext]) setSuperstate(child, parent *StateRepresentation[TState, TTrigger, TContext]) {
	parentID := t.index[parent.state]
	child.superstate = parentID
	parent.substates = append(parent.substates, t.index[child.state])
}
