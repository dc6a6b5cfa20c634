package mercury

// Reducer computes the next state for an action. Reducers are pure and must
// return the state they were given when the action does not concern them.
type Reducer[S any] func(state S, a Action) S

// KeyFunc derives the cell key from an action.
type KeyFunc func(a Action) Key

// ActionKey is the default KeyFunc.
func ActionKey(a Action) Key { return a.Key }

// Compose chains reducers; each one sees the output of the previous.
func Compose[S any](rs ...Reducer[S]) Reducer[S] {
	return func(s S, a Action) S {
		for _, r := range rs {
			s = r(s, a)
		}
		return s
	}
}

// NewKeyedReducer builds a reducer over a map of cells for one kind.
// Actions whose derived key is empty are ignored.
func NewKeyedReducer[T any](kind Kind, keyOf KeyFunc) Reducer[Cells[T]] {
	if keyOf == nil {
		keyOf = ActionKey
	}
	return func(state Cells[T], a Action) Cells[T] {
		if a.Kind != kind {
			return state
		}
		k := keyOf(a)
		if k == "" {
			return state
		}
		prev, exists := state[k]
		next, changed := transition(prev, exists, a)
		if !changed {
			return state
		}
		return state.With(k, next)
	}
}

// NewCellReducer builds a reducer for a single root cell of one kind.
// A nil cell means nothing was fetched yet.
func NewCellReducer[T any](kind Kind) Reducer[*Cell[T]] {
	return func(state *Cell[T], a Action) *Cell[T] {
		if a.Kind != kind {
			return state
		}
		var prev Cell[T]
		if state != nil {
			prev = *state
		}
		next, changed := transition(prev, state != nil, a)
		if !changed {
			return state
		}
		return &next
	}
}

// transition merges the fields an action phase owns into c.
func transition[T any](c Cell[T], exists bool, a Action) (Cell[T], bool) {
	switch a.Phase {
	case PhasePending:
		var zero T
		c.Pending = true
		c.Err = nil
		c.Data = zero
		c.Loaded = false
	case PhaseFulfilled:
		v, ok := payload[T](a.Payload)
		if !ok {
			c.Pending = false
			c.Err = &PayloadTypeError{Kind: a.Kind, Got: a.Payload}
			return c, true
		}
		c.Pending = false
		c.Err = nil
		c.Invalidated = false
		c.Data = v
		c.Loaded = true
	case PhaseRejected:
		c.Pending = false
		c.Err = a.Err
		if c.Err == nil {
			c.Err = ErrRejected
		}
	case PhaseInvalidated:
		if exists && c.Invalidated {
			// already stale; keep identity
			return c, false
		}
		c.Invalidated = true
	case PhaseRestored:
		if exists {
			return c, false
		}
		v, ok := payload[T](a.Payload)
		if !ok {
			return c, false
		}
		c.Data = v
		c.Loaded = true
		c.Invalidated = true
	default:
		return c, false
	}
	return c, true
}

// payload asserts p to T. A nil payload is the zero T.
func payload[T any](p any) (T, bool) {
	if p == nil {
		var zero T
		return zero, true
	}
	v, ok := p.(T)
	return v, ok
}
