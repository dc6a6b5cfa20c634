package mercury

import (
	"context"
	"errors"
	"sync"
)

// Listener observes every reduction. Listeners run in dispatch order, after
// the state was swapped, and must not dispatch into the same store.
type Listener[S any] func(ctx context.Context, a Action, prev, next S)

type listenerEntry[S any] struct {
	id uint64
	fn Listener[S]
}

// Store owns the application state. State only changes through Dispatch,
// which applies the root reducer under a lock (single writer).
type Store[S any] struct {
	mu       sync.Mutex
	notifyMu sync.Mutex // keeps listener delivery in dispatch order

	state     S
	reduce    Reducer[S]
	listeners []listenerEntry[S]
	nextID    uint64

	log   Logger
	hooks Hooks
}

var errNoOperation = errors.New("promise action has no operation")

func NewStore[S any](initial S, reduce Reducer[S], opts Options) *Store[S] {
	return &Store[S]{
		state:  initial,
		reduce: reduce,
		log:    coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:  coalesce[Hooks](opts.Hooks, NopHooks{}),
	}
}

// State returns the current state snapshot.
func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers l and returns a func removing it.
func (s *Store[S]) Subscribe(l Listener[S]) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry[S]{id: id, fn: l})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			kept := make([]listenerEntry[S], 0, len(s.listeners))
			for _, e := range s.listeners {
				if e.id != id {
					kept = append(kept, e)
				}
			}
			s.listeners = kept
		})
	}
}

// Dispatch reduces a into the state and notifies listeners.
func (s *Store[S]) Dispatch(ctx context.Context, a Action) {
	s.mu.Lock()
	prev := s.state
	next := s.reduce(prev, a)
	s.state = next
	ls := s.listeners
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.log.Debug("dispatch", Fields{"type": a.Type(), "key": a.Key.String()})
	for _, e := range ls {
		e.fn(ctx, a, prev, next)
	}
}

// Run executes p the way a promise middleware would: it dispatches Pending,
// runs the operation and dispatches Fulfilled with its value or Rejected with
// its error. Failures are returned as *ActionError.
func (s *Store[S]) Run(ctx context.Context, p PromiseAction) (any, error) {
	s.Dispatch(ctx, Pending(p.Kind, p.Key, p.Meta))

	var (
		v   any
		err error
	)
	if p.Do == nil {
		err = errNoOperation
	} else {
		v, err = p.Do(ctx)
	}

	// settle even when the caller's context is already done
	settleCtx := context.WithoutCancel(ctx)
	if err != nil {
		s.Dispatch(settleCtx, Rejected(p.Kind, p.Key, err, p.Meta))
		s.hooks.ActionRejected(p.Kind, p.Key, err)
		return nil, &ActionError{Kind: p.Kind, Key: p.Key, Err: err}
	}
	s.Dispatch(settleCtx, Fulfilled(p.Kind, p.Key, v, p.Meta))
	return v, nil
}
