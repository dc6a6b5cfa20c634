// Package actions exposes the entry points UI code calls: fetch-if-needed
// loaders that never fail (errors are logged and stored on the cell) and
// mutations whose errors propagate to the caller.
package actions

import (
	"context"
	"errors"
	"strings"

	"github.com/fairspace/mercury"
	"github.com/fairspace/mercury/collections"
	"github.com/fairspace/mercury/files"
	"github.com/fairspace/mercury/metadata"
	"github.com/fairspace/mercury/permissions"
	"github.com/fairspace/mercury/state"
	"github.com/fairspace/mercury/workspace"
)

var (
	ErrNoSubject    = errors.New("no subject, predicate or values given")
	ErrEntityExists = errors.New("metadata entity already exists")
	ErrNoClient     = errors.New("actions: client not configured")
)

// Store is the part of a state.Store the actions need.
type Store interface {
	State() state.AppState
	Dispatch(ctx context.Context, a mercury.Action)
	Run(ctx context.Context, p mercury.PromiseAction) (any, error)
}

// Clients are the remote collaborators. A nil client makes its actions fail
// with ErrNoClient.
type Clients struct {
	Files       files.Client
	Collections collections.Client
	Metadata    metadata.Client
	Permissions permissions.Client
	Workspace   workspace.Client
}

type Options struct {
	Logger mercury.Logger // nil => NopLogger
	// Origin prefixes the IRIs of created entities, e.g. "https://ws.example.com".
	Origin string
	// MaxParallel bounds concurrent requests of batch mutations. <= 0 => 4.
	MaxParallel int
}

type Actions struct {
	store   Store
	clients Clients
	log     mercury.Logger
	origin  string
	limit   int
}

func New(store Store, clients Clients, opts Options) *Actions {
	a := &Actions{
		store:   store,
		clients: clients,
		log:     opts.Logger,
		origin:  strings.TrimSuffix(opts.Origin, "/"),
		limit:   opts.MaxParallel,
	}
	if a.log == nil {
		a.log = mercury.NopLogger{}
	}
	if a.limit <= 0 {
		a.limit = 4
	}
	return a
}

// ifNeeded runs p unless the selected cell is fresh.
func ifNeeded[T any](ctx context.Context, a *Actions, p mercury.PromiseAction, sel func(state.AppState) *mercury.Cell[T]) (mercury.Result[T], error) {
	return mercury.DispatchIfNeeded(ctx, a.store, func() mercury.PromiseAction { return p }, sel)
}

// swallow logs a failed fetch and resolves to the zero Result. The failure
// is already recorded on the cell by the Rejected action.
func swallow[T any](a *Actions, p mercury.PromiseAction, r mercury.Result[T], err error) mercury.Result[T] {
	if err != nil {
		a.log.Error("fetch failed", mercury.Fields{
			"type": p.Kind.String(),
			"key":  p.Key.String(),
			"err":  err.Error(),
		})
		return mercury.Result[T]{}
	}
	return r
}

// mutate runs a mutation and returns its error.
func (a *Actions) mutate(ctx context.Context, kind mercury.Kind, key mercury.Key, meta any, do func(ctx context.Context) (any, error)) (any, error) {
	v, err := a.store.Run(ctx, mercury.PromiseAction{Kind: kind, Key: key, Meta: meta, Do: do})
	if err != nil {
		a.log.Warn("mutation failed", mercury.Fields{"type": kind.String(), "key": key.String(), "err": err.Error()})
	}
	return v, err
}

func (a *Actions) invalidate(ctx context.Context, kind mercury.Kind, key mercury.Key) {
	a.store.Dispatch(ctx, mercury.Invalidate(kind, key))
}
