// Package mirror persists one keyed slice of the application state into a
// provider so a restarted client can show its last known data at once.
//
// A Mirror is a store Listener. It diffs the slice on every reduction:
//   - a cell becoming pending snapshots the key's generation,
//   - a pending cell settling fresh is written under that generation, unless
//     the generation moved meanwhile (CAS),
//   - a cell becoming invalidated bumps the generation and deletes the entry.
//
// Restore reads entries back, drops corrupt or outdated ones and dispatches
// Restored actions, which never overwrite live cells and leave the restored
// cells invalidated so they are revalidated on next access.
//
// Listeners run on the dispatch path: provider round trips delay the next
// dispatch. Prefer in-process providers, or wrap hooks with hooks/async.
package mirror

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fairspace/mercury"
	"github.com/fairspace/mercury/codec"
	"github.com/fairspace/mercury/genstore"
	"github.com/fairspace/mercury/internal/wire"
	"github.com/fairspace/mercury/provider"
)

const (
	defaultTTL          = 24 * time.Hour
	defaultSweep        = time.Hour
	defaultGenRetention = 30 * 24 * time.Hour
)

var (
	ErrNoProvider  = errors.New("mirror: provider is required")
	ErrNoCodec     = errors.New("mirror: codec is required")
	ErrNoNamespace = errors.New("mirror: namespace is required")
	ErrNoSelect    = errors.New("mirror: select is required")
	ErrNoKind      = errors.New("mirror: kind is required")
)

// CostFunc returns the cost passed to Provider.Set. Default: len(value).
type CostFunc func(storageKey string, value []byte) int64

type Options[S, T any] struct {
	// Namespace separates mirrors sharing a provider, e.g. "listings".
	Namespace string
	// Kind is the fetch kind that owns the slice; restored actions use it.
	Kind mercury.Kind
	// Select picks the mirrored slice out of the state.
	Select func(S) mercury.Cells[T]

	Provider provider.Provider
	Codec    codec.Codec[T]
	// GenStore holds the per-key generations. nil => genstore.Local with
	// hourly cleanup, whose counters die with the process: after a restart
	// every key invalidated in an earlier session fails the generation check
	// and Restore drops it. Restoring across restarts from a persistent
	// provider (bolt, redis) needs a persistent GenStore such as
	// genstore.Redis.
	GenStore genstore.GenStore

	TTL  time.Duration // 0 => 24h
	Cost CostFunc

	Logger mercury.Logger
	Hooks  mercury.Hooks
}

type Mirror[S, T any] struct {
	ns    string
	kind  mercury.Kind
	sel   func(S) mercury.Cells[T]
	p     provider.Provider
	codec codec.Codec[T]
	gen   genstore.GenStore
	ttl   time.Duration
	cost  CostFunc
	log   mercury.Logger
	hooks mercury.Hooks

	mu      sync.Mutex
	pending map[mercury.Key]uint64 // generation observed when the fetch started
}

// Subscriber is the part of a Store that Attach needs.
type Subscriber[S any] interface {
	Subscribe(l mercury.Listener[S]) (unsubscribe func())
}

// Restorer receives the Restored actions.
type Restorer interface {
	Dispatch(ctx context.Context, a mercury.Action)
}

func New[S, T any](opts Options[S, T]) (*Mirror[S, T], error) {
	switch {
	case opts.Provider == nil:
		return nil, ErrNoProvider
	case opts.Codec == nil:
		return nil, ErrNoCodec
	case opts.Namespace == "":
		return nil, ErrNoNamespace
	case opts.Select == nil:
		return nil, ErrNoSelect
	case opts.Kind == mercury.KindUnknown:
		return nil, ErrNoKind
	}

	m := &Mirror[S, T]{
		ns:      opts.Namespace,
		kind:    opts.Kind,
		sel:     opts.Select,
		p:       opts.Provider,
		codec:   opts.Codec,
		gen:     opts.GenStore,
		ttl:     opts.TTL,
		cost:    opts.Cost,
		log:     opts.Logger,
		hooks:   opts.Hooks,
		pending: make(map[mercury.Key]uint64),
	}
	if m.gen == nil {
		m.gen = genstore.NewLocal(defaultSweep, defaultGenRetention)
	}
	if m.ttl == 0 {
		m.ttl = defaultTTL
	}
	if m.cost == nil {
		m.cost = func(_ string, b []byte) int64 { return int64(len(b)) }
	}
	if m.log == nil {
		m.log = mercury.NopLogger{}
	}
	if m.hooks == nil {
		m.hooks = mercury.NopHooks{}
	}
	return m, nil
}

// Attach subscribes the mirror to s and returns the unsubscribe func.
func (m *Mirror[S, T]) Attach(s Subscriber[S]) (detach func()) {
	return s.Subscribe(m.Listen)
}

func (m *Mirror[S, T]) storageKey(k mercury.Key) string {
	return "mirror:" + m.ns + ":" + string(k)
}

// Listen is a mercury.Listener.
func (m *Mirror[S, T]) Listen(ctx context.Context, a mercury.Action, prev, next S) {
	if a.Phase == mercury.PhaseRestored {
		return
	}
	before, after := m.sel(prev), m.sel(next)
	if mercury.SameCells(before, after) {
		return
	}

	for k, c := range after {
		old, had := before[k]
		switch {
		case c.Pending && (!had || !old.Pending):
			m.observe(ctx, k)
		case had && old.Pending && !c.Pending:
			gen, ok := m.take(k)
			if ok && c.Err == nil && c.Loaded && !c.Invalidated {
				if err := m.write(ctx, k, c.Data, gen); err != nil {
					m.log.Warn("mirror write failed", mercury.Fields{"ns": m.ns, "key": k.String(), "err": err.Error()})
				}
			}
		}
		if c.Invalidated && (!had || !old.Invalidated) {
			if err := m.Invalidate(ctx, k); err != nil {
				m.log.Warn("mirror invalidate failed", mercury.Fields{"ns": m.ns, "key": k.String(), "err": err.Error()})
			}
		}
	}
}

func (m *Mirror[S, T]) observe(ctx context.Context, k mercury.Key) {
	sk := m.storageKey(k)
	g, err := m.gen.Snapshot(ctx, sk)
	if err != nil {
		m.hooks.GenSnapshotError(1, err)
		m.take(k)
		return
	}
	m.mu.Lock()
	m.pending[k] = g
	m.mu.Unlock()
}

func (m *Mirror[S, T]) take(k mercury.Key) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.pending[k]
	delete(m.pending, k)
	return g, ok
}

// write stores v framed with observed, unless the generation moved since.
func (m *Mirror[S, T]) write(ctx context.Context, k mercury.Key, v T, observed uint64) error {
	sk := m.storageKey(k)
	cur, err := m.gen.Snapshot(ctx, sk)
	if err != nil {
		m.hooks.GenSnapshotError(1, err)
		return err
	}
	if cur != observed {
		m.hooks.StaleWriteSkipped(sk, observed)
		m.log.Debug("mirror write skipped (gen moved)", mercury.Fields{"key": sk, "obs": observed, "cur": cur})
		return nil
	}
	payload, err := m.codec.Encode(v)
	if err != nil {
		return err
	}
	b := wire.Encode(observed, payload)
	ok, err := m.p.Set(ctx, sk, b, m.cost(sk, b), m.ttl)
	if err != nil {
		return err
	}
	if !ok {
		m.hooks.ProviderSetRejected(sk)
		m.log.Debug("mirror write rejected by provider", mercury.Fields{"key": sk})
	}
	return nil
}

// Invalidate bumps the generation of k and deletes its entry. Writes of
// fetches that started before are skipped afterwards.
func (m *Mirror[S, T]) Invalidate(ctx context.Context, k mercury.Key) error {
	sk := m.storageKey(k)
	newGen, bumpErr := m.gen.Bump(ctx, sk)
	if bumpErr != nil {
		m.hooks.GenBumpError(sk, bumpErr)
	}
	delErr := m.p.Del(ctx, sk)

	switch {
	case bumpErr != nil && delErr != nil:
		m.hooks.InvalidateOutage(sk, bumpErr, delErr)
		return &mercury.InvalidateError{Key: sk, BumpErr: bumpErr, DelErr: delErr}
	case bumpErr != nil:
		// entry is gone but a racing write could still land under the old gen
		return &mercury.InvalidateError{Key: sk, BumpErr: bumpErr}
	case delErr != nil:
		// the bump already fences the stale entry; restore will drop it
		m.log.Debug("mirror delete failed after bump", mercury.Fields{"key": sk, "err": delErr.Error()})
	}
	m.log.Debug("mirror invalidated", mercury.Fields{"key": sk, "newGen": newGen})
	return nil
}

// Restore loads the entries of keys and dispatches a Restored action for
// each valid one. Corrupt entries and entries written under an outdated
// generation are deleted. It returns the number of restored cells.
func (m *Mirror[S, T]) Restore(ctx context.Context, d Restorer, keys []mercury.Key) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	sks := make([]string, len(keys))
	for i, k := range keys {
		sks[i] = m.storageKey(k)
	}
	gens, err := m.gen.SnapshotMany(ctx, sks)
	if err != nil {
		m.hooks.GenSnapshotError(len(sks), err)
		return 0, err
	}

	n := 0
	for i, k := range keys {
		sk := sks[i]
		raw, ok, err := m.p.Get(ctx, sk)
		if err != nil {
			return n, err
		}
		if !ok {
			continue
		}
		gen, payload, err := wire.Decode(raw)
		if err != nil {
			m.heal(ctx, sk, "corrupt")
			continue
		}
		if gen != gens[sk] {
			m.heal(ctx, sk, "gen_mismatch")
			continue
		}
		v, err := m.codec.Decode(payload)
		if err != nil {
			m.heal(ctx, sk, "value_decode")
			continue
		}
		d.Dispatch(ctx, mercury.Restore(m.kind, k, v))
		n++
	}
	m.log.Debug("mirror restored", mercury.Fields{"ns": m.ns, "requested": len(keys), "restored": n})
	return n, nil
}

func (m *Mirror[S, T]) heal(ctx context.Context, sk, reason string) {
	_ = m.p.Del(ctx, sk)
	m.hooks.SelfHealSingle(sk, reason)
}

// Close closes the generation store, then the provider.
func (m *Mirror[S, T]) Close(ctx context.Context) error {
	return errors.Join(m.gen.Close(ctx), m.p.Close(ctx))
}
