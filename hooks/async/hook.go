// Package asynchook moves Hooks calls off the dispatch path onto a bounded
// queue served by worker goroutines. Events are dropped when the queue is
// full.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SelfHealEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000)
//	defer hooks.Close()
//
//	store := state.NewStore(mercury.Options{Hooks: hooks})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/fairspace/mercury"
)

type Hooks struct {
	inner   mercury.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ mercury.Hooks = (*Hooks)(nil)

func New(inner mercury.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}
	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for range workers {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the workers. Hooks must not be called
// after Close.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded on a full queue.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) ActionRejected(k mercury.Kind, key mercury.Key, err error) {
	h.try(func() { h.inner.ActionRejected(k, key, err) })
}
func (h *Hooks) SelfHealSingle(k, r string)  { h.try(func() { h.inner.SelfHealSingle(k, r) }) }
func (h *Hooks) ProviderSetRejected(k string) { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) StaleWriteSkipped(k string, obs uint64) {
	h.try(func() { h.inner.StaleWriteSkipped(k, obs) })
}
func (h *Hooks) GenSnapshotError(n int, err error) { h.try(func() { h.inner.GenSnapshotError(n, err) }) }
func (h *Hooks) GenBumpError(k string, err error)  { h.try(func() { h.inner.GenBumpError(k, err) }) }
func (h *Hooks) InvalidateOutage(k string, be, de error) {
	h.try(func() { h.inner.InvalidateOutage(k, be, de) })
}
