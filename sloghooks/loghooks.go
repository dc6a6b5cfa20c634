// Package sloghooks reports Hooks events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/fairspace/mercury"
)

type Options struct {
	// Sampling; 0 or 1 logs every event.
	SelfHealEvery  uint64
	RejectionEvery uint64
	// Redact renders storage keys, which contain paths and IRIs.
	// Default: first 8 bytes of the SHA-256, hex encoded.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr atomic.Uint64
	rejectCtr   atomic.Uint64
}

var _ mercury.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n <= 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) ActionRejected(kind mercury.Kind, key mercury.Key, err error) {
	if h.l == nil || !sample(h.opts.RejectionEvery, &h.rejectCtr) {
		return
	}
	h.l.Info("mercury.action_rejected",
		"type", kind.String(),
		"key", h.redact(key.String()),
		"err", err)
}

func (h *Hooks) SelfHealSingle(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("mercury.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("mercury.provider_set_rejected", "key", h.redact(storageKey))
}

func (h *Hooks) StaleWriteSkipped(storageKey string, observed uint64) {
	if h.l == nil {
		return
	}
	h.l.Debug("mercury.stale_write_skipped",
		"key", h.redact(storageKey),
		"observed_gen", observed)
}

func (h *Hooks) GenSnapshotError(count int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("mercury.gen_snapshot_error", "count", count, "err", err)
}

func (h *Hooks) GenBumpError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("mercury.gen_bump_error", "key", h.redact(storageKey), "err", err)
}

func (h *Hooks) InvalidateOutage(key string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("mercury.invalidate_outage",
		"key", h.redact(key),
		"bump_err", bumpErr,
		"del_err", delErr)
}
