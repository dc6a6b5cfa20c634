// Package genstore keeps the per-key generation counters that fence mirror
// writes: an entry is only valid while the generation it was written under
// is still current, and invalidation bumps the generation.
package genstore

import (
	"context"
	"time"
)

type GenStore interface {
	// Snapshot returns the current generation of storageKey; missing => 0.
	Snapshot(ctx context.Context, storageKey string) (uint64, error)
	// SnapshotMany returns the generations of every key; missing => 0.
	SnapshotMany(ctx context.Context, storageKeys []string) (map[string]uint64, error)
	// Bump increments the generation atomically and returns the new value.
	Bump(ctx context.Context, storageKey string) (uint64, error)
	// Cleanup forgets counters idle for longer than retention, if supported.
	Cleanup(retention time.Duration)
	Close(ctx context.Context) error
}
