// Package provider defines the byte stores a mirror persists cells into.
//
// Implementations must be byte-for-byte transparent: Get returns exactly the
// bytes previously passed to Set for a key. Keys under "mirror:<ns>:" belong
// to mirrors; foreign values found there fail frame validation and are
// deleted on restore.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs, safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl (<= 0 means the store's default). cost may be
	// ignored. ok=false means the store dropped the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	Close(ctx context.Context) error
}
