// Package ttlcache keeps mirrored entries in a jellydator/ttlcache with
// per-entry expiry, for short-lived sessions.
package ttlcache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/fairspace/mercury/provider"
)

type Provider struct {
	c *ttlcache.Cache[string, []byte]
}

var _ provider.Provider = (*Provider)(nil)

type Config struct {
	DefaultTTL time.Duration // used when Set gets ttl <= 0; 0 = no expiry
	Capacity   uint64        // 0 = unbounded
}

// New starts the expiry loop; Close stops it.
func New(cfg Config) *Provider {
	opts := []ttlcache.Option[string, []byte]{
		ttlcache.WithTTL[string, []byte](cfg.DefaultTTL),
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	}
	if cfg.Capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](cfg.Capacity))
	}
	c := ttlcache.New[string, []byte](opts...)
	go c.Start()
	return &Provider{c: c}
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	item := p.c.Get(key)
	if item == nil || item.IsExpired() {
		return nil, false, nil
	}
	return item.Value(), true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = ttlcache.DefaultTTL
	}
	p.c.Set(key, value, ttl)
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Delete(key)
	return nil
}

func (p *Provider) Close(context.Context) error {
	p.c.Stop()
	return nil
}
