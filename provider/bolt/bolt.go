// Package bolt persists mirrored entries in a bbolt file, so a desktop
// client restarts with its last listings.
package bolt

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fairspace/mercury/provider"
)

var (
	bucketValues  = []byte("values")
	bucketExpires = []byte("expires")

	ErrNoPath = errors.New("bolt provider: path is required")
)

type Provider struct {
	db  *bolt.DB
	now func() time.Time
}

var _ provider.Provider = (*Provider)(nil)

type Config struct {
	Path        string        // database file; parent directories are created
	OpenTimeout time.Duration // lock wait; 0 => 1s
}

func Open(cfg Config) (*Provider, error) {
	if cfg.Path == "" {
		return nil, ErrNoPath
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Second
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: cfg.OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketValues, bucketExpires} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Provider{db: db, now: time.Now}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	var (
		out     []byte
		expired bool
	)
	err := p.db.View(func(tx *bolt.Tx) error {
		k := []byte(key)
		if exp := tx.Bucket(bucketExpires).Get(k); len(exp) == 8 {
			if p.now().UnixNano() >= int64(binary.BigEndian.Uint64(exp)) {
				expired = true
				return nil
			}
		}
		// values are only valid inside the transaction
		if v := tx.Bucket(bucketValues).Get(k); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if expired {
		return nil, false, p.Del(context.Background(), key)
	}
	return out, out != nil, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	err := p.db.Update(func(tx *bolt.Tx) error {
		k := []byte(key)
		if err := tx.Bucket(bucketValues).Put(k, value); err != nil {
			return err
		}
		exp := tx.Bucket(bucketExpires)
		if ttl <= 0 {
			return exp.Delete(k)
		}
		var u8 [8]byte
		binary.BigEndian.PutUint64(u8[:], uint64(p.now().Add(ttl).UnixNano()))
		return exp.Put(k, u8[:])
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		k := []byte(key)
		if err := tx.Bucket(bucketValues).Delete(k); err != nil {
			return err
		}
		return tx.Bucket(bucketExpires).Delete(k)
	})
}

func (p *Provider) Close(context.Context) error { return p.db.Close() }
