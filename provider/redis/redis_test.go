package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// unreachable returns a client whose every command fails without retries.
func unreachable() *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestNilClient(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNilClient) {
		t.Fatalf("want ErrNilClient, got %v", err)
	}
}

func TestErrorsAreNotMisses(t *testing.T) {
	ctx := context.Background()
	c := unreachable()
	t.Cleanup(func() { _ = c.Close() })
	p, err := New(Config{Client: c})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, ok, err := p.Get(ctx, "k"); ok || err == nil {
		t.Fatalf("get on unreachable server: ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "k", []byte("v"), 1, -time.Second); ok || err == nil {
		t.Fatalf("set on unreachable server: ok=%v err=%v", ok, err)
	}
}

func TestCloseOwnership(t *testing.T) {
	ctx := context.Background()

	shared := unreachable()
	p, _ := New(Config{Client: shared})
	if err := p.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := shared.Close(); err != nil {
		t.Fatalf("borrowed client was closed by the provider: %v", err)
	}

	owned, _ := New(Config{Client: unreachable(), CloseClient: true})
	if err := owned.Close(ctx); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := owned.Close(ctx); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
