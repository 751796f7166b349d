package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestIncrWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(Config{Addr: mr.Addr()})
	defer c.Close()

	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	for want := int64(1); want <= 3; want++ {
		n, ttl, err := c.IncrWindow(ctx, "login:10.0.0.1", time.Minute)
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if n != want {
			t.Fatalf("count: got %d want %d", n, want)
		}
		if ttl <= 0 || ttl > time.Minute {
			t.Fatalf("ttl out of range: %s", ttl)
		}
	}

	if !mr.Exists("leolynk:login:10.0.0.1") {
		t.Fatalf("expected prefixed key")
	}

	mr.FastForward(2 * time.Minute)

	n, _, err := c.IncrWindow(ctx, "login:10.0.0.1", time.Minute)
	if err != nil {
		t.Fatalf("incr after window: %v", err)
	}
	if n != 1 {
		t.Fatalf("window should reset, got %d", n)
	}
}
