package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCache_ExpiresEntries(t *testing.T) {
	c := New[[]byte](time.Minute)
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("activity.docx", []byte("PK"))
	if v, ok := c.Get("activity.docx"); !ok || string(v) != "PK" {
		t.Fatalf("expected hit, got %q %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("activity.docx"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestCache_GetOrLoad(t *testing.T) {
	c := New[string](time.Minute)
	calls := 0
	load := func() (string, error) {
		calls++
		return "v", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("k", load)
		if err != nil || v != "v" {
			t.Fatalf("unexpected %q %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one load, got %d", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrLoad("bad", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Fatalf("errors must not be cached")
	}
}

func TestCache_GetOrLoad_SharesConcurrentLoads(t *testing.T) {
	c := New[string](time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	load := func() (string, error) {
		calls.Add(1)
		<-release
		return "tpl", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := c.GetOrLoad("k", load); err != nil || v != "tpl" {
				t.Errorf("unexpected %q %v", v, err)
			}
		}()
	}

	// give the goroutines time to pile up on the in-flight load
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Fatalf("expected one shared load, got %d", n)
	}
}
