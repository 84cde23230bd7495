package cache

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUExpiry(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	c := NewLRU[string](4, time.Minute).WithClock(clk.Now)

	c.Set("Suivi", "v1")
	if v, ok := c.Get("Suivi"); !ok || v != "v1" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
	clk.Advance(time.Minute)
	if _, ok := c.Get("Suivi"); ok {
		t.Fatal("entry should expire at ttl")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not removed, len=%d", c.Len())
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("stats = %d/%d", hits, misses)
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a was used recently and must survive")
	}
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("len after purge = %d", c.Len())
	}
}

func TestJanitorSweep(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := NewLRU[int](8, time.Second).WithClock(clk.Now)
	c.Set("a", 1)
	c.Set("b", 2)
	clk.Advance(500 * time.Millisecond)
	c.Set("c", 3)
	clk.Advance(600 * time.Millisecond)

	j := NewJanitor(c)
	if n := j.Sweep(); n != 2 {
		t.Fatalf("swept %d, want 2", n)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d", c.Len())
	}

	ctx, cancel := context.WithCancel(context.Background())
	go j.Run(ctx, time.Millisecond)
	cancel()
	select {
	case <-j.Done():
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
