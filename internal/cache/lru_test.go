package cache

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"lynx/internal/log"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clk.now
	return c, clk
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing")
	}
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("a = %q, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUExpires(t *testing.T) {
	c, clk := newTestCache(4, time.Minute)
	c.Set("a", "1")
	clk.t = clk.t.Add(30 * time.Second)
	c.Set("b", "2")
	clk.t = clk.t.Add(45 * time.Second)

	if _, ok := c.Get("a"); ok {
		t.Fatal("a should be expired")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Fatalf("CleanExpired = %d, want 0 (a already dropped by Get)", n)
	}
	clk.t = clk.t.Add(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUOverwriteAndPurge(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)
	c.Set("a", "1")
	c.Set("a", "2")
	if v, _ := c.Get("a"); v != "2" {
		t.Fatalf("a = %q", v)
	}
	c.Set("b", "3")
	c.Delete("b")
	if _, ok := c.Get("b"); ok {
		t.Fatal("b not deleted")
	}
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("size after purge = %d", c.Size())
	}
	c.Set("c", "4")
	if _, ok := c.Get("c"); !ok {
		t.Fatal("cache unusable after purge")
	}
}

func TestZeroSizeDisablesCache(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Fatal("zero-size cache stored a value")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := NewLRUCache[int](16, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				k := Key("r", i, j%20)
				c.Set(k, j)
				c.Get(k)
			}
		}(i)
	}
	wg.Wait()
	if c.Size() > 16 {
		t.Fatalf("size %d exceeds max", c.Size())
	}
}

func TestKey(t *testing.T) {
	if got := Key("billing", 3, 2024); got != "billing|3|2024" {
		t.Fatalf("Key = %q", got)
	}
	if got := Key("contacts"); got != "contacts" {
		t.Fatalf("Key = %q", got)
	}
}

func TestJanitor(t *testing.T) {
	c, clk := newTestCache(4, time.Minute)
	c.Set("a", "1")
	clk.t = clk.t.Add(2 * time.Minute)

	j := NewJanitor(log.New(log.Config{Output: io.Discard}))
	j.Register(c)
	if n := j.Sweep(); n != 1 {
		t.Fatalf("Sweep = %d", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx, time.Millisecond) }()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run = %v", err)
	}
}
