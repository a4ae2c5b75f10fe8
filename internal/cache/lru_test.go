// internal/cache/lru_test.go
//
// Run: go test ./internal/cache -v

package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := New[string, int](2, func(k string, _ int) { evicted = append(evicted, k) })

	c.Add("a", 1)
	c.Add("b", 2)
	if _, ok := c.Get("a"); !ok { // a becomes MRU
		t.Fatalf("a missing")
	}
	c.Add("c", 3) // evicts b

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %v, %v", v, ok)
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("evicted = %v", evicted)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d", c.Len())
	}
}

func TestLRUUpdateAndRemove(t *testing.T) {
	removed := 0
	c := New[string, int](2, func(string, int) { removed++ })
	c.Add("a", 1)
	c.Add("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Fatalf("update lost: %d", v)
	}
	if c.Len() != 1 {
		t.Fatalf("update should not grow the cache")
	}
	if !c.Remove("a") || c.Remove("a") {
		t.Fatalf("Remove should report presence once")
	}
	if removed != 1 {
		t.Fatalf("onEvict calls = %d", removed)
	}
}

func TestLRUConcurrent(t *testing.T) {
	c := New[string, int](50, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				k := strconv.Itoa((i * j) % 75)
				c.Add(k, j)
				c.Get(k)
			}
		}(i)
	}
	wg.Wait()
	if c.Len() > 50 {
		t.Fatalf("Len = %d exceeds capacity", c.Len())
	}
}

func TestNewPanicsOnZeroCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	New[int, int](0, nil)
}

func TestLRUEvictIdle(t *testing.T) {
	var evicted []string
	c := New[string, int](4, func(k string, _ int) { evicted = append(evicted, k) })
	clock := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return clock }

	c.Add("old", 1)
	clock = clock.Add(10 * time.Minute)
	c.Add("fresh", 2)
	c.Add("touched", 3)
	clock = clock.Add(10 * time.Minute)
	c.Get("touched")

	if n := c.EvictIdle(15 * time.Minute); n != 1 {
		t.Fatalf("EvictIdle = %d, want 1", n)
	}
	if _, ok := c.Get("old"); ok {
		t.Fatalf("old should be gone")
	}
	if len(evicted) != 1 || evicted[0] != "old" {
		t.Fatalf("evicted = %v", evicted)
	}

	clock = clock.Add(6 * time.Minute)
	if n := c.EvictIdle(15 * time.Minute); n != 1 {
		t.Fatalf("second pass = %d, want 1 (fresh)", n)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestLRUGetOrAddCreatesOnce(t *testing.T) {
	evicted := 0
	c := New[string, *int](1, func(string, *int) { evicted++ })

	var created sync.Map
	var wg sync.WaitGroup
	got := make([]*int, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, added := c.GetOrAdd("k", func() *int {
				n := i
				return &n
			})
			if added {
				created.Store(i, true)
			}
			got[i] = v
		}(i)
	}
	wg.Wait()

	n := 0
	created.Range(func(any, any) bool { n++; return true })
	if n != 1 {
		t.Fatalf("create ran %d times, want 1", n)
	}
	for i, v := range got {
		if v != got[0] {
			t.Fatalf("caller %d got a different value", i)
		}
	}

	if _, added := c.GetOrAdd("other", func() *int { return new(int) }); !added {
		t.Fatalf("miss should report added")
	}
	if evicted != 1 || c.Len() != 1 {
		t.Fatalf("capacity not enforced: evicted=%d len=%d", evicted, c.Len())
	}
}
