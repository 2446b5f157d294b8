package lru

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCache_Basic(t *testing.T) {
	c := New[string, int](Config{MaxSize: 2})

	c.Set("a", 1)
	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Errorf("Get(a) = %v, %v, want 1, true", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) should miss")
	}
}

func TestCache_Eviction(t *testing.T) {
	var evicted []string
	c := New[string, int](Config{MaxSize: 2}).OnEvict(func(k string, _ int) {
		evicted = append(evicted, k)
	})

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recent
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("evicted = %v, want [b]", evicted)
	}
}

func TestCache_Disabled(t *testing.T) {
	c := New[string, int](Config{MaxSize: 0})
	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Error("disabled cache should never hit")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCache_TTL(t *testing.T) {
	c := New[string, int](Config{MaxSize: 4, TTL: time.Minute})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("fresh entry should hit")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be removed, Len() = %d", c.Len())
	}
}

func TestCache_GetOrLoad(t *testing.T) {
	c := New[string, string](Config{MaxSize: 4})
	calls := 0
	load := func() (string, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("k", load)
		if err != nil {
			t.Fatalf("GetOrLoad() error = %v", err)
		}
		if v != "value" {
			t.Errorf("GetOrLoad() = %q, want %q", v, "value")
		}
	}
	if calls != 1 {
		t.Errorf("load called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrLoad("bad", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Errorf("GetOrLoad() error = %v, want %v", err, boom)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("errors should not be cached")
	}
}

func TestCache_RemoveAndClear(t *testing.T) {
	c := New[int, int](Config{MaxSize: 10})
	for i := 0; i < 5; i++ {
		c.Set(i, i*i)
	}

	c.Remove(2)
	if _, ok := c.Get(2); ok {
		t.Error("removed key should miss")
	}
	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := New[int, int](Config{MaxSize: 16})
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.Set(i%32, g)
				c.Get(i % 32)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 16 {
		t.Errorf("Len() = %d, exceeds MaxSize", c.Len())
	}
}
