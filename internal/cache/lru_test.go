package cache

import (
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[int, string](2, time.Minute)

	if _, ok := c.Get(2023); ok {
		t.Fatal("empty cache should miss")
	}

	c.Set(2023, "a")
	c.Set(2024, "b")
	if v, ok := c.Get(2023); !ok || v != "a" {
		t.Fatalf("Get(2023) = %q, %v; want a, true", v, ok)
	}

	// 2024 is now least recently used and gets evicted.
	c.Set(2025, "c")
	if _, ok := c.Get(2024); ok {
		t.Error("2024 should have been evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}

	c.Set(2023, "z")
	if v, _ := c.Get(2023); v != "z" {
		t.Errorf("overwrite: got %q, want z", v)
	}

	want := Stats{Size: 2, Hits: 2, Misses: 2, Evictions: 1}
	if got := c.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestLRUCache_MinimumSize(t *testing.T) {
	c := NewLRUCache[string, int](0, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("latest entry should be kept")
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string, string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.Set("other", "v")

	now = now.Add(30 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry should still be fresh")
	}

	now = now.Add(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should have expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestLRUCache_DeleteAndPurge(t *testing.T) {
	c := NewLRUCache[int, int](10, time.Minute)
	for i := 0; i < 5; i++ {
		c.Set(i, i)
	}

	c.Delete(0)
	if _, ok := c.Get(0); ok {
		t.Error("deleted key should miss")
	}

	c.Purge()
	if c.Size() != 0 {
		t.Errorf("Size() after Purge = %d, want 0", c.Size())
	}
	c.Set(7, 1)
	if _, ok := c.Get(7); !ok {
		t.Error("cache should be usable after Purge")
	}
}

func TestManager_SweepAndStats(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int, int](10, time.Second)
	c.now = func() time.Time { return now }
	c.Set(1, 1)
	c.Set(2, 2)

	m := NewManager()
	m.Register("years", c)

	if got := m.Stats()["years"].Size; got != 2 {
		t.Errorf("Stats()[years].Size = %d, want 2", got)
	}

	now = now.Add(2 * time.Second)
	if n := m.Sweep(); n != 2 {
		t.Errorf("Sweep() = %d, want 2", n)
	}

	m.StartCleanup(time.Hour)
	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop() // second stop is a no-op
	m.StartCleanup(time.Hour)
	m.Stop()
}
