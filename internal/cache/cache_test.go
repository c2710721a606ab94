package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New[string](10, time.Hour)
	defer c.Stop()

	c.Set("a", "value")
	got, ok := c.Get("a")
	if !ok {
		t.Fatal("expected hit for key 'a'")
	}
	if got != "value" {
		t.Fatalf("expected 'value', got %q", got)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New[int](10, 20*time.Millisecond)
	defer c.Stop()

	c.Set("a", 1)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss after expiry")
	}
}

func TestCache_CapacityEviction(t *testing.T) {
	c := New[int](3, time.Hour)
	defer c.Stop()

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
		time.Sleep(time.Millisecond) // distinct expiry order
	}
	c.Set("k3", 3)

	if c.Len() != 3 {
		t.Fatalf("expected 3 entries after eviction, got %d", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Fatal("expected oldest entry k0 to be evicted")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Fatal("expected newest entry k3 to be present")
	}
}

func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	c := New[int](2, time.Hour)
	defer c.Stop()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 3)

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	got, ok := c.Get("a")
	if !ok || got != 3 {
		t.Fatalf("expected overwritten value 3, got %d (hit=%v)", got, ok)
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("expected 'b' to survive overwrite of 'a'")
	}
}

func TestCache_CleanExpired(t *testing.T) {
	c := New[int](10, 10*time.Millisecond)
	defer c.Stop()

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	removed := c.CleanExpired()
	if removed != 2 {
		t.Fatalf("expected 2 expired entries removed, got %d", removed)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry to remain, got %d", c.Len())
	}
}
