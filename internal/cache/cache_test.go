package cache

import (
	"testing"
	"time"
)

func TestTTL_EmptyMisses(t *testing.T) {
	c := New[[]string](time.Minute)
	if _, ok := c.Get(); ok {
		t.Error("empty cache should miss")
	}
}

func TestTTL_PutThenGet(t *testing.T) {
	c := New[[]string](time.Minute)
	c.Put([]string{"default", "kube-system"})

	got, ok := c.Get()
	if !ok {
		t.Fatal("expected a hit")
	}
	if len(got) != 2 || got[0] != "default" {
		t.Errorf("got %v", got)
	}
}

func TestTTL_Expires(t *testing.T) {
	c := New[int](10 * time.Millisecond)
	c.Put(42)
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get(); ok {
		t.Error("expired entry should miss")
	}
}

func TestTTL_Invalidate(t *testing.T) {
	c := New[int](time.Minute)
	c.Put(7)
	c.Invalidate()

	if _, ok := c.Get(); ok {
		t.Error("invalidated entry should miss")
	}
}
