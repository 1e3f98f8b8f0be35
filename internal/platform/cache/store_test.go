package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestStore_GetSet(t *testing.T) {
	store := NewStore(0)
	ctx := context.Background()

	if _, ok := store.Get(ctx, "missing"); ok {
		t.Fatalf("empty store must miss")
	}

	store.Set(ctx, "k", 42)
	got, ok := store.Get(ctx, "k")
	if !ok || got.(int) != 42 {
		t.Fatalf("get = (%v, %v), want (42, true)", got, ok)
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	store := NewStore(10 * time.Millisecond)
	ctx := context.Background()

	store.Set(ctx, "k", "v")
	if _, ok := store.Get(ctx, "k"); !ok {
		t.Fatalf("fresh entry must hit")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("expired entry must miss")
	}
}

func TestStore_GetOrLoadCachesOnce(t *testing.T) {
	store := NewStore(time.Minute)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (any, error) {
		loads++
		return "payload", nil
	}

	for i := 0; i < 3; i++ {
		got, err := store.GetOrLoad(ctx, "k", loader)
		if err != nil || got.(string) != "payload" {
			t.Fatalf("get or load: (%v, %v)", got, err)
		}
	}
	if loads != 1 {
		t.Fatalf("loader ran %d times, want once", loads)
	}
}

func TestStore_GetOrLoadErrorNotCached(t *testing.T) {
	store := NewStore(time.Minute)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, fmt.Errorf("upstream down")
		}
		return "ok", nil
	}

	if _, err := store.GetOrLoad(ctx, "k", loader); err == nil {
		t.Fatalf("first load must fail")
	}
	got, err := store.GetOrLoad(ctx, "k", loader)
	if err != nil || got.(string) != "ok" {
		t.Fatalf("retry after failed load: (%v, %v)", got, err)
	}
}
