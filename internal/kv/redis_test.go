package kv

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStoreWithClient(client)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestRedis(t)

	if _, ok, err := store.Get(ctx, KeySelections); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, KeySelections, `{"version":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := store.Get(ctx, KeySelections)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if value != `{"version":1}` {
		t.Fatalf("value = %q", value)
	}

	// Overwrite replaces, no append semantics.
	if err := store.Set(ctx, KeySelections, "v2"); err != nil {
		t.Fatal(err)
	}
	value, _, _ = store.Get(ctx, KeySelections)
	if value != "v2" {
		t.Fatalf("value after overwrite = %q", value)
	}
}

func TestRedisStorePing(t *testing.T) {
	store := newTestRedis(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if _, ok, _ := store.Get(ctx, KeyManual); ok {
		t.Fatal("expected missing key")
	}
	if err := store.Set(ctx, KeyManual, "doc"); err != nil {
		t.Fatal(err)
	}
	value, ok, _ := store.Get(ctx, KeyManual)
	if !ok || value != "doc" {
		t.Fatalf("got %q ok=%v", value, ok)
	}
}
