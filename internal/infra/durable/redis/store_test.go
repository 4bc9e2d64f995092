package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"bizstate/internal/durable/core"
)

// TestRedisStoreRoundTrip runs against a live server when BIZSTATE_TEST_REDIS_ADDR is set.
func TestRedisStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("BIZSTATE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BIZSTATE_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	ns := "bizstate-test-" + time.Now().UTC().Format("150405.000000") + ":"
	store, err := New(ctx, Config{Addr: addr, Namespace: ns})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, ok, err := store.Get(ctx, "tickets"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "tickets", `[]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := store.Get(ctx, "tickets")
	if err != nil || !ok || v != `[]` {
		t.Fatalf("unexpected value %q ok=%v err=%v", v, ok, err)
	}
	keys, err := store.Keys(ctx)
	if err != nil || len(keys) != 1 || keys[0] != "tickets" {
		t.Fatalf("unexpected keys %v err=%v", keys, err)
	}
	if err := store.Delete(ctx, "tickets"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestRedisStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := New(ctx, Config{Addr: "127.0.0.1:1"}); err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestNewFromClientDefaults(t *testing.T) {
	store := NewFromClient(nil, "")
	if store.namespace != defaultNamespace {
		t.Fatalf("expected default namespace, got %q", store.namespace)
	}
	if store.Driver() != core.DriverRedis {
		t.Fatalf("expected redis driver")
	}
	if store.redisKey("orders") != "bizstate:orders" {
		t.Fatalf("unexpected redis key %q", store.redisKey("orders"))
	}
}
