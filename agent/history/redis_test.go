package history

import (
	"context"
	"testing"
	"time"
)

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisStore(RedisConfig{URL: "http://localhost:6379"}, ""); err == nil {
		t.Fatal("expected error for non-redis scheme")
	}
}

func TestRedisStoreUnreachableServer(t *testing.T) {
	t.Parallel()

	store, err := NewRedisStore(RedisConfig{URL: "redis://127.0.0.1:1/0", Timeout: 200 * time.Millisecond}, "")
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if store.key != defaultKey {
		t.Fatalf("key = %q, want %q", store.key, defaultKey)
	}

	items, err := store.Load(context.Background())
	if err == nil {
		t.Fatal("expected connection error")
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("failed load must return empty list, got %v", items)
	}
}
