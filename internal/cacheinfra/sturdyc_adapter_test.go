package cacheinfra

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-skillsnap/cache"
	"github.com/goliatone/go-skillsnap/pkg/testsupport"
)

func newTestStore(t *testing.T, opts ...StoreOption) *SturdycStore {
	t.Helper()
	cfg := Config{
		Capacity:           100,
		NumShards:          2,
		TTL:                time.Hour,
		EvictionPercentage: 10,
	}
	store, err := NewSturdycStore(cfg, opts...)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 10000 {
		t.Errorf("expected Capacity to be 10000, got %d", cfg.Capacity)
	}
	if cfg.NumShards != 256 {
		t.Errorf("expected NumShards to be 256, got %d", cfg.NumShards)
	}
	if cfg.TTL != 10*time.Minute {
		t.Errorf("expected TTL to be 10 minutes, got %v", cfg.TTL)
	}
	if cfg.EvictionPercentage != 10 {
		t.Errorf("expected EvictionPercentage to be 10, got %d", cfg.EvictionPercentage)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to be valid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero capacity", mutate: func(c *Config) { c.Capacity = 0 }, errorMsg: "config error in field Capacity: must be greater than 0"},
		{name: "zero shards", mutate: func(c *Config) { c.NumShards = 0 }, errorMsg: "config error in field NumShards: must be greater than 0"},
		{name: "zero ttl", mutate: func(c *Config) { c.TTL = 0 }, errorMsg: "config error in field TTL: must be greater than 0"},
		{name: "eviction zero", mutate: func(c *Config) { c.EvictionPercentage = 0 }, errorMsg: "config error in field EvictionPercentage: must be between 1 and 100"},
		{name: "eviction above 100", mutate: func(c *Config) { c.EvictionPercentage = 101 }, errorMsg: "config error in field EvictionPercentage: must be between 1 and 100"},
		{name: "negative interval", mutate: func(c *Config) { c.EvictionInterval = -time.Second }, errorMsg: "config error in field EvictionInterval: must be non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorMsg == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if err.Error() != tt.errorMsg {
				t.Errorf("expected %q, got %q", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestConfig_ToSturdycOptions(t *testing.T) {
	cfg := DefaultConfig()
	if n := len(cfg.ToSturdycOptions()); n != 0 {
		t.Errorf("expected no options without an eviction interval, got %d", n)
	}

	cfg.EvictionInterval = time.Second
	if n := len(cfg.ToSturdycOptions()); n != 1 {
		t.Errorf("expected 1 option with an eviction interval, got %d", n)
	}
}

func TestNewSturdycStore_InvalidConfig(t *testing.T) {
	store, err := NewSturdycStore(Config{NumShards: 1, TTL: time.Minute, EvictionPercentage: 10})
	if err == nil {
		t.Fatal("expected error for zero capacity")
	}
	if store != nil {
		t.Error("expected nil store on error")
	}
}

func TestSturdycStore_SetGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "projects"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "projects", []byte("page"), time.Minute, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok, err := store.Get(ctx, "projects")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(v.([]byte)) != "page" {
		t.Errorf("unexpected value %v", v)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", store.Len())
	}
}

func TestSturdycStore_DualExpiry(t *testing.T) {
	clock := testsupport.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	store := newTestStore(t, WithClock(clock.Now))
	ctx := context.Background()

	_ = store.Set(ctx, "absolute", 1, 100*time.Millisecond, time.Hour)
	_ = store.Set(ctx, "sliding", 2, 0, 100*time.Millisecond)

	for i := 0; i < 2; i++ {
		clock.Advance(50 * time.Millisecond)
		for _, key := range []string{"absolute", "sliding"} {
			if _, ok, _ := store.Get(ctx, key); !ok {
				t.Fatalf("expected %s hit at step %d", key, i)
			}
		}
	}

	clock.Advance(50 * time.Millisecond)
	if _, ok, _ := store.Get(ctx, "absolute"); ok {
		t.Error("expected absolute entry to expire at 150ms")
	}
	if _, ok, _ := store.Get(ctx, "sliding"); !ok {
		t.Error("expected sliding entry to stay alive under access")
	}

	clock.Advance(150 * time.Millisecond)
	if _, ok, _ := store.Get(ctx, "sliding"); ok {
		t.Error("expected sliding entry to expire when idle")
	}
}

func TestSturdycStore_ExpiredReadKeepsNewerEntry(t *testing.T) {
	clock := testsupport.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	store := newTestStore(t, WithClock(clock.Now))
	ctx := context.Background()

	_ = store.Set(ctx, "projects", "old", 100*time.Millisecond, 0)
	stale, ok := store.client.Get("projects")
	if !ok {
		t.Fatal("expected the old entry to be stored")
	}
	clock.Advance(200 * time.Millisecond)

	// a writer replaces the entry after a reader saw it expire
	_ = store.Set(ctx, "projects", "new", time.Minute, 0)
	store.removeIfCurrent("projects", stale)

	v, ok, err := store.Get(ctx, "projects")
	if err != nil || !ok || v != "new" {
		t.Fatalf("expected the newer entry to survive, got %v %v %v", v, ok, err)
	}

	store.removeIfCurrent("projects", stale)
	current, _ := store.client.Get("projects")
	store.removeIfCurrent("projects", current)
	if _, ok, _ := store.Get(ctx, "projects"); ok {
		t.Error("expected the current entry to be removed when it matches")
	}
}

func TestSturdycStore_ConcurrentSetDuringExpiry(t *testing.T) {
	clock := testsupport.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	store := newTestStore(t, WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		_ = store.Set(ctx, "skills", "old", time.Millisecond, 0)
		clock.Advance(2 * time.Millisecond)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, _ = store.Get(ctx, "skills")
		}()
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, "skills", "new", time.Hour, 0)
		}()
		wg.Wait()

		if v, ok, _ := store.Get(ctx, "skills"); !ok || v != "new" {
			t.Fatalf("iteration %d: expected the fresh entry, got %v %v", i, v, ok)
		}
	}
}

func TestSturdycStore_RemoveAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	keys := []string{"skills", "skills_page1_size10", "skills_id_4"}
	for _, key := range keys {
		_ = store.Set(ctx, key, key, time.Minute, 0)
	}
	_ = store.Set(ctx, "projects", "keep", time.Minute, 0)

	if err := store.Remove(ctx, "absent"); err != nil {
		t.Errorf("unexpected error removing absent key: %v", err)
	}
	if err := store.RemoveAll(ctx, keys); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	remaining := store.Keys()
	sort.Strings(remaining)
	if len(remaining) != 1 || remaining[0] != "projects" {
		t.Errorf("expected only projects to remain, got %v", remaining)
	}
}

func TestSturdycStore_Close(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_ = store.Set(ctx, "k", "v", time.Minute, 0)

	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := store.Get(ctx, "k"); !errors.Is(err, cache.ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed, got %v", err)
	}
	if err := store.Set(ctx, "k", "v", time.Minute, 0); !errors.Is(err, cache.ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed, got %v", err)
	}
}

func TestSturdycStore_WithService(t *testing.T) {
	store := newTestStore(t)
	registry := cache.NewKeyRegistry()
	svc := cache.NewService(store, registry)
	inv := cache.NewInvalidator(store, registry, nil)
	ctx := context.Background()

	loads := 0
	load := func(ctx context.Context) (any, error) {
		loads++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.GetOrLoad(ctx, "projects", cache.PageKey("projects", 1, 20), load); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if loads != 1 {
		t.Errorf("expected 1 load, got %d", loads)
	}

	if err := inv.InvalidateResource(ctx, "projects"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetOrLoad(ctx, "projects", cache.PageKey("projects", 1, 20), load); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loads != 2 {
		t.Errorf("expected reload after invalidation, got %d loads", loads)
	}
}
