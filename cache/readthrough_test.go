package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-skillsnap/cache"
	"github.com/goliatone/go-skillsnap/internal/memstore"
	"github.com/goliatone/go-skillsnap/pkg/testsupport"
)

type harness struct {
	clock       *testsupport.Clock
	store       *memstore.Store
	service     *cache.Service
	invalidator *cache.Invalidator
	loads       map[string]int
}

func newHarness(t *testing.T, policy cache.Policy) *harness {
	t.Helper()
	c := testsupport.NewClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	store := memstore.New(memstore.WithClock(c.Now))
	t.Cleanup(func() { store.Close() })

	registry := cache.NewKeyRegistry()
	cfg := cache.DefaultConfig()
	cfg.DefaultPolicy = policy

	return &harness{
		clock:       c,
		store:       store,
		service:     cache.NewService(store, registry, cache.WithPolicies(cfg)),
		invalidator: cache.NewInvalidator(store, registry, nil),
		loads:       make(map[string]int),
	}
}

func (h *harness) get(t *testing.T, resource, key string) {
	t.Helper()
	_, err := h.service.GetOrLoad(context.Background(), resource, key, func(ctx context.Context) (any, error) {
		h.loads[key]++
		return key, nil
	})
	if err != nil {
		t.Fatalf("GetOrLoad(%s): %v", key, err)
	}
}

func TestReadThrough_AbsoluteExpiryUnderContinuousAccess(t *testing.T) {
	h := newHarness(t, cache.Policy{AbsoluteTTL: 100 * time.Millisecond, SlidingTTL: time.Hour})

	h.get(t, "projects", "projects")
	for i := 0; i < 2; i++ {
		h.clock.Advance(50 * time.Millisecond)
		h.get(t, "projects", "projects")
	}
	if h.loads["projects"] != 1 {
		t.Fatalf("expected hits within the absolute ttl, got %d loads", h.loads["projects"])
	}

	h.clock.Advance(50 * time.Millisecond)
	h.get(t, "projects", "projects")
	if h.loads["projects"] != 2 {
		t.Errorf("expected a miss at 150ms, got %d loads", h.loads["projects"])
	}
}

func TestReadThrough_SlidingExpiry(t *testing.T) {
	h := newHarness(t, cache.Policy{SlidingTTL: 100 * time.Millisecond})

	h.get(t, "skills", "skills")
	for i := 0; i < 6; i++ {
		h.clock.Advance(50 * time.Millisecond)
		h.get(t, "skills", "skills")
	}
	if h.loads["skills"] != 1 {
		t.Fatalf("expected access every 50ms to keep the entry, got %d loads", h.loads["skills"])
	}

	h.clock.Advance(150 * time.Millisecond)
	h.get(t, "skills", "skills")
	if h.loads["skills"] != 2 {
		t.Errorf("expected a miss after 100ms idle, got %d loads", h.loads["skills"])
	}
}

func TestReadThrough_InvalidationCompleteness(t *testing.T) {
	h := newHarness(t, cache.DefaultPolicy())
	keys := []string{
		cache.CollectionKey("projects"),
		cache.PageKey("projects", 1, 20),
		cache.PageKey("projects", 2, 20),
		cache.PageKey("projects", 3, 5),
		cache.ItemKey("projects", "42"),
	}

	for _, key := range keys {
		h.get(t, "projects", key)
	}
	h.get(t, "skills", "skills")

	if err := h.invalidator.InvalidateResource(context.Background(), "projects"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range keys {
		h.get(t, "projects", key)
		if h.loads[key] != 2 {
			t.Errorf("expected %s to miss after invalidation, loads=%d", key, h.loads[key])
		}
	}
	h.get(t, "skills", "skills")
	if h.loads["skills"] != 1 {
		t.Errorf("expected skills untouched, loads=%d", h.loads["skills"])
	}
}

func TestReadThrough_PrefixIsolation(t *testing.T) {
	h := newHarness(t, cache.DefaultPolicy())

	h.get(t, "project", cache.CollectionKey("project"))
	h.get(t, "projects", cache.PageKey("projects", 1, 20))

	if err := h.invalidator.InvalidateResource(context.Background(), "project"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.get(t, "projects", cache.PageKey("projects", 1, 20))
	if n := h.loads["projects_page1_size20"]; n != 1 {
		t.Errorf("expected projects page to survive invalidating project, loads=%d", n)
	}
}

func TestReadThrough_FailOpenAfterStoreClosed(t *testing.T) {
	h := newHarness(t, cache.DefaultPolicy())
	h.get(t, "projects", "projects")

	if err := h.store.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.get(t, "projects", "projects")
	h.get(t, "projects", "projects")
	if h.loads["projects"] != 3 {
		t.Errorf("expected every lookup to load from source while the store is closed, loads=%d", h.loads["projects"])
	}

	err := h.invalidator.InvalidateResource(context.Background(), "projects")
	if !errors.Is(err, cache.ErrStoreClosed) {
		t.Errorf("expected invalidation to surface ErrStoreClosed, got %v", err)
	}
}
