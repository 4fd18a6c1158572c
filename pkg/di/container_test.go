package di

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-skillsnap/cache"
	"github.com/goliatone/go-skillsnap/internal/cacheinfra"
	"github.com/goliatone/go-skillsnap/internal/memstore"
)

func TestNewContainer(t *testing.T) {
	config := cache.Config{
		Backend:            cache.BackendSturdyc,
		Capacity:           1000,
		NumShards:          16,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
		DefaultPolicy:      cache.Policy{AbsoluteTTL: time.Minute, SlidingTTL: 30 * time.Second},
		Resources: map[string]cache.Policy{
			"projects": {AbsoluteTTL: 10 * time.Second},
		},
	}

	container, err := NewContainer(config)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	defer container.Close()

	if _, ok := container.Store().(*cacheinfra.SturdycStore); !ok {
		t.Errorf("expected sturdyc store, got %T", container.Store())
	}
	if container.Service() == nil || container.Invalidator() == nil || container.Registry() == nil {
		t.Fatal("Container should initialize the service, invalidator and registry")
	}

	if got := container.Service().PolicyFor("projects"); got != (cache.Policy{AbsoluteTTL: 10 * time.Second}) {
		t.Errorf("expected per-resource policy, got %+v", got)
	}
	if got := container.Service().PolicyFor("skills"); got != config.DefaultPolicy {
		t.Errorf("expected default policy, got %+v", got)
	}

	storedConfig := container.Config()
	if storedConfig.Capacity != config.Capacity {
		t.Errorf("Expected capacity %d, got %d", config.Capacity, storedConfig.Capacity)
	}
}

func TestNewContainerWithDefaults(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	defer container.Close()

	if _, ok := container.Store().(*memstore.Store); !ok {
		t.Errorf("expected memory store by default, got %T", container.Store())
	}
	if got := container.Service().PolicyFor("projects"); got != cache.DefaultPolicy() {
		t.Errorf("expected default policy, got %+v", got)
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	tests := map[string]cache.Config{
		"sturdyc without capacity": {
			Backend:            cache.BackendSturdyc,
			NumShards:          16,
			TTL:                time.Minute,
			EvictionPercentage: 10,
			DefaultPolicy:      cache.DefaultPolicy(),
		},
		"unknown backend": {
			Backend:       "redis",
			NumShards:     16,
			DefaultPolicy: cache.DefaultPolicy(),
		},
		"unbounded policy": {
			Backend:   cache.BackendMemory,
			NumShards: 16,
		},
	}

	for name, config := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewContainer(config)
			if !goerrors.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNewStore_UnknownBackend(t *testing.T) {
	_, err := NewStore(cache.Config{Backend: "redis"}, time.Now)
	if !goerrors.IsCategory(err, goerrors.CategoryBadInput) {
		t.Errorf("expected bad input, got %v", err)
	}
}

func TestContainerSingletonBehavior(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	defer container.Close()

	if container.Service() != container.Service() {
		t.Error("Service() should return the same instance (singleton behavior)")
	}
	if container.Store() != container.Store() {
		t.Error("Store() should return the same instance (singleton behavior)")
	}
	if container.Service().Registry() != container.Registry() {
		t.Error("service and container should share the registry")
	}
}

func TestContainer_WithStore(t *testing.T) {
	store := memstore.New()
	container, err := NewContainerWithDefaults(WithStore(store))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	if container.Store() != store {
		t.Error("expected injected store")
	}

	if err := container.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := container.Close(); err != nil {
		t.Errorf("second Close() should be a no-op, got %v", err)
	}
	if _, _, err := store.Get(context.Background(), "projects"); !errors.Is(err, cache.ErrStoreClosed) {
		t.Errorf("expected the injected store to be closed, got %v", err)
	}
}

func TestCacheServiceIntegration(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	defer container.Close()

	ctx := context.Background()
	key := cache.CollectionKey("skills")

	fetchFn := func(ctx context.Context) (any, error) {
		return "test-value", nil
	}

	for i := 0; i < 2; i++ {
		result, err := container.Service().GetOrLoad(ctx, "skills", key, fetchFn)
		if err != nil {
			t.Fatalf("GetOrLoad() failed: %v", err)
		}
		if result != "test-value" {
			t.Errorf("Expected value %q, got %v", "test-value", result)
		}
	}

	stats := container.Counters().Stats("skills")
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("expected one miss then one hit, got %+v", stats)
	}

	if err := container.Invalidator().InvalidateResource(ctx, "skills"); err != nil {
		t.Errorf("InvalidateResource() failed: %v", err)
	}
	if n := container.Registry().Len("skills"); n != 0 {
		t.Errorf("expected registry cleared, got %d keys", n)
	}
}
