package cache

import (
	"fmt"
	"sort"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// resourceKeys is the key set of one resource. mu guards keys and generation and is
// held across the store call that the set mirrors.
type resourceKeys struct {
	mu         sync.Mutex
	keys       map[string]struct{}
	generation uint64
}

// KeyRegistry tracks which keys each resource has populated in the store.
// The set for a resource may hold keys that already expired in the store, it never
// misses a key that is still there.
type KeyRegistry struct {
	resources *xsync.MapOf[string, *resourceKeys]
}

// NewKeyRegistry returns an empty registry.
func NewKeyRegistry() *KeyRegistry {
	return &KeyRegistry{
		resources: xsync.NewMapOf[string, *resourceKeys](),
	}
}

func (r *KeyRegistry) slot(resource string) *resourceKeys {
	rk, _ := r.resources.LoadOrCompute(resource, func() *resourceKeys {
		return &resourceKeys{keys: make(map[string]struct{})}
	})
	return rk
}

// Register adds key to the set of resource.
func (r *KeyRegistry) Register(resource, key string) error {
	if !Owns(resource, key) {
		return fmt.Errorf("%w: %q does not belong to %q", ErrInvalidKey, key, resource)
	}
	rk := r.slot(resource)
	rk.mu.Lock()
	rk.keys[key] = struct{}{}
	rk.mu.Unlock()
	return nil
}

// AllKeys returns a sorted snapshot of the keys registered for resource.
func (r *KeyRegistry) AllKeys(resource string) []string {
	rk, ok := r.resources.Load(resource)
	if !ok {
		return nil
	}
	rk.mu.Lock()
	defer rk.mu.Unlock()
	return sortedKeys(rk.keys)
}

// Len returns the number of keys registered for resource.
func (r *KeyRegistry) Len(resource string) int {
	rk, ok := r.resources.Load(resource)
	if !ok {
		return 0
	}
	rk.mu.Lock()
	defer rk.mu.Unlock()
	return len(rk.keys)
}

// Clear forgets every key of resource and starts a new generation.
func (r *KeyRegistry) Clear(resource string) {
	rk := r.slot(resource)
	rk.mu.Lock()
	clear(rk.keys)
	rk.generation++
	rk.mu.Unlock()
}

// Generation returns the number of times resource has been cleared.
func (r *KeyRegistry) Generation(resource string) uint64 {
	rk, ok := r.resources.Load(resource)
	if !ok {
		return 0
	}
	rk.mu.Lock()
	defer rk.mu.Unlock()
	return rk.generation
}

// Resources returns the sorted names of every resource seen so far.
func (r *KeyRegistry) Resources() []string {
	names := make([]string, 0, r.resources.Size())
	r.resources.Range(func(name string, _ *resourceKeys) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// populate runs set and registers key while holding the resource lock. Nothing
// happens when the resource moved past generation since the caller observed it.
func (r *KeyRegistry) populate(resource, key string, generation uint64, set func() error) (bool, error) {
	if !Owns(resource, key) {
		return false, fmt.Errorf("%w: %q does not belong to %q", ErrInvalidKey, key, resource)
	}
	rk := r.slot(resource)
	rk.mu.Lock()
	defer rk.mu.Unlock()

	if rk.generation != generation {
		return false, nil
	}
	if err := set(); err != nil {
		return false, err
	}
	rk.keys[key] = struct{}{}
	return true, nil
}

// drain hands the keys of resource to remove and clears the set once remove succeeds.
// On failure the set is kept so a retry removes the same keys. The generation moves
// forward either way.
func (r *KeyRegistry) drain(resource string, remove func(keys []string) error) ([]string, error) {
	rk := r.slot(resource)
	rk.mu.Lock()
	defer rk.mu.Unlock()

	rk.generation++
	keys := sortedKeys(rk.keys)
	if err := remove(keys); err != nil {
		return nil, err
	}
	clear(rk.keys)
	return keys, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
