// Package cache provides a read-through cache with resource scoped invalidation.
//
// # Overview
//
// The package is built from four pieces:
//
//   - Store: a key/value store with a dual expiration policy (absolute and sliding)
//   - Key scheme: deterministic keys for items, collections and pages of a resource
//   - KeyRegistry: the set of keys each resource currently has in the store
//   - Service and Invalidator: read-through population and whole resource eviction
//
// Store implementations live in internal/memstore (sharded map, the default) and
// internal/cacheinfra (sturdyc backed). The pkg/di container picks one from Config.
//
// # Keys
//
// Keys are derived from a resource name:
//
//	cache.CollectionKey("projects")        // "projects"
//	cache.PageKey("projects", 1, 20)       // "projects_page1_size20"
//	cache.ItemKey("projects", "7")         // "projects_id_7"
//
// Resource names are lowercase and hyphenated, they never contain the "_" separator, so
// "projects_" only ever prefixes keys of the projects resource.
//
// # Read-through
//
//	projects, err := cache.GetOrLoad(ctx, svc, "projects", cache.PageKey("projects", 1, 20),
//		func(ctx context.Context) ([]Project, error) {
//			return repo.ListPage(ctx, 1, 20)
//		})
//
// On a miss the loader runs once per key even when many callers miss concurrently.
// The result is stored with the resource policy and the key is registered under the
// resource. Errors from the store never fail a read: the service logs them and serves
// the loader result.
//
// # Invalidation
//
//	if err := invalidator.InvalidateResource(ctx, "projects"); err != nil {
//		return err
//	}
//
// Every key registered for the resource is removed before the call returns, including
// paginated keys nobody knows in advance. Invalidation also advances the resource
// generation so loads that started before it are not written back to the store.
package cache
