package repositorycache

import (
	"context"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-skillsnap/cache"
	"github.com/goliatone/go-skillsnap/portfolio"
)

// Interface assertion to ensure CachedRepository implements Repository[T]
var _ portfolio.Repository[any] = (*CachedRepository[any])(nil)

// CachedRepository decorates a base repository with read-through caching and
// resource-wide invalidation after writes.
type CachedRepository[T any] struct {
	base        portfolio.Repository[T]
	service     *cache.Service
	invalidator *cache.Invalidator
	resource    string
	dependents  []string
}

// Option configures a CachedRepository.
type Option func(*options)

type options struct {
	resource   string
	dependents []string
}

// WithResource overrides the resource name derived from T.
func WithResource(name string) Option {
	return func(o *options) {
		o.resource = name
	}
}

// WithDependents lists resources whose cached reads embed rows of this one.
// They are invalidated together with the decorated resource.
func WithDependents(resources ...string) Option {
	return func(o *options) {
		o.dependents = append(o.dependents, resources...)
	}
}

// New creates a new CachedRepository that wraps the base repository with caching
func New[T any](base portfolio.Repository[T], service *cache.Service, invalidator *cache.Invalidator, opts ...Option) (*CachedRepository[T], error) {
	o := options{resource: ResourceName[T]()}
	for _, opt := range opts {
		opt(&o)
	}

	if base == nil || service == nil || invalidator == nil {
		return nil, goerrors.New("cached repository requires a base repository, service and invalidator", goerrors.CategoryInternal).
			WithTextCode("CACHE_MISCONFIGURED")
	}

	for _, name := range append([]string{o.resource}, o.dependents...) {
		if err := cache.ValidateResource(name); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid cache resource").
				WithTextCode("CACHE_INVALID_RESOURCE")
		}
	}

	return &CachedRepository[T]{
		base:        base,
		service:     service,
		invalidator: invalidator,
		resource:    o.resource,
		dependents:  o.dependents,
	}, nil
}

// Resource returns the cache namespace of the repository.
func (c *CachedRepository[T]) Resource() string {
	return c.resource
}

// List retrieves every record, with caching
func (c *CachedRepository[T]) List(ctx context.Context) ([]T, error) {
	key := cache.CollectionKey(c.resource)
	return cache.GetOrLoad(ctx, c.service, c.resource, key, func(ctx context.Context) ([]T, error) {
		return c.base.List(ctx)
	})
}

// ListPage retrieves one page of records, with caching
func (c *CachedRepository[T]) ListPage(ctx context.Context, page, pageSize int) ([]T, error) {
	if err := cache.ValidatePage(page, pageSize); err != nil {
		return nil, goerrors.FromOzzoValidation(err, "invalid page").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode("INVALID_PAGE")
	}

	key := cache.PageKey(c.resource, page, pageSize)
	return cache.GetOrLoad(ctx, c.service, c.resource, key, func(ctx context.Context) ([]T, error) {
		return c.base.ListPage(ctx, page, pageSize)
	})
}

// GetByID retrieves a record by ID, with caching. Lookup failures are not cached.
func (c *CachedRepository[T]) GetByID(ctx context.Context, id int64) (T, error) {
	key := cache.ItemKey(c.resource, strconv.FormatInt(id, 10))
	return cache.GetOrLoad(ctx, c.service, c.resource, key, func(ctx context.Context) (T, error) {
		return c.base.GetByID(ctx, id)
	})
}

// Create creates a new record and invalidates the resource once it is stored
func (c *CachedRepository[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	result, err := c.base.Create(ctx, record)
	if err != nil {
		return zero, err
	}
	if err := c.invalidate(ctx); err != nil {
		return zero, err
	}
	return result, nil
}

// Update updates a record and invalidates the resource once it is stored
func (c *CachedRepository[T]) Update(ctx context.Context, record T) (T, error) {
	var zero T
	result, err := c.base.Update(ctx, record)
	if err != nil {
		return zero, err
	}
	if err := c.invalidate(ctx); err != nil {
		return zero, err
	}
	return result, nil
}

// Delete removes a record and invalidates the resource
func (c *CachedRepository[T]) Delete(ctx context.Context, id int64) error {
	if err := c.base.Delete(ctx, id); err != nil {
		return err
	}
	return c.invalidate(ctx)
}

// Invalidate drops every cached read of the resource and its dependents.
func (c *CachedRepository[T]) Invalidate(ctx context.Context) error {
	return c.invalidate(ctx)
}

func (c *CachedRepository[T]) invalidate(ctx context.Context) error {
	resources := append([]string{c.resource}, c.dependents...)
	return c.invalidator.InvalidateResources(ctx, resources...)
}
