package di

import (
	"fmt"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-skillsnap/cache"
	"github.com/goliatone/go-skillsnap/internal/cacheinfra"
	"github.com/goliatone/go-skillsnap/internal/memstore"
	"github.com/goliatone/go-skillsnap/portfolio"
	"github.com/goliatone/go-skillsnap/repositorycache"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Resource names shared by the cached repositories and the seed endpoint.
const (
	ResourceProjects       = "projects"
	ResourceSkills         = "skills"
	ResourcePortfolioUsers = "portfolio-users"
)

// Container provides dependency injection for cache related components.
// It owns the store and builds a single registry, service and invalidator around it,
// so every cached repository shares the same key space.
type Container struct {
	config      cache.Config
	logger      *zap.Logger
	now         func() time.Time
	store       cache.Store
	registry    *cache.KeyRegistry
	service     *cache.Service
	invalidator *cache.Invalidator
	counters    *cache.CounterTelemetry
	closeOnce   sync.Once
	closeErr    error
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used by the cache components.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStore injects a prebuilt store instead of building one from the config.
func WithStore(store cache.Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithClock sets the time source of the store and service.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.now = now
		}
	}
}

// NewContainer creates a new DI container with the provided cache configuration.
func NewContainer(config cache.Config, opts ...Option) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, goerrors.FromOzzoValidation(err, "invalid cache config").
			WithTextCode("CACHE_CONFIG_INVALID")
	}

	c := &Container{
		config: config,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.store == nil {
		store, err := NewStore(config, c.now)
		if err != nil {
			return nil, err
		}
		c.store = store
	}

	c.registry = cache.NewKeyRegistry()
	c.counters = cache.NewCounterTelemetry()
	c.service = cache.NewService(c.store, c.registry,
		cache.WithPolicies(config),
		cache.WithClock(c.now),
		cache.WithLogger(c.logger),
		cache.WithTelemetry(cache.MultiTelemetry(c.counters, cache.NewZapTelemetry(c.logger))),
	)
	c.invalidator = cache.NewInvalidator(c.store, c.registry, c.logger)

	c.logger.Info("cache container ready",
		zap.String("backend", string(config.Backend)),
		zap.Duration("absolute_ttl", config.DefaultPolicy.AbsoluteTTL),
		zap.Duration("sliding_ttl", config.DefaultPolicy.SlidingTTL),
	)
	return c, nil
}

// NewContainerWithDefaults creates a new DI container using default configuration.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// NewStore builds the store selected by config.Backend.
func NewStore(config cache.Config, now func() time.Time) (cache.Store, error) {
	switch config.Backend {
	case cache.BackendMemory, "":
		return memstore.New(
			memstore.WithShards(config.NumShards),
			memstore.WithJanitor(config.EvictionInterval),
			memstore.WithClock(now),
		), nil
	case cache.BackendSturdyc:
		store, err := cacheinfra.NewSturdycStore(cacheinfra.Config{
			Capacity:           config.Capacity,
			NumShards:          config.NumShards,
			TTL:                config.TTL,
			EvictionPercentage: config.EvictionPercentage,
			EvictionInterval:   config.EvictionInterval,
		}, cacheinfra.WithClock(now))
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid sturdyc config").
				WithTextCode("CACHE_CONFIG_INVALID")
		}
		return store, nil
	default:
		return nil, goerrors.New(fmt.Sprintf("unknown cache backend %q", config.Backend), goerrors.CategoryBadInput).
			WithTextCode("CACHE_BACKEND_UNKNOWN")
	}
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// Store returns the singleton store instance.
func (c *Container) Store() cache.Store {
	return c.store
}

// Registry returns the key registry shared by the service and invalidator.
func (c *Container) Registry() *cache.KeyRegistry {
	return c.registry
}

// Service returns the singleton read-through service.
func (c *Container) Service() *cache.Service {
	return c.service
}

// Invalidator returns the singleton invalidator.
func (c *Container) Invalidator() *cache.Invalidator {
	return c.invalidator
}

// Counters returns the hit and miss counters fed by the service.
func (c *Container) Counters() *cache.CounterTelemetry {
	return c.counters
}

// Logger returns the container logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Close closes the store. It is safe to call more than once.
func (c *Container) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.store.Close()
	})
	return c.closeErr
}

// NewCachedRepository creates a new cached repository that wraps the provided base repository.
//
// Since Go methods cannot have type parameters, this is provided as a package-level function.
// Example: NewCachedRepository[portfolio.Skill](container, portfolio.NewSkillRepository(db))
func NewCachedRepository[T any](container *Container, base portfolio.Repository[T], opts ...repositorycache.Option) (*repositorycache.CachedRepository[T], error) {
	return repositorycache.New(base, container.service, container.invalidator, opts...)
}

// Repositories groups the cached repositories of the portfolio resources.
type Repositories struct {
	Projects *repositorycache.CachedRepository[portfolio.Project]
	Skills   *repositorycache.CachedRepository[portfolio.Skill]
	Users    *repositorycache.CachedRepository[portfolio.PortfolioUser]
}

// Resources lists the cache resources of r.
func (r *Repositories) Resources() []string {
	return []string{r.Projects.Resource(), r.Skills.Resource(), r.Users.Resource()}
}

// NewRepositories wires cached bun repositories over db. Writes to portfolio users
// also invalidate projects and skills, whose rows cascade on delete.
func NewRepositories(container *Container, db bun.IDB) (*Repositories, error) {
	projects, err := NewCachedRepository[portfolio.Project](container, portfolio.NewProjectRepository(db),
		repositorycache.WithResource(ResourceProjects))
	if err != nil {
		return nil, err
	}

	skills, err := NewCachedRepository[portfolio.Skill](container, portfolio.NewSkillRepository(db),
		repositorycache.WithResource(ResourceSkills))
	if err != nil {
		return nil, err
	}

	users, err := NewCachedRepository[portfolio.PortfolioUser](container, portfolio.NewPortfolioUserRepository(db),
		repositorycache.WithResource(ResourcePortfolioUsers),
		repositorycache.WithDependents(ResourceProjects, ResourceSkills))
	if err != nil {
		return nil, err
	}

	return &Repositories{Projects: projects, Skills: skills, Users: users}, nil
}
