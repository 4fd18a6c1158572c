package cache

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LoadFn fetches a value from the source of truth on a cache miss.
type LoadFn func(ctx context.Context) (any, error)

// Service implements read-through lookups over a Store.
type Service struct {
	store     Store
	registry  *KeyRegistry
	policies  Config
	telemetry Telemetry
	logger    *zap.Logger
	now       func() time.Time
	group     singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithTelemetry sets the sink that receives hit and miss events.
func WithTelemetry(t Telemetry) Option {
	return func(s *Service) {
		if t != nil {
			s.telemetry = t
		}
	}
}

// WithLogger sets the logger used to report store failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPolicies takes the default and per resource policies from cfg.
func WithPolicies(cfg Config) Option {
	return func(s *Service) {
		s.policies.DefaultPolicy = cfg.DefaultPolicy
		s.policies.Resources = cfg.Resources
	}
}

// WithResourcePolicy overrides the policy of a single resource.
func WithResourcePolicy(resource string, p Policy) Option {
	return func(s *Service) {
		resources := make(map[string]Policy, len(s.policies.Resources)+1)
		for k, v := range s.policies.Resources {
			resources[k] = v
		}
		resources[resource] = p
		s.policies.Resources = resources
	}
}

// WithClock sets the time source used to measure lookups.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds a Service. A nil store makes every lookup load from the source.
func NewService(store Store, registry *KeyRegistry, opts ...Option) *Service {
	if registry == nil {
		registry = NewKeyRegistry()
	}
	s := &Service{
		store:     store,
		registry:  registry,
		policies:  Config{DefaultPolicy: DefaultPolicy()},
		telemetry: NoopTelemetry{},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry the service populates.
func (s *Service) Registry() *KeyRegistry {
	return s.registry
}

// PolicyFor returns the expiration policy applied to resource.
func (s *Service) PolicyFor(resource string) Policy {
	return s.policies.PolicyFor(resource)
}

// GetOrLoad returns the cached value of key or loads, stores and registers it under
// resource. Loader errors are returned as is and nothing is cached. A caller whose ctx
// is done returns ctx.Err() without failing other callers sharing the load.
func (s *Service) GetOrLoad(ctx context.Context, resource, key string, load LoadFn) (any, error) {
	if load == nil {
		return nil, ErrNilLoader
	}
	if err := ValidateResource(resource); err != nil {
		return nil, err
	}

	start := s.now()
	if s.store != nil {
		value, found, err := s.store.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("cache get failed, loading from source",
				zap.String("resource", resource),
				zap.String("key", key),
				zap.Error(err),
			)
		case found:
			s.record(ctx, EventHit, resource, key, start)
			return value, nil
		}
	}

	generation := s.registry.Generation(resource)
	flight := key + "#" + strconv.FormatUint(generation, 10)
	// the shared load outlives any single caller; each caller waits on its own ctx
	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(flight, func() (any, error) {
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		s.populate(loadCtx, resource, key, generation, v)
		return v, nil
	})

	select {
	case res := <-ch:
		s.record(ctx, EventMiss, resource, key, start)
		return res.Val, res.Err
	case <-ctx.Done():
		s.record(ctx, EventMiss, resource, key, start)
		return nil, ctx.Err()
	}
}

func (s *Service) populate(ctx context.Context, resource, key string, generation uint64, value any) {
	if s.store == nil {
		return
	}
	policy := s.PolicyFor(resource)
	stored, err := s.registry.populate(resource, key, generation, func() error {
		return s.store.Set(ctx, key, value, policy.AbsoluteTTL, policy.SlidingTTL)
	})
	if err != nil {
		s.logger.Warn("cache set failed",
			zap.String("resource", resource),
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	if !stored {
		s.logger.Debug("cache population skipped, resource invalidated during load",
			zap.String("resource", resource),
			zap.String("key", key),
		)
	}
}

func (s *Service) record(ctx context.Context, kind EventKind, resource, key string, start time.Time) {
	requestID, _ := RequestIDFromContext(ctx)
	s.telemetry.Record(ctx, Event{
		Kind:      kind,
		Resource:  resource,
		Key:       key,
		Duration:  s.now().Sub(start),
		RequestID: requestID,
	})
}

// GetOrLoad is the typed form of Service.GetOrLoad. Values are cached as msgpack
// payloads, so every caller decodes its own copy.
func GetOrLoad[T any](ctx context.Context, s *Service, resource, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	raw, err := s.GetOrLoad(ctx, resource, key, func(ctx context.Context) (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return encode(v)
	})
	if err != nil {
		return zero, err
	}

	payload, ok := raw.([]byte)
	if !ok {
		return zero, ErrInvalidResultType
	}
	var out T
	if err := decode(payload, &out); err != nil {
		return zero, err
	}
	return out, nil
}
