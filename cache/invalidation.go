package cache

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"
)

// Invalidator evicts every cached key of a resource.
type Invalidator struct {
	store    Store
	registry *KeyRegistry
	logger   *zap.Logger
}

// NewInvalidator builds an Invalidator sharing store and registry with a Service.
func NewInvalidator(store Store, registry *KeyRegistry, logger *zap.Logger) *Invalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidator{
		store:    store,
		registry: registry,
		logger:   logger,
	}
}

// InvalidateResource removes every key registered for resource from the store and
// clears its key set. When the store fails the key set is kept and the error is returned.
func (i *Invalidator) InvalidateResource(ctx context.Context, resource string) error {
	if err := ValidateResource(resource); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid cache resource").
			WithTextCode("CACHE_INVALID_RESOURCE")
	}

	keys, err := i.registry.drain(resource, func(keys []string) error {
		if i.store == nil || len(keys) == 0 {
			return nil
		}
		return i.store.RemoveAll(ctx, keys)
	})
	if err != nil {
		i.logger.Error("cache invalidation failed",
			zap.String("resource", resource),
			zap.Error(err),
		)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "cache invalidation failed").
			WithTextCode("CACHE_INVALIDATION_FAILED").
			WithMetadata(map[string]any{"resource": resource})
	}

	i.logger.Debug("cache invalidated",
		zap.String("resource", resource),
		zap.Int("keys", len(keys)),
	)
	return nil
}

// InvalidateResources invalidates each resource and joins the failures.
func (i *Invalidator) InvalidateResources(ctx context.Context, resources ...string) error {
	var errs []error
	for _, resource := range resources {
		if err := i.InvalidateResource(ctx, resource); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
