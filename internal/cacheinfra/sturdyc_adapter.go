package cacheinfra

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-skillsnap/cache"
	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc backed store.
type Config struct {
	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Must be greater than 0. Default: 256
	NumShards int

	// TTL is how long sturdyc keeps an entry regardless of its policy.
	// Policies with a longer or no absolute expiry are cut short at TTL.
	// Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often sturdyc drops entries older than TTL.
	// Zero value uses the default interval.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                10 * time.Minute,
		EvictionPercentage: 10,
	}
}

// ToSturdycOptions converts the Config to sturdyc options.
// Capacity, NumShards, TTL and EvictionPercentage go to sturdyc.New directly.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

var _ cache.Store = (*SturdycStore)(nil)

// SturdycStore is a cache.Store on top of a sturdyc client. sturdyc bounds the size
// and age of the cache; the absolute and sliding policy of each entry is checked on read.
type SturdycStore struct {
	client *sturdyc.Client[*cache.Entry]
	now    func() time.Time
	closed atomic.Bool

	// mu orders writes against the removal of expired entries.
	mu sync.Mutex
}

// StoreOption configures a SturdycStore.
type StoreOption func(*SturdycStore)

// WithClock sets the time source used to evaluate entry policies.
func WithClock(now func() time.Time) StoreOption {
	return func(s *SturdycStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSturdycStore validates cfg and builds the sturdyc client.
func NewSturdycStore(cfg Config, opts ...StoreOption) (*SturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[*cache.Entry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	s := &SturdycStore{client: client, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SturdycStore) Get(_ context.Context, key string) (any, bool, error) {
	if s.closed.Load() {
		return nil, false, cache.ErrStoreClosed
	}

	e, ok := s.client.Get(key)
	if !ok || e == nil {
		return nil, false, nil
	}

	now := s.now()
	if e.Expired(now) {
		s.removeIfCurrent(key, e)
		return nil, false, nil
	}
	e.Touch(now)
	return e.Value, true, nil
}

func (s *SturdycStore) Set(_ context.Context, key string, value any, absoluteTTL, slidingTTL time.Duration) error {
	if s.closed.Load() {
		return cache.ErrStoreClosed
	}
	s.mu.Lock()
	s.client.Set(key, cache.NewEntry(key, value, s.now(), absoluteTTL, slidingTTL))
	s.mu.Unlock()
	return nil
}

// removeIfCurrent deletes key only while it still holds e.
func (s *SturdycStore) removeIfCurrent(key string, e *cache.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.client.Get(key); ok && cur == e {
		s.client.Delete(key)
	}
}

func (s *SturdycStore) Remove(_ context.Context, key string) error {
	if s.closed.Load() {
		return cache.ErrStoreClosed
	}
	s.client.Delete(key)
	return nil
}

func (s *SturdycStore) RemoveAll(_ context.Context, keys []string) error {
	if s.closed.Load() {
		return cache.ErrStoreClosed
	}
	for _, key := range keys {
		s.client.Delete(key)
	}
	return nil
}

// Len returns the number of entries held by sturdyc.
func (s *SturdycStore) Len() int {
	return s.client.Size()
}

// Keys returns every key held by sturdyc.
func (s *SturdycStore) Keys() []string {
	return s.client.ScanKeys()
}

// Close drops every entry. Later calls return cache.ErrStoreClosed.
func (s *SturdycStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	for _, key := range s.client.ScanKeys() {
		s.client.Delete(key)
	}
	return nil
}
