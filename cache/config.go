package cache

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Backend selects the Store implementation.
type Backend string

const (
	// BackendMemory is the sharded in-process map.
	BackendMemory Backend = "memory"
	// BackendSturdyc stores entries in a sturdyc client.
	BackendSturdyc Backend = "sturdyc"
)

// Policy is the expiration policy applied to entries of a resource.
// A zero duration disables that dimension, at least one must be set.
type Policy struct {
	AbsoluteTTL time.Duration `mapstructure:"absolute_ttl" json:"absolute_ttl"`
	SlidingTTL  time.Duration `mapstructure:"sliding_ttl" json:"sliding_ttl"`
}

// DefaultPolicy caps entries at five minutes and drops them after two idle minutes.
func DefaultPolicy() Policy {
	return Policy{
		AbsoluteTTL: 5 * time.Minute,
		SlidingTTL:  2 * time.Minute,
	}
}

// Validate checks the policy durations.
func (p Policy) Validate() error {
	if p.AbsoluteTTL == 0 && p.SlidingTTL == 0 {
		return validation.NewError("validation_policy_unbounded", "absolute_ttl or sliding_ttl must be set")
	}
	return validation.ValidateStruct(&p,
		validation.Field(&p.AbsoluteTTL, validation.Min(time.Duration(0))),
		validation.Field(&p.SlidingTTL, validation.Min(time.Duration(0))),
	)
}

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Backend Backend `mapstructure:"backend"`

	// Capacity bounds the number of entries of the sturdyc backend.
	Capacity int `mapstructure:"capacity"`
	// NumShards is the shard count of either backend.
	NumShards int `mapstructure:"num_shards"`
	// TTL is the hard upper bound the sturdyc backend keeps any entry.
	TTL time.Duration `mapstructure:"ttl"`
	// EvictionPercentage is how much of the sturdyc backend is evicted when full.
	EvictionPercentage int `mapstructure:"eviction_percentage"`
	// EvictionInterval sets the sweep interval of expired entries. Zero disables the
	// memory janitor and keeps the sturdyc default.
	EvictionInterval time.Duration `mapstructure:"eviction_interval"`

	DefaultPolicy Policy            `mapstructure:"default_policy"`
	Resources     map[string]Policy `mapstructure:"resources"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:            BackendMemory,
		Capacity:           10000,
		NumShards:          32,
		TTL:                10 * time.Minute,
		EvictionPercentage: 10,
		EvictionInterval:   time.Minute,
		DefaultPolicy:      DefaultPolicy(),
	}
}

// PolicyFor returns the policy of resource, falling back to DefaultPolicy.
func (c Config) PolicyFor(resource string) Policy {
	if p, ok := c.Resources[resource]; ok {
		return p
	}
	return c.DefaultPolicy
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendMemory, BackendSturdyc)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.DefaultPolicy),
		validation.Field(&c.Capacity, validation.When(c.Backend == BackendSturdyc, validation.Required, validation.Min(1))),
		validation.Field(&c.TTL, validation.When(c.Backend == BackendSturdyc, validation.Required, validation.Min(time.Duration(1)))),
		validation.Field(&c.EvictionPercentage, validation.When(c.Backend == BackendSturdyc, validation.Required, validation.Min(1), validation.Max(100))),
	)
	if err != nil {
		return err
	}

	for name, policy := range c.Resources {
		if err := ValidateResource(name); err != nil {
			return err
		}
		if err := policy.Validate(); err != nil {
			return fmt.Errorf("resources.%s: %w", name, err)
		}
	}
	return nil
}
