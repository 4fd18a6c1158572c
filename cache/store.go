package cache

import (
	"context"
	"sync/atomic"
	"time"
)

// Store is the key/value backend behind Service.
// Implementations know nothing about resources; Service and Invalidator own that.
type Store interface {
	// Get returns the value for key if it is present and not expired.
	// A hit refreshes the sliding window of the entry.
	Get(ctx context.Context, key string) (any, bool, error)
	// Set inserts or overwrites key. A zero TTL disables that expiration dimension.
	Set(ctx context.Context, key string, value any, absoluteTTL, slidingTTL time.Duration) error
	// Remove deletes key, it is a no-op when key is absent.
	Remove(ctx context.Context, key string) error
	// RemoveAll deletes every key; no reader observes any of them once it returns.
	RemoveAll(ctx context.Context, keys []string) error
	// Close stops background work. Later calls return ErrStoreClosed.
	Close() error
}

// Entry is a stored value with its expiration state.
type Entry struct {
	Key            string
	Value          any
	CreatedAt      time.Time
	AbsoluteExpiry time.Time
	SlidingWindow  time.Duration

	lastAccess atomic.Int64
}

// NewEntry builds an entry created at now.
func NewEntry(key string, value any, now time.Time, absoluteTTL, slidingTTL time.Duration) *Entry {
	e := &Entry{
		Key:           key,
		Value:         value,
		CreatedAt:     now,
		SlidingWindow: slidingTTL,
	}
	if absoluteTTL > 0 {
		e.AbsoluteExpiry = now.Add(absoluteTTL)
	}
	e.lastAccess.Store(now.UnixNano())
	return e
}

// LastAccessedAt returns the time of the last hit, or the creation time.
func (e *Entry) LastAccessedAt() time.Time {
	return time.Unix(0, e.lastAccess.Load())
}

// Touch records a hit at now.
func (e *Entry) Touch(now time.Time) {
	e.lastAccess.Store(now.UnixNano())
}

// Expired reports whether either policy has lapsed at now.
func (e *Entry) Expired(now time.Time) bool {
	if !e.AbsoluteExpiry.IsZero() && now.After(e.AbsoluteExpiry) {
		return true
	}
	if e.SlidingWindow > 0 && now.Sub(e.LastAccessedAt()) > e.SlidingWindow {
		return true
	}
	return false
}
