// Package memstore is a sharded in-process cache.Store.
package memstore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goliatone/go-skillsnap/cache"
)

const defaultShards = 32

var _ cache.Store = (*Store)(nil)

type shard struct {
	mu    sync.RWMutex
	items map[string]*cache.Entry
}

// Store keeps entries in shards selected by the xxhash of the key. Expired entries
// are dropped when read, and by the janitor when one is configured.
type Store struct {
	shards   []*shard
	now      func() time.Time
	interval time.Duration

	closed   atomic.Bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a Store.
type Option func(*Store)

// WithShards sets the number of shards.
func WithShards(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.shards = make([]*shard, n)
		}
	}
}

// WithClock sets the time source used for expiration.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithJanitor sweeps expired entries every interval.
func WithJanitor(interval time.Duration) Option {
	return func(s *Store) {
		s.interval = interval
	}
}

// New builds a Store.
func New(opts ...Option) *Store {
	s := &Store{
		shards: make([]*shard, defaultShards),
		now:    time.Now,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	for i := range s.shards {
		s.shards[i] = &shard{items: make(map[string]*cache.Entry)}
	}

	if s.interval > 0 {
		go s.janitor()
	} else {
		close(s.done)
	}
	return s
}

func (s *Store) shardFor(key string) *shard {
	return s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
}

func (s *Store) Get(_ context.Context, key string) (any, bool, error) {
	if s.closed.Load() {
		return nil, false, cache.ErrStoreClosed
	}

	sh := s.shardFor(key)
	sh.mu.RLock()
	e, ok := sh.items[key]
	sh.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	now := s.now()
	if e.Expired(now) {
		sh.mu.Lock()
		if cur, ok := sh.items[key]; ok && cur == e {
			delete(sh.items, key)
		}
		sh.mu.Unlock()
		return nil, false, nil
	}

	e.Touch(now)
	return e.Value, true, nil
}

func (s *Store) Set(_ context.Context, key string, value any, absoluteTTL, slidingTTL time.Duration) error {
	if s.closed.Load() {
		return cache.ErrStoreClosed
	}

	e := cache.NewEntry(key, value, s.now(), absoluteTTL, slidingTTL)
	sh := s.shardFor(key)
	sh.mu.Lock()
	sh.items[key] = e
	sh.mu.Unlock()
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	if s.closed.Load() {
		return cache.ErrStoreClosed
	}

	sh := s.shardFor(key)
	sh.mu.Lock()
	delete(sh.items, key)
	sh.mu.Unlock()
	return nil
}

func (s *Store) RemoveAll(_ context.Context, keys []string) error {
	if s.closed.Load() {
		return cache.ErrStoreClosed
	}

	byShard := make(map[*shard][]string)
	for _, key := range keys {
		sh := s.shardFor(key)
		byShard[sh] = append(byShard[sh], key)
	}
	for sh, shardKeys := range byShard {
		sh.mu.Lock()
		for _, key := range shardKeys {
			delete(sh.items, key)
		}
		sh.mu.Unlock()
	}
	return nil
}

// Len returns the number of stored entries, expired or not.
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.items)
		sh.mu.RUnlock()
	}
	return n
}

// Sweep removes expired entries and returns how many it dropped.
func (s *Store) Sweep() int {
	now := s.now()
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, e := range sh.items {
			if e.Expired(now) {
				delete(sh.items, key)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

func (s *Store) janitor() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}

// Close stops the janitor and drops every entry.
func (s *Store) Close() error {
	s.stopOnce.Do(func() {
		s.closed.Store(true)
		close(s.stop)
		<-s.done
		for _, sh := range s.shards {
			sh.mu.Lock()
			clear(sh.items)
			sh.mu.Unlock()
		}
	})
	return nil
}
