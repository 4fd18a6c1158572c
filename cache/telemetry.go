package cache

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

// EventKind is the outcome of a cache lookup.
type EventKind string

const (
	EventHit  EventKind = "hit"
	EventMiss EventKind = "miss"
)

// Event describes one lookup. Duration covers the store read for hits and the load for misses.
type Event struct {
	Kind      EventKind
	Resource  string
	Key       string
	Duration  time.Duration
	RequestID string
}

// DurationMs returns Duration in fractional milliseconds.
func (e Event) DurationMs() float64 {
	return float64(e.Duration) / float64(time.Millisecond)
}

// Telemetry receives lookup events. Implementations must be safe for concurrent use
// and must not block.
type Telemetry interface {
	Record(ctx context.Context, event Event)
}

// TelemetryFunc adapts a function to Telemetry.
type TelemetryFunc func(ctx context.Context, event Event)

func (f TelemetryFunc) Record(ctx context.Context, event Event) {
	f(ctx, event)
}

// NoopTelemetry discards events.
type NoopTelemetry struct{}

func (NoopTelemetry) Record(context.Context, Event) {}

// MultiTelemetry fans events out to every sink.
func MultiTelemetry(sinks ...Telemetry) Telemetry {
	filtered := make([]Telemetry, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return TelemetryFunc(func(ctx context.Context, event Event) {
		for _, s := range filtered {
			s.Record(ctx, event)
		}
	})
}

// NewZapTelemetry logs events at debug level.
func NewZapTelemetry(logger *zap.Logger) Telemetry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return TelemetryFunc(func(_ context.Context, event Event) {
		logger.Debug("cache "+string(event.Kind),
			zap.String("resource", event.Resource),
			zap.String("key", event.Key),
			zap.Float64("durationMs", event.DurationMs()),
			zap.String("request_id", event.RequestID),
		)
	})
}

// Stats are the lookup counters of one resource.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// HitRatio is Hits over all lookups, zero when there were none.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type counters struct {
	hits   atomic.Uint64
	misses atomic.Uint64
}

// CounterTelemetry counts hits and misses per resource.
type CounterTelemetry struct {
	resources *xsync.MapOf[string, *counters]
}

// NewCounterTelemetry returns zeroed counters.
func NewCounterTelemetry() *CounterTelemetry {
	return &CounterTelemetry{resources: xsync.NewMapOf[string, *counters]()}
}

func (c *CounterTelemetry) Record(_ context.Context, event Event) {
	cs, _ := c.resources.LoadOrCompute(event.Resource, func() *counters { return &counters{} })
	switch event.Kind {
	case EventHit:
		cs.hits.Add(1)
	case EventMiss:
		cs.misses.Add(1)
	}
}

// Stats returns the counters of resource.
func (c *CounterTelemetry) Stats(resource string) Stats {
	cs, ok := c.resources.Load(resource)
	if !ok {
		return Stats{}
	}
	return Stats{Hits: cs.hits.Load(), Misses: cs.misses.Load()}
}

// Snapshot returns the counters of every resource seen so far.
func (c *CounterTelemetry) Snapshot() map[string]Stats {
	out := make(map[string]Stats, c.resources.Size())
	c.resources.Range(func(resource string, cs *counters) bool {
		out[resource] = Stats{Hits: cs.hits.Load(), Misses: cs.misses.Load()}
		return true
	})
	return out
}

// Resources returns the sorted names of resources with recorded events.
func (c *CounterTelemetry) Resources() []string {
	names := make([]string, 0, c.resources.Size())
	c.resources.Range(func(resource string, _ *counters) bool {
		names = append(names, resource)
		return true
	})
	sort.Strings(names)
	return names
}
