package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-skillsnap/cache"
	"github.com/goliatone/go-skillsnap/portfolio"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// SeedHandler inserts the sample portfolio and invalidates every cached resource.
type SeedHandler struct {
	db          bun.IDB
	invalidator *cache.Invalidator
	resources   []string
	logger      *zap.Logger
}

func (h *SeedHandler) seed(c *gin.Context) {
	ctx := c.Request.Context()

	seeded, err := portfolio.Seed(ctx, h.db)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !seeded {
		c.String(http.StatusOK, "Data already exists.")
		return
	}

	if err := h.invalidator.InvalidateResources(ctx, h.resources...); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.String(http.StatusOK, "Sample data inserted.")
}

// ResourceStats is the cache state of one resource.
type ResourceStats struct {
	Hits       uint64  `json:"hits"`
	Misses     uint64  `json:"misses"`
	HitRatio   float64 `json:"hitRatio"`
	Keys       int     `json:"keys"`
	Generation uint64  `json:"generation"`
}

// StatsResponse is the body of GET /api/cache/stats.
type StatsResponse struct {
	Resources map[string]ResourceStats `json:"resources"`
	Entries   *int                     `json:"entries,omitempty"`
}

// StatsHandler reports hit and miss counters and registered keys per resource.
type StatsHandler struct {
	counters *cache.CounterTelemetry
	registry *cache.KeyRegistry
	store    cache.Store
}

func (h *StatsHandler) stats(c *gin.Context) {
	resp := StatsResponse{Resources: map[string]ResourceStats{}}

	names := map[string]struct{}{}
	if h.registry != nil {
		for _, name := range h.registry.Resources() {
			names[name] = struct{}{}
		}
	}
	if h.counters != nil {
		for _, name := range h.counters.Resources() {
			names[name] = struct{}{}
		}
	}

	for name := range names {
		var rs ResourceStats
		if h.counters != nil {
			s := h.counters.Stats(name)
			rs.Hits, rs.Misses, rs.HitRatio = s.Hits, s.Misses, s.HitRatio()
		}
		if h.registry != nil {
			rs.Keys = h.registry.Len(name)
			rs.Generation = h.registry.Generation(name)
		}
		resp.Resources[name] = rs
	}

	if sized, ok := h.store.(interface{ Len() int }); ok {
		n := sized.Len()
		resp.Entries = &n
	}

	c.JSON(http.StatusOK, resp)
}
