// Package api exposes the portfolio resources over HTTP with gin.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-skillsnap/cache"
	"github.com/goliatone/go-skillsnap/portfolio"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Deps are the collaborators of the router.
type Deps struct {
	Logger *zap.Logger
	DB     bun.IDB

	Projects portfolio.Repository[portfolio.Project]
	Skills   portfolio.Repository[portfolio.Skill]
	Users    portfolio.Repository[portfolio.PortfolioUser]

	// SeedResources are invalidated after sample data is inserted.
	SeedResources []string
	Invalidator   *cache.Invalidator

	Counters *cache.CounterTelemetry
	Registry *cache.KeyRegistry
	Store    cache.Store
}

// NewRouter builds the gin engine serving every route under /api.
func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(RequestID())
	router.Use(Logger(logger))
	router.Use(Recovery(logger))

	group := router.Group("/api")

	NewResourceHandler[portfolio.Project](deps.Projects, "/api/projects", PagingAlways, logger).
		Register(group, "/projects")
	NewResourceHandler[portfolio.Skill](deps.Skills, "/api/skills", PagingOnRequest, logger).
		Register(group, "/skills")
	NewResourceHandler[portfolio.PortfolioUser](deps.Users, "/api/portfoliousers", PagingOnRequest, logger).
		Register(group, "/portfoliousers")

	seed := &SeedHandler{
		db:          deps.DB,
		invalidator: deps.Invalidator,
		resources:   deps.SeedResources,
		logger:      logger,
	}
	group.POST("/seed", seed.seed)

	stats := &StatsHandler{
		counters: deps.Counters,
		registry: deps.Registry,
		store:    deps.Store,
	}
	group.GET("/cache/stats", stats.stats)

	return router
}
