package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-skillsnap/api"
	"github.com/goliatone/go-skillsnap/config"
	"github.com/goliatone/go-skillsnap/internal/database"
	"github.com/goliatone/go-skillsnap/internal/logging"
	"github.com/goliatone/go-skillsnap/pkg/di"
	"github.com/goliatone/go-skillsnap/portfolio"
	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "skillsnap: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := portfolio.CreateSchema(ctx, db); err != nil {
		return err
	}
	if cfg.Database.Seed {
		seeded, err := portfolio.Seed(ctx, db)
		if err != nil {
			return err
		}
		logger.Info("sample data", zap.Bool("inserted", seeded))
	}

	container, err := di.NewContainer(cfg.Cache, di.WithLogger(logger))
	if err != nil {
		return err
	}
	defer container.Close()

	repos, err := di.NewRepositories(container, db)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Deps{
		Logger:        logger,
		DB:            db,
		Projects:      repos.Projects,
		Skills:        repos.Skills,
		Users:         repos.Users,
		SeedResources: repos.Resources(),
		Invalidator:   container.Invalidator(),
		Counters:      container.Counters(),
		Registry:      container.Registry(),
		Store:         container.Store(),
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", server.Addr), zap.String("cache_backend", string(cfg.Cache.Backend)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
