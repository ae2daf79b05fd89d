package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bazaarmkt/bazaarmkt/internal/config"
	"github.com/bazaarmkt/bazaarmkt/internal/db/breaker"
	"github.com/bazaarmkt/bazaarmkt/internal/db/factory"
	"github.com/bazaarmkt/bazaarmkt/internal/domain"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/ranking"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/search/request"
	logpkg "github.com/bazaarmkt/bazaarmkt/internal/logger"
	"github.com/bazaarmkt/bazaarmkt/internal/metrics"
	productrepo "github.com/bazaarmkt/bazaarmkt/internal/repository/product"
	chiTransport "github.com/bazaarmkt/bazaarmkt/internal/transport/chi"
	batchuc "github.com/bazaarmkt/bazaarmkt/internal/usecase/batch"
	healthuc "github.com/bazaarmkt/bazaarmkt/internal/usecase/health"
	productuc "github.com/bazaarmkt/bazaarmkt/internal/usecase/product"
	searchuc "github.com/bazaarmkt/bazaarmkt/internal/usecase/search"
	"github.com/bazaarmkt/bazaarmkt/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting bazaarmkt API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	policy, err := ranking.ParseProximityPolicy(cfg.Search.ProximityPolicy)
	if err != nil {
		logger.Fatal("Invalid proximity policy", zap.Error(err))
	}
	if policy == ranking.ProximityBands {
		logger.Warn("Proximity policy \"bands\" is deprecated, use \"decay\"")
	}

	rawStore, err := factory.Open(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer rawStore.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := rawStore.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterBreakerMetrics()

	store := breaker.Wrap(rawStore, breaker.Config{
		Name:         "store",
		MaxRequests:  cfg.Breaker.MaxRequests,
		Interval:     time.Duration(cfg.Breaker.IntervalSec) * time.Second,
		Timeout:      time.Duration(cfg.Breaker.TimeoutSec) * time.Second,
		MinRequests:  cfg.Breaker.MinRequests,
		FailureRatio: cfg.Breaker.FailureRatio,
	}, logger)

	domain.SetKeyPrefix(cfg.Storage.KeyPrefix)
	repo := productrepo.New(store)

	created, err := repo.EnsureIndex(ctx)
	if err != nil {
		logger.Fatal("Failed to create product index", zap.Error(err))
	}
	logger.Info("Product index ready", zap.Bool("created", created))

	// Create use case services
	searchSvc := searchuc.New(repo, searchuc.Config{
		MaxCandidates: cfg.Search.MaxCandidates,
		Policy:        policy,
	})
	productSvc := productuc.New(repo).
		WithPagination(cfg.Products.DefaultPageSize, cfg.Products.MaxPageSize)
	batchSvc := batchuc.New(repo, repo).
		WithMaxBatchSize(cfg.Products.MaxBatchSize)
	healthSvc := healthuc.New(store, store)

	server := chiTransport.NewServer(searchSvc, productSvc, batchSvc, healthSvc, logger).
		WithSearchLimits(request.Limits{
			DefaultLimit:    cfg.Search.DefaultLimit,
			MaxLimit:        cfg.Search.MaxLimit,
			DefaultRadiusKm: cfg.Search.DefaultRadiusKm,
			MaxRadiusKm:     cfg.Search.MaxRadiusKm,
		}).
		WithEnhancedByDefault(cfg.Search.EnhancedByDefault)

	if len(cfg.Auth.APIKeys) == 0 {
		logger.Warn("No API keys configured, write routes are unauthenticated")
	}

	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys: cfg.Auth.APIKeys,
		CORS: chiTransport.CORSConfig{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAgeSec,
		},
		RateLimit: chiTransport.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   time.Duration(cfg.RateLimit.WindowSec) * time.Second,
		},
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
