// Bulk catalog import for bazaarmkt.
// Reads product rows from parquet files and writes them through the batch
// service, so imported products get the same normalization and validation as
// the API's batch route.
//
// Usage:
//
//	ENV=prod bazaarmkt-import -data-dir /data/catalog -workers 8
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bazaarmkt/bazaarmkt/internal/config"
	"github.com/bazaarmkt/bazaarmkt/internal/db/factory"
	"github.com/bazaarmkt/bazaarmkt/internal/domain"
	"github.com/bazaarmkt/bazaarmkt/internal/importer"
	logpkg "github.com/bazaarmkt/bazaarmkt/internal/logger"
	productrepo "github.com/bazaarmkt/bazaarmkt/internal/repository/product"
	batchuc "github.com/bazaarmkt/bazaarmkt/internal/usecase/batch"
)

type flags struct {
	dataDir     string
	maxRows     int
	workers     int
	batchSize   int
	metricsPort int
}

func parseFlags() flags {
	f := flags{}
	flag.StringVar(&f.dataDir, "data-dir", "./data", "directory with catalog parquet files")
	flag.IntVar(&f.maxRows, "max-rows", 0, "max products to import (0=unlimited)")
	flag.IntVar(&f.workers, "workers", 4, "number of parallel upsert workers")
	flag.IntVar(&f.batchSize, "batch-size", batchuc.MaxBatchSize, "products per batch upsert")
	flag.IntVar(&f.metricsPort, "metrics-port", 0, "Prometheus metrics port (0=disabled)")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, &cfg, f, logger); err != nil {
		cancel()
		logger.Fatal("Import failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, f flags, logger *zap.Logger) error {
	reader, err := importer.NewReader(f.dataDir)
	if err != nil {
		return err
	}
	logger.Info("Found catalog files", zap.Int("files", len(reader.Files())), zap.String("dir", f.dataDir))

	store, err := factory.Open(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	domain.SetKeyPrefix(cfg.Storage.KeyPrefix)
	repo := productrepo.New(store)
	if _, err := repo.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := importer.NewMetrics(reg)
	if f.metricsPort > 0 {
		srv := serveMetrics(f.metricsPort, reg, logger)
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutCancel()
			_ = srv.Shutdown(shutCtx)
		}()
	}

	batchSize := min(f.batchSize, cfg.Products.MaxBatchSize)
	batchSvc := batchuc.New(repo, repo).WithMaxBatchSize(cfg.Products.MaxBatchSize)

	res, err := importer.NewIngester(batchSvc, logger).
		WithWorkers(f.workers).
		WithBatchSize(batchSize).
		WithMetrics(m).
		Run(ctx, reader, f.maxRows)

	logger.Info("Import finished",
		zap.Int64("processed", res.Processed),
		zap.Int64("failed", res.Failed),
		zap.Int64("skipped", res.Skipped),
		zap.Duration("duration", res.Duration),
	)
	return err
}

func serveMetrics(port int, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server error", zap.Error(err))
		}
	}()
	return srv
}
