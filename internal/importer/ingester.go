package importer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	dombatch "github.com/bazaarmkt/bazaarmkt/internal/domain/batch"
	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

// Upserter writes a batch of products and reports per-item outcomes.
type Upserter interface {
	Upsert(ctx context.Context, items []domprod.Product) []dombatch.Result
}

// Result summarizes an import run.
type Result struct {
	Processed int64
	Failed    int64
	Skipped   int64
	Duration  time.Duration
}

// Ingester fans batches out to a pool of upsert workers.
// Reader -> ants pool (N workers) -> Upsert.
type Ingester struct {
	upserter  Upserter
	logger    *zap.Logger
	metrics   *Metrics
	workers   int
	batchSize int
}

// NewIngester creates an ingester with 4 workers and batches of 100.
func NewIngester(upserter Upserter, logger *zap.Logger) *Ingester {
	return &Ingester{upserter: upserter, logger: logger, workers: 4, batchSize: 100}
}

// WithWorkers sets the number of parallel upsert workers.
func (ing *Ingester) WithWorkers(n int) *Ingester {
	if n > 0 {
		ing.workers = n
	}
	return ing
}

// WithBatchSize sets the number of products per upsert.
func (ing *Ingester) WithBatchSize(n int) *Ingester {
	if n > 0 {
		ing.batchSize = n
	}
	return ing
}

// WithMetrics enables prometheus counters.
func (ing *Ingester) WithMetrics(m *Metrics) *Ingester {
	ing.metrics = m
	return ing
}

// Run reads up to maxRows products (0 = all) and writes them in batches.
// The reader blocks while every worker is busy.
func (ing *Ingester) Run(ctx context.Context, r *Reader, maxRows int) (Result, error) {
	pool, err := ants.NewPool(ing.workers)
	if err != nil {
		return Result{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var processed, failed, skipped atomic.Int64
	var submitErr error

	start := time.Now()

	submit := func(batch []domprod.Product) bool {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			ing.processBatch(ctx, batch, &processed, &failed)
		})
		if err != nil {
			wg.Done()
			submitErr = fmt.Errorf("submit batch: %w", err)
			return false
		}
		return true
	}

	batch := make([]domprod.Product, 0, ing.batchSize)
	_, readErr := r.Read(ctx, maxRows,
		func(p domprod.Product) bool {
			batch = append(batch, p)
			if len(batch) < ing.batchSize {
				return true
			}
			full := batch
			batch = make([]domprod.Product, 0, ing.batchSize)
			return submit(full)
		},
		func(reason string) {
			skipped.Add(1)
			if ing.metrics != nil {
				ing.metrics.rowsFailed.WithLabelValues(reason).Inc()
			}
		},
	)
	if len(batch) > 0 && submitErr == nil {
		submit(batch)
	}

	wg.Wait()

	res := Result{
		Processed: processed.Load(),
		Failed:    failed.Load(),
		Skipped:   skipped.Load(),
		Duration:  time.Since(start),
	}
	if submitErr != nil {
		return res, submitErr
	}
	return res, readErr
}

func (ing *Ingester) processBatch(
	ctx context.Context, batch []domprod.Product, processed, failed *atomic.Int64,
) {
	start := time.Now()
	results := ing.upserter.Upsert(ctx, batch)
	ok, bad := dombatch.Count(results)

	processed.Add(int64(ok))
	failed.Add(int64(bad))

	if ing.metrics != nil {
		ing.metrics.batchDuration.Observe(time.Since(start).Seconds())
		ing.metrics.batchesTotal.Inc()
		ing.metrics.rowsProcessed.Add(float64(ok))
		for _, res := range results {
			if res.Status() != dombatch.StatusOK {
				ing.metrics.rowsFailed.WithLabelValues(string(res.Status())).Inc()
			}
		}
	}

	if bad > 0 {
		// Log the first failure only.
		for _, res := range results {
			if res.Err() != nil {
				ing.logger.Warn("Import item failed",
					zap.String("id", res.ID()),
					zap.String("status", string(res.Status())),
					zap.Error(res.Err()),
				)
				break
			}
		}
	}

	if total := processed.Load(); total%10000 < int64(len(batch)) {
		ing.logger.Info("Import progress", zap.Int64("processed", total), zap.Int64("failed", failed.Load()))
	}
}
