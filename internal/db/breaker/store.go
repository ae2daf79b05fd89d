// Package breaker guards a db.Store with a circuit breaker so a failing
// backend is shed quickly instead of stalling every request.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/bazaarmkt/bazaarmkt/internal/db"
	"github.com/bazaarmkt/bazaarmkt/internal/metrics"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config tunes the breaker. Zero values take the defaults below.
type Config struct {
	Name         string
	MaxRequests  uint32        // probes allowed while half-open
	Interval     time.Duration // closed-state count reset period
	Timeout      time.Duration // open duration before probing
	MinRequests  uint32        // requests before the failure ratio counts
	FailureRatio float64
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "store"
	}
	if c.MaxRequests == 0 {
		c.MaxRequests = 3
	}
	if c.Interval == 0 {
		c.Interval = time.Minute
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MinRequests == 0 {
		c.MinRequests = 10
	}
	if c.FailureRatio == 0 {
		c.FailureRatio = 0.6
	}
}

// Store wraps a db.Store. Ping, Close and WaitForReady bypass the breaker so
// health checks always see the real backend.
type Store struct {
	next   db.Store
	cb     *gobreaker.CircuitBreaker[any]
	name   string
	logger *zap.Logger
}

// Wrap builds the breaker around next.
func Wrap(next db.Store, cfg Config, logger *zap.Logger) *Store {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("breaker", cfg.Name))

	metrics.BreakerState.WithLabelValues(cfg.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				logger.Warn("opening circuit",
					zap.Uint32("failures", counts.TotalFailures),
					zap.Float64("failure_ratio", ratio),
				)
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit state change",
				zap.String("from", stateToString(from)),
				zap.String("to", stateToString(to)),
			)
			metrics.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.BreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
		IsSuccessful: isSuccessful,
	})

	return &Store{next: next, cb: cb, name: cfg.Name, logger: logger}
}

// State reports the current breaker state.
func (s *Store) State() string { return stateToString(s.cb.State()) }

// isSuccessful keeps expected outcomes from counting as backend failures.
func isSuccessful(err error) bool {
	return err == nil || db.IsExpected(err) || errors.Is(err, context.Canceled)
}

func call[T any](s *Store, fn func() (T, error)) (T, error) {
	var zero T
	res, err := s.cb.Execute(func() (any, error) {
		return fn()
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.BreakerRequests.WithLabelValues(s.name, "rejected").Inc()
		return zero, fmt.Errorf("%w: %w", db.ErrUnavailable, err)
	case err != nil && !isSuccessful(err):
		metrics.BreakerRequests.WithLabelValues(s.name, "failure").Inc()
		return zero, fmt.Errorf("%w: %w", db.ErrUnavailable, err)
	case err != nil:
		metrics.BreakerRequests.WithLabelValues(s.name, "success").Inc()
		return zero, err
	}
	metrics.BreakerRequests.WithLabelValues(s.name, "success").Inc()
	v, _ := res.(T)
	return v, nil
}

func run(s *Store, fn func() error) error {
	_, err := call(s, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

// Ping checks the backend directly.
func (s *Store) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close closes the backend.
func (s *Store) Close() { s.next.Close() }

// WaitForReady waits on the backend directly.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return s.next.WaitForReady(ctx, timeout)
}

// JSONSet implements db.JSONStore.
func (s *Store) JSONSet(ctx context.Context, key, path string, data []byte) error {
	return run(s, func() error { return s.next.JSONSet(ctx, key, path, data) })
}

// JSONSetMulti implements db.JSONStore.
func (s *Store) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	return run(s, func() error { return s.next.JSONSetMulti(ctx, items) })
}

// JSONGet implements db.JSONStore.
func (s *Store) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	return call(s, func() ([]byte, error) { return s.next.JSONGet(ctx, key, paths...) })
}

// Del implements db.JSONStore.
func (s *Store) Del(ctx context.Context, key string) error {
	return run(s, func() error { return s.next.Del(ctx, key) })
}

// Exists implements db.JSONStore.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	return call(s, func() (bool, error) { return s.next.Exists(ctx, key) })
}

// CreateIndex implements db.IndexManager.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	return run(s, func() error { return s.next.CreateIndex(ctx, def) })
}

// DropIndex implements db.IndexManager.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	return run(s, func() error { return s.next.DropIndex(ctx, name) })
}

// IndexExists implements db.IndexManager.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	return call(s, func() (bool, error) { return s.next.IndexExists(ctx, name) })
}

// SearchText implements db.Searcher.
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	return call(s, func() (*db.SearchResult, error) { return s.next.SearchText(ctx, q) })
}

// SearchList implements db.Searcher.
func (s *Store) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	return call(s, func() (*db.SearchResult, error) { return s.next.SearchList(ctx, q) })
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
