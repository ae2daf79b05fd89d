package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/bazaarmkt/bazaarmkt/internal/db"
)

var _ db.Store = (*Store)(nil)

// ErrNoSearchModule is returned by WaitForReady when the server answers
// but lacks the search commands product queries depend on.
var ErrNoSearchModule = errors.New("redis: search module not loaded (need Redis Stack or Redis 8+)")

const (
	clientName     = "bazaarmkt"
	readyBaseDelay = 50 * time.Millisecond
	readyMaxDelay  = time.Second
)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store keeps products as RedisJSON documents and queries them through
// RediSearch.
type Store struct {
	client rueidis.Client
}

// NewStore connects a rueidis client.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   clientName,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH replies are parsed as RESP2 arrays
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", strings.Join(cfg.Addrs, ","), err)
	}

	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings with doubling delays until the server answers, then
// checks that the search module is present.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	delay := readyBaseDelay
	var lastErr error
	for {
		if lastErr = s.Ping(ctx); lastErr == nil {
			return s.checkSearchModule(ctx)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("database not ready after %s: %w", timeout, errors.Join(ctx.Err(), lastErr))
		case <-timer.C:
		}
		delay = min(delay*2, readyMaxDelay)
	}
}

func (s *Store) checkSearchModule(ctx context.Context) error {
	err := s.do(ctx, s.b().Arbitrary("FT._LIST").Build()).Error()
	if err == nil {
		return nil
	}
	if isRedisErr(err, "unknown command") {
		return ErrNoSearchModule
	}
	return fmt.Errorf("probe search module: %w", err)
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr reports whether err is a server error mentioning substr, ignoring case.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
