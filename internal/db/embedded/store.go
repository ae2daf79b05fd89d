// Package embedded is a single-process db.Store on BadgerDB. It keeps JSON
// documents as raw bytes and answers FT-style queries by scanning the index
// prefixes, which suits development and small catalogs.
package embedded

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/bazaarmkt/bazaarmkt/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// indexMetaPrefix namespaces persisted index definitions away from documents.
const indexMetaPrefix = "\x00meta:index:"

// Config holds badger options.
type Config struct {
	Path     string
	InMemory bool
}

// Store implements db.Store on BadgerDB.
type Store struct {
	db     *badger.DB
	logger *zap.Logger

	mu      sync.RWMutex
	indexes map[string]*db.IndexDefinition
}

type badgerLogger struct {
	sugar *zap.SugaredLogger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, args ...any)   { l.sugar.Errorf(msg, args...) }
func (l *badgerLogger) Warningf(msg string, args ...any) { l.sugar.Warnf(msg, args...) }
func (l *badgerLogger) Infof(msg string, args ...any)    { l.sugar.Debugf(msg, args...) }
func (l *badgerLogger) Debugf(msg string, args ...any)   { l.sugar.Debugf(msg, args...) }

// Open opens or creates a badger database and loads saved index definitions.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("path is required unless in_memory is set")
		}
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = &badgerLogger{sugar: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	s := &Store{db: bdb, logger: logger, indexes: make(map[string]*db.IndexDefinition)}
	if err := s.loadIndexes(); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return s, nil
}

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("ping: database is closed")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("badger close failed", zap.Error(err))
	}
}

// WaitForReady returns at once: an opened badger database is ready.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Ping(ctx)
}

func (s *Store) loadIndexes() error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(indexMetaPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var def db.IndexDefinition
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &def)
			}); err != nil {
				return fmt.Errorf("load index %s: %w", it.Item().Key(), err)
			}
			s.indexes[def.Name] = &def
		}
		return nil
	})
}
