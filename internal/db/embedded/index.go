package embedded

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/bazaarmkt/bazaarmkt/internal/db"
)

// CreateIndex validates and persists an index definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if def.StorageType == db.StorageHash {
		return &db.Error{Op: db.OpCreateIndex, Err: errUnsupportedHash}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	data, err := json.Marshal(def)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(indexMetaPrefix+def.Name), data)
	}); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	saved := *def
	s.indexes[def.Name] = &saved
	s.logger.Debug("index created", zap.String("index", def.Name))
	return nil
}

// DropIndex removes an index definition. Documents are kept.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[name]; !ok {
		return db.ErrIndexNotFound
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(indexMetaPrefix + name))
	}); err != nil {
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	delete(s.indexes, name)
	return nil
}

// IndexExists reports whether an index definition is registered.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.indexes[name]
	return ok, nil
}

func (s *Store) index(name string) (*db.IndexDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.indexes[name]
	if !ok {
		return nil, db.ErrIndexNotFound
	}
	return def, nil
}
