package embedded

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/bazaarmkt/bazaarmkt/internal/db"
)

// rootPath is the only JSON path the embedded store writes or reads.
const rootPath = "$"

// JSONSet replaces the whole document at key. Only the root path is supported.
func (s *Store) JSONSet(ctx context.Context, key, path string, data []byte) error {
	return s.JSONSetMulti(ctx, []db.JSONSetItem{{Key: key, Path: path, Data: data}})
}

// JSONSetMulti writes all documents in one transaction.
func (s *Store) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if len(items) == 0 {
		return nil
	}
	for _, item := range items {
		if err := checkRoot(item.Path); err != nil {
			return &db.Error{Op: db.OpJSONSet, Err: err}
		}
		if !json.Valid(item.Data) {
			return &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("key %s: invalid JSON", item.Key)}
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, item := range items {
			if err := txn.Set([]byte(item.Key), item.Data); err != nil {
				return fmt.Errorf("key %s: %w", item.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}

// JSONGet returns the document at key.
func (s *Store) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	for _, p := range paths {
		if err := checkRoot(p); err != nil {
			return nil, &db.Error{Op: db.OpJSONGet, Err: err}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
	return out, nil
}

// Del deletes a key. Deleting a missing key is not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	}); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
}

func checkRoot(path string) error {
	if path != rootPath && path != "" {
		return fmt.Errorf("unsupported JSON path %q", path)
	}
	return nil
}
