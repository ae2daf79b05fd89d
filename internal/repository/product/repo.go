package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bazaarmkt/bazaarmkt/internal/db"
	"github.com/bazaarmkt/bazaarmkt/internal/domain"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/filter"
	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
	"github.com/bazaarmkt/bazaarmkt/internal/logger"
)

var errEmptyDocument = errors.New("empty document")

// store is the consumer interface for products (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

// Repo implements the product repository used by the search and product use cases.
type Repo struct {
	store store
}

// New creates a product repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get returns a product by ID.
func (r *Repo) Get(ctx context.Context, id string) (domprod.Product, error) {
	key := productKey(id)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domprod.Product{}, domain.ErrProductNotFound
		}
		return domprod.Product{}, storeErr("json.get "+key, err)
	}
	p, err := unmarshalProduct(raw)
	if err != nil {
		return domprod.Product{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return p, nil
}

// Upsert creates or replaces a product. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, p *domprod.Product) (bool, error) {
	key := productKey(p.ID)
	data, err := marshalProduct(p)
	if err != nil {
		return false, fmt.Errorf("marshal product: %w", err)
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, storeErr("check exists "+key, err)
	}
	if err := r.store.JSONSet(ctx, key, db.DocumentField, data); err != nil {
		return false, storeErr("json.set "+key, err)
	}
	return !exists, nil
}

// UpsertMany writes all products in one pipelined round-trip.
func (r *Repo) UpsertMany(ctx context.Context, products []domprod.Product) error {
	if len(products) == 0 {
		return nil
	}
	items := make([]db.JSONSetItem, len(products))
	for i := range products {
		data, err := marshalProduct(&products[i])
		if err != nil {
			return fmt.Errorf("marshal product %s: %w", products[i].ID, err)
		}
		items[i] = db.JSONSetItem{Key: productKey(products[i].ID), Path: db.DocumentField, Data: data}
	}
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return storeErr("json.set multi", err)
	}
	return nil
}

// Delete removes a product.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := productKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return storeErr("check exists "+key, err)
	}
	if !exists {
		return domain.ErrProductNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return storeErr("del "+key, err)
	}
	return nil
}

// FetchCandidates pulls up to limit products where any text field contains
// any of terms, case-insensitively, and all filters pass. Returns the products
// in store order together with the total number of matches.
func (r *Repo) FetchCandidates(
	ctx context.Context, terms []string, filters filter.Expression, limit int,
) ([]domprod.Product, int, error) {
	res, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    indexName(),
		Terms:        terms,
		TextFields:   TextFields,
		Filters:      filters,
		Limit:        limit,
		ReturnFields: []string{db.DocumentField},
	})
	if err != nil {
		return nil, 0, storeErr("fetch candidates", err)
	}
	return r.decodeEntries(ctx, res), res.Total, nil
}

// List pages through products passing filters, newest first.
func (r *Repo) List(
	ctx context.Context, filters filter.Expression, offset, limit int,
) ([]domprod.Product, int, error) {
	res, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName:    indexName(),
		Filters:      filters,
		SortBy:       domprod.FieldCreated,
		Descending:   true,
		Offset:       offset,
		Limit:        limit,
		ReturnFields: []string{db.DocumentField},
	})
	if err != nil {
		return nil, 0, storeErr("list products", err)
	}
	return r.decodeEntries(ctx, res), res.Total, nil
}

// decodeEntries skips documents that cannot be decoded so one corrupt record
// does not fail a whole search.
func (r *Repo) decodeEntries(ctx context.Context, res *db.SearchResult) []domprod.Product {
	if res == nil || len(res.Entries) == 0 {
		return nil
	}
	out := make([]domprod.Product, 0, len(res.Entries))
	for _, e := range res.Entries {
		raw := e.Fields[db.DocumentField]
		if raw == "" {
			continue
		}
		p, err := unmarshalProduct([]byte(raw))
		if err != nil {
			logger.FromContext(ctx).Warn("skipping undecodable product",
				zap.String("key", e.Key), zap.Error(err))
			continue
		}
		if p.ID == "" {
			p.ID = strings.TrimPrefix(e.Key, keyPrefix())
		}
		out = append(out, p)
	}
	return out
}

// storeErr wraps a store failure, surfacing outages as domain.ErrStoreUnavailable.
func storeErr(op string, err error) error {
	if errors.Is(err, db.ErrUnavailable) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
