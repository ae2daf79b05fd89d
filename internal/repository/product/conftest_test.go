package product

import (
	"context"
	"testing"
	"time"

	"github.com/bazaarmkt/bazaarmkt/internal/db"
	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn      func(ctx context.Context, key, path string, data []byte) error
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	jsonGetFn      func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn          func(ctx context.Context, key string) error
	existsFn       func(ctx context.Context, key string) (bool, error)
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
	searchTextFn   func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	searchListFn   func(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchTextFn != nil {
		return m.searchTextFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testProduct(t *testing.T) domprod.Product {
	t.Helper()
	return domprod.Product{
		ID:          "eggs-1",
		Name:        "Fresh Organic Eggs",
		Description: "A dozen free-range eggs",
		Tags:        []string{"eggs", "breakfast"},
		Category:    "dairy_eggs",
		Subcategory: "eggs",
		Price:       6.5,
		Stock:       24,
		Status:      domprod.StatusActive,
		CreatedAt:   time.Date(2026, 4, 20, 9, 30, 0, 0, time.UTC),
		Image:       "https://cdn.example.com/eggs.jpg",
		Rating:      domprod.Rating{Average: 4.5, Count: 12},
		TotalSales:  40,
		Dietary:     domprod.Dietary{Organic: true, GlutenFree: true},
		IsFeatured:  true,
		Badges:      []string{"bestseller"},
		Artisan: &domprod.Artisan{
			ID:            "art-1",
			Name:          "Ferme Lapointe",
			Location:      &domprod.GeoJSONPoint{Type: "Point", Coordinates: []float64{-73.56, 45.50}},
			Rating:        domprod.Rating{Average: 4.8, Count: 30},
			IsVerified:    true,
			DeliveryStats: domprod.DeliveryStats{OnTimeRate: 0.95},
			ComplaintRate: 0.01,
		},
	}
}
