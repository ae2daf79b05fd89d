package chi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/bazaarmkt/bazaarmkt/internal/domain"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/filter"
	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
	batchuc "github.com/bazaarmkt/bazaarmkt/internal/usecase/batch"
	healthuc "github.com/bazaarmkt/bazaarmkt/internal/usecase/health"
	productuc "github.com/bazaarmkt/bazaarmkt/internal/usecase/product"
	searchuc "github.com/bazaarmkt/bazaarmkt/internal/usecase/search"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// fakeRepo is an in-memory product store that satisfies every use-case contract.
type fakeRepo struct {
	mu       sync.Mutex
	products map[string]domprod.Product
	order    []string

	fetchErr  error
	upsertErr error
	pingErr   error
}

func newFakeRepo(ps ...domprod.Product) *fakeRepo {
	f := &fakeRepo{products: make(map[string]domprod.Product)}
	for _, p := range ps {
		f.put(p)
	}
	return f
}

func (f *fakeRepo) put(p domprod.Product) bool {
	_, exists := f.products[p.ID]
	if !exists {
		f.order = append(f.order, p.ID)
	}
	f.products[p.ID] = p
	return !exists
}

func (f *fakeRepo) FetchCandidates(
	_ context.Context, _ []string, _ filter.Expression, limit int,
) ([]domprod.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, 0, f.fetchErr
	}
	out := make([]domprod.Product, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.products[id])
	}
	matched := len(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, matched, nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (domprod.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return domprod.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeRepo) Upsert(_ context.Context, p *domprod.Product) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	return f.put(*p), nil
}

func (f *fakeRepo) UpsertMany(_ context.Context, ps []domprod.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, p := range ps {
		f.put(p)
	}
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(f.products, id)
	f.order = slices.DeleteFunc(f.order, func(s string) bool { return s == id })
	return nil
}

func (f *fakeRepo) List(_ context.Context, _ filter.Expression, offset, limit int) ([]domprod.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]domprod.Product, 0, len(f.order))
	for _, id := range f.order {
		all = append(all, f.products[id])
	}
	slices.SortStableFunc(all, func(a, b domprod.Product) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if offset >= len(all) {
		return []domprod.Product{}, len(all), nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], len(all), nil
}

func (f *fakeRepo) Ping(context.Context) error { return f.pingErr }

func newTestAPI(t *testing.T, repo *fakeRepo, apiKeys ...string) http.Handler {
	t.Helper()
	clock := func() time.Time { return testNow }
	srv := NewServer(
		searchuc.New(repo, searchuc.Config{}).WithClock(clock),
		productuc.New(repo).WithClock(clock),
		batchuc.New(repo, repo).WithClock(clock),
		healthuc.New(repo, nil),
		zap.NewNop(),
	)
	return NewRouter(srv, RouterConfig{APIKeys: apiKeys})
}

func doRequest(t *testing.T, h http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("marshal body: %v", err)
			}
			r = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func eggsProduct() domprod.Product {
	return domprod.Product{
		ID:        "eggs-1",
		Name:      "Fresh Organic Eggs",
		Tags:      []string{"eggs", "farm"},
		Category:  "dairy-eggs",
		Price:     6.5,
		Stock:     30,
		Status:    domprod.StatusActive,
		CreatedAt: testNow,
		Image:     "eggs.jpg",
		Dietary:   domprod.Dietary{Organic: true},
		Artisan: &domprod.Artisan{
			ID:          "a1",
			Name:        "Ferme Lavoie",
			Coordinates: &domprod.LatLng{Latitude: 45.5088, Longitude: -73.5878},
		},
	}
}

func milkProduct() domprod.Product {
	return domprod.Product{
		ID:        "milk-1",
		Name:      "Milk",
		Category:  "dairy-eggs",
		Price:     4,
		Status:    domprod.StatusActive,
		CreatedAt: testNow.AddDate(0, 0, -100),
	}
}
