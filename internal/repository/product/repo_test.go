package product

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bazaarmkt/bazaarmkt/internal/db"
	"github.com/bazaarmkt/bazaarmkt/internal/domain"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/filter"
	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

// --- DTO ---

func TestDoc_RoundTrip(t *testing.T) {
	p := testProduct(t)
	data, err := marshalProduct(&p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := unmarshalProduct(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, p)
	}
}

func TestDoc_StoredShape(t *testing.T) {
	p := testProduct(t)
	data, err := marshalProduct(&p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{
		`"createdAt":"2026-04-20T09:30:00Z"`,
		`"createdTs":1776677400`,
		`"dietary":["organic","glutenFree"]`,
		`"status":"active"`,
		`"artisan":{"id":"art-1"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("stored document missing %s: %s", want, s)
		}
	}
}

func TestDoc_ArrayWrappedAndTolerant(t *testing.T) {
	raw := `[{"id":"x","name":"Jam","status":"active","createdAt":"yesterday","dietary":["vegan","paleo"]}]`
	p, err := unmarshalProduct([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "x" || p.Name != "Jam" {
		t.Errorf("product = %+v", p)
	}
	if !p.CreatedAt.IsZero() {
		t.Errorf("bad timestamp should be dropped, got %v", p.CreatedAt)
	}
	if !p.Dietary.Vegan || p.Dietary.Organic {
		t.Errorf("dietary = %+v", p.Dietary)
	}
	if p.Artisan != nil {
		t.Error("missing artisan should stay nil")
	}
}

func TestDoc_EmptyCoordinatesAreAbsent(t *testing.T) {
	for _, coords := range []string{`{}`, `{"latitude":45.5}`, `{"longitude":-73.5}`} {
		raw := `{"id":"x","name":"Jam","status":"active","artisan":{"id":"a1","coordinates":` + coords + `}}`
		p, err := unmarshalProduct([]byte(raw))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", coords, err)
		}
		if p.Artisan == nil || p.Artisan.Coordinates != nil {
			t.Errorf("%s: coordinates = %+v, want none", coords, p.Artisan)
		}
		if _, ok := p.Artisan.Point(); ok {
			t.Errorf("%s: artisan resolved to a point", coords)
		}
	}

	raw := `{"id":"x","name":"Jam","status":"active","artisan":{"coordinates":{"latitude":0,"longitude":0}}}`
	p, err := unmarshalProduct([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pt, ok := p.Artisan.Point(); !ok || pt.Lat() != 0 || pt.Lng() != 0 {
		t.Errorf("explicit (0,0) should be kept, got %v %v", pt, ok)
	}
}

func TestDoc_CreatedTsFallback(t *testing.T) {
	p, err := unmarshalProduct([]byte(`{"id":"x","createdTs":1776677400}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 4, 20, 9, 30, 0, 0, time.UTC)
	if !p.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", p.CreatedAt, want)
	}
}

func TestDoc_EmptyArray(t *testing.T) {
	if _, err := unmarshalProduct([]byte(`[]`)); !errors.Is(err, errEmptyDocument) {
		t.Errorf("expected errEmptyDocument, got %v", err)
	}
}

// --- Index ---

func TestBuildIndex(t *testing.T) {
	def, err := buildIndex()
	if err != nil {
		t.Fatalf("buildIndex: %v", err)
	}
	if def.Name != "bazaarmkt:products:idx" {
		t.Errorf("name = %s", def.Name)
	}
	if !slices.Equal(def.Prefixes, []string{"bazaarmkt:product:"}) {
		t.Errorf("prefixes = %v", def.Prefixes)
	}
	for _, key := range TextFields {
		f, ok := def.Field(key)
		if !ok || f.Type != db.IndexFieldText {
			t.Errorf("text field %s missing", key)
		}
	}
	created, ok := def.Field(domprod.FieldCreated)
	if !ok || !created.Sortable {
		t.Error("created must be a sortable numeric field")
	}
	if f, ok := def.Field(domprod.FieldDietary); !ok || f.Name != "$.dietary[*]" {
		t.Errorf("dietary field = %+v", f)
	}
	if f, _ := def.Field("name"); f.Weight != nameWeight {
		t.Errorf("name weight = %g", f.Weight)
	}
	if !def.NoStopWords || def.Language != "english" {
		t.Errorf("language = %q, stopwords off = %v", def.Language, def.NoStopWords)
	}
}

func TestEnsureIndex(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	var created string
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		created = def.Name
		return nil
	}
	ok, err := repo.EnsureIndex(ctx)
	if err != nil || !ok {
		t.Fatalf("EnsureIndex = %v, %v", ok, err)
	}
	if created != "bazaarmkt:products:idx" {
		t.Errorf("created index %q", created)
	}

	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error {
		return &db.Error{Op: db.OpCreateIndex, Err: db.ErrIndexExists}
	}
	ok, err = repo.EnsureIndex(ctx)
	if err != nil || ok {
		t.Fatalf("existing index: got %v, %v", ok, err)
	}

	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return errors.New("boom") }
	if _, err := repo.EnsureIndex(ctx); err == nil {
		t.Fatal("expected error")
	}
}

// --- Get ---

func TestGet_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	want := testProduct(t)
	data, _ := marshalProduct(&want)

	ms.jsonGetFn = func(_ context.Context, key string, paths ...string) ([]byte, error) {
		if key != "bazaarmkt:product:eggs-1" {
			t.Errorf("unexpected key: %s", key)
		}
		if len(paths) != 0 {
			t.Errorf("expected root read, got paths %v", paths)
		}
		return data, nil
	}

	got, err := repo.Get(context.Background(), "eggs-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != want.Name || got.Artisan == nil || got.Artisan.ID != "art-1" {
		t.Errorf("got %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestGet_Unavailable(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(context.Context, string, ...string) ([]byte, error) {
		return nil, db.ErrUnavailable
	}
	_, err := repo.Get(context.Background(), "x")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestGet_Corrupt(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(context.Context, string, ...string) ([]byte, error) {
		return []byte(`{not json`), nil
	}
	if _, err := repo.Get(context.Background(), "x"); err == nil {
		t.Fatal("expected decode error")
	}
}

// --- Upsert ---

func TestUpsert_Create(t *testing.T) {
	repo, ms := newTestRepo(t)
	p := testProduct(t)

	ms.existsFn = func(context.Context, string) (bool, error) { return false, nil }
	ms.jsonSetFn = func(_ context.Context, key, path string, data []byte) error {
		if key != "bazaarmkt:product:eggs-1" || path != "$" {
			t.Errorf("JSONSet(%s, %s)", key, path)
		}
		if !strings.Contains(string(data), `"name":"Fresh Organic Eggs"`) {
			t.Errorf("data = %s", data)
		}
		return nil
	}

	created, err := repo.Upsert(context.Background(), &p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected created=true for new product")
	}
}

func TestUpsert_Update(t *testing.T) {
	repo, ms := newTestRepo(t)
	p := testProduct(t)
	ms.existsFn = func(context.Context, string) (bool, error) { return true, nil }

	created, err := repo.Upsert(context.Background(), &p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatal("expected created=false for existing product")
	}
}

func TestUpsert_JSONSetError(t *testing.T) {
	repo, ms := newTestRepo(t)
	p := testProduct(t)
	ms.jsonSetFn = func(context.Context, string, string, []byte) error { return errors.New("OOM") }

	if _, err := repo.Upsert(context.Background(), &p); err == nil {
		t.Fatal("expected error on JSON.SET failure")
	}
}

func TestUpsertMany(t *testing.T) {
	repo, ms := newTestRepo(t)
	a := testProduct(t)
	b := testProduct(t)
	b.ID = "eggs-2"

	var keys []string
	ms.jsonSetMultiFn = func(_ context.Context, items []db.JSONSetItem) error {
		for _, it := range items {
			keys = append(keys, it.Key)
		}
		return nil
	}
	if err := repo.UpsertMany(context.Background(), []domprod.Product{a, b}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(keys, []string{"bazaarmkt:product:eggs-1", "bazaarmkt:product:eggs-2"}) {
		t.Errorf("keys = %v", keys)
	}

	called := false
	ms.jsonSetMultiFn = func(context.Context, []db.JSONSetItem) error { called = true; return nil }
	if err := repo.UpsertMany(context.Background(), nil); err != nil || called {
		t.Errorf("empty batch: err=%v called=%v", err, called)
	}
}

// --- Delete ---

func TestDelete(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Delete(ctx, "missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	ms.existsFn = func(context.Context, string) (bool, error) { return true, nil }
	var deleted string
	ms.delFn = func(_ context.Context, key string) error { deleted = key; return nil }
	if err := repo.Delete(ctx, "eggs-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "bazaarmkt:product:eggs-1" {
		t.Errorf("deleted %q", deleted)
	}
}

// --- Search ---

func TestFetchCandidates(t *testing.T) {
	repo, ms := newTestRepo(t)
	p := testProduct(t)
	data, _ := marshalProduct(&p)

	expr, err := filter.NewBuilder().Tag(domprod.FieldStatus, "active").Build()
	if err != nil {
		t.Fatalf("filter: %v", err)
	}

	ms.searchTextFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		if q.IndexName != "bazaarmkt:products:idx" {
			t.Errorf("index = %s", q.IndexName)
		}
		if !slices.Equal(q.Terms, []string{"eggs", "egg"}) {
			t.Errorf("terms = %v", q.Terms)
		}
		if !slices.Equal(q.TextFields, TextFields) || q.Limit != 50 {
			t.Errorf("query = %+v", q)
		}
		if len(q.Filters.Must()) != 1 {
			t.Errorf("filters = %+v", q.Filters)
		}
		return &db.SearchResult{
			Total: 3,
			Entries: []db.SearchEntry{
				{Key: "bazaarmkt:product:eggs-1", Fields: map[string]string{"$": string(data)}},
				{Key: "bazaarmkt:product:bad", Fields: map[string]string{"$": "{oops"}},
				{Key: "bazaarmkt:product:empty", Fields: map[string]string{}},
			},
		}, nil
	}

	got, total, err := repo.FetchCandidates(context.Background(), []string{"eggs", "egg"}, expr, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d", total)
	}
	if len(got) != 1 || got[0].ID != "eggs-1" {
		t.Errorf("candidates = %+v", got)
	}
}

func TestFetchCandidates_IDFromKey(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchTextFn = func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{
			{Key: "bazaarmkt:product:legacy", Fields: map[string]string{"$": `{"name":"Old"}`}},
		}}, nil
	}
	got, _, err := repo.FetchCandidates(context.Background(), nil, filter.Expression{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "legacy" {
		t.Errorf("got %+v", got)
	}
}

func TestFetchCandidates_Error(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchTextFn = func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("syntax error")}
	}
	_, _, err := repo.FetchCandidates(context.Background(), []string{"x"}, filter.Expression{}, 10)
	if err == nil || errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected plain store error, got %v", err)
	}
}

func TestList(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchListFn = func(_ context.Context, q *db.ListQuery) (*db.SearchResult, error) {
		if q.SortBy != domprod.FieldCreated || !q.Descending || q.Offset != 20 || q.Limit != 10 {
			t.Errorf("query = %+v", q)
		}
		return &db.SearchResult{Total: 0}, nil
	}
	got, total, err := repo.List(context.Background(), filter.Expression{}, 20, 10)
	if err != nil || total != 0 || got != nil {
		t.Fatalf("List = %v, %d, %v", got, total, err)
	}
}
