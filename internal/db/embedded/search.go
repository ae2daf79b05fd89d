package embedded

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/bazaarmkt/bazaarmkt/internal/db"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/filter"
)

// minInfixLen is the shortest term matched as a substring.
const minInfixLen = 2

var errUnsupportedHash = errors.New("embedded store indexes JSON documents only")

type hit struct {
	key  string
	raw  []byte
	sort *float64
}

// SearchText scans the index prefixes for documents where any text field
// holds a word starting with any term.
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	if len(q.Terms) > 0 && len(q.TextFields) == 0 {
		return nil, fmt.Errorf("text fields are required with terms")
	}

	def, err := s.index(q.IndexName)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	paths, err := fieldPaths(def, q.TextFields, db.IndexFieldText)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	terms := normalizeTerms(q.Terms)

	res := &db.SearchResult{}
	err = s.scan(ctx, def, q.Filters, func(key string, raw []byte, doc any) {
		if len(terms) > 0 && !matchText(doc, paths, terms) {
			return
		}
		res.Total++
		if len(res.Entries) < q.Limit {
			res.Entries = append(res.Entries, entry(key, raw))
		}
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SearchList returns one page of documents passing the filters.
func (s *Store) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Offset < 0 || q.Limit < 0 {
		return nil, fmt.Errorf("offset and limit must not be negative")
	}

	def, err := s.index(q.IndexName)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	var sortPath string
	if q.SortBy != "" {
		f, ok := def.Field(q.SortBy)
		if !ok || !f.Sortable {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("field %q is not sortable", q.SortBy)}
		}
		sortPath = f.Name
	}

	var hits []hit
	err = s.scan(ctx, def, q.Filters, func(key string, raw []byte, doc any) {
		h := hit{key: key, raw: raw}
		if sortPath != "" {
			if nums := numbersAt(doc, sortPath); len(nums) > 0 {
				h.sort = &nums[0]
			}
		}
		hits = append(hits, h)
	})
	if err != nil {
		return nil, err
	}

	if sortPath != "" {
		slices.SortStableFunc(hits, func(a, b hit) int { return compareSort(a.sort, b.sort, q.Descending) })
	}

	res := &db.SearchResult{Total: len(hits)}
	if q.Offset >= len(hits) {
		return res, nil
	}
	page := hits[q.Offset:min(q.Offset+q.Limit, len(hits))]
	res.Entries = make([]db.SearchEntry, 0, len(page))
	for _, h := range page {
		res.Entries = append(res.Entries, entry(h.key, h.raw))
	}
	return res, nil
}

// scan visits every document under the index prefixes that passes expr.
func (s *Store) scan(
	ctx context.Context, def *db.IndexDefinition, expr filter.Expression,
	visit func(key string, raw []byte, doc any),
) error {
	if err := checkFilterFields(def, expr); err != nil {
		return &db.Error{Op: db.OpSearch, Err: err}
	}

	err := s.db.View(func(txn *badger.Txn) error {
		prefixes := def.Prefixes
		if len(prefixes) == 0 {
			prefixes = []string{""}
		}
		for _, prefix := range prefixes {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(prefix)
			it := txn.NewIterator(opts)

			for it.Rewind(); it.Valid(); it.Next() {
				if err := ctx.Err(); err != nil {
					it.Close()
					return err
				}
				item := it.Item()
				key := string(item.KeyCopy(nil))
				if strings.HasPrefix(key, indexMetaPrefix) {
					continue
				}
				raw, err := item.ValueCopy(nil)
				if err != nil {
					it.Close()
					return err
				}
				var doc any
				if err := json.Unmarshal(raw, &doc); err != nil {
					s.logger.Warn("skipping undecodable document", zap.String("key", key), zap.Error(err))
					continue
				}
				if matchFilters(def, expr, doc) {
					visit(key, raw, doc)
				}
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &db.Error{Op: db.OpSearch, Err: err}
	}
	return nil
}

func entry(key string, raw []byte) db.SearchEntry {
	return db.SearchEntry{Key: key, Fields: map[string]string{db.DocumentField: string(raw)}}
}

func fieldPaths(def *db.IndexDefinition, keys []string, want db.IndexFieldType) ([]string, error) {
	paths := make([]string, 0, len(keys))
	for _, k := range keys {
		f, ok := def.Field(k)
		if !ok {
			return nil, fmt.Errorf("unknown field %q", k)
		}
		if f.Type != want {
			return nil, fmt.Errorf("field %q has the wrong type", k)
		}
		paths = append(paths, f.Name)
	}
	return paths, nil
}

func checkFilterFields(def *db.IndexDefinition, expr filter.Expression) error {
	for _, group := range [][]filter.Condition{expr.Must(), expr.MustNot()} {
		for _, c := range group {
			want := db.IndexFieldTag
			if c.IsRange() {
				want = db.IndexFieldNumeric
			}
			if _, err := fieldPaths(def, []string{c.Key()}, want); err != nil {
				return err
			}
		}
	}
	return nil
}

func matchFilters(def *db.IndexDefinition, expr filter.Expression, doc any) bool {
	for _, c := range expr.Must() {
		if !matchCondition(def, c, doc) {
			return false
		}
	}
	for _, c := range expr.MustNot() {
		if matchCondition(def, c, doc) {
			return false
		}
	}
	return true
}

func matchCondition(def *db.IndexDefinition, c filter.Condition, doc any) bool {
	f, ok := def.Field(c.Key())
	if !ok {
		return false
	}
	if c.IsRange() {
		for _, n := range numbersAt(doc, f.Name) {
			if c.Range().Contains(n) {
				return true
			}
		}
		return false
	}
	return c.MatchTags(stringsAt(doc, f.Name))
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// matchText mirrors the query sent to RediSearch: terms of two or more
// runes match anywhere inside a value, single-rune terms only as whole words.
func matchText(doc any, paths, terms []string) bool {
	for _, p := range paths {
		for _, v := range stringsAt(doc, p) {
			lower := strings.ToLower(v)
			var words []string
			for _, t := range terms {
				if words == nil && utf8.RuneCountInString(t) < minInfixLen {
					words = strings.FieldsFunc(lower, func(r rune) bool {
						return !unicode.IsLetter(r) && !unicode.IsDigit(r)
					})
				}
				if matchTerm(lower, words, t) {
					return true
				}
			}
		}
	}
	return false
}

func matchTerm(value string, words []string, term string) bool {
	if utf8.RuneCountInString(term) >= minInfixLen {
		return strings.Contains(value, term)
	}
	return slices.Contains(words, term)
}

// compareSort orders present values before missing ones in either direction.
func compareSort(a, b *float64, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case desc:
		return cmp.Compare(*b, *a)
	default:
		return cmp.Compare(*a, *b)
	}
}
