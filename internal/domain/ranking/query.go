package ranking

import (
	"regexp"
	"strings"
	"time"

	"github.com/bazaarmkt/bazaarmkt/internal/domain/geo"
)

// Query is everything the scorer needs from one search request. It is built
// once per request so the clock and compiled patterns are shared by all
// candidates.
type Query struct {
	phrase   string
	words    []string
	expanded []string
	origin   *geo.Point
	radiusKm float64
	enhanced bool
	now      time.Time

	wordPatterns []*regexp.Regexp
	expandedSet  map[string]struct{}
}

// NewQuery builds a Query. A nil origin disables proximity; radiusKm <= 0
// falls back to DefaultRadiusKm.
func NewQuery(
	raw string, exp *Expander, origin *geo.Point, radiusKm float64, enhanced bool, now time.Time,
) *Query {
	words := Tokenize(raw)
	q := &Query{
		phrase:   strings.Join(strings.Fields(strings.ToLower(raw)), " "),
		words:    words,
		origin:   origin,
		radiusKm: radiusKm,
		enhanced: enhanced,
		now:      now,
	}
	if q.radiusKm <= 0 {
		q.radiusKm = DefaultRadiusKm
	}
	if exp != nil {
		q.expanded = exp.ExpandAll(words)
	}

	q.wordPatterns = make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		q.wordPatterns = append(q.wordPatterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
	}
	q.expandedSet = make(map[string]struct{}, len(q.expanded)+1)
	for _, t := range q.expanded {
		q.expandedSet[t] = struct{}{}
	}
	if q.phrase != "" {
		q.expandedSet[q.phrase] = struct{}{}
	}
	return q
}

// Phrase returns the lowercased query with collapsed whitespace.
func (q *Query) Phrase() string { return q.phrase }

// Words returns the tokenized search words.
func (q *Query) Words() []string { return q.words }

// Expanded returns the merged expansion of all search words.
func (q *Query) Expanded() []string { return q.expanded }

// Origin returns the requester position, or nil.
func (q *Query) Origin() *geo.Point { return q.origin }

// RadiusKm returns the proximity radius.
func (q *Query) RadiusKm() float64 { return q.radiusKm }

// Enhanced reports whether popularity and seller quality are scored.
func (q *Query) Enhanced() bool { return q.enhanced }

// Now returns the request clock.
func (q *Query) Now() time.Time { return q.now }

// HasText reports whether the query carries any search words.
func (q *Query) HasText() bool { return len(q.words) > 0 }

// FetchTerms returns the words and single-word expanded variants used to pull
// candidates from the store, at least two characters long, deduplicated.
// Multi-word variants only affect scoring.
func (q *Query) FetchTerms() []string {
	out := newOrderedSet()
	for _, group := range [][]string{q.words, q.expanded} {
		for _, t := range group {
			if strings.Contains(t, " ") || len([]rune(t)) < 2 {
				continue
			}
			out.add(t)
		}
	}
	return out.items
}
