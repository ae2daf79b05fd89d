package ranking

import (
	"cmp"
	"slices"

	"github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

// Rank returns a new slice ordered by descending score. Equal scores keep
// their input order so pagination over the same candidates is reproducible.
func Rank(in []Scored) []Scored {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

// ScoreAll scores every candidate against q in input order.
func (s *Scorer) ScoreAll(candidates []product.Product, q *Query) []Scored {
	out := make([]Scored, len(candidates))
	for i := range candidates {
		out[i] = s.Score(&candidates[i], q)
	}
	return out
}
