// Package result holds a ranked page of products and the metadata that explains it.
package result

import (
	"time"

	"github.com/bazaarmkt/bazaarmkt/internal/domain/geo"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/ranking"
)

// Metadata describes how a result page was produced.
type Metadata struct {
	Query           string
	Terms           []string
	ExpandedTerms   []string
	Factors         []ranking.Factor
	ProximityPolicy ranking.ProximityPolicy
	RadiusKm        float64
	Origin          *geo.Point
	EnhancedRanking bool
	Matched         int // documents the store matched, before the candidate cap
	Candidates      int // documents fetched and ranked
	Returned        int
	Offset          int
	Limit           int
	RankedAt        time.Time
}

// Page is one slice of the ranked candidate list.
type Page struct {
	Items    []ranking.Scored
	Total    int
	Metadata Metadata
}

// Paginate returns the window [offset, offset+limit) of ranked, clipped to its bounds.
func Paginate(ranked []ranking.Scored, offset, limit int) []ranking.Scored {
	if offset >= len(ranked) || limit <= 0 {
		return []ranking.Scored{}
	}
	end := min(offset+limit, len(ranked))
	return ranked[offset:end]
}
