package search

import (
	"context"

	"github.com/bazaarmkt/bazaarmkt/internal/domain/filter"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

// CandidateFetcher pulls the products a search ranks.
type CandidateFetcher interface {
	FetchCandidates(
		ctx context.Context, terms []string, filters filter.Expression, limit int,
	) ([]product.Product, int, error)
}
