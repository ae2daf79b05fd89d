package search

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/bazaarmkt/bazaarmkt/internal/domain"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/filter"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/product"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/ranking"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/search/request"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/search/result"
	"github.com/bazaarmkt/bazaarmkt/internal/logger"
	"github.com/bazaarmkt/bazaarmkt/internal/metrics"
)

// DefaultMaxCandidates caps how many products one search scores.
const DefaultMaxCandidates = 500

// Config tunes the search pipeline.
type Config struct {
	MaxCandidates int
	Policy        ranking.ProximityPolicy
	Weights       *ranking.Weights // nil = ranking.DefaultWeights()
}

// Service ranks products: fetch candidates, score, sort, paginate.
type Service struct {
	repo          CandidateFetcher
	expander      *ranking.Expander
	scorer        *ranking.Scorer
	maxCandidates int
	now           func() time.Time
}

// New creates a search service.
func New(repo CandidateFetcher, cfg Config) *Service {
	w := ranking.DefaultWeights()
	if cfg.Weights != nil {
		w = *cfg.Weights
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	return &Service{
		repo:          repo,
		expander:      ranking.NewExpander(),
		scorer:        ranking.NewScorer(w, cfg.Policy),
		maxCandidates: cfg.MaxCandidates,
		now:           time.Now,
	}
}

// WithClock replaces the clock used for recency scoring.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Search returns one ranked page for req.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	log := logger.FromContext(ctx)
	now := s.now().UTC()

	q := ranking.NewQuery(req.Query(), s.expander, req.Origin(), req.RadiusKm(), req.Enhanced(), now)
	filters, err := buildFilters(req)
	if err != nil {
		return result.Page{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	fetchStart := time.Now()
	candidates, matched, err := s.repo.FetchCandidates(ctx, q.FetchTerms(), filters, s.maxCandidates)
	metrics.SearchStageDuration.WithLabelValues("fetch").Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(strconv.FormatBool(req.Enhanced()), "error").Inc()
		return result.Page{}, fmt.Errorf("fetch candidates: %w", err)
	}
	candidates = searchable(candidates)

	rankStart := time.Now()
	ranked := ranking.Rank(s.scorer.ScoreAll(candidates, q))
	metrics.SearchStageDuration.WithLabelValues("rank").Observe(time.Since(rankStart).Seconds())

	items := result.Paginate(ranked, req.Offset(), req.Limit())

	metrics.SearchRequestsTotal.WithLabelValues(strconv.FormatBool(req.Enhanced()), "ok").Inc()
	metrics.SearchCandidates.Observe(float64(len(candidates)))
	metrics.SearchExpandedTerms.Observe(float64(len(q.Expanded())))

	log.Debug("search ranked",
		zap.String("query", q.Phrase()),
		zap.Int("matched", matched),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(items)),
		zap.Bool("proximity", q.Origin() != nil),
	)

	return result.Page{
		Items: items,
		Total: len(ranked),
		Metadata: result.Metadata{
			Query:           req.Query(),
			Terms:           q.Words(),
			ExpandedTerms:   q.Expanded(),
			Factors:         ranking.EngagedFactors(q),
			ProximityPolicy: s.scorer.Policy(),
			RadiusKm:        q.RadiusKm(),
			Origin:          q.Origin(),
			EnhancedRanking: q.Enhanced(),
			Matched:         matched,
			Candidates:      len(candidates),
			Returned:        len(items),
			Offset:          req.Offset(),
			Limit:           req.Limit(),
			RankedAt:        now,
		},
	}, nil
}

// buildFilters restricts candidates to active listings plus the structured filters.
func buildFilters(req *request.Request) (filter.Expression, error) {
	lo, hi := req.PriceRange()
	return filter.NewBuilder().
		Tag(product.FieldStatus, string(product.StatusActive)).
		Tag(product.FieldCategory, req.Category()).
		Tag(product.FieldSubcategory, req.Subcategory()).
		Tag(product.FieldTags, req.Tag()).
		AllTags(product.FieldDietary, req.Dietary()...).
		Between(product.FieldPrice, lo, hi).
		Build()
}

// searchable drops anything the store returned that is not active.
func searchable(in []product.Product) []product.Product {
	out := in[:0:0]
	for i := range in {
		if in[i].Searchable() {
			out = append(out, in[i])
		}
	}
	return out
}
