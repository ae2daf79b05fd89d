package ranking

import (
	"math"
	"strings"

	"github.com/bazaarmkt/bazaarmkt/internal/domain/geo"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

// Breakdown is the per-group contribution to a relevance score.
type Breakdown struct {
	Lexical    float64
	Proximity  float64
	Popularity float64
	Seller     float64
	Recency    float64
	Curation   float64
	Quality    float64
	Listing    float64
}

// Total sums every group.
func (b Breakdown) Total() float64 {
	return b.Lexical + b.Proximity + b.Popularity + b.Seller +
		b.Recency + b.Curation + b.Quality + b.Listing
}

// Scored is a product with its relevance score for one request.
type Scored struct {
	Product           product.Product
	Score             float64
	Breakdown         Breakdown
	DistanceKm        *float64 // nil when proximity did not apply
	FormattedDistance string
}

// Scorer computes relevance scores from a fixed weight table and proximity policy.
// It holds no per-request state and is safe for concurrent use.
type Scorer struct {
	weights Weights
	policy  ProximityPolicy
}

// NewScorer creates a Scorer.
func NewScorer(w Weights, policy ProximityPolicy) *Scorer {
	if policy == "" {
		policy = ProximityDecay
	}
	return &Scorer{weights: w, policy: policy}
}

// Policy returns the proximity policy in use.
func (s *Scorer) Policy() ProximityPolicy { return s.policy }

// Score computes the relevance of p for q. p is read, never modified.
func (s *Scorer) Score(p *product.Product, q *Query) Scored {
	var b Breakdown
	out := Scored{Product: *p}

	name := strings.ToLower(p.Name)

	b.Lexical = s.lexical(p, name, q)
	if d, ok := distance(p, q); ok {
		b.Proximity = s.policy.Points(d, q.radiusKm, &s.weights)
		out.DistanceKm = &d
		out.FormattedDistance = geo.FormatDistance(d)
	}
	if q.enhanced {
		b.Popularity = s.popularity(p)
		b.Seller = s.seller(p.Artisan)
	}
	b.Recency = s.recency(p, q)
	b.Curation = s.curation(p)
	b.Quality = s.quality(p, name)
	b.Listing = s.listing(p)

	out.Breakdown = b
	out.Score = b.Total()
	return out
}

func (s *Scorer) lexical(p *product.Product, name string, q *Query) float64 {
	if !q.HasText() {
		return 0
	}
	w := &s.weights
	var pts float64

	switch {
	case name == q.phrase:
		pts += w.NameExact
	case strings.HasPrefix(name, q.phrase):
		pts += w.NamePrefix
	case strings.Contains(name, q.phrase):
		pts += w.NameContains
	}

	for _, t := range q.expanded {
		if t != q.phrase && strings.Contains(name, t) {
			pts += w.ExpandedInName
		}
	}

	for _, re := range q.wordPatterns {
		if re.MatchString(name) {
			pts += w.WordBoundary
		}
	}

	for _, tag := range p.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := q.expandedSet[tag]; ok {
			pts += w.TagExact
		} else if containsAny(tag, q.phrase, q.words) {
			pts += w.TagContains
		}
	}

	if cat := strings.ToLower(strings.TrimSpace(p.Category)); cat != "" {
		if equalsAny(cat, q.phrase, q.words) {
			pts += w.CategoryExact
		} else if containsAny(cat, q.phrase, q.words) {
			pts += w.CategoryContains
		}
	}

	if sub := strings.ToLower(p.Subcategory); sub != "" && containsAny(sub, q.phrase, q.words) {
		pts += w.SubcategoryMatch
	}

	if desc := strings.ToLower(p.Description); desc != "" {
		for _, word := range q.words {
			if strings.Contains(desc, word) {
				pts += w.DescriptionPerHit
			}
		}
	}

	return pts
}

func distance(p *product.Product, q *Query) (float64, bool) {
	if q.origin == nil {
		return 0, false
	}
	at, ok := p.Artisan.Point()
	if !ok {
		return 0, false
	}
	d := geo.DistanceKm(*q.origin, at)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, false
	}
	return d, true
}

func (s *Scorer) popularity(p *product.Product) float64 {
	w := &s.weights
	return capped(float64(p.TotalSales)*w.SalesPerUnit, w.SalesCap) +
		capped(finite(p.Rating.Average)*w.RatingPerStar, w.RatingCap) +
		capped(float64(p.Rating.Count)*w.ReviewsPerCount, w.ReviewsCap) +
		capped(float64(p.FavoriteCount)*w.FavoritesPerUnit, w.FavoritesCap)
}

func (s *Scorer) seller(a *product.Artisan) float64 {
	if a == nil {
		return 0
	}
	w := &s.weights
	pts := capped(finite(a.Rating.Average)*w.SellerRatingPerStar, w.SellerRatingCap)
	if a.IsVerified {
		pts += w.SellerVerified
	}
	pts += unit(a.DeliveryStats.OnTimeRate) * w.OnTimeRate
	pts -= unit(a.ComplaintRate) * w.ComplaintPenalty
	return pts
}

func (s *Scorer) recency(p *product.Product, q *Query) float64 {
	if p.CreatedAt.IsZero() {
		return 0
	}
	w := &s.weights
	days := int(math.Floor(q.now.Sub(p.CreatedAt).Hours() / 24))
	if days < 0 {
		days = 0
	}

	var pts float64
	switch {
	case days <= 7:
		pts += w.RecentWeek
	case days <= 30:
		pts += w.RecentMonth
	case days <= 90:
		pts += w.RecentQuarter
	}
	if days <= w.NewListingDays {
		pts += math.Max(w.NewListingMax-float64(days), 0)
	}
	return pts
}

func (s *Scorer) curation(p *product.Product) float64 {
	w := &s.weights
	var pts float64
	if p.IsFeatured {
		pts += w.Featured
	}
	if p.IsSeasonal {
		pts += w.Seasonal
	}
	if p.IsCurated {
		pts += w.Curated
	}
	seen := make(map[string]struct{}, len(p.Badges))
	for _, badge := range p.Badges {
		badge = strings.ToLower(strings.TrimSpace(badge))
		if _, dup := seen[badge]; dup {
			continue
		}
		seen[badge] = struct{}{}
		pts += w.Badges[badge]
	}
	return pts
}

func (s *Scorer) quality(p *product.Product, name string) float64 {
	w := &s.weights
	var pts float64
	if p.IsOrganic() {
		pts += w.Organic
	}
	for _, kb := range w.NameKeywords {
		if strings.Contains(name, kb.Keyword) {
			pts += kb.Points
		}
	}
	return pts
}

func (s *Scorer) listing(p *product.Product) float64 {
	w := &s.weights
	var pts float64
	if p.HasImage() {
		pts += w.HasImage
	}
	if p.Stock > w.StockThreshold {
		pts += w.WellStocked
	}
	return pts
}

func equalsAny(s, phrase string, words []string) bool {
	if s == phrase {
		return true
	}
	for _, w := range words {
		if s == w {
			return true
		}
	}
	return false
}

func containsAny(s, phrase string, words []string) bool {
	if phrase != "" && strings.Contains(s, phrase) {
		return true
	}
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// capped clamps v to [0, limit].
func capped(v, limit float64) float64 {
	v = finite(v)
	if v < 0 {
		return 0
	}
	return math.Min(v, limit)
}

// unit clamps v to [0, 1].
func unit(v float64) float64 {
	v = finite(v)
	return math.Max(0, math.Min(v, 1))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
