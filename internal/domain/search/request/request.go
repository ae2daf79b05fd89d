// Package request holds the validated product search request.
package request

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/bazaarmkt/bazaarmkt/internal/domain"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/geo"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum search text length in characters.
	MaxQueryLength  = 200
	DefaultLimit    = 20
	MaxLimit        = 100
	DefaultRadiusKm = 10.0
	MaxRadiusKm     = 500.0
)

// Limits bounds pagination and radius. Zero fields fall back to the package defaults.
type Limits struct {
	DefaultLimit    int
	MaxLimit        int
	DefaultRadiusKm float64
	MaxRadiusKm     float64
}

func (l Limits) withDefaults() Limits {
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = DefaultLimit
	}
	if l.MaxLimit <= 0 {
		l.MaxLimit = MaxLimit
	}
	if l.DefaultLimit > l.MaxLimit {
		l.DefaultLimit = l.MaxLimit
	}
	if l.DefaultRadiusKm <= 0 {
		l.DefaultRadiusKm = DefaultRadiusKm
	}
	if l.MaxRadiusKm <= 0 {
		l.MaxRadiusKm = MaxRadiusKm
	}
	return l
}

// Params are the raw search inputs as bound from the query string.
type Params struct {
	Query       string
	Lat, Lng    *float64
	RadiusKm    float64
	Category    string
	Subcategory string
	Tag         string
	MinPrice    *float64
	MaxPrice    *float64
	Dietary     []string
	Enhanced    bool
	Limit       int
	Offset      int
}

// Request is a validated product search.
type Request struct {
	query       string
	origin      *geo.Point
	radiusKm    float64
	category    string
	subcategory string
	tag         string
	minPrice    *float64
	maxPrice    *float64
	dietary     []string
	enhanced    bool
	limit       int
	offset      int
}

// New validates and normalizes search parameters. Coordinates that are
// missing or out of range disable proximity instead of failing the request.
func New(p Params, lim Limits) (Request, error) {
	lim = lim.withDefaults()

	query := strings.TrimSpace(p.Query)
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if p.Offset < 0 {
		return Request{}, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidRequest)
	}
	for _, bound := range []*float64{p.MinPrice, p.MaxPrice} {
		if bound != nil && (*bound < 0 || math.IsNaN(*bound) || math.IsInf(*bound, 0)) {
			return Request{}, fmt.Errorf("%w: price bounds must be non-negative numbers", domain.ErrInvalidRequest)
		}
	}
	if p.MinPrice != nil && p.MaxPrice != nil && *p.MinPrice > *p.MaxPrice {
		return Request{}, fmt.Errorf("%w: minPrice exceeds maxPrice", domain.ErrInvalidRequest)
	}

	var dietary []string
	for _, d := range p.Dietary {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if !product.IsDietaryFlag(d) {
			return Request{}, fmt.Errorf("%w: unknown dietary flag %q", domain.ErrInvalidRequest, d)
		}
		dietary = append(dietary, d)
	}

	radius := p.RadiusKm
	if radius <= 0 || math.IsNaN(radius) {
		radius = lim.DefaultRadiusKm
	}
	radius = math.Min(radius, lim.MaxRadiusKm)

	limit := p.Limit
	if limit <= 0 {
		limit = lim.DefaultLimit
	}
	limit = min(limit, lim.MaxLimit)

	return Request{
		query:       query,
		origin:      resolveOrigin(p.Lat, p.Lng),
		radiusKm:    radius,
		category:    strings.TrimSpace(p.Category),
		subcategory: strings.TrimSpace(p.Subcategory),
		tag:         strings.TrimSpace(p.Tag),
		minPrice:    p.MinPrice,
		maxPrice:    p.MaxPrice,
		dietary:     dietary,
		enhanced:    p.Enhanced,
		limit:       limit,
		offset:      p.Offset,
	}, nil
}

func resolveOrigin(lat, lng *float64) *geo.Point {
	if lat == nil || lng == nil {
		return nil
	}
	pt, err := geo.NewPoint(*lat, *lng)
	if err != nil {
		return nil
	}
	return &pt
}

// Query returns the trimmed search text, possibly empty.
func (r *Request) Query() string { return r.query }

// Origin returns the requester position, or nil when proximity does not apply.
func (r *Request) Origin() *geo.Point { return r.origin }

// RadiusKm returns the proximity radius.
func (r *Request) RadiusKm() float64 { return r.radiusKm }

// Category returns the category filter.
func (r *Request) Category() string { return r.category }

// Subcategory returns the subcategory filter.
func (r *Request) Subcategory() string { return r.subcategory }

// Tag returns the tag filter.
func (r *Request) Tag() string { return r.tag }

// PriceRange returns the price bounds, each nil when open.
func (r *Request) PriceRange() (lo, hi *float64) { return r.minPrice, r.maxPrice }

// Dietary returns the required dietary flags.
func (r *Request) Dietary() []string { return r.dietary }

// Enhanced reports whether popularity and seller quality are scored.
func (r *Request) Enhanced() bool { return r.enhanced }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// Offset returns the number of ranked results to skip.
func (r *Request) Offset() int { return r.offset }
