package chi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/bazaarmkt/bazaarmkt/internal/domain/search/request"
	"github.com/bazaarmkt/bazaarmkt/internal/validation"
)

// Listing sort orders.
const (
	sortRelevance = "relevance"
	sortNewest    = "newest"
)

// searchQuery is the query string shared by the search and listing routes.
type searchQuery struct {
	Search          *string   `query:"search" validate:"omitempty,max=200"`
	Q               *string   `query:"q" validate:"omitempty,max=200"`
	UserLat         *float64  `query:"userLat"`
	UserLng         *float64  `query:"userLng"`
	ProximityRadius *float64  `query:"proximityRadius" validate:"omitempty,gt=0"`
	Category        *string   `query:"category" validate:"omitempty,max=100"`
	Subcategory     *string   `query:"subcategory" validate:"omitempty,max=100"`
	Tag             *string   `query:"tag" validate:"omitempty,max=100"`
	MinPrice        *float64  `query:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice        *float64  `query:"maxPrice" validate:"omitempty,gte=0"`
	Dietary         *[]string `query:"dietary" validate:"omitempty,dietary"`
	EnhancedRanking *bool     `query:"enhancedRanking"`
	Limit           *int      `query:"limit" validate:"omitempty,gte=0"`
	Offset          *int      `query:"offset" validate:"omitempty,gte=0"`
	Sort            *string   `query:"sort" validate:"omitempty,oneof=relevance newest"`
}

// paramError reports a query parameter that could not be parsed.
type paramError struct {
	name string
	err  error
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %v", e.name, e.err)
}

func (e *paramError) Unwrap() error { return e.err }

// bindSearchQuery parses and validates the query string. Coordinates are
// advisory: an unparsable userLat or userLng disables proximity.
func bindSearchQuery(r *http.Request) (searchQuery, error) {
	values := r.URL.Query()
	var q searchQuery

	binds := []struct {
		name    string
		explode bool
		dest    any
	}{
		{"search", true, &q.Search},
		{"q", true, &q.Q},
		{"proximityRadius", true, &q.ProximityRadius},
		{"category", true, &q.Category},
		{"subcategory", true, &q.Subcategory},
		{"tag", true, &q.Tag},
		{"minPrice", true, &q.MinPrice},
		{"maxPrice", true, &q.MaxPrice},
		{"dietary", true, &q.Dietary},
		{"enhancedRanking", true, &q.EnhancedRanking},
		{"limit", true, &q.Limit},
		{"offset", true, &q.Offset},
		{"sort", true, &q.Sort},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", b.explode, false, b.name, values, b.dest); err != nil {
			return searchQuery{}, &paramError{name: b.name, err: err}
		}
	}

	if err := runtime.BindQueryParameter("form", true, false, "userLat", values, &q.UserLat); err != nil {
		q.UserLat = nil
	}
	if err := runtime.BindQueryParameter("form", true, false, "userLng", values, &q.UserLng); err != nil {
		q.UserLng = nil
	}

	// dietary=organic,vegan and dietary=organic&dietary=vegan are equivalent
	if q.Dietary != nil {
		var flags []string
		for _, v := range *q.Dietary {
			for _, f := range strings.Split(v, ",") {
				if f = strings.TrimSpace(f); f != "" {
					flags = append(flags, f)
				}
			}
		}
		q.Dietary = &flags
	}

	if err := validation.Struct(&q); err != nil {
		return searchQuery{}, err
	}
	return q, nil
}

// text returns the search text; search wins over q.
func (q *searchQuery) text() string {
	if s := deref(q.Search); strings.TrimSpace(s) != "" {
		return s
	}
	return deref(q.Q)
}

func (q *searchQuery) sort() string {
	if s := deref(q.Sort); s != "" {
		return s
	}
	return sortRelevance
}

func (q *searchQuery) toParams(enhancedByDefault bool) request.Params {
	p := request.Params{
		Query:       q.text(),
		Lat:         q.UserLat,
		Lng:         q.UserLng,
		RadiusKm:    deref(q.ProximityRadius),
		Category:    deref(q.Category),
		Subcategory: deref(q.Subcategory),
		Tag:         deref(q.Tag),
		MinPrice:    q.MinPrice,
		MaxPrice:    q.MaxPrice,
		Enhanced:    enhancedByDefault,
		Limit:       deref(q.Limit),
		Offset:      deref(q.Offset),
	}
	if q.Dietary != nil {
		p.Dietary = *q.Dietary
	}
	if q.EnhancedRanking != nil {
		p.Enhanced = *q.EnhancedRanking
	}
	return p
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
