package chi

import (
	"math"
	"time"

	dombatch "github.com/bazaarmkt/bazaarmkt/internal/domain/batch"
	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/ranking"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/search/result"
)

// Error codes returned in the "code" field of error responses.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeUnauthorized     = "unauthorized"
	codeNotFound         = "not_found"
	codeMethodNotAllowed = "method_not_allowed"
	codeProductNotFound  = "product_not_found"
	codeRateLimited      = "rate_limited"
	codeStoreUnavailable = "store_unavailable"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ratingBody struct {
	Average float64 `json:"average" validate:"gte=0,lte=5"`
	Count   int     `json:"count" validate:"gte=0"`
}

type geoPointBody struct {
	Type        string    `json:"type" validate:"omitempty,eq=Point"`
	Coordinates []float64 `json:"coordinates" validate:"omitempty,len=2"`
}

type latLngBody struct {
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

type deliveryStatsBody struct {
	OnTimeRate float64 `json:"onTimeRate" validate:"gte=0,lte=1"`
}

type artisanBody struct {
	ID            string             `json:"id,omitempty" validate:"omitempty,max=128"`
	Name          string             `json:"name,omitempty" validate:"max=200"`
	Location      *geoPointBody      `json:"location,omitempty"`
	Coordinates   *latLngBody        `json:"coordinates,omitempty"`
	Rating        *ratingBody        `json:"rating,omitempty"`
	IsVerified    bool               `json:"isVerified"`
	DeliveryStats *deliveryStatsBody `json:"deliveryStats,omitempty"`
	ComplaintRate float64            `json:"complaintRate" validate:"gte=0,lte=1"`
}

// productBody is the writable part of a product.
type productBody struct {
	Name          string       `json:"name" validate:"required,max=200"`
	Description   string       `json:"description" validate:"max=10000"`
	Tags          []string     `json:"tags" validate:"max=50,dive,max=100"`
	Category      string       `json:"category" validate:"max=100"`
	Subcategory   string       `json:"subcategory" validate:"max=100"`
	Price         float64      `json:"price" validate:"gte=0"`
	Stock         int          `json:"stock" validate:"gte=0"`
	Status        string       `json:"status" validate:"omitempty,oneof=active inactive draft out_of_stock"`
	CreatedAt     *time.Time   `json:"createdAt"`
	Image         string       `json:"image" validate:"max=2048"`
	Images        []string     `json:"images" validate:"max=20"`
	Rating        *ratingBody  `json:"rating"`
	TotalSales    int          `json:"totalSales" validate:"gte=0"`
	FavoriteCount int          `json:"favoriteCount" validate:"gte=0"`
	Dietary       []string     `json:"dietary" validate:"dietary"`
	IsFeatured    bool         `json:"isFeatured"`
	IsSeasonal    bool         `json:"isSeasonal"`
	IsCurated     bool         `json:"isCurated"`
	Badges        []string     `json:"badges" validate:"max=20"`
	Artisan       *artisanBody `json:"artisan"`
}

type batchUpsertItem struct {
	ID string `json:"id"`
	productBody
}

type batchUpsertRequest struct {
	Products []batchUpsertItem `json:"products" validate:"required,min=1,max=100,dive"`
}

type batchDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100"`
}

type batchResultItem struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  *errorResponse `json:"error,omitempty"`
}

type batchResponse struct {
	Items     []batchResultItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

type productResponse struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	Tags          []string     `json:"tags"`
	Category      string       `json:"category,omitempty"`
	Subcategory   string       `json:"subcategory,omitempty"`
	Price         float64      `json:"price"`
	Stock         int          `json:"stock"`
	Status        string       `json:"status"`
	CreatedAt     *time.Time   `json:"createdAt,omitempty"`
	Image         string       `json:"image,omitempty"`
	Images        []string     `json:"images,omitempty"`
	Rating        ratingBody   `json:"rating"`
	TotalSales    int          `json:"totalSales"`
	FavoriteCount int          `json:"favoriteCount"`
	Dietary       []string     `json:"dietary"`
	IsFeatured    bool         `json:"isFeatured"`
	IsSeasonal    bool         `json:"isSeasonal"`
	IsCurated     bool         `json:"isCurated"`
	Badges        []string     `json:"badges,omitempty"`
	Artisan       *artisanBody `json:"artisan,omitempty"`
}

type breakdownResponse struct {
	Lexical       float64 `json:"lexical"`
	Proximity     float64 `json:"proximity"`
	Popularity    float64 `json:"popularity"`
	SellerQuality float64 `json:"sellerQuality"`
	Recency       float64 `json:"recency"`
	Curation      float64 `json:"curation"`
	Quality       float64 `json:"quality"`
	Listing       float64 `json:"listing"`
}

type scoredProductResponse struct {
	productResponse
	Score             float64           `json:"score"`
	Distance          *float64          `json:"distance,omitempty"`
	FormattedDistance string            `json:"formattedDistance,omitempty"`
	ScoreBreakdown    breakdownResponse `json:"scoreBreakdown"`
}

type locationResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type searchMetadataResponse struct {
	Query           string            `json:"query"`
	SearchTerms     []string          `json:"searchTerms"`
	ExpandedTerms   []string          `json:"expandedTerms"`
	RankingFactors  []string          `json:"rankingFactors"`
	GeoRanking      bool              `json:"geoRanking"`
	ProximityPolicy string            `json:"proximityPolicy"`
	ProximityRadius float64           `json:"proximityRadius"`
	UserLocation    *locationResponse `json:"userLocation,omitempty"`
	EnhancedRanking bool              `json:"enhancedRanking"`
	Matched         int               `json:"matched"`
	Candidates      int               `json:"candidates"`
	Returned        int               `json:"returned"`
	Offset          int               `json:"offset"`
	Limit           int               `json:"limit"`
	RankedAt        time.Time         `json:"rankedAt"`
}

type searchResponse struct {
	Products       []scoredProductResponse `json:"products"`
	Count          int                     `json:"count"`
	Total          int                     `json:"total"`
	SearchMetadata searchMetadataResponse  `json:"searchMetadata"`
}

type listResponse struct {
	Products []productResponse `json:"products"`
	Count    int               `json:"count"`
	Total    int               `json:"total"`
	Offset   int               `json:"offset"`
	Sort     string            `json:"sort"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}

// toDomain converts a request body. Dietary flags were checked by the validator.
func (b *productBody) toDomain(id string) domprod.Product {
	dietary, _ := domprod.DietaryFromFlags(b.Dietary)
	p := domprod.Product{
		ID:            id,
		Name:          b.Name,
		Description:   b.Description,
		Tags:          b.Tags,
		Category:      b.Category,
		Subcategory:   b.Subcategory,
		Price:         b.Price,
		Stock:         b.Stock,
		Status:        domprod.Status(b.Status),
		Image:         b.Image,
		Images:        b.Images,
		TotalSales:    b.TotalSales,
		FavoriteCount: b.FavoriteCount,
		Dietary:       dietary,
		IsFeatured:    b.IsFeatured,
		IsSeasonal:    b.IsSeasonal,
		IsCurated:     b.IsCurated,
		Badges:        b.Badges,
		Artisan:       b.Artisan.toDomain(),
	}
	if b.CreatedAt != nil {
		p.CreatedAt = b.CreatedAt.UTC()
	}
	if b.Rating != nil {
		p.Rating = domprod.Rating{Average: b.Rating.Average, Count: b.Rating.Count}
	}
	return p
}

func (a *artisanBody) toDomain() *domprod.Artisan {
	if a == nil {
		return nil
	}
	out := &domprod.Artisan{
		ID:            a.ID,
		Name:          a.Name,
		IsVerified:    a.IsVerified,
		ComplaintRate: a.ComplaintRate,
	}
	if a.Location != nil {
		out.Location = &domprod.GeoJSONPoint{Type: a.Location.Type, Coordinates: a.Location.Coordinates}
	}
	if a.Coordinates != nil {
		out.Coordinates = domprod.NewLatLng(a.Coordinates.Latitude, a.Coordinates.Longitude)
	}
	if a.Rating != nil {
		out.Rating = domprod.Rating{Average: a.Rating.Average, Count: a.Rating.Count}
	}
	if a.DeliveryStats != nil {
		out.DeliveryStats = domprod.DeliveryStats{OnTimeRate: a.DeliveryStats.OnTimeRate}
	}
	return out
}

func artisanToResponse(a *domprod.Artisan) *artisanBody {
	if a == nil {
		return nil
	}
	out := &artisanBody{
		ID:            a.ID,
		Name:          a.Name,
		Rating:        &ratingBody{Average: a.Rating.Average, Count: a.Rating.Count},
		IsVerified:    a.IsVerified,
		DeliveryStats: &deliveryStatsBody{OnTimeRate: a.DeliveryStats.OnTimeRate},
		ComplaintRate: a.ComplaintRate,
	}
	if a.Location != nil {
		out.Location = &geoPointBody{Type: a.Location.Type, Coordinates: a.Location.Coordinates}
	}
	if a.Coordinates != nil {
		lat, lng := a.Coordinates.Latitude, a.Coordinates.Longitude
		out.Coordinates = &latLngBody{Latitude: &lat, Longitude: &lng}
	}
	return out
}

func productToResponse(p *domprod.Product) productResponse {
	out := productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Tags:          nonNil(p.Tags),
		Category:      p.Category,
		Subcategory:   p.Subcategory,
		Price:         p.Price,
		Stock:         p.Stock,
		Status:        string(p.Status),
		Image:         p.Image,
		Images:        p.Images,
		Rating:        ratingBody{Average: p.Rating.Average, Count: p.Rating.Count},
		TotalSales:    p.TotalSales,
		FavoriteCount: p.FavoriteCount,
		Dietary:       nonNil(p.Dietary.Flags()),
		IsFeatured:    p.IsFeatured,
		IsSeasonal:    p.IsSeasonal,
		IsCurated:     p.IsCurated,
		Badges:        p.Badges,
		Artisan:       artisanToResponse(p.Artisan),
	}
	if !p.CreatedAt.IsZero() {
		t := p.CreatedAt
		out.CreatedAt = &t
	}
	return out
}

func scoredToResponse(s *ranking.Scored) scoredProductResponse {
	out := scoredProductResponse{
		productResponse:   productToResponse(&s.Product),
		Score:             round2(s.Score),
		FormattedDistance: s.FormattedDistance,
		ScoreBreakdown: breakdownResponse{
			Lexical:       round2(s.Breakdown.Lexical),
			Proximity:     round2(s.Breakdown.Proximity),
			Popularity:    round2(s.Breakdown.Popularity),
			SellerQuality: round2(s.Breakdown.Seller),
			Recency:       round2(s.Breakdown.Recency),
			Curation:      round2(s.Breakdown.Curation),
			Quality:       round2(s.Breakdown.Quality),
			Listing:       round2(s.Breakdown.Listing),
		},
	}
	if s.DistanceKm != nil {
		d := round2(*s.DistanceKm)
		out.Distance = &d
	}
	return out
}

func pageToResponse(page *result.Page) searchResponse {
	items := make([]scoredProductResponse, len(page.Items))
	for i := range page.Items {
		items[i] = scoredToResponse(&page.Items[i])
	}

	md := page.Metadata
	factors := make([]string, len(md.Factors))
	for i, f := range md.Factors {
		factors[i] = string(f)
	}
	meta := searchMetadataResponse{
		Query:           md.Query,
		SearchTerms:     nonNil(md.Terms),
		ExpandedTerms:   nonNil(md.ExpandedTerms),
		RankingFactors:  factors,
		GeoRanking:      md.Origin != nil,
		ProximityPolicy: string(md.ProximityPolicy),
		ProximityRadius: md.RadiusKm,
		EnhancedRanking: md.EnhancedRanking,
		Matched:         md.Matched,
		Candidates:      md.Candidates,
		Returned:        md.Returned,
		Offset:          md.Offset,
		Limit:           md.Limit,
		RankedAt:        md.RankedAt,
	}
	if md.Origin != nil {
		meta.UserLocation = &locationResponse{Lat: md.Origin.Lat(), Lng: md.Origin.Lng()}
	}

	return searchResponse{
		Products:       items,
		Count:          len(items),
		Total:          page.Total,
		SearchMetadata: meta,
	}
}

func batchResultToResponse(r dombatch.Result) batchResultItem {
	item := batchResultItem{
		ID:     r.ID(),
		Status: string(r.Status()),
	}
	if r.Err() != nil {
		item.Error = &errorResponse{
			Code:    batchErrorCode(r.Err()),
			Message: safeDomainMessage(r.Err()),
		}
	}
	return item
}

func batchResultsToResponse(results []dombatch.Result) batchResponse {
	items := make([]batchResultItem, len(results))
	for i, res := range results {
		items[i] = batchResultToResponse(res)
	}
	ok, failed := dombatch.Count(results)
	return batchResponse{Items: items, Succeeded: ok, Failed: failed}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
