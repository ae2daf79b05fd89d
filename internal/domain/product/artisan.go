package product

import "github.com/bazaarmkt/bazaarmkt/internal/domain/geo"

// GeoJSONPoint is a GeoJSON Point. Coordinates are [lng, lat].
type GeoJSONPoint struct {
	Type        string
	Coordinates []float64
}

// LatLng is the explicit coordinate form some artisan profiles carry.
type LatLng struct {
	Latitude  float64
	Longitude float64
}

// NewLatLng builds explicit coordinates only when both halves are present,
// so an empty or partial coordinates object reads as no coordinates.
func NewLatLng(lat, lng *float64) *LatLng {
	if lat == nil || lng == nil {
		return nil
	}
	return &LatLng{Latitude: *lat, Longitude: *lng}
}

// DeliveryStats is the fulfilment aggregate maintained by the order service.
type DeliveryStats struct {
	OnTimeRate float64 // 0..1
}

// Artisan is the read-only seller summary embedded in a product.
type Artisan struct {
	ID            string
	Name          string
	Location      *GeoJSONPoint
	Coordinates   *LatLng
	Rating        Rating
	IsVerified    bool
	DeliveryStats DeliveryStats
	ComplaintRate float64 // 0..1
}

// Point resolves the artisan position. Explicit coordinates win over the
// GeoJSON location. Missing, malformed or out-of-range data yields false.
func (a *Artisan) Point() (geo.Point, bool) {
	if a == nil {
		return geo.Point{}, false
	}
	if a.Coordinates != nil {
		if p, err := geo.NewPoint(a.Coordinates.Latitude, a.Coordinates.Longitude); err == nil {
			return p, true
		}
	}
	if a.Location != nil && len(a.Location.Coordinates) == 2 {
		if p, err := geo.NewPoint(a.Location.Coordinates[1], a.Location.Coordinates[0]); err == nil {
			return p, true
		}
	}
	return geo.Point{}, false
}
