// Package geo holds coordinates, great-circle distance and distance formatting.
package geo

import (
	"errors"
	"math"
)

// EarthRadiusKm is the mean radius of Earth used for Haversine distance.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinates is returned for latitude/longitude outside the valid range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Point is a WGS84 latitude/longitude pair in degrees.
type Point struct {
	lat float64
	lng float64
}

// NewPoint validates and creates a Point.
func NewPoint(lat, lng float64) (Point, error) {
	if !ValidateCoordinates(lat, lng) {
		return Point{}, ErrInvalidCoordinates
	}
	return Point{lat: lat, lng: lng}, nil
}

// Lat returns the latitude in degrees.
func (p Point) Lat() float64 { return p.lat }

// Lng returns the longitude in degrees.
func (p Point) Lng() float64 { return p.lng }

// Haversine returns the great-circle distance in kilometers between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a just past 1 near antipodes.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// DistanceKm returns the Haversine distance between two points.
func DistanceKm(a, b Point) float64 {
	return Haversine(a.lat, a.lng, b.lat, b.lng)
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
// NaN fails every comparison and is rejected.
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
