// Package importer bulk-loads a product catalog from parquet files into the
// product store.
package importer

import (
	"slices"
	"strings"
	"time"

	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

// catalogRow is one row of a catalog export. Optional columns are pointers.
type catalogRow struct {
	ID          string   `parquet:"id"`
	Name        string   `parquet:"name"`
	Description *string  `parquet:"description"`
	Tags        []string `parquet:"tags,list"`
	Category    *string  `parquet:"category"`
	Subcategory *string  `parquet:"subcategory"`
	Price       float64  `parquet:"price"`
	Stock       int64    `parquet:"stock"`
	Status      *string  `parquet:"status"`
	CreatedAtMs *int64   `parquet:"created_at_ms"`
	Image       *string  `parquet:"image"`

	RatingAverage float64 `parquet:"rating_average"`
	RatingCount   int64   `parquet:"rating_count"`
	TotalSales    int64   `parquet:"total_sales"`
	FavoriteCount int64   `parquet:"favorite_count"`

	Dietary    []string `parquet:"dietary,list"`
	IsFeatured bool     `parquet:"is_featured"`
	IsSeasonal bool     `parquet:"is_seasonal"`
	IsCurated  bool     `parquet:"is_curated"`

	ArtisanID            *string  `parquet:"artisan_id"`
	ArtisanName          *string  `parquet:"artisan_name"`
	ArtisanLatitude      *float64 `parquet:"artisan_latitude"`
	ArtisanLongitude     *float64 `parquet:"artisan_longitude"`
	ArtisanRating        *float64 `parquet:"artisan_rating"`
	ArtisanVerified      bool     `parquet:"artisan_verified"`
	ArtisanOnTimeRate    *float64 `parquet:"artisan_on_time_rate"`
	ArtisanComplaintRate *float64 `parquet:"artisan_complaint_rate"`
}

// Skip reasons reported by toProduct.
const (
	skipNoID     = "no_id"
	skipNoName   = "no_name"
	skipBadFlags = "bad_dietary"
)

// toProduct converts a raw row. Rows without an id or name, or with unknown
// dietary flags, are skipped with a reason. Status defaults to active.
func toProduct(row *catalogRow) (domprod.Product, string) {
	id := strings.TrimSpace(row.ID)
	if id == "" {
		return domprod.Product{}, skipNoID
	}
	if strings.TrimSpace(row.Name) == "" {
		return domprod.Product{}, skipNoName
	}
	dietary, err := domprod.DietaryFromFlags(row.Dietary)
	if err != nil {
		return domprod.Product{}, skipBadFlags
	}

	p := domprod.Product{
		ID:            id,
		Name:          row.Name,
		Description:   str(row.Description),
		Tags:          slices.Clone(row.Tags),
		Category:      str(row.Category),
		Subcategory:   str(row.Subcategory),
		Price:         row.Price,
		Stock:         int(row.Stock),
		Status:        domprod.StatusActive,
		Image:         str(row.Image),
		Rating:        domprod.Rating{Average: row.RatingAverage, Count: int(row.RatingCount)},
		TotalSales:    int(row.TotalSales),
		FavoriteCount: int(row.FavoriteCount),
		Dietary:       dietary,
		IsFeatured:    row.IsFeatured,
		IsSeasonal:    row.IsSeasonal,
		IsCurated:     row.IsCurated,
		Artisan:       toArtisan(row),
	}
	if s := str(row.Status); s != "" {
		p.Status = domprod.Status(s)
	}
	if row.CreatedAtMs != nil {
		p.CreatedAt = time.UnixMilli(*row.CreatedAtMs).UTC()
	}
	return p, ""
}

func toArtisan(row *catalogRow) *domprod.Artisan {
	if row.ArtisanID == nil && row.ArtisanName == nil {
		return nil
	}
	a := &domprod.Artisan{
		ID:         str(row.ArtisanID),
		Name:       str(row.ArtisanName),
		IsVerified: row.ArtisanVerified,
	}
	a.Coordinates = domprod.NewLatLng(row.ArtisanLatitude, row.ArtisanLongitude)
	if row.ArtisanRating != nil {
		a.Rating.Average = *row.ArtisanRating
	}
	if row.ArtisanOnTimeRate != nil {
		a.DeliveryStats.OnTimeRate = *row.ArtisanOnTimeRate
	}
	if row.ArtisanComplaintRate != nil {
		a.ComplaintRate = *row.ArtisanComplaintRate
	}
	return a
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
