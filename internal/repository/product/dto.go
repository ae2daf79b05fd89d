package product

import (
	"time"

	"github.com/goccy/go-json"

	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

// productDoc is the stored JSON shape of a product.
type productDoc struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Tags          []string    `json:"tags,omitempty"`
	Category      string      `json:"category,omitempty"`
	Subcategory   string      `json:"subcategory,omitempty"`
	Price         float64     `json:"price"`
	Stock         int         `json:"stock"`
	Status        string      `json:"status"`
	CreatedAt     string      `json:"createdAt,omitempty"`
	CreatedTs     int64       `json:"createdTs,omitempty"` // unix seconds, sort key
	Image         string      `json:"image,omitempty"`
	Images        []string    `json:"images,omitempty"`
	Rating        ratingDoc   `json:"rating"`
	TotalSales    int         `json:"totalSales"`
	FavoriteCount int         `json:"favoriteCount"`
	Dietary       []string    `json:"dietary,omitempty"`
	IsFeatured    bool        `json:"isFeatured,omitempty"`
	IsSeasonal    bool        `json:"isSeasonal,omitempty"`
	IsCurated     bool        `json:"isCurated,omitempty"`
	Badges        []string    `json:"badges,omitempty"`
	Artisan       *artisanDoc `json:"artisan,omitempty"`
}

type ratingDoc struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type artisanDoc struct {
	ID            string        `json:"id,omitempty"`
	Name          string        `json:"name,omitempty"`
	Location      *geoPointDoc  `json:"location,omitempty"`
	Coordinates   *latLngDoc    `json:"coordinates,omitempty"`
	Rating        ratingDoc     `json:"rating"`
	IsVerified    bool          `json:"isVerified,omitempty"`
	DeliveryStats deliveryStats `json:"deliveryStats"`
	ComplaintRate float64       `json:"complaintRate,omitempty"`
}

type geoPointDoc struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type latLngDoc struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type deliveryStats struct {
	OnTimeRate float64 `json:"onTimeRate"`
}

func toDoc(p *domprod.Product) productDoc {
	d := productDoc{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Tags:          p.Tags,
		Category:      p.Category,
		Subcategory:   p.Subcategory,
		Price:         p.Price,
		Stock:         p.Stock,
		Status:        string(p.Status),
		Image:         p.Image,
		Images:        p.Images,
		Rating:        ratingDoc{Average: p.Rating.Average, Count: p.Rating.Count},
		TotalSales:    p.TotalSales,
		FavoriteCount: p.FavoriteCount,
		Dietary:       p.Dietary.Flags(),
		IsFeatured:    p.IsFeatured,
		IsSeasonal:    p.IsSeasonal,
		IsCurated:     p.IsCurated,
		Badges:        p.Badges,
	}
	if !p.CreatedAt.IsZero() {
		d.CreatedAt = p.CreatedAt.UTC().Format(time.RFC3339)
		d.CreatedTs = p.CreatedAt.Unix()
	}
	if a := p.Artisan; a != nil {
		ad := &artisanDoc{
			ID:            a.ID,
			Name:          a.Name,
			Rating:        ratingDoc{Average: a.Rating.Average, Count: a.Rating.Count},
			IsVerified:    a.IsVerified,
			DeliveryStats: deliveryStats{OnTimeRate: a.DeliveryStats.OnTimeRate},
			ComplaintRate: a.ComplaintRate,
		}
		if a.Location != nil {
			ad.Location = &geoPointDoc{Type: a.Location.Type, Coordinates: a.Location.Coordinates}
		}
		if a.Coordinates != nil {
			lat, lng := a.Coordinates.Latitude, a.Coordinates.Longitude
			ad.Coordinates = &latLngDoc{Latitude: &lat, Longitude: &lng}
		}
		d.Artisan = ad
	}
	return d
}

// fromDoc rebuilds a product. Unparseable timestamps and unknown dietary
// flags are dropped rather than failing the read.
func fromDoc(d *productDoc) domprod.Product {
	p := domprod.Product{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		Tags:          d.Tags,
		Category:      d.Category,
		Subcategory:   d.Subcategory,
		Price:         d.Price,
		Stock:         d.Stock,
		Status:        domprod.Status(d.Status),
		Image:         d.Image,
		Images:        d.Images,
		Rating:        domprod.Rating{Average: d.Rating.Average, Count: d.Rating.Count},
		TotalSales:    d.TotalSales,
		FavoriteCount: d.FavoriteCount,
		IsFeatured:    d.IsFeatured,
		IsSeasonal:    d.IsSeasonal,
		IsCurated:     d.IsCurated,
		Badges:        d.Badges,
	}
	switch {
	case d.CreatedAt != "":
		if t, err := time.Parse(time.RFC3339, d.CreatedAt); err == nil {
			p.CreatedAt = t
		}
	case d.CreatedTs > 0:
		p.CreatedAt = time.Unix(d.CreatedTs, 0).UTC()
	}

	known := make([]string, 0, len(d.Dietary))
	for _, f := range d.Dietary {
		if domprod.IsDietaryFlag(f) {
			known = append(known, f)
		}
	}
	p.Dietary, _ = domprod.DietaryFromFlags(known)

	if a := d.Artisan; a != nil {
		art := &domprod.Artisan{
			ID:            a.ID,
			Name:          a.Name,
			Rating:        domprod.Rating{Average: a.Rating.Average, Count: a.Rating.Count},
			IsVerified:    a.IsVerified,
			DeliveryStats: domprod.DeliveryStats{OnTimeRate: a.DeliveryStats.OnTimeRate},
			ComplaintRate: a.ComplaintRate,
		}
		if a.Location != nil {
			art.Location = &domprod.GeoJSONPoint{Type: a.Location.Type, Coordinates: a.Location.Coordinates}
		}
		if a.Coordinates != nil {
			art.Coordinates = domprod.NewLatLng(a.Coordinates.Latitude, a.Coordinates.Longitude)
		}
		p.Artisan = art
	}
	return p
}

func marshalProduct(p *domprod.Product) ([]byte, error) {
	return json.Marshal(toDoc(p))
}

// unmarshalProduct decodes a stored document. RediSearch may wrap the root in
// a one-element array when a JSONPath was requested.
func unmarshalProduct(raw []byte) (domprod.Product, error) {
	if len(raw) > 0 && raw[0] == '[' {
		var docs []productDoc
		if err := json.Unmarshal(raw, &docs); err != nil {
			return domprod.Product{}, err
		}
		if len(docs) == 0 {
			return domprod.Product{}, errEmptyDocument
		}
		return fromDoc(&docs[0]), nil
	}
	var d productDoc
	if err := json.Unmarshal(raw, &d); err != nil {
		return domprod.Product{}, err
	}
	return fromDoc(&d), nil
}
