// Package product holds the product record that search ranks.
package product

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/bazaarmkt/bazaarmkt/internal/domain"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Field limits.
const (
	MaxIDLength          = 128
	MaxNameLength        = 200
	MaxDescriptionLength = 10000
	MaxTags              = 50
)

// Status is the listing lifecycle state. Only active products are searchable.
type Status string

// Status values.
const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusDraft      Status = "draft"
	StatusOutOfStock Status = "out_of_stock"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDraft, StatusOutOfStock:
		return true
	}
	return false
}

// Rating is the review aggregate maintained by the review service.
type Rating struct {
	Average float64
	Count   int
}

// Product is a marketplace listing together with the artisan summary embedded
// at write time. Absent optional data is a zero value, never an error.
type Product struct {
	ID            string
	Name          string
	Description   string
	Tags          []string
	Category      string
	Subcategory   string
	Price         float64
	Stock         int
	Status        Status
	CreatedAt     time.Time // zero = unknown
	Image         string
	Images        []string
	Rating        Rating
	TotalSales    int
	FavoriteCount int
	Dietary       Dietary
	IsFeatured    bool
	IsSeasonal    bool
	IsCurated     bool
	Badges        []string
	Artisan       *Artisan // nil when the summary is missing
}

// ValidateID checks the product identifier format.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidProduct)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%w: id too long (max %d)", domain.ErrInvalidProduct, MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("%w: id must be alphanumeric with underscores and hyphens", domain.ErrInvalidProduct)
	}
	return nil
}

// Validate checks a product before it is written.
func (p *Product) Validate() error {
	if err := ValidateID(p.ID); err != nil {
		return err
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidProduct)
	}
	if len(p.Name) > MaxNameLength {
		return fmt.Errorf("%w: name too long (max %d)", domain.ErrInvalidProduct, MaxNameLength)
	}
	if len(p.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description too long (max %d)", domain.ErrInvalidProduct, MaxDescriptionLength)
	}
	if len(p.Tags) > MaxTags {
		return fmt.Errorf("%w: too many tags (max %d)", domain.ErrInvalidProduct, MaxTags)
	}
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return fmt.Errorf("%w: price must be a non-negative number", domain.ErrInvalidProduct)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidProduct, p.Status)
	}
	return nil
}

// Searchable reports whether the product may appear in search results.
func (p *Product) Searchable() bool { return p.Status == StatusActive }

// HasImage reports whether the listing carries at least one image.
func (p *Product) HasImage() bool {
	if strings.TrimSpace(p.Image) != "" {
		return true
	}
	for _, img := range p.Images {
		if strings.TrimSpace(img) != "" {
			return true
		}
	}
	return false
}

// IsOrganic reports the organic flag.
func (p *Product) IsOrganic() bool { return p.Dietary.Organic }
