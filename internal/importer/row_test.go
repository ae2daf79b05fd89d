package importer

import (
	"testing"
	"time"

	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

func TestToProduct_FullRow(t *testing.T) {
	row := catalogRow{
		ID:                   " eggs-1 ",
		Name:                 "Fresh Organic Eggs",
		Description:          ptr("A dozen"),
		Tags:                 []string{"eggs", "farm"},
		Category:             ptr("dairy-eggs"),
		Price:                6.5,
		Stock:                30,
		CreatedAtMs:          ptr(int64(1777636800000)),
		RatingAverage:        4.5,
		RatingCount:          12,
		Dietary:              []string{"organic", "glutenFree"},
		IsCurated:            true,
		ArtisanID:            ptr("a1"),
		ArtisanName:          ptr("Ferme Lavoie"),
		ArtisanLatitude:      ptr(45.5088),
		ArtisanLongitude:     ptr(-73.5878),
		ArtisanVerified:      true,
		ArtisanOnTimeRate:    ptr(0.95),
		ArtisanComplaintRate: ptr(0.01),
	}

	p, reason := toProduct(&row)
	if reason != "" {
		t.Fatalf("unexpected skip %q", reason)
	}
	if p.ID != "eggs-1" || p.Status != domprod.StatusActive || p.Description != "A dozen" {
		t.Errorf("product = %+v", p)
	}
	if !p.Dietary.Organic || !p.Dietary.GlutenFree || p.Dietary.Vegan {
		t.Errorf("dietary = %+v", p.Dietary)
	}
	if want := time.UnixMilli(1777636800000).UTC(); !p.CreatedAt.Equal(want) {
		t.Errorf("created at = %v, want %v", p.CreatedAt, want)
	}
	if p.Artisan == nil || p.Artisan.Coordinates == nil || !p.Artisan.IsVerified {
		t.Fatalf("artisan = %+v", p.Artisan)
	}
	if pt, ok := p.Artisan.Point(); !ok || pt.Lat() != 45.5088 {
		t.Errorf("artisan point = %v, %v", pt, ok)
	}
	if p.Artisan.DeliveryStats.OnTimeRate != 0.95 || p.Artisan.ComplaintRate != 0.01 {
		t.Errorf("artisan stats = %+v", p.Artisan)
	}

	row.Tags[0] = "mutated"
	if p.Tags[0] != "eggs" {
		t.Error("tags share memory with the read buffer")
	}
}

func TestToProduct_Skips(t *testing.T) {
	tests := []struct {
		name string
		row  catalogRow
		want string
	}{
		{"no id", catalogRow{Name: "x"}, skipNoID},
		{"blank id", catalogRow{ID: "  ", Name: "x"}, skipNoID},
		{"no name", catalogRow{ID: "p1"}, skipNoName},
		{"unknown dietary", catalogRow{ID: "p1", Name: "x", Dietary: []string{"paleo"}}, skipBadFlags},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, reason := toProduct(&tt.row); reason != tt.want {
				t.Errorf("reason = %q, want %q", reason, tt.want)
			}
		})
	}
}

func TestToProduct_OptionalArtisan(t *testing.T) {
	p, _ := toProduct(&catalogRow{ID: "p1", Name: "Bread", Status: ptr("draft")})
	if p.Artisan != nil {
		t.Errorf("artisan = %+v, want nil", p.Artisan)
	}
	if p.Status != domprod.StatusDraft {
		t.Errorf("status = %q", p.Status)
	}
	if !p.CreatedAt.IsZero() {
		t.Errorf("created at = %v, want zero", p.CreatedAt)
	}

	p, _ = toProduct(&catalogRow{ID: "p2", Name: "Jam", ArtisanName: ptr("Atelier"), ArtisanLatitude: ptr(45.0)})
	if p.Artisan == nil || p.Artisan.Coordinates != nil {
		t.Errorf("half coordinates should be dropped: %+v", p.Artisan)
	}
}
