package product

import (
	"context"

	"github.com/bazaarmkt/bazaarmkt/internal/domain/filter"
	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

// Repository defines the storage contract for products.
type Repository interface {
	Get(ctx context.Context, id string) (domprod.Product, error)
	Upsert(ctx context.Context, p *domprod.Product) (created bool, err error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters filter.Expression, offset, limit int) ([]domprod.Product, int, error)
}
