package batch

import (
	"context"

	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

// BulkUpserter writes many products in one round-trip.
type BulkUpserter interface {
	UpsertMany(ctx context.Context, products []domprod.Product) error
}

// ProductDeleter deletes a product from storage.
type ProductDeleter interface {
	Delete(ctx context.Context, id string) error
}
