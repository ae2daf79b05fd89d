package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/bazaarmkt/bazaarmkt/internal/domain"
	dombatch "github.com/bazaarmkt/bazaarmkt/internal/domain/batch"
	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
	ucproduct "github.com/bazaarmkt/bazaarmkt/internal/usecase/product"
)

// MaxBatchSize is the maximum number of items per batch request.
const MaxBatchSize = 100

// Service handles batch product operations with per-item error reporting.
type Service struct {
	upserter     BulkUpserter
	del          ProductDeleter
	now          func() time.Time
	maxBatchSize int
}

// New creates a batch service.
func New(upserter BulkUpserter, del ProductDeleter) *Service {
	return &Service{upserter: upserter, del: del, now: time.Now, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// WithClock replaces the clock used to stamp products without a creation time.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Upsert validates every item and writes the valid ones in a single pipeline.
// Invalid items are reported individually and do not block the rest.
func (s *Service) Upsert(ctx context.Context, items []domprod.Product) []dombatch.Result {
	results := make([]dombatch.Result, len(items))

	if len(items) > s.maxBatchSize {
		for i := range items {
			results[i] = dombatch.NewInvalid(
				items[i].ID,
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidRequest),
			)
		}
		return results
	}

	now := s.now().UTC()
	valid := make([]domprod.Product, 0, len(items))
	validIdx := make([]int, 0, len(items))
	seen := make(map[string]int, len(items))

	for i := range items {
		item := items[i]
		ucproduct.Normalize(&item)
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		if err := item.Validate(); err != nil {
			results[i] = dombatch.NewInvalid(item.ID, err)
			continue
		}
		if prev, dup := seen[item.ID]; dup {
			results[i] = dombatch.NewInvalid(item.ID,
				fmt.Errorf("%w: duplicate id (item %d)", domain.ErrInvalidProduct, prev))
			continue
		}
		seen[item.ID] = i
		valid = append(valid, item)
		validIdx = append(validIdx, i)
	}

	if len(valid) == 0 {
		return results
	}

	if err := s.upserter.UpsertMany(ctx, valid); err != nil {
		for _, i := range validIdx {
			results[i] = dombatch.NewFailed(items[i].ID, fmt.Errorf("batch upsert: %w", err))
		}
		return results
	}

	for _, i := range validIdx {
		results[i] = dombatch.NewOK(items[i].ID)
	}
	return results
}

// Delete removes products by ID in batch.
func (s *Service) Delete(ctx context.Context, ids []string) []dombatch.Result {
	results := make([]dombatch.Result, len(ids))

	if len(ids) > s.maxBatchSize {
		for i, id := range ids {
			results[i] = dombatch.NewInvalid(id,
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidRequest))
		}
		return results
	}

	for i, id := range ids {
		if err := domprod.ValidateID(id); err != nil {
			results[i] = dombatch.NewInvalid(id, err)
			continue
		}
		if err := s.del.Delete(ctx, id); err != nil {
			results[i] = dombatch.NewFailed(id, fmt.Errorf("delete: %w", err))
			continue
		}
		results[i] = dombatch.NewOK(id)
	}

	return results
}
