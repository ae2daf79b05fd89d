package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bazaarmkt/bazaarmkt/internal/domain"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/filter"
	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

// Service handles product reads and writes.
type Service struct {
	repo            Repository
	now             func() time.Time
	newID           func() string
	defaultPageSize int
	maxPageSize     int
}

// New creates a product service.
func New(repo Repository) *Service {
	return &Service{
		repo:            repo,
		now:             time.Now,
		newID:           uuid.NewString,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// WithClock replaces the clock used to stamp new products.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Get returns a product by ID.
func (s *Service) Get(ctx context.Context, id string) (domprod.Product, error) {
	if err := domprod.ValidateID(id); err != nil {
		return domprod.Product{}, err
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domprod.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Create stores a new product under a server-assigned ID.
func (s *Service) Create(ctx context.Context, p *domprod.Product) (domprod.Product, error) {
	p.ID = s.newID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	Normalize(p)
	if err := p.Validate(); err != nil {
		return domprod.Product{}, err
	}
	if _, err := s.repo.Upsert(ctx, p); err != nil {
		return domprod.Product{}, fmt.Errorf("create product: %w", err)
	}
	return *p, nil
}

// Upsert creates or replaces the product with the given ID. An existing
// product keeps its creation time unless the payload sets one.
// Returns true if the product was created.
func (s *Service) Upsert(ctx context.Context, id string, p *domprod.Product) (bool, error) {
	p.ID = id
	if err := domprod.ValidateID(id); err != nil {
		return false, err
	}
	if p.CreatedAt.IsZero() {
		existing, err := s.repo.Get(ctx, id)
		switch {
		case err == nil:
			p.CreatedAt = existing.CreatedAt
		case errors.Is(err, domain.ErrProductNotFound):
		default:
			return false, fmt.Errorf("get product: %w", err)
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	Normalize(p)
	if err := p.Validate(); err != nil {
		return false, err
	}

	created, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return false, fmt.Errorf("upsert product: %w", err)
	}
	return created, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := domprod.ValidateID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// ListParams selects a page of active products, newest first.
type ListParams struct {
	Category string
	Offset   int
	Limit    int
}

// List returns active products newest first and the total number matching.
func (s *Service) List(ctx context.Context, lp ListParams) ([]domprod.Product, int, error) {
	if lp.Offset < 0 {
		return nil, 0, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidRequest)
	}
	limit := lp.Limit
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	limit = min(limit, s.maxPageSize)

	filters, err := filter.NewBuilder().
		Tag(domprod.FieldStatus, string(domprod.StatusActive)).
		Tag(domprod.FieldCategory, lp.Category).
		Build()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	products, total, err := s.repo.List(ctx, filters, lp.Offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// Normalize fills defaults on an incoming product: an empty status means
// active.
func Normalize(p *domprod.Product) {
	if p.Status == "" {
		p.Status = domprod.StatusActive
	}
}
