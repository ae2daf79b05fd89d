package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrProductNotFound signals a missing product.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidProduct signals a product that fails validation.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrInvalidRequest signals malformed search or listing parameters.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrStoreUnavailable signals that the candidate store is down or the breaker is open.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)
