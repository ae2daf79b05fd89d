package db

import "errors"

var (
	// ErrKeyNotFound means no document is stored under the key.
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrIndexNotFound means the named search index does not exist.
	ErrIndexNotFound = errors.New("db: index not found")
	// ErrIndexExists is returned by CreateIndex for an index that is already built.
	ErrIndexExists = errors.New("db: index already exists")
	// ErrUnavailable means the store is unreachable or shed by the breaker.
	ErrUnavailable = errors.New("db: store unavailable")
)

// Operation names carried by Error. Both backends use the Redis command
// names so logs read the same whichever driver is configured.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpJSONSet     = "JSON.SET"
	OpJSONGet     = "JSON.GET"
	OpDel         = "DEL"
	OpExists      = "EXISTS"
)

// Error is a backend failure tagged with the operation that hit it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// IsExpected reports whether err is an outcome callers handle in the normal
// course (a missing product, an index created by another replica) rather
// than a sign the backend is failing.
func IsExpected(err error) bool {
	return errors.Is(err, ErrKeyNotFound) ||
		errors.Is(err, ErrIndexExists) ||
		errors.Is(err, ErrIndexNotFound)
}
