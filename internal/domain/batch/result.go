// Package batch holds per-item outcomes of bulk product writes.
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK      ItemStatus = "ok"
	StatusInvalid ItemStatus = "invalid" // rejected before reaching the store
	StatusFailed  ItemStatus = "failed"  // store write failed
)

// Result is the outcome of processing one item in a batch operation.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful batch result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewInvalid records an item that failed validation.
func NewInvalid(id string, err error) Result { return Result{id: id, status: StatusInvalid, err: err} }

// NewFailed records an item the store could not write.
func NewFailed(id string, err error) Result { return Result{id: id, status: StatusFailed, err: err} }

// ID returns the item identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Count tallies results by outcome.
func Count(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.status == StatusOK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
