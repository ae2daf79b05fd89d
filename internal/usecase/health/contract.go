package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// BreakerReporter exposes the circuit breaker state guarding the store.
type BreakerReporter interface {
	State() string
}
