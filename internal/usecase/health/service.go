package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the store answers but searches are being shed.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckOpen indicates an open circuit breaker.
	CheckOpen CheckResult = "open"
	// CheckHalfOpen indicates a breaker probing for recovery.
	CheckHalfOpen CheckResult = "half_open"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	breaker BreakerReporter
}

// New creates a Service. breaker can be nil.
func New(db DBPinger, breaker BreakerReporter) *Service {
	return &Service{db: db, breaker: breaker}
}

// Check pings the store and reads the breaker state.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	} else {
		checks["database"] = CheckOK
	}

	if s.breaker != nil {
		switch s.breaker.State() {
		case "open":
			checks["breaker"] = CheckOpen
		case "half-open":
			checks["breaker"] = CheckHalfOpen
		default:
			checks["breaker"] = CheckOK
		}
		if checks["breaker"] != CheckOK && status == Healthy {
			status = Degraded
		}
	}

	return Report{Status: status, Checks: checks}
}
