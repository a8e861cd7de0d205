package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckFallback indicates the dataset is serving built-in sample records.
	CheckFallback CheckResult = "sample"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status  Status
	Checks  map[string]CheckResult
	Records int
}

// Service coordinates health checks.
type Service struct {
	store   StorePinger
	dataset DatasetInspector
}

// New creates a Service.
func New(store StorePinger, dataset DatasetInspector) *Service {
	return &Service{store: store, dataset: dataset}
}

// Check pings storage and inspects the internal dataset. Serving sample
// records is reported but does not degrade the service.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)

	if err := s.store.Ping(ctx); err != nil {
		checks["storage"] = CheckError
	} else {
		checks["storage"] = CheckOK
	}

	n := s.dataset.Len()
	switch {
	case n == 0:
		checks["dataset"] = CheckError
	case !s.dataset.FromFile():
		checks["dataset"] = CheckFallback
	default:
		checks["dataset"] = CheckOK
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks, Records: n}
}
