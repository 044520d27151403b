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
	// CheckHealthy indicates a passing health check.
	CheckHealthy CheckResult = "healthy"
	// CheckUnhealthy indicates a failing health check.
	CheckUnhealthy CheckResult = "unhealthy"
)

// Report aggregates health check results.
type Report struct {
	Status   Status                 `json:"status"`
	Checks   map[string]CheckResult `json:"checks"`
	Postings int                    `json:"postings"`
}

// Service coordinates health checks.
type Service struct {
	store     StorePinger
	embedding EmbeddingChecker
	corpus    CorpusCounter
}

// New creates a Service. embedding and corpus can be nil.
func New(store StorePinger, embedding EmbeddingChecker, corpus CorpusCounter) *Service {
	return &Service{store: store, embedding: embedding, corpus: corpus}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["store"] = result(s.store.Ping(ctx))

	if s.embedding != nil {
		checks["embedding"] = result(s.embedding.HealthCheck(ctx))
	}

	var postings int
	if s.corpus != nil {
		// An empty corpus is valid; only a missing snapshot fails.
		checks["corpus"] = CheckHealthy
		postings = s.corpus.Len()
	} else {
		checks["corpus"] = CheckUnhealthy
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckUnhealthy {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks, Postings: postings}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckUnhealthy
	}
	return CheckHealthy
}
