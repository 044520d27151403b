package jobmatch

import "context"

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status   string            // "ok" or "degraded"
	Checks   map[string]string // component -> "healthy"/"unhealthy"
	Postings int
}

// Health checks the database and the loaded corpus.
func (c *Client) Health(ctx context.Context) HealthStatus {
	_, h := c.engine()
	report := h.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:   string(report.Status),
		Checks:   checks,
		Postings: report.Postings,
	}
}
