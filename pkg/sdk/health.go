package crvs

import (
	"context"

	healthuc "github.com/opencrvs/crvs-search/internal/usecase/health"
)

// HealthStatus is the aggregated health of the client.
type HealthStatus struct {
	// Status is "ok", "degraded" or "error".
	Status string
	// Checks maps a component ("events", "database") to "ok" or "error".
	// "database" is absent without WithRedis.
	Checks map[string]string
}

// OK reports whether every component passed.
func (h HealthStatus) OK() bool { return h.Status == string(healthuc.Healthy) }

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Health checks the loaded event configurations and, when configured, the
// document store.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	h := HealthStatus{Status: string(report.Status), Checks: make(map[string]string, len(report.Checks))}
	for component, result := range report.Checks {
		h.Checks[component] = string(result)
	}
	return h
}
