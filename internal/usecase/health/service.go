package health

import (
	"context"
	"time"
)

// Status is the overall state reported by GET /health.
type Status string

const (
	// Healthy means every probe passed.
	Healthy Status = "ok"
	// Degraded means search works but the document store does not.
	Degraded Status = "degraded"
	// Unhealthy means no event configuration is loaded.
	Unhealthy Status = "error"
)

// CheckResult is the outcome of a single probe.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Probe names as they appear in Report.Checks.
const (
	ProbeDatabase = "database"
	ProbeEvents   = "events"
)

// probeTimeout bounds the database ping inside a health request.
const probeTimeout = 2 * time.Second

// Report aggregates probe results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Failed lists the probes that did not pass.
func (r Report) Failed() []string {
	var names []string
	for name, res := range r.Checks {
		if res != CheckOK {
			names = append(names, name)
		}
	}
	return names
}

// Service runs the liveness probes of the service.
type Service struct {
	db     DBPinger
	events EventCounter
}

// New creates a Service. db is nil when no document store is configured
// and the database probe is then omitted.
func New(db DBPinger, events EventCounter) *Service {
	return &Service{db: db, events: events}
}

// Check probes the event configurations and, when configured, the document
// store. Search cannot run without configurations so their absence is
// Unhealthy; a failing store only degrades the service.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: map[string]CheckResult{}}

	if s.events == nil || s.events.Count() == 0 {
		r.Checks[ProbeEvents] = CheckError
		r.Status = Unhealthy
	} else {
		r.Checks[ProbeEvents] = CheckOK
	}

	if s.db == nil {
		return r
	}
	pingCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := s.db.Ping(pingCtx); err != nil {
		r.Checks[ProbeDatabase] = CheckError
		if r.Status == Healthy {
			r.Status = Degraded
		}
		return r
	}
	r.Checks[ProbeDatabase] = CheckOK
	return r
}
