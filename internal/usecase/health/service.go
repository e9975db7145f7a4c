package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status is the aggregated service health.
type Status string

const (
	Healthy   Status = "ok"
	Degraded  Status = "degraded" // a component failed, storage is reachable
	Unhealthy Status = "error"    // storage is unreachable
)

// CheckResult is the outcome of one named check.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// DatabaseCheck is the reserved name of the storage check.
const DatabaseCheck = "database"

// DefaultCheckTimeout bounds a single check.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service runs the storage ping and component checks in parallel.
type Service struct {
	db         DBPinger
	components map[string]Checker
	timeout    time.Duration
}

// New creates a Service. components maps a check name to its checker; nil entries are ignored.
func New(db DBPinger, components map[string]Checker) *Service {
	return &Service{db: db, components: components, timeout: DefaultCheckTimeout}
}

// WithTimeout overrides the per-check deadline. Non-positive values are ignored.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs every check and derives the aggregated status.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, len(s.components)+1)
	)
	record := func(name string, err error) {
		res := CheckOK
		if err != nil {
			res = CheckError
		}
		mu.Lock()
		checks[name] = res
		mu.Unlock()
	}

	var g errgroup.Group
	run := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			record(name, fn(cctx))
			return nil
		})
	}

	run(DatabaseCheck, s.db.Ping)
	for name, c := range s.components {
		if c == nil || name == DatabaseCheck {
			continue
		}
		run(name, c.HealthCheck)
	}
	_ = g.Wait()

	return Report{Status: aggregate(checks), Checks: checks}
}

func aggregate(checks map[string]CheckResult) Status {
	if checks[DatabaseCheck] == CheckError {
		return Unhealthy
	}
	for _, v := range checks {
		if v == CheckError {
			return Degraded
		}
	}
	return Healthy
}
