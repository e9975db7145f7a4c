package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "entlink"

// Pipeline holds collectors for stage execution, resolution and rating.
// A nil *Pipeline is valid and records nothing.
type Pipeline struct {
	stageDuration *prometheus.HistogramVec
	stageRuns     *prometheus.CounterVec
	resolutions   *prometheus.CounterVec
	ratings       *prometheus.CounterVec
	skipped       *prometheus.CounterVec
}

// NewPipeline builds the collectors and registers them on reg.
// Collectors already registered on reg are reused.
func NewPipeline(reg prometheus.Registerer) (*Pipeline, error) {
	m := &Pipeline{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"stage"}),
		stageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_runs_total",
			Help:      "Pipeline stage executions by status",
		}, []string{"stage", "status"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "candidates_total",
			Help:      "Resolved ambiguity candidates by strategy and label",
		}, []string{"strategy", "label"}), // label: "ham" / "spam"
		ratings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "subjects_total",
			Help:      "Rated subjects by strategy",
		}, []string{"strategy"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_total",
			Help:      "Ambiguity groups or mentions skipped after a local failure",
		}, []string{"component", "strategy"}),
	}
	if reg == nil {
		return m, nil
	}
	if err := registerOrReuse(reg, &m.stageDuration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.stageRuns); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.resolutions); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.ratings); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.skipped); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveStage records one stage execution.
func (m *Pipeline) ObserveStage(stage string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	m.stageRuns.WithLabelValues(stage, status).Inc()
}

// ObserveResolution records the size of a resolution outcome.
func (m *Pipeline) ObserveResolution(strategy string, ham, spam int) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(strategy, "ham").Add(float64(ham))
	m.resolutions.WithLabelValues(strategy, "spam").Add(float64(spam))
}

// ObserveRating records the number of rated subjects.
func (m *Pipeline) ObserveRating(strategy string, subjects int) {
	if m == nil {
		return
	}
	m.ratings.WithLabelValues(strategy).Add(float64(subjects))
}

// ObserveSkip records a locally recovered failure.
func (m *Pipeline) ObserveSkip(component, strategy string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(component, strategy).Inc()
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("register metric: %w", err)
	}
	return nil
}
