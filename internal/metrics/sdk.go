package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SDK holds collectors for the embedded client. A nil *SDK records nothing.
type SDK struct {
	calls     *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	documents *prometheus.CounterVec
}

// NewSDK builds the client collectors and registers them on reg.
func NewSDK(reg prometheus.Registerer) (*SDK, error) {
	m := &SDK{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sdk",
			Name:      "calls_total",
			Help:      "Client calls by method and outcome",
		}, []string{"method", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sdk",
			Name:      "call_duration_seconds",
			Help:      "Client call latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.025, 0.1, 0.5, 2.5, 10},
		}, []string{"method"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sdk",
			Name:      "documents_total",
			Help:      "Documents handled by batch calls, by method and status",
		}, []string{"method", "status"}),
	}
	if reg == nil {
		return m, nil
	}
	if err := registerOrReuse(reg, &m.calls); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.latency); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.documents); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveCall records one client call.
func (m *SDK) ObserveCall(method string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.calls.WithLabelValues(method, outcome).Inc()
	m.latency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveDocuments adds per-status document counts for a batch call.
func (m *SDK) ObserveDocuments(method string, byStatus map[string]int) {
	if m == nil {
		return
	}
	for status, n := range byStatus {
		if n > 0 {
			m.documents.WithLabelValues(method, status).Add(float64(n))
		}
	}
}
