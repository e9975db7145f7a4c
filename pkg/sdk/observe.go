package entlink

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/entlink/internal/metrics"
)

// observer logs client calls through slog and records them on the SDK
// collectors. Both sinks are optional; a nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *metrics.SDK
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := metrics.NewSDK(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

func (o *observer) observe(method string, start time.Time, err error) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)
	o.metrics.ObserveCall(method, elapsed, err)

	if o.logger == nil {
		return
	}
	level := slog.LevelDebug
	attrs := []slog.Attr{slog.String("method", method), slog.Duration("elapsed", elapsed)}
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.Any("error", err))
	}
	o.logger.LogAttrs(context.Background(), level, "entlink call", attrs...)
}

// documents records how many documents of a batch call ended in each status.
func (o *observer) documents(method string, statuses []Status) {
	if o == nil || len(statuses) == 0 {
		return
	}
	counts := make(map[string]int, 3)
	for _, s := range statuses {
		counts[string(s)]++
	}
	o.metrics.ObserveDocuments(method, counts)
}
