package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/entlink/internal/metrics"
)

// Observers fans out to every observer in order.
type Observers []Observer

// StageStarted implements Observer.
func (o Observers) StageStarted(step int, name string) {
	for _, obs := range o {
		obs.StageStarted(step, name)
	}
}

// StageFinished implements Observer.
func (o Observers) StageFinished(step int, name string, elapsed time.Duration, err error) {
	for _, obs := range o {
		obs.StageFinished(step, name, elapsed, err)
	}
}

// LogObserver writes one log line per stage.
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver creates a zap-backed observer.
func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// StageStarted implements Observer.
func (o *LogObserver) StageStarted(step int, name string) {
	o.logger.Debug("Stage started", zap.Int("step", step), zap.String("stage", name))
}

// StageFinished implements Observer.
func (o *LogObserver) StageFinished(step int, name string, elapsed time.Duration, err error) {
	if err != nil {
		o.logger.Error("Stage failed, continuing",
			zap.Int("step", step),
			zap.String("stage", name),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return
	}
	o.logger.Debug("Stage completed",
		zap.Int("step", step),
		zap.String("stage", name),
		zap.Duration("elapsed", elapsed),
	)
}

// MetricsObserver records stage duration and outcome in Prometheus.
type MetricsObserver struct {
	m *metrics.Pipeline
}

// NewMetricsObserver wraps pipeline collectors. m may be nil.
func NewMetricsObserver(m *metrics.Pipeline) *MetricsObserver {
	return &MetricsObserver{m: m}
}

// StageStarted implements Observer.
func (o *MetricsObserver) StageStarted(int, string) {}

// StageFinished implements Observer.
func (o *MetricsObserver) StageFinished(_ int, name string, elapsed time.Duration, err error) {
	o.m.ObserveStage(name, elapsed, err)
}
