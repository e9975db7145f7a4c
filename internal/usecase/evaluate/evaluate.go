package evaluate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/usecase/pipeline"
)

// Report is the result of evaluating one stage.
type Report struct {
	Stage   string        `json:"stage"`
	Step    int           `json:"step"`
	Elapsed time.Duration `json:"elapsed"`
	Result  string        `json:"result"`
}

// Evaluator runs a single configured stage and compares its output
// against ground truth.
type Evaluator struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

// New creates an evaluator over a configured pipeline.
func New(p *pipeline.Pipeline, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{pipeline: p, logger: logger}
}

// Evaluate runs the stage at step on doc and returns its comparison report.
// Stages without Compare yield domain.ErrNotComparable before anything runs.
func (e *Evaluator) Evaluate(ctx context.Context, step int, doc *document.Document, groundTruth string) (Report, error) {
	stage, name, err := e.pipeline.Stage(step)
	if err != nil {
		return Report{}, err
	}
	cmp, ok := stage.(pipeline.Comparer)
	if !ok {
		return Report{}, fmt.Errorf("stage %d: %w", step, domain.ErrNotComparable)
	}

	start := time.Now()
	traceCtx, trace := domain.NewContextWithTrace(ctx)
	e.pipeline.Execute(traceCtx, step, doc)
	elapsed := time.Since(start)
	if trace.Failed() > 0 {
		return Report{}, trace.Records()[0].Err
	}

	result, err := cmp.Compare(ctx, doc, e.pipeline.KnowledgeBase(), groundTruth)
	if err != nil {
		return Report{}, fmt.Errorf("compare %s: %w", name, err)
	}

	e.logger.Info("Stage evaluated",
		zap.Int("step", step),
		zap.String("stage", name),
		zap.Duration("elapsed", elapsed),
		zap.String("result", result),
	)
	return Report{Stage: name, Step: step, Elapsed: elapsed, Result: result}, nil
}
