package entlink

import (
	"context"

	"github.com/kailas-cloud/entlink/internal/domain"
	dombatch "github.com/kailas-cloud/entlink/internal/domain/batch"
	domdoc "github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
	batchuc "github.com/kailas-cloud/entlink/internal/usecase/batch"
	evaluateuc "github.com/kailas-cloud/entlink/internal/usecase/evaluate"
	healthuc "github.com/kailas-cloud/entlink/internal/usecase/health"
)

// --- batchUseCase mock ---

type mockBatchUC struct {
	processFn func(ctx context.Context, docs []*domdoc.Document, from, to int) []dombatch.Result
	indexFn   func(ctx context.Context, docs []batchuc.TermDocument) []dombatch.Result
}

func (m *mockBatchUC) Process(ctx context.Context, docs []*domdoc.Document, from, to int) []dombatch.Result {
	return m.processFn(ctx, docs, from, to)
}

func (m *mockBatchUC) Index(ctx context.Context, docs []batchuc.TermDocument) []dombatch.Result {
	return m.indexFn(ctx, docs)
}

// --- evaluateUseCase mock ---

type mockEvaluateUC struct {
	evaluateFn func(ctx context.Context, step int, doc *domdoc.Document, groundTruth string) (evaluateuc.Report, error)
}

func (m *mockEvaluateUC) Evaluate(
	ctx context.Context, step int, doc *domdoc.Document, groundTruth string,
) (evaluateuc.Report, error) {
	return m.evaluateFn(ctx, step, doc, groundTruth)
}

// --- knowledgeLoader mock ---

type mockLoader struct {
	putFn   func(ctx context.Context, resources []domain.Resource, clusters map[graph.NodeID]graph.NodeID) error
	purgeFn func(ctx context.Context) (int, error)
}

func (m *mockLoader) Put(
	ctx context.Context, resources []domain.Resource, clusters map[graph.NodeID]graph.NodeID,
) error {
	return m.putFn(ctx, resources, clusters)
}

func (m *mockLoader) Purge(ctx context.Context) (int, error) {
	if m.purgeFn != nil {
		return m.purgeFn(ctx)
	}
	return 0, nil
}

// --- termIndex mock ---

type mockIndex struct {
	statsFn func(ctx context.Context) (domain.IndexStats, error)
	purgeFn func(ctx context.Context) (int, error)
}

func (m *mockIndex) Stats(ctx context.Context) (domain.IndexStats, error) {
	return m.statsFn(ctx)
}

func (m *mockIndex) Purge(ctx context.Context) (int, error) {
	if m.purgeFn != nil {
		return m.purgeFn(ctx)
	}
	return 0, nil
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }
