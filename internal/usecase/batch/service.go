package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/entlink/internal/domain"
	dombatch "github.com/kailas-cloud/entlink/internal/domain/batch"
	"github.com/kailas-cloud/entlink/internal/domain/document"
)

// MaxBatchSize is the maximum number of items per batch request.
const MaxBatchSize = 100

// DefaultWorkers is the number of documents processed concurrently.
const DefaultWorkers = 4

// TermDocument is one background document for the term index.
type TermDocument struct {
	ID    string
	Terms []string
}

// Service processes documents in batch with per-item results.
type Service struct {
	runner       Runner
	indexer      TermIndexer
	maxBatchSize int
	workers      int
}

// New creates a batch service. indexer may be nil when no term index is configured.
func New(runner Runner, indexer TermIndexer) *Service {
	return &Service{
		runner:       runner,
		indexer:      indexer,
		maxBatchSize: MaxBatchSize,
		workers:      DefaultWorkers,
	}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// WithWorkers configures how many documents run concurrently.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Process runs stages [from, to) over every document. A negative to means
// through the last stage. Each document gets its own goroutine-local run;
// stage failures make an item partial, never failed.
func (s *Service) Process(ctx context.Context, docs []*document.Document, from, to int) []dombatch.Result {
	results := make([]dombatch.Result, len(docs))

	if len(docs) > s.maxBatchSize {
		for i, doc := range docs {
			results[i] = dombatch.NewError(docID(doc, i),
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidDocument))
		}
		return results
	}
	if to < 0 {
		to = s.runner.Len()
	}

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, doc := range docs {
		g.Go(func() error {
			results[i] = s.processOne(ctx, doc, i, from, to)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *Service) processOne(ctx context.Context, doc *document.Document, i, from, to int) dombatch.Result {
	id := docID(doc, i)
	if err := ctx.Err(); err != nil {
		return dombatch.NewError(id, err)
	}
	if doc == nil {
		return dombatch.NewError(id, domain.ErrInvalidDocument)
	}
	if err := doc.Validate(); err != nil {
		return dombatch.NewError(id, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err))
	}

	runCtx, trace := domain.NewContextWithTrace(ctx)
	s.runner.RunRange(runCtx, doc, from, to)
	return dombatch.NewProcessed(id, trace.Records())
}

// Index adds background documents to the term index.
func (s *Service) Index(ctx context.Context, docs []TermDocument) []dombatch.Result {
	results := make([]dombatch.Result, len(docs))

	if s.indexer == nil {
		for i, d := range docs {
			results[i] = dombatch.NewError(d.ID, fmt.Errorf("term index: %w", domain.ErrNotFound))
		}
		return results
	}
	if len(docs) > s.maxBatchSize {
		for i, d := range docs {
			results[i] = dombatch.NewError(d.ID,
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidDocument))
		}
		return results
	}

	for i, d := range docs {
		if err := s.indexer.AddDocument(ctx, d.Terms); err != nil {
			results[i] = dombatch.NewError(d.ID, fmt.Errorf("index: %w", err))
			continue
		}
		results[i] = dombatch.NewOK(d.ID)
	}
	return results
}

func docID(doc *document.Document, i int) string {
	if doc == nil || doc.ID == "" {
		return fmt.Sprintf("#%d", i)
	}
	return doc.ID
}
