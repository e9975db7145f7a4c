package pipeline

import (
	"context"
	"time"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/document"
)

// Transducer is one pipeline stage. It mutates doc using kb as read-only context.
type Transducer interface {
	Transduce(ctx context.Context, doc *document.Document, kb domain.KnowledgeBase) error
}

// Comparer is implemented by stages that can score their output against ground truth.
// Only the evaluator calls it.
type Comparer interface {
	Compare(ctx context.Context, doc *document.Document, kb domain.KnowledgeBase, groundTruth string) (string, error)
}

// Named lets a stage report a stable name for logs and metrics.
type Named interface {
	Name() string
}

// Observer receives stage timing and failures.
type Observer interface {
	StageStarted(step int, name string)
	StageFinished(step int, name string, elapsed time.Duration, err error)
}
