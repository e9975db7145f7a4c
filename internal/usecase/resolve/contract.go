package resolve

import (
	"context"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
	"github.com/kailas-cloud/entlink/internal/domain/resolution"
)

// Resolver partitions every ambiguity group of a document into accepted and
// rejected candidates. Implementations hold no per-call state and are safe
// for concurrent use across documents.
type Resolver interface {
	Name() string
	Resolve(
		ctx context.Context, g *graph.Graph, groups []document.AmbiguityGroup,
		doc *document.Document, kb domain.KnowledgeBase,
	) (resolution.Outcome, error)
}

// SkipRecorder counts groups dropped after a local failure.
type SkipRecorder interface {
	ObserveSkip(component, strategy string)
}
