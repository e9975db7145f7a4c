package batch

import (
	"context"

	"github.com/kailas-cloud/entlink/internal/domain/document"
)

// Runner drives a configured stage list over one document.
type Runner interface {
	Len() int
	RunRange(ctx context.Context, doc *document.Document, from, to int)
}

// TermIndexer counts background documents for IDF rating.
type TermIndexer interface {
	AddDocument(ctx context.Context, terms []string) error
}
