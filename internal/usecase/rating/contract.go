package rating

import (
	"context"

	"github.com/kailas-cloud/entlink/internal/domain/document"
	domrating "github.com/kailas-cloud/entlink/internal/domain/rating"
)

// Rater scores the resolved subjects of the given mentions.
// Callers pass resolved mentions only; every key of the returned outcome is
// the subject of one of them.
type Rater interface {
	Name() string
	Rate(ctx context.Context, doc *document.Document, entities []document.Mention) (domrating.Outcome, error)
}

// Closer is implemented by raters that hold a resource until released.
type Closer interface {
	Close() error
}

// IndexOpener acquires a background term index handle.
type IndexOpener interface {
	Open(ctx context.Context) (TermIndex, error)
}

// IndexOpenerFunc adapts a function to IndexOpener.
type IndexOpenerFunc func(ctx context.Context) (TermIndex, error)

// Open implements IndexOpener.
func (f IndexOpenerFunc) Open(ctx context.Context) (TermIndex, error) { return f(ctx) }

// TermIndex is the read-only lookup surface IDF needs.
type TermIndex interface {
	DocumentFrequency(ctx context.Context, term string) (int64, error)
	TotalDocuments(ctx context.Context) (int64, error)
	Close() error
}
