package rating

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/document"
	domrating "github.com/kailas-cloud/entlink/internal/domain/rating"
)

// IDF scores a mention by log(1 / ((df(text)+1) / N)) where df is the
// background document frequency of the mention's literal text and N the
// number of indexed background documents.
//
// IDF owns its index handle from OpenIDF until Close.
type IDF struct {
	index  TermIndex
	logger *zap.Logger
	skips  SkipRecorder

	closeOnce sync.Once
	closeErr  error
}

// SkipRecorder counts mentions dropped after a local failure.
type SkipRecorder interface {
	ObserveSkip(component, strategy string)
}

// OpenIDF acquires an index handle. A failure here is returned to the caller as is.
func OpenIDF(ctx context.Context, opener IndexOpener, logger *zap.Logger, skips SkipRecorder) (*IDF, error) {
	index, err := opener.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open term index: %w", err)
	}
	return NewIDF(index, logger, skips), nil
}

// NewIDF wraps an already acquired handle. IDF takes ownership of it.
func NewIDF(index TermIndex, logger *zap.Logger, skips SkipRecorder) *IDF {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IDF{index: index, logger: logger, skips: skips}
}

// Name implements Rater.
func (r *IDF) Name() string { return StrategyIDF }

// Rate implements Rater.
func (r *IDF) Rate(ctx context.Context, doc *document.Document, entities []document.Mention) (domrating.Outcome, error) {
	out := make(domrating.Outcome, len(entities))
	if doc == nil || len(entities) == 0 {
		return out, nil
	}

	total, err := r.index.TotalDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("total documents: %w", err)
	}
	if total <= 0 {
		return nil, domain.ErrEmptyIndex
	}

	for i, e := range entities {
		text, ok := doc.MentionText(e)
		if !ok {
			continue
		}
		df, err := r.index.DocumentFrequency(ctx, text)
		if err != nil {
			if errors.Is(err, domain.ErrIndexClosed) {
				return nil, err
			}
			r.logger.Warn("Skipping mention",
				zap.Int("mention", i),
				zap.String("text", text),
				zap.Error(err),
			)
			if r.skips != nil {
				r.skips.ObserveSkip("rating", StrategyIDF)
			}
			continue
		}
		out[e.Value.Subject] = idf(df, total)
	}
	return out, nil
}

// Close releases the index handle. Further Close calls return the first result.
func (r *IDF) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.index.Close()
	})
	return r.closeErr
}

func idf(df, total int64) float64 {
	return math.Log(1 / (float64(df+1) / float64(total)))
}
