package rating

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
)

// Strategy names accepted by New.
const (
	StrategyHub           = "hub"
	StrategyIDF           = "idf"
	StrategyPosition      = "position"
	StrategyTermFrequency = "term_frequency"
)

// Options carries the dependencies a strategy may need.
type Options struct {
	HITS   graph.HITSOptions
	Index  IndexOpener
	Logger *zap.Logger
	Skips  SkipRecorder
}

// New returns the rater registered under name. An empty name selects position.
// Raters implementing Closer must be closed by the caller.
func New(ctx context.Context, name string, opts Options) (Rater, error) {
	switch name {
	case "", StrategyPosition:
		return Position{}, nil
	case StrategyTermFrequency:
		return TermFrequency{}, nil
	case StrategyHub:
		return NewHub(opts.HITS), nil
	case StrategyIDF:
		if opts.Index == nil {
			return nil, errors.New("idf rating requires a term index")
		}
		return OpenIDF(ctx, opts.Index, opts.Logger, opts.Skips)
	default:
		return nil, fmt.Errorf("rating %q: %w", name, domain.ErrUnknownStrategy)
	}
}
