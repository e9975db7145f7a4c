// Package stages assembles pipeline stages from their configured names.
package stages

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
	"github.com/kailas-cloud/entlink/internal/metrics"
	"github.com/kailas-cloud/entlink/internal/usecase/pipeline"
	"github.com/kailas-cloud/entlink/internal/usecase/rating"
	"github.com/kailas-cloud/entlink/internal/usecase/resolve"
	"github.com/kailas-cloud/entlink/internal/usecase/transducer"
)

// Stage names.
const (
	SubjectIndex   = transducer.NameSubjectIndex
	Disambiguation = transducer.NameDisambiguation
	Rating         = transducer.NameRating
)

// Default returns the full stage list in run order.
func Default() []string {
	return []string{SubjectIndex, Disambiguation, Rating}
}

// Spec selects the stages and their strategies.
type Spec struct {
	Names    []string
	Resolver string
	Rating   string
	HITS     graph.HITSOptions
}

// Deps carries what the stages need at construction time.
// Index may be nil unless the idf rating is selected. Metrics may be nil.
type Deps struct {
	Index   rating.IndexOpener
	Metrics *metrics.Pipeline
	Logger  *zap.Logger
}

// Built is an assembled stage list plus the resources it holds.
type Built struct {
	Stages  []pipeline.Transducer
	Closers []rating.Closer
}

// Close releases every held resource and returns the first error.
func (b Built) Close() error {
	var first error
	for _, c := range b.Closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Build assembles the stages named in spec, in order. An empty list selects Default.
func Build(ctx context.Context, spec Spec, deps Deps) (Built, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	names := spec.Names
	if len(names) == 0 {
		names = Default()
	}

	var b Built
	for _, name := range names {
		switch name {
		case SubjectIndex:
			b.Stages = append(b.Stages, transducer.NewSubjectIndex(deps.Logger))
		case Disambiguation:
			res, err := resolve.New(spec.Resolver, resolve.Options{
				HITS:   spec.HITS,
				Logger: deps.Logger,
				Skips:  deps.Metrics,
			})
			if err != nil {
				_ = b.Close()
				return Built{}, err
			}
			b.Stages = append(b.Stages, transducer.NewDisambiguation(res, deps.Metrics))
		case Rating:
			rater, err := rating.New(ctx, spec.Rating, rating.Options{
				HITS:   spec.HITS,
				Index:  deps.Index,
				Logger: deps.Logger,
				Skips:  deps.Metrics,
			})
			if err != nil {
				_ = b.Close()
				return Built{}, err
			}
			st := transducer.NewRating(rater, deps.Metrics)
			b.Stages = append(b.Stages, st)
			b.Closers = append(b.Closers, st)
		default:
			_ = b.Close()
			return Built{}, fmt.Errorf("stage %q: %w", name, domain.ErrUnknownStrategy)
		}
	}
	return b, nil
}
