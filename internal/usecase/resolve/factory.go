package resolve

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
)

// Strategy names accepted by New.
const (
	StrategyDegree         = "degree"
	StrategyFlow           = "flow"
	StrategyAuthority      = "authority"
	StrategyClassification = "classification"
)

// Options carries the dependencies a strategy may need.
type Options struct {
	HITS   graph.HITSOptions
	Logger *zap.Logger
	Skips  SkipRecorder
}

// New returns the resolver registered under name. An empty name selects degree.
func New(name string, opts Options) (Resolver, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	switch name {
	case "", StrategyDegree:
		return Degree{}, nil
	case StrategyFlow:
		return Flow{}, nil
	case StrategyAuthority:
		return NewAuthority(opts.HITS), nil
	case StrategyClassification:
		return NewClassification(opts.Logger, opts.Skips), nil
	default:
		return nil, fmt.Errorf("resolver %q: %w", name, domain.ErrUnknownStrategy)
	}
}
