package resolve

import (
	"context"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
	"github.com/kailas-cloud/entlink/internal/domain/resolution"
)

// Authority accepts the candidates with the highest HITS authority.
// HITS runs once per Resolve call over the whole graph.
type Authority struct {
	opts graph.HITSOptions
}

// NewAuthority creates an authority resolver with the given iteration bounds.
func NewAuthority(opts graph.HITSOptions) *Authority {
	return &Authority{opts: opts}
}

// Name implements Resolver.
func (a *Authority) Name() string { return StrategyAuthority }

// Resolve implements Resolver.
func (a *Authority) Resolve(
	_ context.Context, g *graph.Graph, groups []document.AmbiguityGroup,
	_ *document.Document, _ domain.KnowledgeBase,
) (resolution.Outcome, error) {
	scores := g.HITS(a.opts)
	return resolveByScore(groups, func(id graph.NodeID) float64 {
		return scores.Authority[id]
	}), nil
}
