package resolve

import (
	"context"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
	"github.com/kailas-cloud/entlink/internal/domain/resolution"
)

// Degree accepts the candidates with the most incident edges (in + out).
type Degree struct{}

// Name implements Resolver.
func (Degree) Name() string { return StrategyDegree }

// Resolve implements Resolver.
func (Degree) Resolve(
	_ context.Context, g *graph.Graph, groups []document.AmbiguityGroup,
	_ *document.Document, _ domain.KnowledgeBase,
) (resolution.Outcome, error) {
	return resolveByScore(groups, func(id graph.NodeID) float64 {
		return float64(g.Degree(id))
	}), nil
}

// Flow accepts the candidates with the highest min(in-degree, out-degree):
// nodes that are both source and target of relations win.
type Flow struct{}

// Name implements Resolver.
func (Flow) Name() string { return StrategyFlow }

// Resolve implements Resolver.
func (Flow) Resolve(
	_ context.Context, g *graph.Graph, groups []document.AmbiguityGroup,
	_ *document.Document, _ domain.KnowledgeBase,
) (resolution.Outcome, error) {
	return resolveByScore(groups, func(id graph.NodeID) float64 {
		return float64(min(g.InDegree(id), g.OutDegree(id)))
	}), nil
}
