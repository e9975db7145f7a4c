package resolve

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
	"github.com/kailas-cloud/entlink/internal/domain/resolution"
)

// Confidence thresholds for type aggregation.
const (
	knownTypeConfidence     = 1.0
	predictedTypeConfidence = 0.0
)

// Classification accepts a candidate when the cluster of its predicted types
// equals the cluster of its asserted types. A group whose type data cannot be
// aggregated is logged and skipped; the other groups are still resolved.
type Classification struct {
	logger *zap.Logger
	skips  SkipRecorder
}

// NewClassification creates a classification resolver. skips may be nil.
func NewClassification(logger *zap.Logger, skips SkipRecorder) *Classification {
	return &Classification{logger: logger, skips: skips}
}

// Name implements Resolver.
func (c *Classification) Name() string { return StrategyClassification }

// Resolve implements Resolver.
func (c *Classification) Resolve(
	ctx context.Context, _ *graph.Graph, groups []document.AmbiguityGroup,
	_ *document.Document, kb domain.KnowledgeBase,
) (resolution.Outcome, error) {
	if kb == nil {
		return resolution.Outcome{}, errors.New("classification requires a knowledge base")
	}

	out := resolution.New()
	for i, group := range groups {
		members := candidates(group)
		if members == nil {
			continue
		}
		groupOut, err := c.resolveGroup(ctx, kb, members)
		if err != nil {
			c.logger.Warn("Skipping ambiguity group",
				zap.Int("group", i),
				zap.String("literal", group.Literal),
				zap.Error(err),
			)
			if c.skips != nil {
				c.skips.ObserveSkip("resolver", StrategyClassification)
			}
			continue
		}
		out.Merge(groupOut)
	}
	return out, nil
}

func (c *Classification) resolveGroup(
	ctx context.Context, kb domain.KnowledgeBase, members []graph.NodeID,
) (resolution.Outcome, error) {
	var winners []graph.NodeID
	for _, id := range members {
		known, err := clusterOf(ctx, kb, kb.AssertedTypes, id, knownTypeConfidence)
		if err != nil {
			return resolution.Outcome{}, fmt.Errorf("known type of %d: %w", id, err)
		}
		predicted, err := clusterOf(ctx, kb, kb.PredictedTypes, id, predictedTypeConfidence)
		if err != nil {
			return resolution.Outcome{}, fmt.Errorf("predicted type of %d: %w", id, err)
		}
		if known == predicted {
			winners = append(winners, id)
		}
	}
	return partition(members, winners), nil
}

type typeLookup func(ctx context.Context, id graph.NodeID, minConfidence float64) ([]graph.NodeID, error)

func clusterOf(
	ctx context.Context, kb domain.KnowledgeBase, lookup typeLookup,
	id graph.NodeID, minConfidence float64,
) (graph.NodeID, error) {
	types, err := lookup(ctx, id, minConfidence)
	if err != nil {
		return 0, err
	}
	if len(types) == 0 {
		return 0, domain.ErrNoTypes
	}
	cluster, err := kb.Cluster(ctx, types)
	if err != nil {
		return 0, fmt.Errorf("cluster: %w", err)
	}
	return cluster, nil
}
