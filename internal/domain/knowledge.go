package domain

import (
	"context"

	"github.com/kailas-cloud/entlink/internal/domain/graph"
)

// KeyPrefix prefixes every key this service writes to the store.
const KeyPrefix = "entlink:"

// KnowledgeBase is the read-only knowledge-base capability stages consume.
type KnowledgeBase interface {
	// URI returns the resource URI or literal of id.
	URI(ctx context.Context, id graph.NodeID) (string, error)
	// URIIndex returns the id assigned to uri.
	URIIndex(ctx context.Context, uri string) (graph.NodeID, error)
	// Cluster collapses a set of type ids to a representative cluster id.
	Cluster(ctx context.Context, typeIDs []graph.NodeID) (graph.NodeID, error)
	// AssertedTypes returns types asserted for id with confidence >= minConfidence.
	AssertedTypes(ctx context.Context, id graph.NodeID, minConfidence float64) ([]graph.NodeID, error)
	// PredictedTypes returns types predicted for id with confidence >= minConfidence.
	PredictedTypes(ctx context.Context, id graph.NodeID, minConfidence float64) ([]graph.NodeID, error)
}

// HealthChecker verifies a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Resource is one knowledge-base entry with its type confidences.
type Resource struct {
	ID        graph.NodeID             `json:"id" yaml:"id"`
	URI       string                   `json:"uri" yaml:"uri"`
	Types     map[graph.NodeID]float64 `json:"types,omitempty" yaml:"types,omitempty"`
	Predicted map[graph.NodeID]float64 `json:"predicted,omitempty" yaml:"predicted,omitempty"`
}

// IndexStats summarizes the background term index.
type IndexStats struct {
	Documents   int64 `json:"documents"`
	OpenHandles int64 `json:"open_handles"`
}
