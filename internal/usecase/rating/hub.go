package rating

import (
	"context"

	"github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
	domrating "github.com/kailas-cloud/entlink/internal/domain/rating"
)

// Hub scores subjects by their HITS hub value on the document graph
// restricted to the subjects of the rated mentions.
type Hub struct {
	opts graph.HITSOptions
}

// NewHub creates a hub rater with the given iteration bounds.
func NewHub(opts graph.HITSOptions) *Hub {
	return &Hub{opts: opts}
}

// Name implements Rater.
func (h *Hub) Name() string { return StrategyHub }

// Rate implements Rater.
func (h *Hub) Rate(_ context.Context, doc *document.Document, entities []document.Mention) (domrating.Outcome, error) {
	subjects := make([]graph.NodeID, 0, len(entities))
	for _, e := range entities {
		subjects = append(subjects, e.Value.Subject)
	}

	var g *graph.Graph
	if doc != nil {
		g = doc.Graph
	}
	scores := g.Subgraph(subjects).HITS(h.opts)

	out := make(domrating.Outcome, len(subjects))
	for _, id := range subjects {
		out[id] = scores.Hub[id]
	}
	return out, nil
}
