package entlink

import (
	"context"
	"fmt"
	"time"

	batchuc "github.com/kailas-cloud/entlink/internal/usecase/batch"
)

// LoadKnowledge stores resources and the type-to-cluster map. Cached
// lookups are dropped afterwards.
func (c *Client) LoadKnowledge(ctx context.Context, resources []Resource, clusters map[int64]int64) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("load_knowledge", start, err) }()

	if err = c.loader.Put(ctx, resourcesToDomain(resources), clustersToDomain(clusters)); err != nil {
		return fmt.Errorf("load knowledge: %w", err)
	}
	return nil
}

// Purge removes the knowledge base and the term index under the client's key
// prefix. It returns the number of deleted keys.
func (c *Client) Purge(ctx context.Context) (_ int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("purge", start, err) }()

	kb, err := c.loader.Purge(ctx)
	if err != nil {
		return kb, fmt.Errorf("purge knowledge: %w", err)
	}
	terms, err := c.index.Purge(ctx)
	if err != nil {
		return kb + terms, fmt.Errorf("purge terms: %w", err)
	}
	return kb + terms, nil
}

// IndexTerms adds background documents to the IDF term index.
func (c *Client) IndexTerms(ctx context.Context, docs []TermDocument) []BatchResult {
	start := time.Now()

	in := make([]batchuc.TermDocument, len(docs))
	for i, d := range docs {
		in[i] = batchuc.TermDocument{ID: d.ID, Terms: d.Terms}
	}
	results := c.batchSvc.Index(ctx, in)

	out := make([]BatchResult, len(results))
	statuses := make([]Status, len(results))
	failed := 0
	for i, r := range results {
		out[i] = batchResultFromDomain(r)
		statuses[i] = StatusOK
		if !out[i].OK {
			statuses[i] = StatusError
			failed++
		}
	}
	c.obs.documents("index_terms", statuses)

	var err error
	if failed > 0 {
		err = fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	c.obs.observe("index_terms", start, err)
	return out
}

// IndexStats reports the term index size and open handles.
func (c *Client) IndexStats(ctx context.Context) (_ IndexStats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index_stats", start, err) }()

	st, err := c.index.Stats(ctx)
	if err != nil {
		return IndexStats{}, fmt.Errorf("index stats: %w", err)
	}
	return IndexStats{Documents: st.Documents, OpenHandles: st.OpenHandles}, nil
}
