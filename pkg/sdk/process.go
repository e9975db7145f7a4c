package entlink

import (
	"context"
	"fmt"
	"time"

	domdoc "github.com/kailas-cloud/entlink/internal/domain/document"
)

// Process runs every configured stage over docs. Documents are processed
// concurrently; each result holds the per-stage outcomes and the annotations
// the stages produced. A failing stage makes its document partial, the
// remaining stages still run.
func (c *Client) Process(ctx context.Context, docs []Document) ([]Result, error) {
	return c.ProcessRange(ctx, docs, 0, -1)
}

// ProcessRange runs stages [from, to) over docs. A negative to means through
// the last stage.
func (c *Client) ProcessRange(ctx context.Context, docs []Document, from, to int) (_ []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("process", start, err) }()

	if len(docs) == 0 {
		return nil, fmt.Errorf("process: %w: no documents", ErrInvalidDocument)
	}

	in := make([]*domdoc.Document, len(docs))
	for i, d := range docs {
		in[i] = documentToDomain(d)
	}
	results := c.batchSvc.Process(ctx, in, from, to)

	out := make([]Result, len(results))
	statuses := make([]Status, len(results))
	for i, r := range results {
		out[i] = resultFromDomain(r, in[i])
		statuses[i] = out[i].Status
	}
	c.obs.documents("process", statuses)
	return out, nil
}

// Evaluate runs the stage at step on doc and compares its output against
// groundTruth, a newline-separated list of expected URIs.
func (c *Client) Evaluate(ctx context.Context, step int, doc Document, groundTruth string) (_ Report, err error) {
	start := time.Now()
	defer func() { c.obs.observe("evaluate", start, err) }()

	d := documentToDomain(doc)
	if err = d.Validate(); err != nil {
		return Report{}, fmt.Errorf("evaluate: %w: %w", ErrInvalidDocument, err)
	}
	rep, err := c.evaluator.Evaluate(ctx, step, d, groundTruth)
	if err != nil {
		return Report{}, fmt.Errorf("evaluate: %w", err)
	}
	return Report{
		Stage:   rep.Stage,
		Step:    rep.Step,
		Elapsed: rep.Elapsed,
		Result:  rep.Result,
	}, nil
}
