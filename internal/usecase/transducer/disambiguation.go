package transducer

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/usecase/resolve"
)

// Disambiguation resolves the document's ambiguity groups and drops
// semantic entities whose subject was rejected.
type Disambiguation struct {
	resolver resolve.Resolver
	recorder Recorder
}

// NewDisambiguation creates the stage. recorder may be nil.
func NewDisambiguation(resolver resolve.Resolver, recorder Recorder) *Disambiguation {
	return &Disambiguation{resolver: resolver, recorder: recorder}
}

// Name implements pipeline.Named.
func (d *Disambiguation) Name() string { return NameDisambiguation + ":" + d.resolver.Name() }

// Transduce implements pipeline.Transducer.
func (d *Disambiguation) Transduce(ctx context.Context, doc *document.Document, kb domain.KnowledgeBase) error {
	if doc == nil {
		return domain.ErrInvalidDocument
	}
	g := doc.EnsureGraph()

	out, err := d.resolver.Resolve(ctx, g, doc.Groups, doc, kb)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", d.resolver.Name(), err)
	}
	doc.Resolution.Merge(out)

	kept := doc.Entities[:0]
	for _, e := range doc.Entities {
		if doc.Resolution.IsRejected(e.Value.Subject) {
			continue
		}
		kept = append(kept, e)
	}
	doc.Entities = kept

	if d.recorder != nil {
		d.recorder.ObserveResolution(d.resolver.Name(), len(out.Accepted()), len(out.Rejected()))
	}
	return nil
}

// Compare reports precision and recall of the accepted subjects against
// newline-separated ground-truth URIs.
func (d *Disambiguation) Compare(
	ctx context.Context, doc *document.Document, kb domain.KnowledgeBase, groundTruth string,
) (string, error) {
	if doc == nil {
		return "", domain.ErrInvalidDocument
	}
	expected := parseGroundTruth(groundTruth)
	predicted, err := uris(ctx, kb, doc.Resolution.Accepted())
	if err != nil {
		return "", err
	}

	tp := intersect(predicted, expected)
	return fmt.Sprintf("precision=%.4f recall=%.4f tp=%d predicted=%d expected=%d",
		ratio(tp, len(predicted)), ratio(tp, len(expected)), tp, len(predicted), len(expected)), nil
}
