package transducer

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/usecase/rating"
)

// Rating scores the document's semantic entities. Entity order is preserved.
type Rating struct {
	rater    rating.Rater
	recorder Recorder
}

// NewRating creates the stage. recorder may be nil.
func NewRating(rater rating.Rater, recorder Recorder) *Rating {
	return &Rating{rater: rater, recorder: recorder}
}

// Name implements pipeline.Named.
func (r *Rating) Name() string { return NameRating + ":" + r.rater.Name() }

// Transduce implements pipeline.Transducer.
func (r *Rating) Transduce(ctx context.Context, doc *document.Document, _ domain.KnowledgeBase) error {
	if doc == nil {
		return domain.ErrInvalidDocument
	}

	resolved := make([]document.Mention, 0, len(doc.Entities))
	for _, e := range doc.Entities {
		if !e.Value.Unresolved() {
			resolved = append(resolved, e)
		}
	}

	out, err := r.rater.Rate(ctx, doc, resolved)
	if err != nil {
		return fmt.Errorf("rate %s: %w", r.rater.Name(), err)
	}
	doc.Ratings = out

	for i := range doc.Entities {
		v := &doc.Entities[i].Value
		score, ok := out[v.Subject]
		if v.Unresolved() {
			score, ok = 0, false
		}
		v.Score, v.Rated = score, ok
	}

	if r.recorder != nil {
		r.recorder.ObserveRating(r.rater.Name(), len(out))
	}
	return nil
}

// Compare reports overlap@k between the top rated subjects and the
// ground-truth ranking, k being the number of ground-truth URIs.
func (r *Rating) Compare(
	ctx context.Context, doc *document.Document, kb domain.KnowledgeBase, groundTruth string,
) (string, error) {
	if doc == nil {
		return "", domain.ErrInvalidDocument
	}
	expected := parseGroundTruth(groundTruth)
	k := len(expected)

	ranked := doc.Ratings.Ranked()
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	top, err := uris(ctx, kb, ranked)
	if err != nil {
		return "", err
	}

	hits := intersect(top, expected)
	return fmt.Sprintf("overlap@%d=%.4f hits=%d rated=%d", k, ratio(hits, k), hits, len(doc.Ratings)), nil
}

// Close releases the rater's resources, if any.
func (r *Rating) Close() error {
	if c, ok := r.rater.(rating.Closer); ok {
		return c.Close()
	}
	return nil
}
