package rating

import (
	"context"

	"github.com/kailas-cloud/entlink/internal/domain/document"
	domrating "github.com/kailas-cloud/entlink/internal/domain/rating"
)

// Position scores a mention by the document length minus the mention's start
// offset, both in characters, so earlier mentions score higher. A subject
// keeps the best score over all its mentions.
type Position struct{}

// Name implements Rater.
func (Position) Name() string { return StrategyPosition }

// Rate implements Rater.
func (Position) Rate(_ context.Context, doc *document.Document, entities []document.Mention) (domrating.Outcome, error) {
	out := make(domrating.Outcome, len(entities))
	if doc == nil {
		return out, nil
	}
	length := doc.Length()
	for _, e := range entities {
		offset, ok := doc.MentionOffset(e)
		if !ok {
			continue
		}
		out.KeepMax(e.Value.Subject, float64(length-offset))
	}
	return out, nil
}
