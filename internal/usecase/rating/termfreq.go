package rating

import (
	"context"

	"github.com/kailas-cloud/entlink/internal/domain/document"
	domrating "github.com/kailas-cloud/entlink/internal/domain/rating"
)

// TermFrequency scores a mention by how often its first token's surface text
// occurs in the document, divided by the token count. Each mention is scored
// independently; a later mention of the same subject overwrites the earlier score.
type TermFrequency struct{}

// Name implements Rater.
func (TermFrequency) Name() string { return StrategyTermFrequency }

// Rate implements Rater.
func (TermFrequency) Rate(_ context.Context, doc *document.Document, entities []document.Mention) (domrating.Outcome, error) {
	out := make(domrating.Outcome, len(entities))
	if doc == nil || len(doc.Tokens) == 0 {
		return out, nil
	}

	counts := make(map[string]int, len(doc.Tokens))
	for _, t := range doc.Tokens {
		counts[t.Text]++
	}
	total := float64(len(doc.Tokens))

	for _, e := range entities {
		first, ok := doc.FirstToken(e)
		if !ok {
			continue
		}
		out[e.Value.Subject] = float64(counts[first.Text]) / total
	}
	return out, nil
}
