package transducer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
)

// parseGroundTruth splits newline-separated URIs, keeping order and dropping blanks and duplicates.
func parseGroundTruth(text string) []string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// uris maps ids to URIs. Ids unknown to the knowledge base are dropped.
func uris(ctx context.Context, kb domain.KnowledgeBase, ids []graph.NodeID) ([]string, error) {
	if kb == nil {
		return nil, errors.New("comparison requires a knowledge base")
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		u, err := kb.URI(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("uri of %d: %w", id, err)
		}
		out = append(out, u)
	}
	return out, nil
}

func intersect(a, b []string) int {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	n := 0
	for _, s := range a {
		if _, ok := set[s]; ok {
			n++
			delete(set, s)
		}
	}
	return n
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
