package rating

import (
	"slices"

	"github.com/kailas-cloud/entlink/internal/domain/graph"
)

// Outcome maps a resolved subject to its relevance score. Ties are legal.
type Outcome map[graph.NodeID]float64

// Ranked returns subjects ordered by descending score, ascending id on ties.
func (o Outcome) Ranked() []graph.NodeID {
	ids := make([]graph.NodeID, 0, len(o))
	for id := range o {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b graph.NodeID) int {
		switch {
		case o[a] > o[b]:
			return -1
		case o[a] < o[b]:
			return 1
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
	return ids
}

// KeepMax stores score for id unless a higher score is already present.
func (o Outcome) KeepMax(id graph.NodeID, score float64) {
	if cur, ok := o[id]; ok && cur >= score {
		return
	}
	o[id] = score
}
