package resolve

import (
	"github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
	"github.com/kailas-cloud/entlink/internal/domain/resolution"
)

// scoreFunc scores one candidate. Higher is better.
type scoreFunc func(id graph.NodeID) float64

// candidates returns the distinct members of a group in input order.
// Groups with fewer than two distinct members carry no ambiguity and yield nil.
func candidates(group document.AmbiguityGroup) []graph.NodeID {
	seen := make(map[graph.NodeID]struct{}, len(group.Candidates))
	out := make([]graph.NodeID, 0, len(group.Candidates))
	for _, id := range group.Candidates {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) < 2 {
		return nil
	}
	return out
}

// selectMax keeps every top scorer of the group as ham and the rest as spam.
// A strictly higher score replaces the current winners; an equal score joins them.
func selectMax(members []graph.NodeID, score scoreFunc) resolution.Outcome {
	var winners []graph.NodeID
	var best float64
	for i, id := range members {
		s := score(id)
		switch {
		case i == 0 || s > best:
			best = s
			winners = append(winners[:0], id)
		case s == best:
			winners = append(winners, id)
		}
	}
	return partition(members, winners)
}

// partition builds the per-group outcome. Without winners the group stays undecided.
func partition(members, winners []graph.NodeID) resolution.Outcome {
	out := resolution.New()
	if len(winners) == 0 {
		return out
	}
	for _, id := range winners {
		out.Accept(id)
	}
	for _, id := range members {
		out.Reject(id)
	}
	return out
}

// resolveByScore runs selectMax on every group and merges the per-group results.
func resolveByScore(groups []document.AmbiguityGroup, score scoreFunc) resolution.Outcome {
	out := resolution.New()
	for _, group := range groups {
		members := candidates(group)
		if members == nil {
			continue
		}
		out.Merge(selectMax(members, score))
	}
	return out
}
