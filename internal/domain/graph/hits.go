package graph

import "math"

// Default HITS parameters.
const (
	DefaultHITSIterations = 50
	DefaultHITSTolerance  = 1e-9
)

// HITSOptions bounds the mutual-reinforcement iteration.
type HITSOptions struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultHITSOptions returns the default iteration bounds.
func DefaultHITSOptions() HITSOptions {
	return HITSOptions{MaxIterations: DefaultHITSIterations, Tolerance: DefaultHITSTolerance}
}

func (o HITSOptions) normalized() HITSOptions {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultHITSIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultHITSTolerance
	}
	return o
}

// Scores holds the per-node hub and authority values of a HITS run.
type Scores struct {
	Hub       map[NodeID]float64
	Authority map[NodeID]float64
}

// HITS runs hub/authority iteration over the whole graph.
// Every node starts at 1. authority(n) sums the hub values of nodes pointing
// at n, hub(n) sums the authority values of nodes n points at; both vectors
// are L2-normalised after each step. Disconnected components are fine.
func (g *Graph) HITS(opts HITSOptions) Scores {
	opts = opts.normalized()
	n := g.Len()
	hub := make([]float64, n)
	auth := make([]float64, n)
	for i := range hub {
		hub[i] = 1
		auth[i] = 1
	}

	nextHub := make([]float64, n)
	nextAuth := make([]float64, n)
	for iter := 0; iter < opts.MaxIterations; iter++ {
		for i := range nextAuth {
			var s float64
			for _, e := range g.in[i] {
				s += hub[g.index[g.edges[e].From]]
			}
			nextAuth[i] = s
		}
		normalize(nextAuth)

		for i := range nextHub {
			var s float64
			for _, e := range g.out[i] {
				s += nextAuth[g.index[g.edges[e].To]]
			}
			nextHub[i] = s
		}
		normalize(nextHub)

		delta := l1Delta(auth, nextAuth) + l1Delta(hub, nextHub)
		auth, nextAuth = nextAuth, auth
		hub, nextHub = nextHub, hub
		if delta < opts.Tolerance {
			break
		}
	}

	scores := Scores{
		Hub:       make(map[NodeID]float64, n),
		Authority: make(map[NodeID]float64, n),
	}
	for i, id := range g.nodesOrNil() {
		scores.Hub[id] = hub[i]
		scores.Authority[id] = auth[i]
	}
	return scores
}

func (g *Graph) nodesOrNil() []NodeID {
	if g == nil {
		return nil
	}
	return g.nodes
}

// normalize scales v to unit L2 norm; a zero vector stays zero.
func normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
}

func l1Delta(a, b []float64) float64 {
	var d float64
	for i := range a {
		d += math.Abs(a[i] - b[i])
	}
	return d
}
