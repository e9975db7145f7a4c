package graph

import "slices"

// NodeID is the knowledge-base handle of a resource URI or literal.
type NodeID int64

// Edge is a typed relation between two nodes. Predicate is itself a node id.
type Edge struct {
	From      NodeID
	Predicate NodeID
	To        NodeID
}

// Graph is a directed multigraph over node ids.
// Nodes live in an arena; adjacency lists hold edge indices, not pointers.
type Graph struct {
	index map[NodeID]int
	nodes []NodeID
	edges []Edge
	out   [][]int
	in    [][]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{index: make(map[NodeID]int)}
}

// AddNode inserts id if absent and returns its arena position.
func (g *Graph) AddNode(id NodeID) int {
	if pos, ok := g.index[id]; ok {
		return pos
	}
	pos := len(g.nodes)
	g.index[id] = pos
	g.nodes = append(g.nodes, id)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return pos
}

// AddEdge inserts both endpoints and a labeled edge between them.
// Parallel edges and self loops are kept.
func (g *Graph) AddEdge(from, predicate, to NodeID) {
	f := g.AddNode(from)
	t := g.AddNode(to)
	e := len(g.edges)
	g.edges = append(g.edges, Edge{From: from, Predicate: predicate, To: to})
	g.out[f] = append(g.out[f], e)
	g.in[t] = append(g.in[t], e)
}

// Contains reports whether id is a node of the graph.
func (g *Graph) Contains(id NodeID) bool {
	if g == nil {
		return false
	}
	_, ok := g.index[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// Nodes returns node ids in insertion order.
func (g *Graph) Nodes() []NodeID {
	if g == nil {
		return nil
	}
	return slices.Clone(g.nodes)
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	if g == nil {
		return nil
	}
	return slices.Clone(g.edges)
}

// InDegree counts edges ending at id. Unknown ids have degree 0.
func (g *Graph) InDegree(id NodeID) int {
	if pos, ok := g.lookup(id); ok {
		return len(g.in[pos])
	}
	return 0
}

// OutDegree counts edges starting at id. Unknown ids have degree 0.
func (g *Graph) OutDegree(id NodeID) int {
	if pos, ok := g.lookup(id); ok {
		return len(g.out[pos])
	}
	return 0
}

// Degree is InDegree + OutDegree. A self loop counts twice.
func (g *Graph) Degree(id NodeID) int {
	return g.InDegree(id) + g.OutDegree(id)
}

// Subgraph returns the graph induced by nodes: every listed node is present
// (even if unknown to g) and only edges with both endpoints listed are kept.
func (g *Graph) Subgraph(nodes []NodeID) *Graph {
	sub := New()
	keep := make(map[NodeID]struct{}, len(nodes))
	for _, n := range nodes {
		sub.AddNode(n)
		keep[n] = struct{}{}
	}
	if g == nil {
		return sub
	}
	for _, e := range g.edges {
		_, okFrom := keep[e.From]
		_, okTo := keep[e.To]
		if okFrom && okTo {
			sub.AddEdge(e.From, e.Predicate, e.To)
		}
	}
	return sub
}

func (g *Graph) lookup(id NodeID) (int, bool) {
	if g == nil {
		return 0, false
	}
	pos, ok := g.index[id]
	return pos, ok
}
