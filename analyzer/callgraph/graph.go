package callgraph

import "sort"

// Graph represents a combined call graph
type Graph struct {
	Edges []*Edge // ordered by sequence

	nodes map[string]bool
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]bool)}
}

// AddNode adds a node
func (g *Graph) AddNode(name string) {
	if g.nodes == nil {
		g.nodes = make(map[string]bool)
	}
	g.nodes[name] = true
}

// HasNode returns true if graph has a node
func (g *Graph) HasNode(name string) bool {
	return g.nodes[name]
}

// Nodes returns node names in lexicographic order; a node id is its position
func (g *Graph) Nodes() []string {
	ret := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// NodeCount returns number of nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns number of edges, duplicates of the same caller/callee pair included
func (g *Graph) EdgeCount() int {
	return len(g.Edges)
}

// Incoming returns edges targeting name in sequence order
func (g *Graph) Incoming(name string) []*Edge {
	var ret []*Edge
	for _, edge := range g.Edges {
		if edge.Callee == name {
			ret = append(ret, edge)
		}
	}
	return ret
}

// FirstAppearance returns the smallest sequence of an edge touching name, 0 if none
func (g *Graph) FirstAppearance(name string) uint64 {
	for _, edge := range g.Edges {
		if edge.Caller == name || edge.Callee == name {
			return edge.Sequence
		}
	}
	return 0
}
