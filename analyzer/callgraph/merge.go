package callgraph

// Merge combines unit results into a single graph. Units are processed in the given
// order; a single counter starting at 1 assigns sequences, preserving each unit's
// internal edge order. Input edges are not modified.
func Merge(units ...*UnitCalls) *Graph {
	merged := NewGraph()
	var sequence uint64
	for _, unit := range units {
		if unit == nil {
			continue
		}
		for _, node := range unit.Nodes {
			merged.AddNode(node)
		}
		for _, edge := range unit.Edges {
			sequence++
			merged.AddNode(edge.Caller)
			merged.AddNode(edge.Callee)
			merged.Edges = append(merged.Edges, &Edge{
				Caller:   edge.Caller,
				Callee:   edge.Callee,
				Sequence: sequence,
				Unit:     edge.Unit,
			})
		}
	}
	return merged
}
