package analyzer

import "fmt"

// IRNode represents a node in the intermediate representation graph.
type IRNode struct {
	ID         string                 // normalized identifier across services
	Type       string                 // node type (definition kind)
	Properties map[string]interface{} // additional properties (name, unit, file, etc.)
}

// IREdge represents an edge in the intermediate representation graph.
type IREdge struct {
	Source     string                 // source node ID
	Target     string                 // target node ID
	Type       string                 // edge type
	Properties map[string]interface{} // additional attributes (sequence, unit)
}

// IRGraph holds the nodes and edges for the intermediate representation.
type IRGraph struct {
	Nodes []IRNode
	Edges []IREdge
}

// EdgeTypeCall is the IR edge type of a call
const EdgeTypeCall = "CALLS"

// GraphExporter defines an interface to export an IRGraph to a storage backend (e.g., Neo4j).
type GraphExporter interface {
	Export(graph *IRGraph) error
}

// WithGraphExporter registers a GraphExporter to send the IRGraph after analysis.
func WithGraphExporter(exporter GraphExporter) Option {
	return func(a *Analyzer) {
		a.graphExporter = exporter
	}
}

// WithServiceName sets a service name for normalization across repositories.
func WithServiceName(name string) Option {
	return func(a *Analyzer) {
		a.serviceName = name
	}
}

// normalizeID builds a unique ID combining language, service name, and qualified name.
func normalizeID(a *Analyzer, name string) string {
	return fmt.Sprintf("rust:%s:%s", a.serviceName, name)
}

// BuildIRGraph constructs an IRGraph from an analysis.
func (a *Analyzer) BuildIRGraph(analysis *Analysis) *IRGraph {
	return buildIRGraph(a, analysis)
}

func buildIRGraph(a *Analyzer, analysis *Analysis) *IRGraph {
	graph := &IRGraph{}
	callGraph := analysis.Graph()
	for _, name := range callGraph.Nodes() {
		node := IRNode{
			ID:   normalizeID(a, name),
			Type: "Function",
			Properties: map[string]interface{}{
				"name":     name,
				"unit":     analysis.UnitOf(name),
				"language": "rust",
				"service":  a.serviceName,
			},
		}
		if def := analysis.Definition(name); def != nil {
			node.Type = string(def.Kind)
			node.Properties["simpleName"] = def.Name
			node.Properties["public"] = def.Public
			if def.Owner != "" {
				node.Properties["owner"] = def.Owner
			}
			if def.Location != nil {
				node.Properties["file"] = def.Location.Path
				node.Properties["line"] = def.Location.Start
			}
		}
		graph.Nodes = append(graph.Nodes, node)
	}
	for _, edge := range callGraph.Edges {
		graph.Edges = append(graph.Edges, IREdge{
			Source: normalizeID(a, edge.Caller),
			Target: normalizeID(a, edge.Callee),
			Type:   EdgeTypeCall,
			Properties: map[string]interface{}{
				"sequence": int64(edge.Sequence),
				"unit":     edge.Unit,
			},
		})
	}
	return graph
}
