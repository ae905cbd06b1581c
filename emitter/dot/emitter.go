// Package dot renders a call graph as Graphviz DOT text with call order encoded in color
package dot

import (
	"fmt"
	"strings"

	"github.com/viant/callflow/analyzer/callgraph"
)

// Option customizes an Emitter
type Option func(*Emitter)

// WithPalette sets the ordered color palette
func WithPalette(palette ...string) Option {
	return func(e *Emitter) {
		if len(palette) > 0 {
			e.palette = palette
		}
	}
}

// Emitter renders call graphs; output depends only on the graph edges and palette
type Emitter struct {
	palette []string
}

// New creates an emitter
func New(options ...Option) *Emitter {
	ret := &Emitter{palette: Palette}
	for _, option := range options {
		option(ret)
	}
	return ret
}

type edgeKey struct {
	from, to int
}

// Emit renders graph as DOT text. Node ids are positions in lexicographic node order;
// edges are listed once per caller/callee pair, in sequence order, labelled with the
// pair's first sequence.
func (e *Emitter) Emit(graph *callgraph.Graph) ([]byte, error) {
	if graph == nil {
		return nil, fmt.Errorf("graph was nil")
	}
	nodes := graph.Nodes()
	ids := make(map[string]int, len(nodes))
	for i, name := range nodes {
		ids[name] = i
	}
	colors := e.NodeColors(graph)

	var sb strings.Builder
	sb.WriteString("digraph {\n")
	sb.WriteString("    node [shape=box];\n\n")
	for i, name := range nodes {
		fmt.Fprintf(&sb, "    %d [label=\"%s\", color=\"%s\", penwidth=2.0];\n", i, label(name), colors[name])
	}
	sb.WriteString("\n")

	seen := make(map[edgeKey]bool)
	for _, edge := range graph.Edges {
		from, ok := ids[edge.Caller]
		if !ok {
			return nil, fmt.Errorf("unknown caller node: %v", edge.Caller)
		}
		to, ok := ids[edge.Callee]
		if !ok {
			return nil, fmt.Errorf("unknown callee node: %v", edge.Callee)
		}
		key := edgeKey{from: from, to: to}
		if seen[key] {
			continue
		}
		seen[key] = true
		color := colors[edge.Callee]
		fmt.Fprintf(&sb, "    %d -> %d [label=\"%d\", color=\"%s\", fontcolor=\"%s\", penwidth=2.0];\n", from, to, edge.Sequence, color, color)
	}
	sb.WriteString("}\n")
	return []byte(sb.String()), nil
}

// NodeColors returns the color of every node: among incoming edges, the one with the
// largest sequence not after the node's first appearance is scaled into the palette.
// A node without such an edge is Neutral; a graph with at most one edge uses the first
// palette color (DefaultColor unless WithPalette is set).
func (e *Emitter) NodeColors(graph *callgraph.Graph) map[string]string {
	total := graph.EdgeCount()
	ret := make(map[string]string, graph.NodeCount())
	for _, name := range graph.Nodes() {
		first := graph.FirstAppearance(name)
		var chosen uint64
		for _, edge := range graph.Incoming(name) {
			if edge.Sequence <= first && edge.Sequence > chosen {
				chosen = edge.Sequence
			}
		}
		switch {
		case chosen == 0:
			ret[name] = Neutral
		case total <= 1:
			ret[name] = e.palette[0]
		default:
			ret[name] = e.palette[colorIndex(chosen, total, len(e.palette))]
		}
	}
	return ret
}

func label(name string) string {
	return strings.ReplaceAll(name, `"`, "")
}
