package rust

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/viant/callflow/inspector/graph"
)

// extractCalls returns call sites of a body in pre-order: an outer call precedes
// calls nested in its receiver and arguments. Macro token trees are not parsed.
func extractCalls(body *sitter.Node, src []byte) []*graph.CallSite {
	var calls []*graph.CallSite
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node.Type() == "call_expression" {
			if call := parseCall(node, src); call != nil {
				calls = append(calls, call)
			}
		}
		for j := 0; j < int(node.NamedChildCount()); j++ {
			walk(node.NamedChild(j))
		}
	}
	walk(body)
	return calls
}

// parseCall converts a call_expression into a call site, nil if the callee is not a name
func parseCall(node *sitter.Node, src []byte) *graph.CallSite {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	call := callee(fn, src)
	if call != nil {
		call.Line = int(node.StartPoint().Row) + 1
	}
	return call
}

func callee(fn *sitter.Node, src []byte) *graph.CallSite {
	switch fn.Type() {
	case "identifier":
		name := fn.Content(src)
		return &graph.CallSite{Kind: graph.CallDirect, Path: []string{name}, Name: name}
	case "scoped_identifier":
		path := pathSegments(fn, src)
		if len(path) == 0 {
			return nil
		}
		return &graph.CallSite{Kind: graph.CallDirect, Path: path, Name: path[len(path)-1]}
	case "generic_function":
		inner := fn.ChildByFieldName("function")
		if inner == nil {
			return nil
		}
		return callee(inner, src)
	case "field_expression":
		field := fn.ChildByFieldName("field")
		if field == nil || field.Type() != "field_identifier" {
			return nil
		}
		return &graph.CallSite{Kind: graph.CallMethod, Name: field.Content(src)}
	}
	return nil
}

// pathSegments flattens a (scoped) path into segments, generic arguments dropped;
// returns nil for paths that cannot be named syntactically, e.g. <T as Trait>::f
func pathSegments(node *sitter.Node, src []byte) []string {
	if node == nil {
		return nil
	}
	switch node.Type() {
	case "scoped_identifier", "scoped_type_identifier":
		name := node.ChildByFieldName("name")
		if name == nil {
			return nil
		}
		var segments []string
		if path := node.ChildByFieldName("path"); path != nil {
			if segments = pathSegments(path, src); segments == nil {
				return nil
			}
		}
		return append(segments, name.Content(src))
	case "generic_type":
		return pathSegments(node.ChildByFieldName("type"), src)
	case "bracketed_type":
		return nil
	}
	if node.NamedChildCount() == 0 {
		return []string{node.Content(src)}
	}
	return nil
}
