package analyzer

import (
	"strings"

	"github.com/viant/callflow/inspector/graph"
)

// Resolve turns a raw call target into a qualified name: a raw name containing
// the separator is taken as already qualified, otherwise it is prefixed with context
func Resolve(rawName string, context []string) string {
	if strings.Contains(rawName, graph.Separator) {
		return rawName
	}
	return graph.Qualify(context, rawName)
}

// Candidates returns qualified names a raw call target made from def may refer to,
// most specific first. Path keywords (crate, self, super, Self) are rewritten
// against def's scope and unit.
func Candidates(rawName string, def *graph.Definition, unit string) []string {
	var ret []string
	seen := map[string]bool{}
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		ret = append(ret, name)
	}
	add(Resolve(rawName, def.Scope))

	segments := graph.SplitName(rawName)
	if len(segments) < 2 {
		return ret
	}
	var root []string
	if unit != "" {
		root = []string{unit}
	}
	switch segments[0] {
	case "crate":
		add(graph.Qualify(root, graph.JoinName(segments[1:]...)))
	case "self":
		add(graph.Qualify(def.Scope, graph.JoinName(segments[1:]...)))
	case "super":
		scope := def.Scope
		for len(segments) > 1 && segments[0] == "super" {
			if len(scope) > len(root) {
				scope = scope[:len(scope)-1]
			}
			segments = segments[1:]
		}
		add(graph.Qualify(scope, graph.JoinName(segments...)))
	case "Self":
		if owner := def.OwnerPath(); len(owner) > 0 {
			add(graph.Qualify(owner, graph.JoinName(segments[1:]...)))
		}
	default:
		add(graph.Qualify(def.Scope, rawName))
		add(graph.Qualify(root, rawName))
	}
	return ret
}
