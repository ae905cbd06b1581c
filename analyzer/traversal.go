package analyzer

import (
	"log/slog"

	"github.com/viant/callflow/analyzer/callgraph"
	"github.com/viant/callflow/inspector/graph"
)

// callStack represents the definitions being expanded, in expansion order
type callStack struct {
	names []string
	index map[string]bool
}

func newCallStack() *callStack {
	return &callStack{index: make(map[string]bool)}
}

func (s *callStack) Push(name string) {
	s.names = append(s.names, name)
	s.index[name] = true
}

func (s *callStack) Pop() {
	if len(s.names) == 0 {
		return
	}
	last := len(s.names) - 1
	delete(s.index, s.names[last])
	s.names = s.names[:last]
}

func (s *callStack) Has(name string) bool {
	return s.index[name]
}

// traversal represents one unit expansion: its own table first, then
// the other units' tables when external resolution is enabled
type traversal struct {
	tables    []*graph.Table
	maxDepth  int
	callStack *callStack
	calls     *callgraph.UnitCalls
	logger    *slog.Logger
}

func newTraversal(tables []*graph.Table, maxDepth int, calls *callgraph.UnitCalls, logger *slog.Logger) *traversal {
	return &traversal{
		tables:    tables,
		maxDepth:  maxDepth,
		callStack: newCallStack(),
		calls:     calls,
		logger:    logger,
	}
}

// processDefinition expands name: every resolved call site emits an edge,
// then the callee is expanded unless it is already on the call stack
func (t *traversal) processDefinition(name string, depth int) {
	if t.callStack.Has(name) {
		return
	}
	t.callStack.Push(name)
	defer t.callStack.Pop()
	def, owner := t.lookup(name)
	if def == nil {
		return
	}
	for _, call := range def.Calls {
		callee := t.resolve(call, def, owner)
		if callee == nil {
			t.logger.Debug("unresolved call", "caller", name, "call", call.Raw(), "kind", call.Kind.String(), "line", call.Line)
			continue
		}
		t.calls.AddEdge(name, callee.QualifiedName)
		if t.maxDepth > 0 && depth+1 >= t.maxDepth {
			continue
		}
		t.processDefinition(callee.QualifiedName, depth+1)
	}
}

// processTable emits the calls of every definition in declaration order without recursion
func (t *traversal) processTable(table *graph.Table) {
	for _, def := range table.Definitions {
		t.calls.AddNode(def.QualifiedName)
		for _, call := range def.Calls {
			callee := t.resolve(call, def, table)
			if callee == nil {
				t.logger.Debug("unresolved call", "caller", def.QualifiedName, "call", call.Raw(), "kind", call.Kind.String(), "line", call.Line)
				continue
			}
			t.calls.AddEdge(def.QualifiedName, callee.QualifiedName)
		}
	}
}

// lookup returns a definition and the table holding it
func (t *traversal) lookup(name string) (*graph.Definition, *graph.Table) {
	for _, table := range t.tables {
		if def := table.Lookup(name); def != nil {
			return def, table
		}
	}
	return nil, nil
}

// resolve finds the definition a call site refers to, searching the caller's table first
func (t *traversal) resolve(call *graph.CallSite, def *graph.Definition, owner *graph.Table) *graph.Definition {
	var candidates []string
	if call.Kind == graph.CallDirect {
		candidates = Candidates(call.Raw(), def, owner.Unit)
	}
	for _, table := range t.searchOrder(owner) {
		if call.Kind == graph.CallMethod {
			if method := table.LookupMethod(call.Name); method != nil {
				return method
			}
			continue
		}
		for _, candidate := range candidates {
			if callee := table.Lookup(candidate); callee != nil {
				return callee
			}
		}
	}
	return nil
}

func (t *traversal) searchOrder(owner *graph.Table) []*graph.Table {
	if len(t.tables) == 0 || t.tables[0] == owner {
		return t.tables
	}
	ret := []*graph.Table{owner}
	for _, table := range t.tables {
		if table != owner {
			ret = append(ret, table)
		}
	}
	return ret
}
