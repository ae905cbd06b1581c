package analyzer

import (
	"fmt"

	"github.com/viant/callflow/analyzer/callgraph"
	"github.com/viant/callflow/inspector/graph"
	"github.com/viant/callflow/inspector/repository"
)

// UnitFailure represents a unit whose definition table could not be built
type UnitFailure struct {
	Unit *repository.Unit
	Err  error
}

func (f *UnitFailure) Error() string {
	return fmt.Sprintf("unit %v (%v): %v", f.Unit.Name, f.Unit.Path, f.Err)
}

func (f *UnitFailure) Unwrap() error {
	return f.Err
}

// Analysis represents a workspace analysis result
type Analysis struct {
	graph       *callgraph.Graph
	units       []*repository.Unit
	tables      []*graph.Table
	unitRoots   map[string]string
	entryPoints []string
	failures    []*UnitFailure
}

func newAnalysis(units []*repository.Unit) *Analysis {
	ret := &Analysis{
		units:     units,
		unitRoots: make(map[string]string),
		graph:     callgraph.NewGraph(),
	}
	for _, unit := range units {
		if _, ok := ret.unitRoots[unit.Name]; !ok {
			ret.unitRoots[unit.Name] = unit.Root
		}
	}
	return ret
}

func (a *Analysis) addFailure(unit *repository.Unit, err error) {
	a.failures = append(a.failures, &UnitFailure{Unit: unit, Err: err})
}

func (a *Analysis) addEntryPoint(name string) {
	for _, candidate := range a.entryPoints {
		if candidate == name {
			return
		}
	}
	a.entryPoints = append(a.entryPoints, name)
}

// Graph returns the merged call graph
func (a *Analysis) Graph() *callgraph.Graph {
	return a.graph
}

// NodeCount returns number of distinct definitions in the graph
func (a *Analysis) NodeCount() int {
	return a.graph.NodeCount()
}

// EdgeCount returns number of discovered calls
func (a *Analysis) EdgeCount() int {
	return a.graph.EdgeCount()
}

// Units returns analyzed units in discovery order
func (a *Analysis) Units() []*repository.Unit {
	return a.units
}

// UnitRoots returns unit name to unit root directory
func (a *Analysis) UnitRoots() map[string]string {
	ret := make(map[string]string, len(a.unitRoots))
	for name, root := range a.unitRoots {
		ret[name] = root
	}
	return ret
}

// EntryPoints returns qualified names of resolved entry definitions
func (a *Analysis) EntryPoints() []string {
	return a.entryPoints
}

// Failures returns units that could not be analyzed
func (a *Analysis) Failures() []*UnitFailure {
	return a.failures
}

// Tables returns definition tables of successfully built units
func (a *Analysis) Tables() []*graph.Table {
	return a.tables
}

// Definition returns a definition by qualified name
func (a *Analysis) Definition(name string) *graph.Definition {
	for _, table := range a.tables {
		if def := table.Lookup(name); def != nil {
			return def
		}
	}
	return nil
}

// UnitOf returns the unit owning a qualified name: its leading segment when it names a
// known unit, otherwise empty
func (a *Analysis) UnitOf(name string) string {
	segments := graph.SplitName(name)
	if len(segments) == 0 {
		return ""
	}
	if _, ok := a.unitRoots[segments[0]]; ok {
		return segments[0]
	}
	return ""
}

// CrossUnitCalls returns edges whose caller and callee belong to different units
func (a *Analysis) CrossUnitCalls() []*callgraph.Edge {
	var ret []*callgraph.Edge
	for _, edge := range a.graph.Edges {
		if a.UnitOf(edge.Caller) != a.UnitOf(edge.Callee) {
			ret = append(ret, edge)
		}
	}
	return ret
}
