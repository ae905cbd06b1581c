package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/viant/afs"
	"github.com/viant/callflow/analyzer/callgraph"
	"github.com/viant/callflow/inspector"
	"github.com/viant/callflow/inspector/graph"
	"github.com/viant/callflow/inspector/repository"
	"github.com/viant/callflow/inspector/rust"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("callflow.analyzer")

// Analyzer builds a call graph across source units
type Analyzer struct {
	config        *Config
	fs            afs.Service
	logger        *slog.Logger
	factory       *inspector.Factory
	graphExporter GraphExporter
	serviceName   string
}

// New creates an analyzer
func New(options ...Option) *Analyzer {
	ret := &Analyzer{
		config: DefaultConfig(),
		fs:     afs.New(),
		logger: slog.Default(),
	}
	for _, option := range options {
		option(ret)
	}
	ret.config.Init()
	if ret.factory == nil {
		ret.factory = inspector.NewFactory(ret.config.InspectorConfig(),
			rust.WithLogger(ret.logger),
			rust.WithFileSystem(ret.fs))
	}
	return ret
}

// Config returns analysis config
func (a *Analyzer) Config() *Config {
	return a.config
}

// Analyze builds every unit's definition table, expands configured entry points
// unit by unit and merges discovered calls into one sequenced graph. A unit that
// fails to build is recorded in Analysis.Failures; an error is returned only when
// ctx is done or no unit could be built.
func (a *Analyzer) Analyze(ctx context.Context, units []*repository.Unit) (*Analysis, error) {
	ctx, span := tracer.Start(ctx, "callflow.Analyze", trace.WithAttributes(
		attribute.Int("units.count", len(units)),
		attribute.String("mode", string(a.config.Mode)),
	))
	defer span.End()
	if err := a.config.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	analysis := newAnalysis(units)
	visited := graph.NewVisitedSet()
	tables := make([]*graph.Table, len(units))
	for i, unit := range units {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "context cancelled")
			return nil, err
		}
		table, err := a.buildTable(ctx, unit, visited)
		if err != nil {
			a.logger.Warn("failed to analyze unit", "unit", unit.Name, "path", unit.Path, "error", err)
			analysis.addFailure(unit, err)
			continue
		}
		tables[i] = table
	}
	if len(units) > 0 && len(analysis.failures) == len(units) {
		errs := make([]error, 0, len(analysis.failures))
		for _, failure := range analysis.failures {
			errs = append(errs, failure)
		}
		err := fmt.Errorf("failed to analyze: all %d units failed: %w", len(units), errors.Join(errs...))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if a.config.Mode == ModeFull {
		a.inspectTrees(ctx, units, tables, visited)
	}

	var results []*callgraph.UnitCalls
	for i, unit := range units {
		if tables[i] == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "context cancelled")
			return nil, err
		}
		analysis.tables = append(analysis.tables, tables[i])
		results = append(results, a.traverse(ctx, analysis, unit, i, tables))
	}
	analysis.graph = callgraph.Merge(results...)
	span.SetAttributes(
		attribute.Int("nodes.count", analysis.NodeCount()),
		attribute.Int("edges.count", analysis.EdgeCount()),
		attribute.Int("failures.count", len(analysis.failures)),
	)

	if a.graphExporter != nil {
		if err := a.graphExporter.Export(buildIRGraph(a, analysis)); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to export graph: %w", err)
		}
	}
	return analysis, nil
}

// buildTable builds a unit definition table
func (a *Analyzer) buildTable(ctx context.Context, unit *repository.Unit, visited *graph.VisitedSet) (*graph.Table, error) {
	ctx, span := tracer.Start(ctx, "callflow.Unit", trace.WithAttributes(
		attribute.String("unit.name", unit.Name),
		attribute.String("unit.path", unit.Path),
		attribute.String("unit.kind", string(unit.Kind)),
	))
	defer span.End()
	table, err := a.factory.InspectUnit(ctx, unit.Path, unit.Name, visited)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("definitions.count", table.Len()),
		attribute.Int("files.count", len(table.Files)),
	)
	return table, nil
}

// inspectTrees registers source files no module declaration reached, for full mode
func (a *Analyzer) inspectTrees(ctx context.Context, units []*repository.Unit, tables []*graph.Table, visited *graph.VisitedSet) {
	for i, unit := range units {
		if tables[i] == nil || unit.Kind == repository.KindExample {
			continue
		}
		anInspector, err := a.factory.GetInspector(unit.Path)
		if err != nil {
			continue
		}
		if err = anInspector.InspectTree(ctx, filepath.Dir(unit.Path), tables[i], visited); err != nil {
			a.logger.Warn("failed to inspect unit tree", "unit", unit.Name, "error", err)
		}
	}
}

// traverse expands one unit; tables holds every unit table by unit position, nil for failed units
func (a *Analyzer) traverse(ctx context.Context, analysis *Analysis, unit *repository.Unit, position int, tables []*graph.Table) *callgraph.UnitCalls {
	calls := &callgraph.UnitCalls{Unit: unit.Name, Root: unit.Root}
	lookup := []*graph.Table{tables[position]}
	if a.config.IncludeExternalUnits {
		for i, table := range tables {
			if i != position && table != nil {
				lookup = append(lookup, table)
			}
		}
	}
	t := newTraversal(lookup, a.config.MaxDepth, calls, a.logger)
	if a.config.Mode == ModeFull {
		t.processTable(tables[position])
	} else {
		for _, entry := range a.config.EntryPoints {
			name := a.entryName(tables[position], entry)
			if name == "" {
				a.logger.Debug("entry point not found", "unit", unit.Name, "entry", entry)
				continue
			}
			analysis.addEntryPoint(name)
			calls.AddNode(name)
			t.processDefinition(name, 0)
		}
	}
	a.logger.Info("unit analyzed", "unit", unit.Name, "definitions", tables[position].Len(), "calls", len(calls.Edges))
	trace.SpanFromContext(ctx).AddEvent("unit.traversed", trace.WithAttributes(
		attribute.String("unit.name", unit.Name),
		attribute.Int("edges.count", len(calls.Edges)),
	))
	return calls
}

// entryName resolves a configured entry name against a unit table, empty if not defined
func (a *Analyzer) entryName(table *graph.Table, entry string) string {
	var root []string
	if table.Unit != "" {
		root = []string{table.Unit}
	}
	for _, candidate := range []string{Resolve(entry, root), graph.Qualify(root, entry)} {
		if table.Has(candidate) {
			return candidate
		}
	}
	return ""
}
