// Package neo4j exports call graphs into a Neo4j database using batched UNWIND queries
package neo4j

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/viant/callflow/analyzer"
)

const (
	cleanQuery = `MATCH (n:RustFn {service: $service}) DETACH DELETE n`
	indexQuery = `CREATE INDEX rust_fn_id IF NOT EXISTS FOR (n:RustFn) ON (n.id)`
	nodeQuery  = `UNWIND $batch AS row
		 MERGE (n:RustFn {id: row.id})
		 SET n += row.properties, n.kind = row.kind, n.run_id = $run`
	edgeQuery = `UNWIND $batch AS row
		 MATCH (caller:RustFn {id: row.source}), (callee:RustFn {id: row.target})
		 MERGE (caller)-[r:CALLS {sequence: row.sequence}]->(callee)
		 SET r.unit = row.unit, r.run_id = $run`
)

type runner func(ctx context.Context, cypher string, params map[string]any) error

// Option customizes an Exporter
type Option func(*Exporter)

// WithLogger sets exporter logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithService scopes exported nodes to a service; a re-export replaces the service's nodes
func WithService(service string) Option {
	return func(e *Exporter) {
		e.service = service
	}
}

// Exporter loads an IRGraph into Neo4j
type Exporter struct {
	ctx     context.Context
	driver  neo4j.DriverWithContext
	run     runner
	runID   string
	service string
	logger  *slog.Logger
}

// New connects to Neo4j and returns a ready-to-use exporter
func New(ctx context.Context, uri, user, password string, options ...Option) (*Exporter, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err = driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j %v: %w", uri, err)
	}
	ret := newExporter(ctx, options...)
	ret.driver = driver
	ret.run = func(ctx context.Context, cypher string, params map[string]any) error {
		_, err := neo4j.ExecuteQuery(ctx, driver, cypher, params, neo4j.EagerResultTransformer)
		return err
	}
	return ret, nil
}

func newExporter(ctx context.Context, options ...Option) *Exporter {
	ret := &Exporter{ctx: ctx, runID: uuid.NewString(), logger: slog.Default()}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// RunID returns identifier stamped on every exported node and relationship
func (e *Exporter) RunID() string {
	return e.runID
}

// Close releases the underlying driver
func (e *Exporter) Close() error {
	if e.driver == nil {
		return nil
	}
	return e.driver.Close(e.ctx)
}

// Export replaces previously exported nodes of the service with graph
func (e *Exporter) Export(graph *analyzer.IRGraph) error {
	if graph == nil {
		return nil
	}
	e.logger.Info("exporting call graph", "nodes", len(graph.Nodes), "edges", len(graph.Edges), "run", e.runID)
	steps := []struct {
		cypher string
		params map[string]any
	}{
		{cleanQuery, map[string]any{"service": e.service}},
		{indexQuery, nil},
		{nodeQuery, map[string]any{"batch": nodeBatch(graph), "run": e.runID}},
		{edgeQuery, map[string]any{"batch": edgeBatch(graph), "run": e.runID}},
	}
	for _, step := range steps {
		if err := e.run(e.ctx, step.cypher, step.params); err != nil {
			return fmt.Errorf("failed to export graph: %w", err)
		}
	}
	return nil
}

func nodeBatch(graph *analyzer.IRGraph) []map[string]any {
	batch := make([]map[string]any, 0, len(graph.Nodes))
	for _, node := range graph.Nodes {
		properties := make(map[string]any, len(node.Properties))
		for k, v := range node.Properties {
			properties[k] = v
		}
		batch = append(batch, map[string]any{
			"id":         node.ID,
			"kind":       node.Type,
			"properties": properties,
		})
	}
	return batch
}

func edgeBatch(graph *analyzer.IRGraph) []map[string]any {
	batch := make([]map[string]any, 0, len(graph.Edges))
	for _, edge := range graph.Edges {
		if edge.Type != analyzer.EdgeTypeCall {
			continue
		}
		batch = append(batch, map[string]any{
			"source":   edge.Source,
			"target":   edge.Target,
			"sequence": edge.Properties["sequence"],
			"unit":     edge.Properties["unit"],
		})
	}
	return batch
}
