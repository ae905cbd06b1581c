package analyzer_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/callflow/analyzer"
	"github.com/viant/callflow/inspector/graph"
	"github.com/viant/callflow/inspector/repository"
	"github.com/viant/callflow/internal/fixture"
	"gopkg.in/yaml.v3"
)

type testCase struct {
	description string
	archive     string
	units       []*repository.Unit // Path and Root relative to archive root
	config      *analyzer.Config
	expectYaml  string
	expectNodes []string
}

func (c *testCase) analyze(t *testing.T) *analyzer.Analysis {
	t.Helper()
	dir := fixture.Write(t, c.archive)
	units := make([]*repository.Unit, 0, len(c.units))
	for _, unit := range c.units {
		clone := *unit
		clone.Path = filepath.Join(dir, filepath.FromSlash(unit.Path))
		clone.Root = filepath.Join(dir, filepath.FromSlash(unit.Root))
		units = append(units, &clone)
	}
	analysis, err := analyzer.New(analyzer.WithConfig(c.config)).Analyze(context.Background(), units)
	require.NoError(t, err)
	return analysis
}

func edgesYaml(t *testing.T, analysis *analyzer.Analysis) string {
	t.Helper()
	data, err := yaml.Marshal(analysis.Graph().Edges)
	require.NoError(t, err)
	return string(data)
}

func app(path string) []*repository.Unit {
	return []*repository.Unit{{Name: "app", Path: path, Root: "."}}
}

func TestAnalyzer_Analyze(t *testing.T) {
	tests := []testCase{
		{
			description: "zero calls",
			archive: `
-- src/main.rs --
fn main() {}
`,
			units:       app("src/main.rs"),
			expectYaml:  `[]`,
			expectNodes: []string{"app::main"},
		},
		{
			description: "main calls helper",
			archive: `
-- src/main.rs --
fn main() { helper(); }
fn helper() {}
`,
			units: app("src/main.rs"),
			expectYaml: `
- caller: app::main
  callee: app::helper
  sequence: 1
  unit: app
`,
			expectNodes: []string{"app::helper", "app::main"},
		},
		{
			description: "self recursion emits one edge",
			archive: `
-- src/main.rs --
fn main() { main(); }
`,
			units: app("src/main.rs"),
			expectYaml: `
- caller: app::main
  callee: app::main
  sequence: 1
  unit: app
`,
			expectNodes: []string{"app::main"},
		},
		{
			description: "mutual recursion",
			archive: `
-- src/main.rs --
fn main() { a(); }
fn a() { b(); }
fn b() { a(); }
`,
			units: app("src/main.rs"),
			expectYaml: `
- caller: app::main
  callee: app::a
  sequence: 1
  unit: app
- caller: app::a
  callee: app::b
  sequence: 2
  unit: app
- caller: app::b
  callee: app::a
  sequence: 3
  unit: app
`,
			expectNodes: []string{"app::a", "app::b", "app::main"},
		},
		{
			description: "repeated call sites are not deduplicated",
			archive: `
-- src/main.rs --
fn main() { log(); log(); }
fn log() {}
`,
			units: app("src/main.rs"),
			expectYaml: `
- caller: app::main
  callee: app::log
  sequence: 1
  unit: app
- caller: app::main
  callee: app::log
  sequence: 2
  unit: app
`,
			expectNodes: []string{"app::log", "app::main"},
		},
		{
			description: "methods resolved through type index",
			archive: `
-- src/main.rs --
struct Cache;
impl Cache {
    fn new() -> Self { Cache }
    fn get(&self) -> u32 { self.load() }
    fn load(&self) -> u32 { 1 }
}
fn main() {
    let c = Cache::new();
    c.get();
}
`,
			units: app("src/main.rs"),
			expectYaml: `
- caller: app::main
  callee: app::Cache::new
  sequence: 1
  unit: app
- caller: app::main
  callee: app::Cache::get
  sequence: 2
  unit: app
- caller: app::Cache::get
  callee: app::Cache::load
  sequence: 3
  unit: app
`,
			expectNodes: []string{"app::Cache::get", "app::Cache::load", "app::Cache::new", "app::main"},
		},
		{
			description: "module paths",
			archive: `
-- src/main.rs --
mod net;
fn main() { net::serve(); }
fn log() {}
-- src/net.rs --
pub fn serve() { self::listen(); crate::log(); }
fn listen() { super::log(); }
`,
			units: app("src/main.rs"),
			expectYaml: `
- caller: app::main
  callee: app::net::serve
  sequence: 1
  unit: app
- caller: app::net::serve
  callee: app::net::listen
  sequence: 2
  unit: app
- caller: app::net::listen
  callee: app::log
  sequence: 3
  unit: app
- caller: app::net::serve
  callee: app::log
  sequence: 4
  unit: app
`,
			expectNodes: []string{"app::log", "app::main", "app::net::listen", "app::net::serve"},
		},
		{
			description: "unresolved and unknown entries",
			archive: `
-- src/main.rs --
fn main() { std::process::exit(1); undefined(); }
`,
			units:       app("src/main.rs"),
			config:      &analyzer.Config{EntryPoints: []string{"main", "absent"}},
			expectYaml:  `[]`,
			expectNodes: []string{"app::main"},
		},
		{
			description: "max depth",
			archive: `
-- src/main.rs --
fn main() { a(); }
fn a() { b(); }
fn b() { c(); }
fn c() {}
`,
			units:  app("src/main.rs"),
			config: &analyzer.Config{MaxDepth: 2},
			expectYaml: `
- caller: app::main
  callee: app::a
  sequence: 1
  unit: app
- caller: app::a
  callee: app::b
  sequence: 2
  unit: app
`,
			expectNodes: []string{"app::a", "app::b", "app::main"},
		},
		{
			description: "custom entry point",
			archive: `
-- src/lib.rs --
pub fn start() { run(); }
fn run() {}
fn unused() { run(); }
`,
			units:  app("src/lib.rs"),
			config: &analyzer.Config{EntryPoints: []string{"start"}},
			expectYaml: `
- caller: app::start
  callee: app::run
  sequence: 1
  unit: app
`,
			expectNodes: []string{"app::run", "app::start"},
		},
		{
			description: "full mode",
			archive: `
-- src/main.rs --
fn main() { a(); }
fn a() {}
-- src/orphan.rs --
fn lost() { found(); }
fn found() {}
`,
			units:  app("src/main.rs"),
			config: &analyzer.Config{Mode: analyzer.ModeFull},
			expectYaml: `
- caller: app::main
  callee: app::a
  sequence: 1
  unit: app
- caller: app::orphan::lost
  callee: app::orphan::found
  sequence: 2
  unit: app
`,
			expectNodes: []string{"app::a", "app::main", "app::orphan::found", "app::orphan::lost"},
		},
		{
			description: "sequence continues across units",
			archive: `
-- a/src/main.rs --
fn main() { x(); }
fn x() {}
-- b/src/main.rs --
fn main() { y(); }
fn y() {}
`,
			units: []*repository.Unit{
				{Name: "a", Path: "a/src/main.rs", Root: "a"},
				{Name: "b", Path: "b/src/main.rs", Root: "b"},
			},
			expectYaml: `
- caller: a::main
  callee: a::x
  sequence: 1
  unit: a
- caller: b::main
  callee: b::y
  sequence: 2
  unit: b
`,
			expectNodes: []string{"a::main", "a::x", "b::main", "b::y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			analysis := tt.analyze(t)
			assert.YAMLEq(t, tt.expectYaml, edgesYaml(t, analysis))
			assert.EqualValues(t, tt.expectNodes, analysis.Graph().Nodes())
			assert.Empty(t, analysis.Failures())
		})
	}
}

const crossUnitArchive = `
-- a/src/main.rs --
fn main() { b::helper(); local(); }
fn local() {}
-- b/src/lib.rs --
pub fn helper() { inner(); }
fn inner() {}
`

var crossUnits = []*repository.Unit{
	{Name: "a", Path: "a/src/main.rs", Root: "a"},
	{Name: "b", Path: "b/src/lib.rs", Root: "b", Kind: repository.KindLib},
}

func TestAnalyzer_CrossUnit(t *testing.T) {
	t.Run("external units", func(t *testing.T) {
		tc := &testCase{archive: crossUnitArchive, units: crossUnits, config: &analyzer.Config{IncludeExternalUnits: true}}
		analysis := tc.analyze(t)
		assert.YAMLEq(t, `
- caller: a::main
  callee: b::helper
  sequence: 1
  unit: a
- caller: b::helper
  callee: b::inner
  sequence: 2
  unit: a
- caller: a::main
  callee: a::local
  sequence: 3
  unit: a
`, edgesYaml(t, analysis))
		cross := analysis.CrossUnitCalls()
		require.Len(t, cross, 1)
		assert.EqualValues(t, "a::main", cross[0].Caller)
		assert.EqualValues(t, "b::helper", cross[0].Callee)
		assert.EqualValues(t, []string{"a::main"}, analysis.EntryPoints())
		assert.EqualValues(t, 2, len(analysis.UnitRoots()))
		assert.EqualValues(t, "b", analysis.UnitOf("b::inner"))
		assert.EqualValues(t, "", analysis.UnitOf("std::process::exit"))
	})
	t.Run("own unit only", func(t *testing.T) {
		tc := &testCase{archive: crossUnitArchive, units: crossUnits}
		analysis := tc.analyze(t)
		assert.EqualValues(t, 1, analysis.EdgeCount())
		assert.Empty(t, analysis.CrossUnitCalls())
	})
}

func TestAnalyzer_Deterministic(t *testing.T) {
	tc := &testCase{archive: crossUnitArchive, units: crossUnits, config: &analyzer.Config{IncludeExternalUnits: true}}
	first := edgesYaml(t, tc.analyze(t))
	for i := 0; i < 3; i++ {
		assert.EqualValues(t, first, edgesYaml(t, tc.analyze(t)))
	}
}

func TestAnalyzer_SharedEntryFileParsedOnce(t *testing.T) {
	tc := &testCase{
		archive: `
-- src/main.rs --
fn main() { helper(); }
fn helper() {}
`,
		units: []*repository.Unit{
			{Name: "app", Path: "src/main.rs", Root: "."},
			{Name: "alias", Path: "src/main.rs", Root: "."},
		},
	}
	analysis := tc.analyze(t)
	assert.Empty(t, analysis.Failures())
	assert.EqualValues(t, 1, analysis.EdgeCount())
	assert.EqualValues(t, 2, analysis.NodeCount())
	require.Len(t, analysis.Tables(), 2)
	assert.EqualValues(t, 0, analysis.Tables()[1].Len())
}

func TestAnalyzer_UnitFailures(t *testing.T) {
	archive := `
-- good/src/main.rs --
fn main() { run(); }
fn run() {}
-- bad/src/main.rs --
fn oops( {
`
	good := &repository.Unit{Name: "good", Path: "good/src/main.rs", Root: "good"}
	bad := &repository.Unit{Name: "bad", Path: "bad/src/main.rs", Root: "bad"}

	t.Run("sibling continues", func(t *testing.T) {
		tc := &testCase{archive: archive, units: []*repository.Unit{bad, good}}
		analysis := tc.analyze(t)
		require.Len(t, analysis.Failures(), 1)
		failure := analysis.Failures()[0]
		assert.EqualValues(t, "bad", failure.Unit.Name)
		assert.True(t, errors.Is(failure, graph.ErrMalformedSource), "error = %v", failure)
		assert.EqualValues(t, 1, analysis.EdgeCount())
		assert.NotNil(t, analysis.Definition("good::run"))
	})

	t.Run("all units failed", func(t *testing.T) {
		dir := fixture.Write(t, archive)
		units := []*repository.Unit{{Name: "bad", Path: filepath.Join(dir, "bad", "src", "main.rs"), Root: filepath.Join(dir, "bad")}}
		_, err := analyzer.New().Analyze(context.Background(), units)
		assert.True(t, errors.Is(err, graph.ErrMalformedSource), "error = %v", err)
	})

	t.Run("cancelled", func(t *testing.T) {
		dir := fixture.Write(t, archive)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		units := []*repository.Unit{{Name: "good", Path: filepath.Join(dir, "good", "src", "main.rs"), Root: filepath.Join(dir, "good")}}
		_, err := analyzer.New().Analyze(ctx, units)
		assert.True(t, errors.Is(err, context.Canceled), "error = %v", err)
	})
}

func TestAnalyzer_InvalidConfig(t *testing.T) {
	_, err := analyzer.New(analyzer.WithConfig(&analyzer.Config{Mode: "everything"})).Analyze(context.Background(), nil)
	assert.Error(t, err)
}

type recordingExporter struct {
	graph *analyzer.IRGraph
}

func (r *recordingExporter) Export(graph *analyzer.IRGraph) error {
	r.graph = graph
	return nil
}

func TestAnalyzer_GraphExporter(t *testing.T) {
	dir := fixture.Write(t, `
-- src/main.rs --
struct Cache;
impl Cache { pub fn get(&self) {} }
fn main() { let c = Cache; c.get(); }
`)
	exporter := &recordingExporter{}
	units := app(filepath.Join(dir, "src", "main.rs"))
	_, err := analyzer.New(analyzer.WithGraphExporter(exporter), analyzer.WithServiceName("svc")).Analyze(context.Background(), units)
	require.NoError(t, err)
	require.NotNil(t, exporter.graph)
	require.Len(t, exporter.graph.Nodes, 2)
	require.Len(t, exporter.graph.Edges, 1)

	method := exporter.graph.Nodes[0]
	assert.EqualValues(t, "rust:svc:app::Cache::get", method.ID)
	assert.EqualValues(t, "Method", method.Type)
	assert.EqualValues(t, "Cache", method.Properties["owner"])
	assert.EqualValues(t, true, method.Properties["public"])
	assert.EqualValues(t, "app", method.Properties["unit"])

	edge := exporter.graph.Edges[0]
	assert.EqualValues(t, "rust:svc:app::main", edge.Source)
	assert.EqualValues(t, "rust:svc:app::Cache::get", edge.Target)
	assert.EqualValues(t, analyzer.EdgeTypeCall, edge.Type)
	assert.EqualValues(t, int64(1), edge.Properties["sequence"])
}
