package rust_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/callflow/inspector/graph"
	"github.com/viant/callflow/inspector/rust"
	"github.com/viant/callflow/internal/fixture"
)

func TestInspector_InspectSource(t *testing.T) {
	tests := []struct {
		name    string
		unit    string
		src     string
		want    []string
		methods map[string][]string
		wantErr bool
	}{
		{
			name: "free functions",
			src: `fn main() { helper(); }
fn helper() {}`,
			want: []string{"main", "helper"},
		},
		{
			name: "unit prefixed",
			unit: "app",
			src:  `pub fn run() {}`,
			want: []string{"app::run"},
		},
		{
			name: "inline modules",
			src: `mod net {
    pub fn dial() {}
    mod tcp {
        fn connect() {}
    }
}
fn main() {}`,
			want: []string{"net::dial", "net::tcp::connect", "main"},
		},
		{
			name: "impl blocks",
			src: `struct Cache;
impl Cache {
    fn new() -> Self { Cache }
    fn get(&self) {}
}
impl<T> Display for Wrapper<T> {
    fn fmt(&self) {}
}
mod store {
    impl Disk { fn flush(&self) {} }
}`,
			want: []string{"Cache::new", "Cache::get", "Wrapper::fmt", "store::Disk::flush"},
			methods: map[string][]string{
				"Cache":   {"Cache::new", "Cache::get"},
				"Wrapper": {"Wrapper::fmt"},
				"Disk":    {"store::Disk::flush"},
			},
		},
		{
			name: "test scopes excluded",
			src: `fn main() {}
#[test]
fn check() {}
#[cfg(test)]
mod tests {
    fn helper() {}
}
#[tokio::test]
async fn async_check() {}
#[cfg(not(test))]
fn release() {}`,
			want: []string{"main", "release"},
		},
		{
			name:    "malformed",
			src:     `fn main( {`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inspector := rust.NewInspector(nil)
			table, err := inspector.InspectSource(context.Background(), []byte(tt.src), tt.unit)
			if tt.wantErr {
				assert.True(t, errors.Is(err, graph.ErrMalformedSource), "error = %v", err)
				return
			}
			require.NoError(t, err)
			var got []string
			for _, def := range table.Definitions {
				got = append(got, def.QualifiedName)
			}
			assert.EqualValues(t, tt.want, got)
			for typeName, want := range tt.methods {
				var names []string
				for _, def := range table.Methods(typeName) {
					names = append(names, def.QualifiedName)
					assert.True(t, def.IsMethod())
					assert.EqualValues(t, typeName, def.Owner)
				}
				assert.EqualValues(t, want, names, typeName)
			}
		})
	}
}

func TestInspector_IncludeTests(t *testing.T) {
	src := `fn main() {}
#[cfg(test)]
mod tests {
    #[test]
    fn check() { super::main(); }
}`
	inspector := rust.NewInspector(&graph.Config{IncludeTests: true})
	table, err := inspector.InspectSource(context.Background(), []byte(src), "")
	require.NoError(t, err)
	assert.True(t, table.Has("main"))
	assert.True(t, table.Has("tests::check"))
}

func TestInspector_CallSites(t *testing.T) {
	src := `fn main() {
    let c = Cache::new();
    c.get(helper(1));
    crate::util::log();
    let v = parse::<u32>(x);
    items.iter().map(|i| transform(i)).collect::<Vec<_>>();
    println!("{}", hidden());
}`
	inspector := rust.NewInspector(nil)
	table, err := inspector.InspectSource(context.Background(), []byte(src), "")
	require.NoError(t, err)
	main := table.Lookup("main")
	require.NotNil(t, main)

	type site struct {
		kind graph.CallKind
		raw  string
	}
	var got []site
	for _, call := range main.Calls {
		got = append(got, site{kind: call.Kind, raw: call.Raw()})
	}
	assert.EqualValues(t, []site{
		{graph.CallDirect, "Cache::new"},
		{graph.CallMethod, "get"},
		{graph.CallDirect, "helper"},
		{graph.CallDirect, "crate::util::log"},
		{graph.CallDirect, "parse"},
		{graph.CallMethod, "collect"},
		{graph.CallMethod, "map"},
		{graph.CallMethod, "iter"},
		{graph.CallDirect, "transform"},
	}, got)
	assert.EqualValues(t, 2, main.Calls[0].Line)
}

func TestInspector_InspectUnit(t *testing.T) {
	dir := fixture.Write(t, `
-- src/main.rs --
mod config;
mod net;
mod missing;
fn main() { config::load(); }
-- src/config.rs --
mod parser;
pub fn load() { parser::parse(); }
-- src/config/parser.rs --
pub fn parse() {}
-- src/net/mod.rs --
mod tcp;
pub fn serve() {}
-- src/net/tcp.rs --
pub fn listen() {}
`)
	inspector := rust.NewInspector(nil)
	visited := graph.NewVisitedSet()
	table, err := inspector.InspectUnit(context.Background(), filepath.Join(dir, "src", "main.rs"), "app", visited)
	require.NoError(t, err)

	var got []string
	for _, def := range table.Definitions {
		got = append(got, def.QualifiedName)
	}
	assert.EqualValues(t, []string{
		"app::config::parser::parse",
		"app::config::load",
		"app::net::tcp::listen",
		"app::net::serve",
		"app::main",
	}, got)
	assert.EqualValues(t, 5, visited.Len())
	assert.EqualValues(t, 5, len(table.Files))
}

func TestInspector_VisitedFilesRegisteredOnce(t *testing.T) {
	dir := fixture.Write(t, `
-- src/lib.rs --
mod shared;
mod alias;
-- src/shared.rs --
pub fn work() {}
-- src/alias.rs --
#[path = "shared.rs"]
mod again;
`)
	inspector := rust.NewInspector(nil)
	visited := graph.NewVisitedSet()
	table, err := inspector.InspectUnit(context.Background(), filepath.Join(dir, "src", "lib.rs"), "", visited)
	require.NoError(t, err)
	assert.EqualValues(t, 1, table.Len())
	assert.True(t, table.Has("shared::work"))

	canonical, err := graph.Canonical(filepath.Join(dir, "src", "shared.rs"))
	require.NoError(t, err)
	assert.True(t, visited.Has(canonical))

	again, err := inspector.InspectUnit(context.Background(), filepath.Join(dir, "src", "lib.rs"), "", visited)
	require.NoError(t, err)
	assert.EqualValues(t, 0, again.Len())
}

func TestInspector_InspectUnitErrors(t *testing.T) {
	dir := fixture.Write(t, `
-- src/main.rs --
mod broken;
fn main() {}
-- src/broken.rs --
fn oops( {
`)
	inspector := rust.NewInspector(nil)

	_, err := inspector.InspectUnit(context.Background(), filepath.Join(dir, "src", "absent.rs"), "", nil)
	assert.True(t, errors.Is(err, graph.ErrUnreadableSource), "error = %v", err)

	_, err = inspector.InspectUnit(context.Background(), filepath.Join(dir, "src", "main.rs"), "", nil)
	assert.True(t, errors.Is(err, graph.ErrMalformedSource), "error = %v", err)
	var sourceErr *graph.SourceError
	require.True(t, errors.As(err, &sourceErr))
	assert.EqualValues(t, "broken.rs", filepath.Base(sourceErr.Path))
	assert.EqualValues(t, 1, sourceErr.Line)
}

func TestInspector_InspectTree(t *testing.T) {
	dir := fixture.Write(t, `
-- src/main.rs --
fn main() {}
-- src/orphan.rs --
fn lost() {}
-- src/extra/mod.rs --
fn nested() {}
-- src/extra/deep.rs --
fn deeper() {}
-- target/debug/build.rs --
fn generated() {}
`)
	inspector := rust.NewInspector(nil)
	visited := graph.NewVisitedSet()
	table, err := inspector.InspectUnit(context.Background(), filepath.Join(dir, "src", "main.rs"), "app", visited)
	require.NoError(t, err)
	require.NoError(t, inspector.InspectTree(context.Background(), filepath.Join(dir, "src"), table, visited))

	assert.True(t, table.Has("app::main"))
	assert.True(t, table.Has("app::orphan::lost"))
	assert.True(t, table.Has("app::extra::nested"))
	assert.True(t, table.Has("app::extra::deep::deeper"))
	assert.False(t, table.Has("app::generated"))
	assert.EqualValues(t, 4, table.Len())
}
