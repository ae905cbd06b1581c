package rust

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/viant/afs"
	"github.com/viant/callflow/inspector/graph"
)

const defaultFilename = "source.rs"

// Option customizes an Inspector
type Option func(*Inspector)

// WithLogger sets inspector logger
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithFileSystem sets the file system used to read source files
func WithFileSystem(fs afs.Service) Option {
	return func(i *Inspector) {
		if fs != nil {
			i.fs = fs
		}
	}
}

// Inspector builds definition tables from Rust source using tree-sitter.
// An Inspector holds no per-unit state and can be shared between analyses.
type Inspector struct {
	config *graph.Config
	fs     afs.Service
	logger *slog.Logger
}

// NewInspector creates a new Rust Inspector with the provided configuration
func NewInspector(config *graph.Config, options ...Option) *Inspector {
	if config == nil {
		config = graph.DefaultConfig()
	}
	ret := &Inspector{
		config: config,
		fs:     afs.New(),
		logger: slog.Default(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// InspectSource parses Rust source from a byte slice into a definition table.
// Out-of-line module declarations (mod foo;) are not followed.
func (i *Inspector) InspectSource(ctx context.Context, src []byte, unit string) (*graph.Table, error) {
	b := i.newBuilder(graph.NewTable(unit), graph.NewVisitedSet())
	tree, err := parse(ctx, src, defaultFilename)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	file := &sourceFile{path: defaultFilename, src: src}
	if err = b.processItems(ctx, tree.RootNode(), file); err != nil {
		return nil, err
	}
	return b.table, nil
}

// InspectUnit builds the definition table of a unit rooted at the entry file,
// following out-of-line module declarations. Files already present in visited are skipped.
func (i *Inspector) InspectUnit(ctx context.Context, path string, unit string, visited *graph.VisitedSet) (*graph.Table, error) {
	if visited == nil {
		visited = graph.NewVisitedSet()
	}
	b := i.newBuilder(graph.NewTable(unit), visited)
	if err := b.inspectFile(ctx, path, true); err != nil {
		return b.table, err
	}
	return b.table, nil
}

// InspectTree registers every not yet visited .rs file under dir into table.
// Module scope is derived from the file location relative to dir.
func (i *Inspector) InspectTree(ctx context.Context, dir string, table *graph.Table, visited *graph.VisitedSet) error {
	if visited == nil {
		visited = graph.NewVisitedSet()
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (name == "target" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".rs" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	for _, path := range files {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		b := i.newBuilder(table, visited)
		for _, name := range modulePath(rel) {
			b.scope.Push(name)
		}
		if err = b.inspectFile(ctx, path, true); err != nil {
			return err
		}
	}
	return nil
}

func (i *Inspector) newBuilder(table *graph.Table, visited *graph.VisitedSet) *builder {
	return &builder{
		Inspector: i,
		table:     table,
		scope:     graph.NewScope(table.Unit),
		visited:   visited,
	}
}

// modulePath maps a source path relative to the crate source directory to module names,
// e.g. a/b.rs -> [a b], a/mod.rs -> [a], lib.rs -> []
func modulePath(rel string) []string {
	rel = filepath.ToSlash(strings.TrimSuffix(rel, ".rs"))
	parts := strings.Split(rel, "/")
	switch parts[len(parts)-1] {
	case "mod":
		parts = parts[:len(parts)-1]
	case "main", "lib":
		if len(parts) == 1 {
			parts = nil
		}
	}
	return parts
}

// parse parses Rust source; a tree containing syntax errors is reported as malformed
func parse(ctx context.Context, src []byte, path string) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(rust.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, &graph.SourceError{Path: path, Err: fmt.Errorf("%w: %w", graph.ErrMalformedSource, err)}
	}
	root := tree.RootNode()
	if root.HasError() {
		defer tree.Close()
		ret := &graph.SourceError{Path: path, Err: graph.ErrMalformedSource}
		if node := firstError(root); node != nil {
			point := node.StartPoint()
			ret.Line = int(point.Row) + 1
			ret.Column = int(point.Column) + 1
		}
		return nil, ret
	}
	return tree, nil
}

// firstError returns the first ERROR or MISSING node in document order
func firstError(node *sitter.Node) *sitter.Node {
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	for j := 0; j < int(node.ChildCount()); j++ {
		child := node.Child(j)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}
