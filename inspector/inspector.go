package inspector

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/callflow/inspector/graph"
	"github.com/viant/callflow/inspector/rust"
)

// Inspector builds definition tables from source code
type Inspector interface {
	// InspectSource parses source code from a byte slice into a definition table
	InspectSource(ctx context.Context, src []byte, unit string) (*graph.Table, error)

	// InspectUnit builds the definition table of a unit rooted at the entry file
	InspectUnit(ctx context.Context, path string, unit string, visited *graph.VisitedSet) (*graph.Table, error)

	// InspectTree registers every source file under dir not visited yet
	InspectTree(ctx context.Context, dir string, table *graph.Table, visited *graph.VisitedSet) error
}

// Factory creates appropriate inspectors based on language
type Factory struct {
	config  *graph.Config
	options []rust.Option
}

// NewFactory creates a new inspector factory with the given config
func NewFactory(config *graph.Config, options ...rust.Option) *Factory {
	if config == nil {
		config = graph.DefaultConfig()
	}
	return &Factory{
		config:  config,
		options: options,
	}
}

// GetInspector returns an appropriate inspector based on file extension
func (f *Factory) GetInspector(filename string) (Inspector, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".rs":
		return rust.NewInspector(f.config, f.options...), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// InspectUnit is a convenience method that gets the appropriate inspector and inspects the unit
func (f *Factory) InspectUnit(ctx context.Context, path string, unit string, visited *graph.VisitedSet) (*graph.Table, error) {
	inspector, err := f.GetInspector(path)
	if err != nil {
		return nil, err
	}
	return inspector.InspectUnit(ctx, path, unit, visited)
}
