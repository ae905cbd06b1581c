package analyzer

import (
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/callflow/inspector"
)

type Option func(*Analyzer)

// WithConfig sets analysis config
func WithConfig(config *Config) Option {
	return func(a *Analyzer) {
		if config != nil {
			a.config = config
		}
	}
}

// WithLogger sets a structured logger shared with inspectors
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithFileSystem sets the file system used to read sources
func WithFileSystem(fs afs.Service) Option {
	return func(a *Analyzer) {
		if fs != nil {
			a.fs = fs
		}
	}
}

// WithFactory sets the inspector factory building definition tables
func WithFactory(factory *inspector.Factory) Option {
	return func(a *Analyzer) {
		a.factory = factory
	}
}
