package analyzer

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/callflow/inspector/graph"
	"gopkg.in/yaml.v3"
)

// Mode selects how definitions are expanded
type Mode string

const (
	// ModeReachable expands definitions reachable from entry points
	ModeReachable Mode = "reachable"
	// ModeFull emits the calls of every definition without recursion
	ModeFull Mode = "full"
)

// Config represents analysis config
type Config struct {
	EntryPoints          []string `yaml:"entryPoints"`
	IncludeTests         bool     `yaml:"includeTests"`
	IncludeExamples      bool     `yaml:"includeExamples"`
	MaxDepth             int      `yaml:"maxDepth"` // 0 means unbounded
	IncludeExternalUnits bool     `yaml:"includeExternalUnits"`
	Mode                 Mode     `yaml:"mode"`
}

// DefaultConfig returns default analysis config
func DefaultConfig() *Config {
	return &Config{
		EntryPoints: []string{"main"},
		Mode:        ModeReachable,
	}
}

// Init sets defaults for unset fields
func (c *Config) Init() {
	if len(c.EntryPoints) == 0 {
		c.EntryPoints = []string{"main"}
	}
	if c.Mode == "" {
		c.Mode = ModeReachable
	}
}

// Validate checks config values
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeReachable, ModeFull:
	default:
		return fmt.Errorf("unsupported mode: %q", c.Mode)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("invalid maxDepth: %d", c.MaxDepth)
	}
	return nil
}

// InspectorConfig returns definition table builder config
func (c *Config) InspectorConfig() *graph.Config {
	return &graph.Config{IncludeTests: c.IncludeTests}
}

// LoadConfig loads YAML config from URL, unset fields take defaults
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", URL, err)
	}
	ret.Init()
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}
