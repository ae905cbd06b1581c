package analyzer_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/callflow/analyzer"
	"github.com/viant/callflow/internal/fixture"
)

func TestLoadConfig(t *testing.T) {
	dir := fixture.Write(t, `
-- full.yaml --
entryPoints:
  - start
  - run
includeTests: true
maxDepth: 3
includeExternalUnits: true
mode: full
-- partial.yaml --
includeExamples: true
-- invalid.yaml --
mode: everything
-- malformed.yaml --
entryPoints: [main
`)
	tests := []struct {
		description string
		file        string
		expect      *analyzer.Config
		wantErr     bool
	}{
		{
			description: "all fields",
			file:        "full.yaml",
			expect: &analyzer.Config{
				EntryPoints:          []string{"start", "run"},
				IncludeTests:         true,
				MaxDepth:             3,
				IncludeExternalUnits: true,
				Mode:                 analyzer.ModeFull,
			},
		},
		{
			description: "defaults",
			file:        "partial.yaml",
			expect: &analyzer.Config{
				EntryPoints:     []string{"main"},
				IncludeExamples: true,
				Mode:            analyzer.ModeReachable,
			},
		},
		{description: "invalid mode", file: "invalid.yaml", wantErr: true},
		{description: "malformed", file: "malformed.yaml", wantErr: true},
		{description: "missing", file: "absent.yaml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			config, err := analyzer.LoadConfig(context.Background(), filepath.Join(dir, tt.file))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, tt.expect, config)
		})
	}
}

func TestConfig_InspectorConfig(t *testing.T) {
	config := analyzer.DefaultConfig()
	assert.False(t, config.InspectorConfig().IncludeTests)
	config.IncludeTests = true
	assert.True(t, config.InspectorConfig().IncludeTests)
}
