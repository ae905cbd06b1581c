package graphviz_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/callflow/emitter/graphviz"
)

func TestRenderer_Missing(t *testing.T) {
	renderer := graphviz.New(graphviz.WithBinary("callflow-missing-dot"))
	assert.False(t, renderer.Installed(context.Background()))
	err := renderer.Render(context.Background(), "in.dot", "out.png", "png")
	assert.Error(t, err)
}

func TestRenderer_Render(t *testing.T) {
	renderer := graphviz.New()
	if !renderer.Installed(context.Background()) {
		t.Skip("graphviz is not installed")
	}
	dir := t.TempDir()
	dotFile := filepath.Join(dir, "call_graph.dot")
	require.NoError(t, os.WriteFile(dotFile, []byte("digraph {\n    0 -> 1;\n}\n"), 0o644))
	outFile := filepath.Join(dir, "call_graph.svg")
	require.NoError(t, renderer.Render(context.Background(), dotFile, outFile, "svg"))
	info, err := os.Stat(outFile)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
}
