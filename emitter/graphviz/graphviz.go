// Package graphviz renders DOT files with the external Graphviz dot binary
package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const defaultBinary = "dot"

// Renderer invokes the dot binary
type Renderer struct {
	binary string
}

// Option customizes a Renderer
type Option func(*Renderer)

// WithBinary sets the dot executable name or path
func WithBinary(binary string) Option {
	return func(r *Renderer) {
		if binary != "" {
			r.binary = binary
		}
	}
}

// New creates a renderer
func New(options ...Option) *Renderer {
	ret := &Renderer{binary: defaultBinary}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Installed returns true if the dot binary can be executed
func (r *Renderer) Installed(ctx context.Context) bool {
	if _, err := exec.LookPath(r.binary); err != nil {
		return false
	}
	return exec.CommandContext(ctx, r.binary, "-V").Run() == nil
}

// Render converts dotFile into outFile using the given output format, e.g. png or svg
func (r *Renderer) Render(ctx context.Context, dotFile, outFile, format string) error {
	if format == "" {
		format = "png"
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, "-T"+format, dotFile, "-o", outFile)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("failed to render %v: %w: %s", dotFile, err, msg)
		}
		return fmt.Errorf("failed to render %v: %w", dotFile, err)
	}
	return nil
}
