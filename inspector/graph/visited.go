package graph

import (
	"path/filepath"
)

// VisitedSet tracks canonical paths of already parsed source files
type VisitedSet struct {
	paths map[string]bool
}

// NewVisitedSet creates an empty visited set
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{paths: make(map[string]bool)}
}

// Canonical returns an absolute, symlink resolved path
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// Visit marks path as visited; returns false if it was visited before
func (v *VisitedSet) Visit(canonical string) bool {
	if v.paths == nil {
		v.paths = make(map[string]bool)
	}
	if v.paths[canonical] {
		return false
	}
	v.paths[canonical] = true
	return true
}

// Has returns true if path was visited
func (v *VisitedSet) Has(canonical string) bool {
	return v.paths[canonical]
}

// Len returns number of visited paths
func (v *VisitedSet) Len() int {
	return len(v.paths)
}
