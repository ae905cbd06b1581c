package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreadableSource is returned when a source file is missing or cannot be read
	ErrUnreadableSource = errors.New("unreadable source")
	// ErrMalformedSource is returned when the parser rejects a source file
	ErrMalformedSource = errors.New("malformed source")
)

// SourceError represents a source file failure with an optional position
type SourceError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *SourceError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
