//go:build !cgo

package lang

import (
	"context"
	"errors"
)

// ErrNoCGO is returned when parsing is unavailable due to missing CGO.
var ErrNoCGO = errors.New("structural parsing requires CGO (tree-sitter)")

// Parser wraps tree-sitter parsing functionality.
// This is a stub implementation for non-CGO builds.
type Parser struct{}

// NewParser creates a new tree-sitter parser.
// Returns nil when CGO is disabled.
func NewParser() *Parser {
	return nil
}

// Parse is unavailable without CGO. The symbol indexer treats the error as
// "no structural outline" and callers fall back to whole-file search.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language) (interface{}, error) {
	return nil, ErrNoCGO
}

// IsAvailable returns whether tree-sitter parsing is available.
func IsAvailable() bool {
	return false
}
