//go:build !cgo

package symbols

import "context"

// Indexer builds symbol indexes from source files.
// This is a stub implementation when CGO is not available.
type Indexer struct{}

// NewIndexer creates a new symbol indexer.
func NewIndexer() *Indexer {
	return &Indexer{}
}

// Build returns an empty index when CGO is not available; remapping degrades
// to whole-file search.
func (ix *Indexer) Build(ctx context.Context, path string, source []byte) *Index {
	return NewIndex()
}

// IsAvailable returns whether structural indexing is available.
func IsAvailable() bool {
	return false
}
