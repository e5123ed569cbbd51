// Package symbols builds a structural outline of a source file: every named
// function, method, constructor, accessor, and class declaration, keyed by
// its dotted ancestor path. The remapping engine uses the outline to restrict
// candidate search to the region of the annotation's enclosing symbol.
package symbols

import "strings"

// SymbolRange is a named structural region of a file. Lines are 1-based and
// inclusive. Nested symbols are strictly contained within their parent's
// range.
type SymbolRange struct {
	Path  string `json:"path"` // dotted ancestor chain, e.g. "Checkout.submit"
	Start int    `json:"start"`
	End   int    `json:"end"`
	Kind  string `json:"kind"` // "function", "method", "class", "type", "interface"
}

// Index maps dotted symbol paths to their ranges for one file.
//
// An empty index is a valid outcome (unsupported language, unparseable file,
// CGO disabled); callers degrade to whole-file search.
type Index struct {
	ranges  map[string]SymbolRange
	ordered []SymbolRange
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{ranges: make(map[string]SymbolRange)}
}

// add records a range. The first declaration wins when two symbols share a
// dotted path (overloads, split declarations).
func (ix *Index) add(r SymbolRange) {
	if _, exists := ix.ranges[r.Path]; exists {
		return
	}
	ix.ranges[r.Path] = r
	ix.ordered = append(ix.ordered, r)
}

// Len returns the number of indexed symbols.
func (ix *Index) Len() int {
	return len(ix.ranges)
}

// Range returns the range for a dotted symbol path.
func (ix *Index) Range(path string) (SymbolRange, bool) {
	r, ok := ix.ranges[path]
	return r, ok
}

// InnermostAt returns the most specific symbol containing line: among all
// ranges whose [Start, End] covers the line, the one with the longest dotted
// path. Returns false when no symbol contains the line.
func (ix *Index) InnermostAt(line int) (SymbolRange, bool) {
	var best SymbolRange
	found := false
	for _, r := range ix.ordered {
		if line < r.Start || line > r.End {
			continue
		}
		if !found || pathDepth(r.Path) > pathDepth(best.Path) {
			best = r
			found = true
		}
	}
	return best, found
}

// All returns every indexed range in declaration order.
func (ix *Index) All() []SymbolRange {
	out := make([]SymbolRange, len(ix.ordered))
	copy(out, ix.ordered)
	return out
}

func pathDepth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, ".") + 1
}
