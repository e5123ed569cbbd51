package remap

import (
	"context"

	"flowmap/internal/linemap"
	"flowmap/internal/symbols"
)

// fileKey identifies one (historical commit, file) pair.
type fileKey struct {
	commit string
	path   string
}

// fileState holds everything annotations of one file share: both contents,
// the line map, and the new content's symbol index.
type fileState struct {
	oldText string
	oldOK   bool
	oldErr  error

	newText  string
	newOK    bool
	newErr   error
	newLines []string

	lineMap *linemap.LineMap
	index   *symbols.Index
}

// passCache is owned by exactly one hydration call and never reused across
// calls: working-tree content may change between saves, so every pass
// recomputes. This keeps passes independent and testable in isolation.
type passCache struct {
	loader  ContentLoader
	indexer *symbols.Indexer
	states  map[fileKey]*fileState
}

func newPassCache(loader ContentLoader, indexer *symbols.Indexer) *passCache {
	return &passCache{
		loader:  loader,
		indexer: indexer,
		states:  make(map[fileKey]*fileState),
	}
}

// state loads (once) the old and new content for key plus the derived line
// map and symbol index.
func (c *passCache) state(ctx context.Context, key fileKey) *fileState {
	if st, ok := c.states[key]; ok {
		return st
	}

	st := &fileState{}
	st.oldText, st.oldOK, st.oldErr = c.loader.FileAtRevision(ctx, key.commit, key.path)
	st.newText, st.newOK, st.newErr = c.loader.CurrentFile(ctx, key.path)

	if st.oldOK && st.newOK {
		st.newLines = linemap.SplitLines(st.newText)
		st.lineMap = linemap.Build(st.oldText, st.newText)
		st.index = c.indexer.Build(ctx, key.path, []byte(st.newText))
	}

	c.states[key] = st
	return st
}
