// Package export turns a scan into stored flow records anchored at the HEAD
// commit, and writes portable bundles of the flow database.
package export

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"flowmap/internal/flow"
	"flowmap/internal/linemap"
	"flowmap/internal/logging"
	"flowmap/internal/symbols"
)

// Exporter builds annotation records from parsed comments.
type Exporter struct {
	repoRoot string
	tag      string
	logger   *logging.Logger
	indexer  *symbols.Indexer
}

// NewExporter creates an exporter for the repository at repoRoot. tag is the
// flow comment tag, needed to compute tag-less line indexes.
func NewExporter(repoRoot, tag string, logger *logging.Logger) *Exporter {
	return &Exporter{
		repoRoot: repoRoot,
		tag:      tag,
		logger:   logger,
		indexer:  symbols.NewIndexer(),
	}
}

// fileInfo caches per-file derivations shared by annotations of that file.
type fileInfo struct {
	lines []string
	index *symbols.Index
}

// BuildRecords converts the comments of one scan into flow records anchored
// at commit. Annotations keep scan order within each flow; flows come back
// sorted by name.
func (e *Exporter) BuildRecords(ctx context.Context, comments []flow.ParsedComment, commit, repoID string) []flow.FlowRecord {
	files := make(map[string]*fileInfo)
	byFlow := make(map[string]*flow.FlowRecord)
	var names []string

	for _, c := range comments {
		info := e.fileInfo(ctx, files, c.Location.Path)

		ann := flow.Annotation{
			ID:            uuid.NewString(),
			RepoID:        repoID,
			Path:          c.Location.Path,
			Commit:        commit,
			Line:          c.Location.Line,
			Column:        c.Location.Column,
			TaglessLine:   taglessLineIndex(info.lines, c.Location.Line, e.tag),
			Context:       c.Context,
			Edge:          c.Edge,
			CrossDeclared: c.CrossDeclared,
			RawComment:    c.RawComment,
		}
		if sym, ok := info.index.InnermostAt(c.Location.Line); ok {
			ann.SymbolPath = sym.Path
			ann.NodeType = sym.Kind
		}

		record, exists := byFlow[c.Edge.FlowName]
		if !exists {
			record = &flow.FlowRecord{Name: c.Edge.FlowName}
			byFlow[c.Edge.FlowName] = record
			names = append(names, c.Edge.FlowName)
		}
		record.Annotations = append(record.Annotations, ann)
		if c.CrossDeclared {
			record.DeclaredCross = true
			// Single-repository scope: effective cross-ness equals the
			// declaration.
			record.IsCross = true
		}
	}

	sort.Strings(names)
	out := make([]flow.FlowRecord, 0, len(names))
	for _, name := range names {
		out = append(out, *byFlow[name])
	}

	e.logger.Debug("Export records built", map[string]interface{}{
		"flows":       len(out),
		"annotations": len(comments),
		"commit":      commit,
	})

	return out
}

func (e *Exporter) fileInfo(ctx context.Context, cache map[string]*fileInfo, relPath string) *fileInfo {
	if info, ok := cache[relPath]; ok {
		return info
	}

	info := &fileInfo{index: symbols.NewIndex()}
	data, err := os.ReadFile(filepath.Join(e.repoRoot, relPath))
	if err == nil {
		info.lines = linemap.SplitLines(string(data))
		info.index = e.indexer.Build(ctx, relPath, data)
	} else {
		e.logger.Warn("Failed to re-read file during export", map[string]interface{}{
			"path":  relPath,
			"error": err.Error(),
		})
	}

	cache[relPath] = info
	return info
}

// taglessLineIndex is the annotation line's index when counting only lines
// that do not carry the flow tag. Insertion tooling uses it to re-place a
// comment even after sibling flow comments were added or removed above it.
func taglessLineIndex(lines []string, line int, tag string) int {
	if line > len(lines) {
		line = len(lines)
	}
	count := 0
	for i := 0; i < line; i++ {
		if !strings.Contains(lines[i], tag) {
			count++
		}
	}
	return count
}
