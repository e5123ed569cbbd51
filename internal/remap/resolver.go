// Package remap classifies where a stored annotation's code lives in the
// current file. It tries a cheap diff-based translation of the stored line
// first, then falls back to a staged candidate search, and emits one of three
// outcomes per annotation: auto, candidates, or unmapped.
package remap

import (
	"context"
	"fmt"
	"strings"

	"flowmap/internal/flow"
	"flowmap/internal/linemap"
	"flowmap/internal/logging"
	"flowmap/internal/match"
	"flowmap/internal/symbols"
)

// Resolver remaps annotations against current file content.
type Resolver struct {
	indexer *symbols.Indexer
	logger  *logging.Logger
}

// NewResolver creates a resolver.
func NewResolver(logger *logging.Logger) *Resolver {
	return &Resolver{
		indexer: symbols.NewIndexer(),
		logger:  logger,
	}
}

// AnnotationResolution pairs an annotation with its remap outcome.
type AnnotationResolution struct {
	Annotation flow.Annotation `json:"annotation"`
	Resolution flow.Resolution `json:"resolution"`
}

// RemapAnnotation resolves one annotation given both file versions. Callers
// that already hold the texts use this directly; RemapFlow loads and caches
// them per (commit, path) pair instead.
func (r *Resolver) RemapAnnotation(ctx context.Context, ann flow.Annotation, oldText, newText string) flow.Resolution {
	st := &fileState{
		oldText:  oldText,
		oldOK:    true,
		newText:  newText,
		newOK:    true,
		newLines: linemap.SplitLines(newText),
		lineMap:  linemap.Build(oldText, newText),
		index:    r.indexer.Build(ctx, ann.Path, []byte(newText)),
	}
	return r.resolve(ann, st)
}

// RemapFlow hydrates a whole flow: every annotation is remapped in stored
// order, with content, line map, and symbol index loaded once per distinct
// (commit, path) pair. A collaborator failure on one file never aborts the
// processing of sibling annotations.
func (r *Resolver) RemapFlow(ctx context.Context, record flow.FlowRecord, loader ContentLoader) []AnnotationResolution {
	cache := newPassCache(loader, r.indexer)

	out := make([]AnnotationResolution, 0, len(record.Annotations))
	for _, ann := range record.Annotations {
		st := cache.state(ctx, fileKey{commit: ann.Commit, path: ann.Path})
		out = append(out, AnnotationResolution{
			Annotation: ann,
			Resolution: r.resolveGuarded(ann, st),
		})
	}

	r.logger.Debug("Flow hydrated", map[string]interface{}{
		"flow":        record.Name,
		"annotations": len(record.Annotations),
		"files":       len(cache.states),
	})

	return out
}

// FindCandidates runs the staged search directly against current content for
// one stored context, without the line-map fast path: there is no single
// target line when the caller is chasing a moved or missing edge.
func (r *Resolver) FindCandidates(ctx context.Context, path, content string, snippet flow.Context, symbolPath string) []flow.MatchCandidate {
	lines := linemap.SplitLines(content)
	index := r.indexer.Build(ctx, path, []byte(content))
	region := regionFor(index, symbolPath, lines)
	return match.Search(snippet, lines, region)
}

// resolveGuarded folds any panic out of a collaborator or malformed input
// into an unmapped outcome so one bad annotation cannot poison the pass.
func (r *Resolver) resolveGuarded(ann flow.Annotation, st *fileState) (res flow.Resolution) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Remap panicked", map[string]interface{}{
				"annotation": ann.ID,
				"path":       ann.Path,
				"panic":      fmt.Sprintf("%v", p),
			})
			res = flow.UnmappedCause(flow.ReasonNoMatch, fmt.Errorf("remap panic: %v", p))
		}
	}()
	return r.resolve(ann, st)
}

func (r *Resolver) resolve(ann flow.Annotation, st *fileState) flow.Resolution {
	// Input-unavailable outcomes are classifications, not errors.
	if !st.newOK {
		if st.newErr != nil {
			return flow.UnmappedCause(flow.ReasonNoMatch, st.newErr)
		}
		return flow.Unmapped(flow.ReasonFileMissing)
	}
	if !st.oldOK {
		if st.oldErr != nil {
			return flow.UnmappedCause(flow.ReasonNoMatch, st.oldErr)
		}
		return flow.Unmapped(flow.ReasonGitMissing)
	}

	snippet := ann.Context.Snippet()

	// Fast path: the stored physical line survived the diff. Commit-to-commit
	// identity is trusted more than textual resemblance, so a verified diff
	// hit alone can auto-resolve; anything weaker joins the candidate pool.
	var diffCandidate *flow.MatchCandidate
	if mapped, ok := st.lineMap.Lookup(ann.Line); ok {
		score := scoreAt(snippet, len(ann.Context.Before), st.newLines, mapped)
		if score >= match.StrictThreshold {
			return flow.Auto(mapped, score, flow.SourceDiff)
		}
		diffCandidate = &flow.MatchCandidate{
			Line:   mapped,
			Score:  score,
			Source: flow.SourceDiff,
		}
	}

	region := regionFor(st.index, ann.SymbolPath, st.newLines)
	pool := match.Search(ann.Context, st.newLines, region)
	if diffCandidate != nil {
		pool = append(pool, *diffCandidate)
	}
	merged := match.Dedupe(pool)

	if len(merged) == 0 {
		return flow.Unmapped(flow.ReasonNoMatch)
	}

	top := merged[0]
	switch {
	case top.Score >= match.StrictThreshold:
		return flow.Auto(top.Line, top.Score, top.Source)
	case top.Score >= match.CandidateFloor:
		// Members below the candidate floor never surface, not even as
		// low-confidence hints.
		return flow.Candidates(aboveFloor(merged))
	default:
		return flow.Unmapped(flow.ReasonNoMatch)
	}
}

// scoreAt scores the stored snippet against a window of identical shape
// anchored at line in the new file.
func scoreAt(snippet []string, anchorOffset int, newLines []string, line int) float64 {
	start := line - anchorOffset
	end := start + len(snippet) - 1
	if start < 1 {
		start = 1
	}
	if end > len(newLines) {
		end = len(newLines)
	}
	if start > end || line < 1 || line > len(newLines) {
		return 0.0
	}
	return match.Similarity(joinLines(snippet), joinLines(newLines[start-1:end]))
}

// regionFor restricts the search to the symbol's range when the stored path
// still resolves in the new index, else the whole file.
func regionFor(index *symbols.Index, symbolPath string, lines []string) match.Region {
	if symbolPath != "" {
		if r, ok := index.Range(symbolPath); ok {
			return match.Region{Start: r.Start, End: r.End, SymbolPath: symbolPath}
		}
	}
	return match.WholeFile(lines)
}

func aboveFloor(list []flow.MatchCandidate) []flow.MatchCandidate {
	out := make([]flow.MatchCandidate, 0, len(list))
	for _, c := range list {
		if c.Score >= match.CandidateFloor {
			out = append(out, c)
		}
	}
	return out
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
