// Package match locates the best present-day positions for an annotation's
// captured context, using three independent strategies whose pooled results
// are deduplicated per target line and ranked by score.
package match

import (
	"sort"
	"strings"

	"flowmap/internal/flow"
)

// Fixed design constants. Diff-based remapping and merged candidates
// auto-resolve at the strict threshold; weaker matches surface as candidates
// down to the candidate floor; fuzzy hits below the fuzzy floor are not even
// considered.
const (
	StrictThreshold = 0.90
	CandidateFloor  = 0.70
	FuzzyFloor      = 0.60
	MaxCandidates   = 5
)

// Region is the line range of fileLines to search, 1-based inclusive.
// SymbolPath tags candidates with the scope that produced them.
type Region struct {
	Start      int
	End        int
	SymbolPath string
}

// WholeFile returns the region covering all of fileLines.
func WholeFile(fileLines []string) Region {
	return Region{Start: 1, End: len(fileLines)}
}

// Search runs all three strategies over the region and returns candidates
// deduplicated by target line (best score wins), sorted by descending score,
// capped at MaxCandidates. The strategies are never short-circuited; each can
// surface locations the others miss.
func Search(ctx flow.Context, fileLines []string, region Region) []flow.MatchCandidate {
	region = clamp(region, len(fileLines))
	if region.Start > region.End {
		return nil
	}

	snippet := ctx.Snippet()
	anchorOffset := len(ctx.Before) // anchor line's index within the snippet

	var pool []flow.MatchCandidate
	pool = append(pool, exactBlock(snippet, anchorOffset, fileLines, region)...)
	pool = append(pool, contextLine(ctx, snippet, anchorOffset, fileLines, region)...)
	pool = append(pool, fuzzyWindow(snippet, anchorOffset, fileLines, region)...)

	return Dedupe(pool)
}

// exactBlock slides the full snippet over the region; byte-for-byte matches
// score 1.0.
func exactBlock(snippet []string, anchorOffset int, fileLines []string, region Region) []flow.MatchCandidate {
	if len(snippet) == 0 {
		return nil
	}

	var out []flow.MatchCandidate
	for start := region.Start; start+len(snippet)-1 <= region.End; start++ {
		if !linesEqual(snippet, fileLines[start-1:start-1+len(snippet)]) {
			continue
		}
		line := start + anchorOffset
		out = append(out, flow.MatchCandidate{
			Line:       line,
			Score:      1.0,
			Source:     flow.SourceExactBlock,
			Snippet:    fileLines[line-1],
			SymbolPath: region.SymbolPath,
		})
	}
	return out
}

// contextLine finds every region line equal to the anchor line verbatim and
// scores a snippet-height window aligned on the match.
func contextLine(ctx flow.Context, snippet []string, anchorOffset int, fileLines []string, region Region) []flow.MatchCandidate {
	var out []flow.MatchCandidate
	for line := region.Start; line <= region.End; line++ {
		if fileLines[line-1] != ctx.Line {
			continue
		}
		win := window(fileLines, region, line-anchorOffset, len(snippet))
		score := Similarity(join(snippet), join(win))
		out = append(out, flow.MatchCandidate{
			Line:       line,
			Score:      score,
			Source:     flow.SourceContextLine,
			Snippet:    fileLines[line-1],
			SymbolPath: region.SymbolPath,
		})
	}
	return out
}

// fuzzyWindow slides a snippet-height window across every region position and
// keeps windows scoring at or above the fuzzy floor.
func fuzzyWindow(snippet []string, anchorOffset int, fileLines []string, region Region) []flow.MatchCandidate {
	if len(snippet) == 0 {
		return nil
	}

	joined := join(snippet)
	var out []flow.MatchCandidate
	for start := region.Start; start+len(snippet)-1 <= region.End; start++ {
		score := Similarity(joined, join(fileLines[start-1:start-1+len(snippet)]))
		if score < FuzzyFloor {
			continue
		}
		line := start + anchorOffset
		out = append(out, flow.MatchCandidate{
			Line:       line,
			Score:      score,
			Source:     flow.SourceFuzzyWindow,
			Snippet:    fileLines[line-1],
			SymbolPath: region.SymbolPath,
		})
	}
	return out
}

// Dedupe keeps the highest-scoring candidate per target line, sorts by
// descending score (line number breaks ties for determinism), and caps the
// list at MaxCandidates.
func Dedupe(pool []flow.MatchCandidate) []flow.MatchCandidate {
	best := make(map[int]flow.MatchCandidate, len(pool))
	for _, c := range pool {
		if prev, ok := best[c.Line]; ok && prev.Score >= c.Score {
			continue
		}
		best[c.Line] = c
	}

	out := make([]flow.MatchCandidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Line < out[j].Line
	})

	if len(out) > MaxCandidates {
		out = out[:MaxCandidates]
	}
	return out
}

// window extracts count lines starting at wantStart, clamped to the region.
// Windows at the region edges come back shorter rather than padded.
func window(fileLines []string, region Region, wantStart, count int) []string {
	start := wantStart
	if start < region.Start {
		start = region.Start
	}
	end := start + count - 1
	if end > region.End {
		end = region.End
	}
	if start > end {
		return nil
	}
	return fileLines[start-1 : end]
}

func clamp(region Region, lineCount int) Region {
	if region.Start < 1 {
		region.Start = 1
	}
	if region.End > lineCount {
		region.End = lineCount
	}
	return region
}

func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func join(lines []string) string {
	return strings.Join(lines, "\n")
}
