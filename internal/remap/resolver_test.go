package remap

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"flowmap/internal/flow"
	"flowmap/internal/logging"
	"flowmap/internal/match"
)

func newTestLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Level:  logging.ErrorLevel,
		Format: logging.JSONFormat,
		Output: io.Discard,
	})
}

// fakeLoader serves file content from maps. A missing key means absent, a
// non-nil err means collaborator failure.
type fakeLoader struct {
	revisions map[string]string // "commit:path" -> content
	current   map[string]string // path -> content
	oldErr    error
	newErr    error
}

func (f *fakeLoader) FileAtRevision(_ context.Context, commit, path string) (string, bool, error) {
	if f.oldErr != nil {
		return "", false, f.oldErr
	}
	content, ok := f.revisions[commit+":"+path]
	return content, ok, nil
}

func (f *fakeLoader) CurrentFile(_ context.Context, path string) (string, bool, error) {
	if f.newErr != nil {
		return "", false, f.newErr
	}
	content, ok := f.current[path]
	return content, ok, nil
}

func testAnnotation(line int) flow.Annotation {
	return flow.Annotation{
		ID:     "ann-1",
		Path:   "internal/auth/service.go",
		Commit: "abc123",
		Line:   line,
		Context: flow.Context{
			Before: []string{"\tuser, err := s.lookup(ctx, id)", "\tif err != nil {"},
			Line:   "\t\treturn nil, err",
			After:  []string{"\t}", "\treturn user, nil"},
		},
		Edge: flow.EdgeKey{FlowName: "login", CurrentNode: "lookup", NextNode: "issue"},
	}
}

func fileAround(ann flow.Annotation, headLines, tailLines []string) string {
	var lines []string
	lines = append(lines, headLines...)
	lines = append(lines, ann.Context.Snippet()...)
	lines = append(lines, tailLines...)
	return strings.Join(lines, "\n") + "\n"
}

func TestRemapAnnotationIdenticalFile(t *testing.T) {
	ann := testAnnotation(4) // one head line + two before lines, anchor at 4
	content := fileAround(ann, []string{"package auth"}, []string{"}"})

	r := NewResolver(newTestLogger())
	res := r.RemapAnnotation(context.Background(), ann, content, content)

	if res.Kind != flow.ResolutionAuto {
		t.Fatalf("Expected auto resolution, got %s (%s)", res.Kind, res.Reason)
	}
	if res.Line != 4 {
		t.Errorf("Expected line 4, got %d", res.Line)
	}
	if res.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %f", res.Confidence)
	}
	if res.Source != flow.SourceDiff {
		t.Errorf("Expected diff source, got %s", res.Source)
	}
}

func TestRemapAnnotationInsertionShiftsLine(t *testing.T) {
	ann := testAnnotation(4)
	oldContent := fileAround(ann, []string{"package auth"}, []string{"}"})
	inserted := []string{"package auth", "// a", "// b", "// c", "// d", "// e"}
	newContent := fileAround(ann, inserted, []string{"}"})

	r := NewResolver(newTestLogger())
	res := r.RemapAnnotation(context.Background(), ann, oldContent, newContent)

	if res.Kind != flow.ResolutionAuto {
		t.Fatalf("Expected auto resolution, got %s", res.Kind)
	}
	if res.Line != 9 {
		t.Errorf("Expected line shifted to 9, got %d", res.Line)
	}
	if res.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %f", res.Confidence)
	}
	if res.Source != flow.SourceDiff {
		t.Errorf("Expected diff source, got %s", res.Source)
	}
}

func TestRemapAnnotationSearchFallbackOnCrossedMove(t *testing.T) {
	// The annotated block and a longer shared run swap places. The diff keeps
	// the longer run and writes the block off as deleted, so only the staged
	// search can recover the verbatim copy.
	ann := testAnnotation(3)
	shared := []string{"shared line 1", "shared line 2", "shared line 3", "shared line 4", "shared line 5", "shared line 6"}

	var oldLines []string
	oldLines = append(oldLines, ann.Context.Snippet()...)
	oldLines = append(oldLines, shared...)
	oldContent := strings.Join(oldLines, "\n") + "\n"

	var newLines []string
	newLines = append(newLines, shared...)
	newLines = append(newLines, ann.Context.Snippet()...)
	newContent := strings.Join(newLines, "\n") + "\n"

	r := NewResolver(newTestLogger())
	res := r.RemapAnnotation(context.Background(), ann, oldContent, newContent)

	if res.Kind != flow.ResolutionAuto {
		t.Fatalf("Expected auto resolution, got %s", res.Kind)
	}
	if res.Line != 9 {
		t.Errorf("Expected anchor at line 9, got %d", res.Line)
	}
	if res.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %f", res.Confidence)
	}
	if res.Source != flow.SourceExactBlock {
		t.Errorf("Expected exact-snippet source, got %s", res.Source)
	}
}

func TestRemapAnnotationAmbiguousBecomesCandidates(t *testing.T) {
	// The stored line was rewritten: close enough to surface as a candidate,
	// not close enough to auto-resolve.
	ann := flow.Annotation{
		Path:    "internal/auth/service.go",
		Commit:  "abc123",
		Line:    2,
		Context: flow.Context{Line: "abcdefghij"},
		Edge:    flow.EdgeKey{FlowName: "login", CurrentNode: "a", NextNode: "b"},
	}
	oldContent := "header\nabcdefghij\nfooter\n"
	newContent := "header\nabcdefghxx\nfooter\n"

	r := NewResolver(newTestLogger())
	res := r.RemapAnnotation(context.Background(), ann, oldContent, newContent)

	if res.Kind != flow.ResolutionCandidates {
		t.Fatalf("Expected candidates resolution, got %s (%s)", res.Kind, res.Reason)
	}
	if len(res.Candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(res.Candidates))
	}
	c := res.Candidates[0]
	if c.Line != 2 {
		t.Errorf("Expected candidate at line 2, got %d", c.Line)
	}
	if c.Score < match.CandidateFloor || c.Score >= match.StrictThreshold {
		t.Errorf("Expected score in the candidate band, got %f", c.Score)
	}
}

func TestRemapAnnotationDeletedAnchorLineSkipsDiffPath(t *testing.T) {
	// Exactly the annotated line is removed; its before/after context stays
	// verbatim in place. The diff marks the stored line deleted, so the diff
	// fast path must not produce an auto outcome; the staged search takes
	// over and surfaces the surviving neighborhood as fuzzy candidates.
	ann := flow.Annotation{
		Path:   "internal/auth/service.go",
		Commit: "abc123",
		Line:   3,
		Context: flow.Context{
			Before: []string{"qwertyuiopqwertyuiop"},
			Line:   "aaaaaaaaaa",
			After:  []string{"zxcvbnmzxcvbnmzxcvbn"},
		},
		Edge: flow.EdgeKey{FlowName: "login", CurrentNode: "a", NextNode: "b"},
	}
	oldContent := "HEADERHEADERHEADER\nqwertyuiopqwertyuiop\naaaaaaaaaa\nzxcvbnmzxcvbnmzxcvbn\nTRAILERTRAILERTRAILER\n"
	newContent := "HEADERHEADERHEADER\nqwertyuiopqwertyuiop\nzxcvbnmzxcvbnmzxcvbn\nTRAILERTRAILERTRAILER\n"

	r := NewResolver(newTestLogger())
	res := r.RemapAnnotation(context.Background(), ann, oldContent, newContent)

	if res.Kind == flow.ResolutionAuto && res.Source == flow.SourceDiff {
		t.Fatalf("Expected no diff-path auto for a deleted line, got auto at %d", res.Line)
	}
	if res.Kind != flow.ResolutionCandidates {
		t.Fatalf("Expected candidates resolution, got %s (%s)", res.Kind, res.Reason)
	}
	for _, c := range res.Candidates {
		if c.Source != flow.SourceFuzzyWindow {
			t.Errorf("Expected fuzzy-window candidates only, got %s at line %d", c.Source, c.Line)
		}
		if c.Score >= match.StrictThreshold || c.Score < match.CandidateFloor {
			t.Errorf("Expected scores in the candidate band, got %f at line %d", c.Score, c.Line)
		}
	}
}

func TestRemapAnnotationCandidateFloorBoundary(t *testing.T) {
	// Bigram arithmetic pins both sides of the candidate floor. The stored
	// line has 10 bigrams (ab..jk); "abcdefghxyz" shares 7 of its own 10,
	// scoring exactly 2*7/20 = 0.70, and "abcdefgwxyz" shares 6, scoring
	// exactly 2*6/20 = 0.60. The first must appear as a candidate, the
	// second must never surface even though the fuzzy stage admits it.
	ann := flow.Annotation{
		Path:    "internal/auth/service.go",
		Commit:  "abc123",
		Line:    2,
		Context: flow.Context{Line: "abcdefghijk"},
		Edge:    flow.EdgeKey{FlowName: "login", CurrentNode: "a", NextNode: "b"},
	}
	oldContent := "header\nabcdefghijk\nfooter\n"
	newContent := "header\nabcdefghxyz\nfooter\nabcdefgwxyz\n"

	r := NewResolver(newTestLogger())
	res := r.RemapAnnotation(context.Background(), ann, oldContent, newContent)

	if res.Kind != flow.ResolutionCandidates {
		t.Fatalf("Expected candidates resolution, got %s (%s)", res.Kind, res.Reason)
	}
	if len(res.Candidates) != 1 {
		t.Fatalf("Expected exactly 1 candidate, got %d: %+v", len(res.Candidates), res.Candidates)
	}
	c := res.Candidates[0]
	if c.Line != 2 {
		t.Errorf("Expected the floor-scoring candidate at line 2, got %d", c.Line)
	}
	if c.Score != match.CandidateFloor {
		t.Errorf("Expected score exactly at the candidate floor, got %f", c.Score)
	}
	for _, got := range res.Candidates {
		if got.Score < match.CandidateFloor {
			t.Errorf("Candidate below the floor surfaced: line %d at %f", got.Line, got.Score)
		}
	}
}

func TestRemapAnnotationNoMatch(t *testing.T) {
	ann := testAnnotation(4)
	oldContent := fileAround(ann, []string{"package auth"}, []string{"}"})
	newContent := "completely\nunrelated\ncontent\n"

	r := NewResolver(newTestLogger())
	res := r.RemapAnnotation(context.Background(), ann, oldContent, newContent)

	if res.Kind != flow.ResolutionUnmapped {
		t.Fatalf("Expected unmapped resolution, got %s", res.Kind)
	}
	if res.Reason != flow.ReasonNoMatch {
		t.Errorf("Expected no-match reason, got %s", res.Reason)
	}
}

func TestRemapFlowFileMissing(t *testing.T) {
	ann := testAnnotation(4)
	loader := &fakeLoader{
		revisions: map[string]string{"abc123:" + ann.Path: fileAround(ann, nil, nil)},
		current:   map[string]string{},
	}

	r := NewResolver(newTestLogger())
	results := r.RemapFlow(context.Background(), flow.FlowRecord{
		Name:        "login",
		Annotations: []flow.Annotation{ann},
	}, loader)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	res := results[0].Resolution
	if res.Kind != flow.ResolutionUnmapped || res.Reason != flow.ReasonFileMissing {
		t.Errorf("Expected unmapped/file-missing, got %s/%s", res.Kind, res.Reason)
	}
}

func TestRemapFlowGitMissing(t *testing.T) {
	ann := testAnnotation(4)
	loader := &fakeLoader{
		revisions: map[string]string{},
		current:   map[string]string{ann.Path: fileAround(ann, nil, nil)},
	}

	r := NewResolver(newTestLogger())
	results := r.RemapFlow(context.Background(), flow.FlowRecord{
		Name:        "login",
		Annotations: []flow.Annotation{ann},
	}, loader)

	res := results[0].Resolution
	if res.Kind != flow.ResolutionUnmapped || res.Reason != flow.ReasonGitMissing {
		t.Errorf("Expected unmapped/git-missing, got %s/%s", res.Kind, res.Reason)
	}
}

func TestRemapFlowLoaderFailureBecomesNoMatchWithCause(t *testing.T) {
	ann := testAnnotation(4)
	loader := &fakeLoader{newErr: errors.New("disk on fire")}

	r := NewResolver(newTestLogger())
	results := r.RemapFlow(context.Background(), flow.FlowRecord{
		Name:        "login",
		Annotations: []flow.Annotation{ann},
	}, loader)

	res := results[0].Resolution
	if res.Kind != flow.ResolutionUnmapped || res.Reason != flow.ReasonNoMatch {
		t.Errorf("Expected unmapped/no-match, got %s/%s", res.Kind, res.Reason)
	}
	if res.Cause == "" {
		t.Error("Expected the loader failure to surface as a cause")
	}
}

func TestRemapFlowPreservesStoredOrder(t *testing.T) {
	first := testAnnotation(4)
	first.ID = "first"
	second := testAnnotation(4)
	second.ID = "second"
	second.Path = "internal/auth/other.go"

	content := fileAround(first, []string{"package auth"}, []string{"}"})
	loader := &fakeLoader{
		revisions: map[string]string{
			"abc123:" + first.Path:  content,
			"abc123:" + second.Path: content,
		},
		current: map[string]string{
			first.Path:  content,
			second.Path: content,
		},
	}

	r := NewResolver(newTestLogger())
	results := r.RemapFlow(context.Background(), flow.FlowRecord{
		Name:        "login",
		Annotations: []flow.Annotation{first, second},
	}, loader)

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Annotation.ID != "first" || results[1].Annotation.ID != "second" {
		t.Error("Expected results in stored annotation order")
	}
	for i, ar := range results {
		if ar.Resolution.Kind != flow.ResolutionAuto {
			t.Errorf("Result %d: expected auto, got %s", i, ar.Resolution.Kind)
		}
	}
}

func TestFindCandidatesWithoutFastPath(t *testing.T) {
	ann := testAnnotation(4)
	content := fileAround(ann, []string{"package auth"}, []string{"}"})

	r := NewResolver(newTestLogger())
	got := r.FindCandidates(context.Background(), ann.Path, content, ann.Context, "")

	if len(got) == 0 {
		t.Fatal("Expected candidates for content containing the snippet")
	}
	if got[0].Line != 4 || got[0].Score != 1.0 {
		t.Errorf("Expected exact hit at line 4, got line %d at %f", got[0].Line, got[0].Score)
	}
}
