package flow

// MatchSource tags where a candidate location came from.
type MatchSource string

const (
	SourceDiff        MatchSource = "diff"
	SourceExactBlock  MatchSource = "exact-snippet"
	SourceContextLine MatchSource = "context-line"
	SourceFuzzyWindow MatchSource = "fuzzy-window"
)

// MatchCandidate is a scored proposed location for an annotation's code.
type MatchCandidate struct {
	Line       int         `json:"line"`
	Score      float64     `json:"score"` // in [0,1]
	Source     MatchSource `json:"source"`
	Snippet    string      `json:"snippet,omitempty"`
	SymbolPath string      `json:"symbolPath,omitempty"`
}

// ResolutionKind discriminates the three remap outcomes.
type ResolutionKind string

const (
	// ResolutionAuto means one location cleared the strict threshold.
	ResolutionAuto ResolutionKind = "auto"
	// ResolutionCandidates means plausible locations exist but none is
	// trustworthy enough to pick automatically.
	ResolutionCandidates ResolutionKind = "candidates"
	// ResolutionUnmapped means no acceptable location was found.
	ResolutionUnmapped ResolutionKind = "unmapped"
)

// UnmappedReason explains an unmapped outcome.
type UnmappedReason string

const (
	ReasonNoMatch     UnmappedReason = "no-match"
	ReasonFileMissing UnmappedReason = "file-missing"
	ReasonGitMissing  UnmappedReason = "git-missing"
)

// Resolution is the tagged outcome of remapping one annotation. Exactly one
// variant's fields are populated, selected by Kind:
//
//	auto       -> Line, Confidence, Source
//	candidates -> Candidates (non-empty)
//	unmapped   -> Reason, optionally Cause
type Resolution struct {
	Kind ResolutionKind `json:"kind"`

	Line       int         `json:"line,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
	Source     MatchSource `json:"source,omitempty"`

	Candidates []MatchCandidate `json:"candidates,omitempty"`

	Reason UnmappedReason `json:"reason,omitempty"`
	// Cause carries diagnostic context when a collaborator failure was
	// folded into an unmapped outcome. Never nil-checked by callers for
	// control flow.
	Cause string `json:"cause,omitempty"`
}

// Auto builds the auto variant.
func Auto(line int, confidence float64, source MatchSource) Resolution {
	return Resolution{Kind: ResolutionAuto, Line: line, Confidence: confidence, Source: source}
}

// Candidates builds the candidates variant. The list must be non-empty.
func Candidates(list []MatchCandidate) Resolution {
	return Resolution{Kind: ResolutionCandidates, Candidates: list}
}

// Unmapped builds the unmapped variant.
func Unmapped(reason UnmappedReason) Resolution {
	return Resolution{Kind: ResolutionUnmapped, Reason: reason}
}

// UnmappedCause builds the unmapped variant with diagnostic context.
func UnmappedCause(reason UnmappedReason, cause error) Resolution {
	r := Resolution{Kind: ResolutionUnmapped, Reason: reason}
	if cause != nil {
		r.Cause = cause.Error()
	}
	return r
}
