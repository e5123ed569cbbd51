// Package status reconciles a flow's stored annotations against the comments
// found by the current scan. Identity is the edge tuple, never the location:
// the same edge at a different place is a move, the same edge twice in one
// scan is a duplicate, regardless of how well either location matches.
package status

import "flowmap/internal/flow"

// FlowStatus is the overall classification of one flow.
type FlowStatus string

const (
	// StatusLoaded means every stored edge is present at its stored location.
	StatusLoaded FlowStatus = "loaded"
	// StatusMoved means at least one edge is present but relocated.
	StatusMoved FlowStatus = "moved"
	// StatusMissing means at least one stored edge has no comment.
	StatusMissing FlowStatus = "missing"
	// StatusDuplicates means the scan declared some edge more than once.
	StatusDuplicates FlowStatus = "duplicates"
	// StatusPartial means counts disagree without a sharper diagnosis.
	StatusPartial FlowStatus = "partial"
)

// DuplicateEdge reports one edge declared at several locations in one scan.
type DuplicateEdge struct {
	Edge      flow.EdgeKey    `json:"edge"`
	Locations []flow.Location `json:"locations"`
}

// MovedEdge reports an edge found somewhere other than its stored location.
type MovedEdge struct {
	Edge          flow.EdgeKey  `json:"edge"`
	Stored        flow.Location `json:"stored"`
	StoredContext flow.Context  `json:"storedContext"`
	Current       flow.Location `json:"current"`
	CurrentContext flow.Context `json:"currentContext"`
}

// MissingEdge reports a stored edge absent from the scan, with enough context
// for a later on-demand candidate search.
type MissingEdge struct {
	Edge       flow.EdgeKey  `json:"edge"`
	Stored     flow.Location `json:"stored"`
	Context    flow.Context  `json:"context"`
	SymbolPath string        `json:"symbolPath,omitempty"`
}

// Report is the reconciliation result for one flow.
type Report struct {
	Flow    string     `json:"flow"`
	Status  FlowStatus `json:"status"`
	Present int        `json:"present"`
	Total   int        `json:"total"`
	Extras  int        `json:"extras"`
	// Dirty signals "re-export recommended" independent of the status label.
	Dirty bool `json:"dirty"`

	Duplicates []DuplicateEdge `json:"duplicates,omitempty"`
	Moved      []MovedEdge     `json:"moved,omitempty"`
	Missing    []MissingEdge   `json:"missing,omitempty"`
}

// ComputeFlowStatus reconciles the stored record with the current scan's
// comments for the same flow name. Comments for other flows are ignored.
func ComputeFlowStatus(record flow.FlowRecord, comments []flow.ParsedComment) Report {
	report := Report{
		Flow:  record.Name,
		Total: len(record.Annotations),
	}

	// Duplicate detection runs over current comments only, before any
	// matching, and one representative per edge feeds the rest of the pass
	// so duplicates cannot inflate loaded counts.
	reps := make(map[flow.EdgeKey]flow.ParsedComment)
	locations := make(map[flow.EdgeKey][]flow.Location)
	var order []flow.EdgeKey
	for _, c := range comments {
		if c.Edge.FlowName != record.Name {
			continue
		}
		if _, seen := reps[c.Edge]; !seen {
			reps[c.Edge] = c
			order = append(order, c.Edge)
		}
		locations[c.Edge] = append(locations[c.Edge], c.Location)
	}
	for _, edge := range order {
		if locs := locations[edge]; len(locs) > 1 {
			report.Duplicates = append(report.Duplicates, DuplicateEdge{
				Edge:      edge,
				Locations: locs,
			})
		}
	}

	matched := make(map[flow.EdgeKey]bool)
	for _, ann := range record.Annotations {
		rep, found := reps[ann.Edge]
		if !found {
			report.Missing = append(report.Missing, MissingEdge{
				Edge:       ann.Edge,
				Stored:     flow.Location{Path: ann.Path, Line: ann.Line, Column: ann.Column},
				Context:    ann.Context,
				SymbolPath: ann.SymbolPath,
			})
			continue
		}
		matched[ann.Edge] = true
		report.Present++

		if rep.Location.Path == ann.Path && rep.Location.Line == ann.Line {
			continue // loaded contribution
		}
		report.Moved = append(report.Moved, MovedEdge{
			Edge:           ann.Edge,
			Stored:         flow.Location{Path: ann.Path, Line: ann.Line, Column: ann.Column},
			StoredContext:  ann.Context,
			Current:        rep.Location,
			CurrentContext: rep.Context,
		})
	}

	// Extras: scanned edges with no stored counterpart. Counted but not
	// itemized; they become annotations on the next export.
	for _, edge := range order {
		if !matched[edge] {
			report.Extras++
		}
	}

	report.Status = classify(&report)
	report.Dirty = report.Present != report.Total || report.Extras > 0

	return report
}

// classify applies the fixed priority: correctness hazards first, the mild
// "partial" label last.
func classify(r *Report) FlowStatus {
	switch {
	case len(r.Duplicates) > 0:
		return StatusDuplicates
	case len(r.Missing) > 0:
		return StatusMissing
	case len(r.Moved) > 0:
		return StatusMoved
	case r.Present == r.Total && r.Extras == 0:
		return StatusLoaded
	default:
		return StatusPartial
	}
}
