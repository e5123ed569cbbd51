// Package flow defines the data model shared by the scanner, the remapping
// engine, the status reconciler, and the storage layer.
package flow

import "fmt"

// EdgeKey is the stable identity of a flow comment: the declared edge,
// independent of where in the code it lives.
type EdgeKey struct {
	FlowName    string `json:"flowName"`
	CurrentNode string `json:"currentNode"`
	NextNode    string `json:"nextNode"`
}

// String formats the edge for logs and CLI output.
func (k EdgeKey) String() string {
	return fmt.Sprintf("%s: %s -> %s", k.FlowName, k.CurrentNode, k.NextNode)
}

// Location is a physical position in the working tree.
type Location struct {
	Path   string `json:"path"` // relative to the repo root
	Line   int    `json:"line"` // 1-based
	Column int    `json:"column"`
}

// Context is the textual neighborhood captured around a comment line.
// Before and After are ordered nearest-first relative to reading order:
// Before[0] is the line immediately above Line, After[0] immediately below.
type Context struct {
	Before []string `json:"before"`
	Line   string   `json:"line"`
	After  []string `json:"after"`
}

// Snippet joins the context into the ordered block of lines it was captured
// from: before lines, the anchor line, then after lines.
func (c Context) Snippet() []string {
	out := make([]string, 0, len(c.Before)+1+len(c.After))
	out = append(out, c.Before...)
	out = append(out, c.Line)
	out = append(out, c.After...)
	return out
}

// Annotation is one persisted edge declaration, captured at export time and
// immutable once stored. A re-export supersedes it rather than mutating it.
type Annotation struct {
	ID       string `json:"id"`
	RepoID   string `json:"repoId"`
	Path     string `json:"path"`
	Commit   string `json:"commit"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	// TaglessLine is the line index counting only lines that do not carry
	// the flow tag. The remapping engine never reads it; insertion tooling
	// uses it to re-place comments robustly.
	TaglessLine int `json:"taglessLine"`

	Context    Context `json:"context"`
	SymbolPath string  `json:"symbolPath,omitempty"`
	NodeType   string  `json:"nodeType,omitempty"`

	Edge          EdgeKey `json:"edge"`
	CrossDeclared bool    `json:"crossDeclared"`
	RawComment    string  `json:"rawComment"`
}

// FlowRecord is the stored collection of annotations sharing a flow name.
type FlowRecord struct {
	Name        string       `json:"name"`
	Annotations []Annotation `json:"annotations"`
	// DeclaredCross is true when any annotation declared the flow cross.
	DeclaredCross bool `json:"declaredCross"`
	// IsCross is the effective cross-ness. In single-repository scope it
	// equals DeclaredCross.
	IsCross bool `json:"isCross"`
}

// ParsedComment is a freshly scanned comment. Structurally it carries the
// same edge and context payload as an Annotation but has no stable id or
// commit association; it is recomputed on every scan.
type ParsedComment struct {
	Edge          EdgeKey  `json:"edge"`
	CrossDeclared bool     `json:"crossDeclared"`
	RawComment    string   `json:"rawComment"`
	Location      Location `json:"location"`
	Context       Context  `json:"context"`
}
