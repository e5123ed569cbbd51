// Package linemap translates historical line numbers into present-day ones.
//
// The map is built from a line-level longest-common-subsequence diff of the
// two file versions and is purely structural: it never looks at annotation
// content, so one map is computed per (old file, new file) pair and shared
// across every annotation touching that file.
package linemap

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Status classifies one historical line.
type Status int

const (
	// Mapped means the line persists unchanged at Entry.NewLine.
	Mapped Status = iota
	// Deleted means the line has no counterpart in the new text.
	Deleted
)

// Entry is the fate of one historical line.
type Entry struct {
	Status  Status
	NewLine int // 1-based, valid only when Status == Mapped
}

// LineMap holds one Entry per historical line. Mapped entries are
// monotonically non-decreasing in new-line number as the old-line number
// increases, by construction from an ordered diff.
type LineMap struct {
	entries []Entry // index 0 holds old line 1
}

// Build computes the line map between two full texts.
func Build(oldText, newText string) *LineMap {
	oldLines := splitLines(oldText)
	newLines := splitLines(newText)

	entries := make([]Entry, len(oldLines))
	for i := range entries {
		entries[i] = Entry{Status: Deleted}
	}

	// Autojunk off: it demotes frequently repeated lines (blanks, closing
	// braces) to junk in files of 200+ lines, which would report unchanged
	// lines as deleted.
	matcher := difflib.NewMatcherWithJunk(oldLines, newLines, false, nil)
	for _, op := range matcher.GetOpCodes() {
		if op.Tag != 'e' {
			// Replacements and deletions leave old lines deleted;
			// insertions consume no old-line slots.
			continue
		}
		offset := op.J1 - op.I1
		for i := op.I1; i < op.I2; i++ {
			entries[i] = Entry{Status: Mapped, NewLine: i + offset + 1}
		}
	}

	return &LineMap{entries: entries}
}

// OldLineCount returns the number of lines in the historical text.
func (m *LineMap) OldLineCount() int {
	return len(m.entries)
}

// Lookup returns the new 1-based line number for a historical 1-based line.
// ok is false when the line was deleted or out of range.
func (m *LineMap) Lookup(oldLine int) (int, bool) {
	if oldLine < 1 || oldLine > len(m.entries) {
		return 0, false
	}
	e := m.entries[oldLine-1]
	if e.Status != Mapped {
		return 0, false
	}
	return e.NewLine, true
}

// Entry returns the raw entry for a historical 1-based line.
func (m *LineMap) Entry(oldLine int) (Entry, bool) {
	if oldLine < 1 || oldLine > len(m.entries) {
		return Entry{}, false
	}
	return m.entries[oldLine-1], true
}

// splitLines splits text into lines without line terminators. A trailing
// newline does not produce a phantom final line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// SplitLines exposes the line-splitting convention shared by the line map
// and the candidate search, so both sides number lines identically.
func SplitLines(text string) []string {
	return splitLines(text)
}
