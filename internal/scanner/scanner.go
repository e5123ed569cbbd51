// Package scanner discovers flow comments in the working tree. It is a text
// search, not a parser: any line carrying the configured tag in any file type
// is a hit, and the structured edge is pulled out of the line afterwards.
package scanner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"flowmap/internal/flow"
	"flowmap/internal/logging"
)

const (
	// DefaultTag marks flow comments in source.
	DefaultTag = "@flow"

	// maxFileSizeBytes keeps the scan from reading huge artifacts.
	maxFileSizeBytes = 1 << 20

	// sniffLen is how many leading bytes are checked for binary content.
	sniffLen = 8192
)

// Options configures a scan.
type Options struct {
	Tag           string
	Roots         []string // relative to RepoRoot; default "."
	ExcludePaths  []string // path prefixes relative to RepoRoot
	ContextBefore int
	ContextAfter  int
}

// Result is the outcome of one scan.
type Result struct {
	Comments     []flow.ParsedComment
	FilesScanned int
	ParseErrors  int
}

// Scanner walks a repository and extracts flow comments.
type Scanner struct {
	repoRoot string
	logger   *logging.Logger
}

// NewScanner creates a scanner rooted at the repository root.
func NewScanner(repoRoot string, logger *logging.Logger) *Scanner {
	return &Scanner{repoRoot: repoRoot, logger: logger}
}

// Scan walks the configured roots and returns every parsed flow comment in
// walk order. Unreadable files are skipped, a malformed tag line is counted
// and logged but never aborts the scan.
func (s *Scanner) Scan(ctx context.Context, opts Options) (*Result, error) {
	if opts.Tag == "" {
		opts.Tag = DefaultTag
	}
	if len(opts.Roots) == 0 {
		opts.Roots = []string{"."}
	}
	if opts.ContextBefore == 0 {
		opts.ContextBefore = 2
	}
	if opts.ContextAfter == 0 {
		opts.ContextAfter = 2
	}

	parser, err := newCommentParser(opts.Tag)
	if err != nil {
		return nil, fmt.Errorf("invalid tag %q: %w", opts.Tag, err)
	}

	result := &Result{}
	for _, root := range opts.Roots {
		absRoot := filepath.Join(s.repoRoot, root)
		err := filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil // skip unreadable entries
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			rel, relErr := filepath.Rel(s.repoRoot, path)
			if relErr != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)

			if info.IsDir() {
				if skipDir(info.Name()) || excluded(rel+"/", opts.ExcludePaths) {
					return filepath.SkipDir
				}
				return nil
			}

			if info.Size() > maxFileSizeBytes || excluded(rel, opts.ExcludePaths) {
				return nil
			}

			s.scanFile(path, rel, parser, opts, result)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.logger.Debug("Scan complete", map[string]interface{}{
		"files":    result.FilesScanned,
		"comments": len(result.Comments),
		"errors":   result.ParseErrors,
	})

	return result, nil
}

func (s *Scanner) scanFile(absPath, relPath string, parser *commentParser, opts Options, result *Result) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return
	}
	if isBinary(data) {
		return
	}
	result.FilesScanned++

	lines := toLines(data)
	for i, line := range lines {
		col := strings.Index(line, parser.tag)
		if col < 0 {
			continue
		}

		edge, cross, ok := parser.parse(line)
		if !ok {
			result.ParseErrors++
			s.logger.Warn("Malformed flow comment", map[string]interface{}{
				"path": relPath,
				"line": i + 1,
			})
			continue
		}

		result.Comments = append(result.Comments, flow.ParsedComment{
			Edge:          edge,
			CrossDeclared: cross,
			RawComment:    strings.TrimSpace(line[col:]),
			Location: flow.Location{
				Path:   relPath,
				Line:   i + 1,
				Column: col + 1,
			},
			Context: captureContext(lines, i, opts.ContextBefore, opts.ContextAfter),
		})
	}
}

// captureContext copies the surrounding lines verbatim. Before and After
// shrink at file edges instead of padding.
func captureContext(lines []string, index, before, after int) flow.Context {
	start := index - before
	if start < 0 {
		start = 0
	}
	end := index + after
	if end > len(lines)-1 {
		end = len(lines) - 1
	}

	c := flow.Context{Line: lines[index]}
	c.Before = append(c.Before, lines[start:index]...)
	c.After = append(c.After, lines[index+1:end+1]...)
	return c
}

func toLines(data []byte) []string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." {
		return true
	}
	switch name {
	case "node_modules", "vendor", "__pycache__", "dist", "build":
		return true
	}
	return false
}

func excluded(rel string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(rel, p) {
			return true
		}
	}
	return false
}

func isBinary(data []byte) bool {
	n := len(data)
	if n > sniffLen {
		n = sniffLen
	}
	return bytes.IndexByte(data[:n], 0) >= 0
}
