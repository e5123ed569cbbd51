package scanner

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"flowmap/internal/logging"
)

func newTestLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Level:  logging.ErrorLevel,
		Format: logging.JSONFormat,
		Output: io.Discard,
	})
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
}

func TestScanFindsCommentsAcrossLanguages(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "svc/handler.go", "package svc\n\n// @flow login: form -> session\nfunc Handle() {}\n")
	writeFile(t, root, "web/app.py", "# @flow login: session -> home\nx = 1\n")
	writeFile(t, root, "README.md", "no tags here\n")

	result, err := NewScanner(root, newTestLogger()).Scan(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(result.Comments) != 2 {
		t.Fatalf("Expected 2 comments, got %d", len(result.Comments))
	}
	if result.ParseErrors != 0 {
		t.Errorf("Expected no parse errors, got %d", result.ParseErrors)
	}

	byPath := make(map[string]int)
	for _, c := range result.Comments {
		byPath[c.Location.Path] = c.Location.Line
	}
	if byPath["svc/handler.go"] != 3 {
		t.Errorf("Expected comment at svc/handler.go:3, got line %d", byPath["svc/handler.go"])
	}
	if byPath["web/app.py"] != 1 {
		t.Errorf("Expected comment at web/app.py:1, got line %d", byPath["web/app.py"])
	}
}

func TestScanCountsMalformedLines(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "// @flow broken without grammar\n// @flow ok: a -> b\n")

	result, err := NewScanner(root, newTestLogger()).Scan(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if result.ParseErrors != 1 {
		t.Errorf("Expected 1 parse error, got %d", result.ParseErrors)
	}
	if len(result.Comments) != 1 {
		t.Errorf("Expected the well-formed comment kept, got %d", len(result.Comments))
	}
}

func TestScanCapturesContextAtFileEdges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "edge.go", "// @flow f: a -> b\nsecond\nthird\n")

	result, err := NewScanner(root, newTestLogger()).Scan(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(result.Comments) != 1 {
		t.Fatalf("Expected 1 comment, got %d", len(result.Comments))
	}

	ctx := result.Comments[0].Context
	if len(ctx.Before) != 0 {
		t.Errorf("Expected no before-context at file start, got %d lines", len(ctx.Before))
	}
	if len(ctx.After) != 2 || ctx.After[0] != "second" || ctx.After[1] != "third" {
		t.Errorf("Expected after-context [second third], got %v", ctx.After)
	}
	if ctx.Line != "// @flow f: a -> b" {
		t.Errorf("Unexpected anchor line %q", ctx.Line)
	}
}

func TestScanCapturesContextWindow(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mid.go", "l1\nl2\nl3\n// @flow f: a -> b\nl5\nl6\nl7\n")

	result, err := NewScanner(root, newTestLogger()).Scan(context.Background(), Options{
		ContextBefore: 2,
		ContextAfter:  2,
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	ctx := result.Comments[0].Context
	if len(ctx.Before) != 2 || ctx.Before[0] != "l2" || ctx.Before[1] != "l3" {
		t.Errorf("Expected before-context [l2 l3], got %v", ctx.Before)
	}
	if len(ctx.After) != 2 || ctx.After[0] != "l5" || ctx.After[1] != "l6" {
		t.Errorf("Expected after-context [l5 l6], got %v", ctx.After)
	}
}

func TestScanSkipsExcludedAndHiddenPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep/a.go", "// @flow f: a -> b\n")
	writeFile(t, root, "generated/b.go", "// @flow f: b -> c\n")
	writeFile(t, root, ".git/c.go", "// @flow f: c -> d\n")
	writeFile(t, root, "node_modules/pkg/d.js", "// @flow f: d -> e\n")

	result, err := NewScanner(root, newTestLogger()).Scan(context.Background(), Options{
		ExcludePaths: []string{"generated/"},
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(result.Comments) != 1 {
		t.Fatalf("Expected 1 comment, got %d", len(result.Comments))
	}
	if result.Comments[0].Location.Path != "keep/a.go" {
		t.Errorf("Expected only keep/a.go scanned, got %s", result.Comments[0].Location.Path)
	}
}

func TestScanSkipsBinaryFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "blob.bin", "@flow f: a -> b\x00binary")

	result, err := NewScanner(root, newTestLogger()).Scan(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(result.Comments) != 0 {
		t.Errorf("Expected binary content skipped, got %d comments", len(result.Comments))
	}
}

func TestScanColumnIsTagOffset(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "col.go", "\t\t// @flow f: a -> b\n")

	result, err := NewScanner(root, newTestLogger()).Scan(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(result.Comments) != 1 {
		t.Fatalf("Expected 1 comment, got %d", len(result.Comments))
	}
	// Two tabs and "// " precede the tag.
	if got := result.Comments[0].Location.Column; got != 6 {
		t.Errorf("Expected column 6, got %d", got)
	}
}
