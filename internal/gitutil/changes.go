package gitutil

import (
	"os/exec"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"flowmap/internal/errors"
)

// FileChange summarizes the uncommitted edits to one file, so status output
// can warn that stored line numbers may be stale before any remapping runs.
type FileChange struct {
	Path         string `json:"path"`
	AddedLines   int    `json:"addedLines"`
	RemovedLines int    `json:"removedLines"`
	Renamed      bool   `json:"renamed"`
	Deleted      bool   `json:"deleted"`
}

// ChangedFiles parses `git diff HEAD` and reports per-file change summaries,
// keyed by the path relative to the repository root.
func ChangedFiles(root string) (map[string]FileChange, error) {
	cmd := exec.Command("git", "diff", "HEAD")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.New(errors.GitUnavailable, "git diff failed", err)
	}

	changes := make(map[string]FileChange)
	if len(out) == 0 {
		return changes, nil
	}

	fileDiffs, err := godiff.ParseMultiFileDiff(out)
	if err != nil {
		return nil, errors.New(errors.GitUnavailable, "failed to parse git diff output", err)
	}

	for _, fd := range fileDiffs {
		fc := FileChange{Path: cleanPath(fd.NewName)}
		if fd.NewName == "/dev/null" || fd.NewName == "" {
			fc.Deleted = true
			fc.Path = cleanPath(fd.OrigName)
		} else if old := cleanPath(fd.OrigName); old != "" && old != "/dev/null" && old != fc.Path {
			fc.Renamed = true
		}

		for _, hunk := range fd.Hunks {
			added, removed := countHunkLines(string(hunk.Body))
			fc.AddedLines += added
			fc.RemovedLines += removed
		}

		changes[fc.Path] = fc
	}

	return changes, nil
}

// countHunkLines tallies + and - lines in a hunk body.
func countHunkLines(body string) (added, removed int) {
	for _, line := range strings.Split(body, "\n") {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '+':
			added++
		case '-':
			removed++
		}
	}
	return added, removed
}

// cleanPath removes the a/ or b/ prefix from git diff paths.
func cleanPath(path string) string {
	if strings.HasPrefix(path, "a/") || strings.HasPrefix(path, "b/") {
		return path[2:]
	}
	return path
}
