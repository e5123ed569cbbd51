// Package gitutil provides the version-control collaborator: HEAD commit,
// historical file content, and uncommitted-change detection, all via git
// subprocesses.
package gitutil

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"flowmap/internal/errors"
)

// IsRepository checks if the given path is inside a git repository.
func IsRepository(root string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = root
	return cmd.Run() == nil
}

// RepoRoot finds the repository root from the given directory.
func RepoRoot(startPath string) (string, error) {
	out, err := gitOutput(startPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", errors.New(errors.NotARepository, "not a git repository", err)
	}
	return strings.TrimSpace(out), nil
}

// HeadCommit returns the current HEAD commit id.
func HeadCommit(root string) (string, error) {
	out, err := gitOutput(root, "rev-parse", "HEAD")
	if err != nil {
		return "", errors.New(errors.GitUnavailable, "failed to resolve HEAD", err)
	}
	return strings.TrimSpace(out), nil
}

// RepoID derives a stable repository identifier: the origin remote URL when
// one exists, else the absolute root path, hashed.
func RepoID(root string) string {
	source, err := gitOutput(root, "config", "--get", "remote.origin.url")
	source = strings.TrimSpace(source)
	if err != nil || source == "" {
		if abs, absErr := filepath.Abs(root); absErr == nil {
			source = abs
		} else {
			source = root
		}
	}
	sum := sha256.Sum256([]byte(source))
	return fmt.Sprintf("%x", sum[:8])
}

// Loader implements the content-loading collaborator the remapping engine
// depends on.
type Loader struct {
	root string
}

// NewLoader creates a Loader for the repository at root.
func NewLoader(root string) *Loader {
	return &Loader{root: root}
}

// FileAtRevision returns the literal content of path at commit. A path or
// revision git does not know yields ok=false with no error; absence is a
// classification input, not a failure.
func (l *Loader) FileAtRevision(ctx context.Context, commit, path string) (string, bool, error) {
	cmd := exec.CommandContext(ctx, "git", "show", commit+":"+filepath.ToSlash(path))
	cmd.Dir = l.root

	out, err := cmd.Output()
	if err != nil {
		if _, isExit := err.(*exec.ExitError); isExit {
			return "", false, nil
		}
		return "", false, errors.New(errors.GitUnavailable, "git show failed", err)
	}
	return string(out), true, nil
}

// CurrentFile returns the working-tree content of path. A missing file is
// ok=false with no error.
func (l *Loader) CurrentFile(ctx context.Context, path string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(l.root, path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// gitOutput runs a git command in dir and returns stdout.
func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
