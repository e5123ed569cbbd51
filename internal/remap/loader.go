package remap

import "context"

// ContentLoader supplies the two file versions the classifier compares. Both
// calls treat absence (renamed or deleted file, unknown revision) as a valid
// outcome, not an error; errors are reserved for collaborator failures.
type ContentLoader interface {
	// FileAtRevision returns the literal historical content of path at the
	// given commit. ok is false when the revision does not contain the path.
	FileAtRevision(ctx context.Context, commit, path string) (content string, ok bool, err error)

	// CurrentFile returns the working-tree content of path. ok is false when
	// the file does not exist.
	CurrentFile(ctx context.Context, path string) (content string, ok bool, err error)
}
