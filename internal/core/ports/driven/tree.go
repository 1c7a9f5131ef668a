package driven

import (
	"context"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

// TreeSource enumerates a file tree and reads file content. The
// coordinator walks the tree exactly once per run and reads each file at
// most once.
type TreeSource interface {
	// Walk enumerates the subtree rooted at root, including root itself,
	// in deterministic lexical order. Entries matched by exclusion
	// patterns come back flagged; excluded directories are not descended
	// into. Paths in the result are normalised.
	Walk(ctx context.Context, root string) ([]domain.PathEntry, error)

	// ReadFile returns a file's content as text.
	ReadFile(ctx context.Context, path string) (string, error)
}
