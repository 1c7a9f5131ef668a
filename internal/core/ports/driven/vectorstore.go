package driven

import (
	"context"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

// VectorStore persists embedding records and answers similarity queries.
//
// Records are addressed two ways: by id for single-record operations, and
// by normalised path for tree-shaped operations. (Path, Kind) is unique
// per store; a second insert for the same pair fails with
// domain.ErrStorageConflict, never an overwrite.
//
// Implementations must tolerate mixed vector dimensions in one store:
// similarity search silently skips candidates whose dimensions disagree
// with the query.
type VectorStore interface {
	// Init prepares the backing storage. Safe to call more than once.
	Init(ctx context.Context) error

	// Add inserts a record and returns its id. When item.ID is empty the
	// store assigns one. Inserting an existing (path, kind) pair returns
	// domain.ErrStorageConflict and leaves the stored record untouched.
	Add(ctx context.Context, item *domain.EmbeddingItem) (string, error)

	// SearchSimilar returns up to limit records ranked by cosine
	// similarity against the query, descending. Ties keep insertion
	// order. Non-positive limits return no results. Candidates with a
	// different dimension than the query are skipped.
	SearchSimilar(ctx context.Context, query []float32, limit int) ([]domain.SearchResult, error)

	// GetByID returns the record with the given id, or domain.ErrNotFound.
	GetByID(ctx context.Context, id string) (*domain.EmbeddingItem, error)

	// GetByPath returns every kind stored at the path, in insertion
	// order. An unknown path returns an empty slice, not an error.
	GetByPath(ctx context.Context, path string) ([]domain.EmbeddingItem, error)

	// ListByPrefix returns every record whose path lies strictly below
	// the prefix directory, in insertion order. The prefix itself is
	// never included.
	ListByPrefix(ctx context.Context, prefix string) ([]domain.EmbeddingItem, error)

	// GetChildren returns records whose Parent reference equals parentID,
	// in insertion order.
	GetChildren(ctx context.Context, parentID string) ([]domain.EmbeddingItem, error)

	// Update applies the non-nil fields of upd to the record with the
	// given id. Unknown ids return domain.ErrNotFound.
	Update(ctx context.Context, id string, upd domain.ItemUpdate) error

	// Delete removes the record with the given id. Unknown ids return
	// domain.ErrNotFound.
	Delete(ctx context.Context, id string) error

	// DeleteByPath removes every kind stored at the path and returns how
	// many records went away. An unknown path removes nothing and
	// returns 0 without error.
	DeleteByPath(ctx context.Context, path string) (int, error)

	// Exists reports whether a record is stored for (path, kind).
	Exists(ctx context.Context, path string, kind domain.Kind) (bool, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int, error)

	// Clear removes every record.
	Clear(ctx context.Context) error

	// Close releases resources. The store is unusable afterwards.
	Close() error
}
