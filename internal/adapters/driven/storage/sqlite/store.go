package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/canopy-labs/canopy-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/canopy-labs/canopy-cli/internal/core/domain"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed implementation of driven.VectorStore. Vectors
// are stored as little-endian float32 blobs and scored in process, so the
// database needs no vector extension. Rowid order is insertion order,
// which is also the tie order for equal similarities.
type Store struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.canopy/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".canopy", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection. The store refuses further
// operations with ErrStorageUnavailable.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Init verifies the connection and applies pending migrations. Safe to
// call more than once.
func (s *Store) Init(ctx context.Context) error {
	if s.closed.Load() {
		return domain.ErrStorageUnavailable
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return s.migrate(migrations.FS)
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Add inserts a record, assigning an id when the item carries none.
// Inserting an existing (path, kind) pair fails with ErrStorageConflict
// and leaves the stored record untouched.
func (s *Store) Add(ctx context.Context, item *domain.EmbeddingItem) (string, error) {
	if item == nil {
		return "", fmt.Errorf("%w: nil item", domain.ErrInvalidInput)
	}
	if item.Path == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}
	if !item.Kind.IsValid() {
		return "", fmt.Errorf("%w: kind %q", domain.ErrInvalidInput, item.Kind)
	}
	if !item.Type.IsValid() {
		return "", fmt.Errorf("%w: item type %q", domain.ErrInvalidInput, item.Type)
	}
	if s.closed.Load() {
		return "", domain.ErrStorageUnavailable
	}

	path := domain.NormalisePath(item.Path)
	id := item.ID
	if id == "" {
		id = uuid.NewString()
	}

	var childrenJSON sql.NullString
	if item.Children != nil {
		encoded, err := json.Marshal(item.Children)
		if err != nil {
			return "", fmt.Errorf("marshalling children: %w", err)
		}
		childrenJSON = sql.NullString{String: string(encoded), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM embeddings WHERE path = ? AND kind = ?",
		path, item.Kind.String()).Scan(&count); err != nil {
		return "", fmt.Errorf("checking path and kind: %w", err)
	}
	if count > 0 {
		return "", fmt.Errorf("%w: %s (%s)", domain.ErrStorageConflict, path, item.Kind)
	}

	if item.ID != "" {
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM embeddings WHERE id = ?", id).Scan(&count); err != nil {
			return "", fmt.Errorf("checking id: %w", err)
		}
		if count > 0 {
			return "", fmt.Errorf("%w: id %s already in use", domain.ErrStorageConflict, id)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO embeddings (id, item_type, parent_id, children, path, kind, raw, vector, dim)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, item.Type.String(), item.Parent, childrenJSON, path, item.Kind.String(),
		item.Raw, float32SliceToBytes(item.Vector), len(item.Vector))
	if err != nil {
		// Concurrent writers can both pass the existence checks; the
		// UNIQUE constraint catches the loser.
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: %s (%s)", domain.ErrStorageConflict, path, item.Kind)
		}
		return "", fmt.Errorf("inserting embedding: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}
	return id, nil
}

// SearchSimilar ranks records by cosine similarity against the query,
// descending, ties keeping insertion order. Candidates whose dimensions
// disagree with the query are filtered out in SQL.
func (s *Store) SearchSimilar(ctx context.Context, query []float32, limit int) ([]domain.SearchResult, error) {
	if s.closed.Load() {
		return nil, domain.ErrStorageUnavailable
	}

	results := []domain.SearchResult{}
	if limit <= 0 || len(query) == 0 {
		return results, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_type, parent_id, children, path, kind, raw, vector
		FROM embeddings WHERE dim = ?
		ORDER BY rowid
	`, len(query))
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItemRows(rows)
		if err != nil {
			return nil, err
		}
		similarity, err := domain.CosineSimilarity(query, item.Vector)
		if err != nil {
			return nil, fmt.Errorf("scoring %s: %w", item.Path, err)
		}
		results = append(results, domain.SearchResult{
			Item:       *item,
			Similarity: similarity,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// GetByID retrieves a record by id.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.EmbeddingItem, error) {
	if s.closed.Load() {
		return nil, domain.ErrStorageUnavailable
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, item_type, parent_id, children, path, kind, raw, vector
		FROM embeddings WHERE id = ?
	`, id)

	return scanItem(row)
}

// GetByPath returns every kind stored at the path, in insertion order.
func (s *Store) GetByPath(ctx context.Context, path string) ([]domain.EmbeddingItem, error) {
	if s.closed.Load() {
		return nil, domain.ErrStorageUnavailable
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_type, parent_id, children, path, kind, raw, vector
		FROM embeddings WHERE path = ?
		ORDER BY rowid
	`, domain.NormalisePath(path))
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ListByPrefix returns records strictly below the prefix directory, in
// insertion order.
func (s *Store) ListByPrefix(ctx context.Context, prefix string) ([]domain.EmbeddingItem, error) {
	if s.closed.Load() {
		return nil, domain.ErrStorageUnavailable
	}

	prefix = domain.NormalisePath(prefix)
	if prefix == "" {
		return []domain.EmbeddingItem{}, nil
	}
	pattern := likeEscape(prefix) + "/%"
	if prefix == "/" {
		pattern = "/%"
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_type, parent_id, children, path, kind, raw, vector
		FROM embeddings
		WHERE path LIKE ? ESCAPE '\' AND path <> ?
		ORDER BY rowid
	`, pattern, prefix)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// GetChildren returns records whose parent reference equals parentID, in
// insertion order.
func (s *Store) GetChildren(ctx context.Context, parentID string) ([]domain.EmbeddingItem, error) {
	if s.closed.Load() {
		return nil, domain.ErrStorageUnavailable
	}

	if parentID == "" {
		return []domain.EmbeddingItem{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_type, parent_id, children, path, kind, raw, vector
		FROM embeddings WHERE parent_id = ?
		ORDER BY rowid
	`, parentID)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// Update applies the non-nil fields of upd to the record with the given
// id.
func (s *Store) Update(ctx context.Context, id string, upd domain.ItemUpdate) error {
	if s.closed.Load() {
		return domain.ErrStorageUnavailable
	}

	if upd.IsZero() {
		var count int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM embeddings WHERE id = ?", id).Scan(&count); err != nil {
			return fmt.Errorf("checking id: %w", err)
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return nil
	}

	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if upd.Raw != nil {
		sets = append(sets, "raw = ?")
		args = append(args, *upd.Raw)
	}
	if upd.Vector != nil {
		sets = append(sets, "vector = ?", "dim = ?")
		args = append(args, float32SliceToBytes(upd.Vector), len(upd.Vector))
	}
	if upd.Parent != nil {
		sets = append(sets, "parent_id = ?")
		args = append(args, *upd.Parent)
	}
	if upd.Children != nil {
		encoded, err := json.Marshal(upd.Children)
		if err != nil {
			return fmt.Errorf("marshalling children: %w", err)
		}
		sets = append(sets, "children = ?")
		args = append(args, string(encoded))
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE embeddings SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating embedding: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating embedding: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.closed.Load() {
		return domain.ErrStorageUnavailable
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM embeddings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting embedding: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting embedding: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByPath removes every kind stored at the path and returns how many
// records went away.
func (s *Store) DeleteByPath(ctx context.Context, path string) (int, error) {
	if s.closed.Load() {
		return 0, domain.ErrStorageUnavailable
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM embeddings WHERE path = ?", domain.NormalisePath(path))
	if err != nil {
		return 0, fmt.Errorf("deleting embeddings: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting embeddings: %w", err)
	}
	return int(affected), nil
}

// Exists reports whether a record is stored for (path, kind).
func (s *Store) Exists(ctx context.Context, path string, kind domain.Kind) (bool, error) {
	if s.closed.Load() {
		return false, domain.ErrStorageUnavailable
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM embeddings WHERE path = ? AND kind = ?",
		domain.NormalisePath(path), kind.String()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking embedding: %w", err)
	}
	return count > 0, nil
}

// Count returns the total number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, domain.ErrStorageUnavailable
	}

	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM embeddings").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return count, nil
}

// Clear removes every record.
func (s *Store) Clear(ctx context.Context) error {
	if s.closed.Load() {
		return domain.ErrStorageUnavailable
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM embeddings"); err != nil {
		return fmt.Errorf("clearing embeddings: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// likeEscape escapes LIKE wildcards so a path embeds literally in a
// pattern.
func likeEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// scanItem scans a single embedding row.
func scanItem(row *sql.Row) (*domain.EmbeddingItem, error) {
	var item domain.EmbeddingItem
	var itemType, kind string
	var childrenJSON sql.NullString
	var vectorBlob []byte

	if err := row.Scan(&item.ID, &itemType, &item.Parent, &childrenJSON,
		&item.Path, &kind, &item.Raw, &vectorBlob); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning embedding: %w", err)
	}

	item.Type = domain.ItemType(itemType)
	item.Kind = domain.Kind(kind)
	item.Vector = bytesToFloat32Slice(vectorBlob)

	if childrenJSON.Valid && childrenJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(childrenJSON.String), &item.Children); err != nil {
			return nil, fmt.Errorf("unmarshalling children: %w", err)
		}
	}

	return &item, nil
}

// scanItemRows scans an embedding from *sql.Rows.
func scanItemRows(rows *sql.Rows) (*domain.EmbeddingItem, error) {
	var item domain.EmbeddingItem
	var itemType, kind string
	var childrenJSON sql.NullString
	var vectorBlob []byte

	if err := rows.Scan(&item.ID, &itemType, &item.Parent, &childrenJSON,
		&item.Path, &kind, &item.Raw, &vectorBlob); err != nil {
		return nil, fmt.Errorf("scanning embedding: %w", err)
	}

	item.Type = domain.ItemType(itemType)
	item.Kind = domain.Kind(kind)
	item.Vector = bytesToFloat32Slice(vectorBlob)

	if childrenJSON.Valid && childrenJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(childrenJSON.String), &item.Children); err != nil {
			return nil, fmt.Errorf("unmarshalling children: %w", err)
		}
	}

	return &item, nil
}

// collectItems drains rows into a slice, preserving row order.
func collectItems(rows *sql.Rows) ([]domain.EmbeddingItem, error) {
	items := []domain.EmbeddingItem{}
	for rows.Next() {
		item, err := scanItemRows(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}
	return items, nil
}
