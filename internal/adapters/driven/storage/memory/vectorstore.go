package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Records are held in insertion order, which is also the tie order for
// equal similarities. Reads hand out copies, so callers can hold on to
// results without aliasing store state.
type VectorStore struct {
	mu     sync.RWMutex
	items  map[string]domain.EmbeddingItem
	order  []string
	byPath map[string]map[domain.Kind]string
	closed bool
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		items:  make(map[string]domain.EmbeddingItem),
		byPath: make(map[string]map[domain.Kind]string),
	}
}

// Init prepares the store. Safe to call more than once.
func (s *VectorStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStorageUnavailable
	}
	return nil
}

// Add inserts a record, assigning an id when the item carries none.
// Inserting an existing (path, kind) pair fails with ErrStorageConflict
// and leaves the stored record untouched.
func (s *VectorStore) Add(_ context.Context, item *domain.EmbeddingItem) (string, error) {
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

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", domain.ErrStorageUnavailable
	}

	path := domain.NormalisePath(item.Path)
	if _, ok := s.byPath[path][item.Kind]; ok {
		return "", fmt.Errorf("%w: %s (%s)", domain.ErrStorageConflict, path, item.Kind)
	}

	id := item.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, ok := s.items[id]; ok {
		return "", fmt.Errorf("%w: id %s already in use", domain.ErrStorageConflict, id)
	}

	stored := cloneItem(*item)
	stored.ID = id
	stored.Path = path

	s.items[id] = stored
	s.order = append(s.order, id)
	if s.byPath[path] == nil {
		s.byPath[path] = make(map[domain.Kind]string)
	}
	s.byPath[path][item.Kind] = id

	return id, nil
}

// SearchSimilar ranks records by cosine similarity against the query,
// descending, ties keeping insertion order. Records whose dimensions
// disagree with the query are skipped.
func (s *VectorStore) SearchSimilar(_ context.Context, query []float32, limit int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStorageUnavailable
	}

	results := []domain.SearchResult{}
	if limit <= 0 || len(query) == 0 {
		return results, nil
	}

	for _, id := range s.order {
		item := s.items[id]
		similarity, err := domain.CosineSimilarity(query, item.Vector)
		if err != nil {
			if errors.Is(err, domain.ErrDimensionMismatch) {
				continue
			}
			return nil, err
		}
		results = append(results, domain.SearchResult{
			Item:       cloneItem(item),
			Similarity: similarity,
		})
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
func (s *VectorStore) GetByID(_ context.Context, id string) (*domain.EmbeddingItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStorageUnavailable
	}

	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := cloneItem(item)
	return &copied, nil
}

// GetByPath returns every kind stored at the path, in insertion order.
func (s *VectorStore) GetByPath(_ context.Context, path string) ([]domain.EmbeddingItem, error) {
	path = domain.NormalisePath(path)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStorageUnavailable
	}

	result := []domain.EmbeddingItem{}
	for _, id := range s.order {
		if item := s.items[id]; item.Path == path {
			result = append(result, cloneItem(item))
		}
	}
	return result, nil
}

// ListByPrefix returns records strictly below the prefix directory, in
// insertion order.
func (s *VectorStore) ListByPrefix(_ context.Context, prefix string) ([]domain.EmbeddingItem, error) {
	prefix = domain.NormalisePath(prefix)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStorageUnavailable
	}

	result := []domain.EmbeddingItem{}
	for _, id := range s.order {
		if item := s.items[id]; domain.WithinDir(prefix, item.Path) {
			result = append(result, cloneItem(item))
		}
	}
	return result, nil
}

// GetChildren returns records whose Parent reference equals parentID,
// in insertion order.
func (s *VectorStore) GetChildren(_ context.Context, parentID string) ([]domain.EmbeddingItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStorageUnavailable
	}

	result := []domain.EmbeddingItem{}
	if parentID == "" {
		return result, nil
	}
	for _, id := range s.order {
		if item := s.items[id]; item.Parent == parentID {
			result = append(result, cloneItem(item))
		}
	}
	return result, nil
}

// Update applies the non-nil fields of upd to the record with the given
// id.
func (s *VectorStore) Update(_ context.Context, id string, upd domain.ItemUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStorageUnavailable
	}

	item, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	if upd.IsZero() {
		return nil
	}

	if upd.Raw != nil {
		item.Raw = *upd.Raw
	}
	if upd.Vector != nil {
		item.Vector = append([]float32(nil), upd.Vector...)
	}
	if upd.Parent != nil {
		item.Parent = *upd.Parent
	}
	if upd.Children != nil {
		item.Children = append([]string(nil), upd.Children...)
	}

	s.items[id] = item
	return nil
}

// Delete removes the record with the given id.
func (s *VectorStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStorageUnavailable
	}

	item, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.removeLocked(id, item)
	return nil
}

// DeleteByPath removes every kind stored at the path and returns how
// many records went away.
func (s *VectorStore) DeleteByPath(_ context.Context, path string) (int, error) {
	path = domain.NormalisePath(path)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, domain.ErrStorageUnavailable
	}

	kinds := s.byPath[path]
	if len(kinds) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(kinds))
	for _, id := range kinds {
		ids = append(ids, id)
	}

	removed := 0
	for _, id := range ids {
		item, ok := s.items[id]
		if !ok {
			continue
		}
		s.removeLocked(id, item)
		removed++
	}
	return removed, nil
}

// Exists reports whether a record is stored for (path, kind).
func (s *VectorStore) Exists(_ context.Context, path string, kind domain.Kind) (bool, error) {
	path = domain.NormalisePath(path)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, domain.ErrStorageUnavailable
	}

	_, ok := s.byPath[path][kind]
	return ok, nil
}

// Count returns the total number of stored records.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, domain.ErrStorageUnavailable
	}
	return len(s.items), nil
}

// Clear removes every record.
func (s *VectorStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStorageUnavailable
	}

	s.items = make(map[string]domain.EmbeddingItem)
	s.order = nil
	s.byPath = make(map[string]map[domain.Kind]string)
	return nil
}

// Close releases the store. Further calls fail with
// ErrStorageUnavailable.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.items = nil
	s.order = nil
	s.byPath = nil
	return nil
}

// removeLocked drops one record from all indexes. Caller holds the lock.
func (s *VectorStore) removeLocked(id string, item domain.EmbeddingItem) {
	delete(s.items, id)

	if kinds := s.byPath[item.Path]; kinds != nil {
		delete(kinds, item.Kind)
		if len(kinds) == 0 {
			delete(s.byPath, item.Path)
		}
	}

	for i, ordered := range s.order {
		if ordered == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// cloneItem copies a record including its slices.
func cloneItem(item domain.EmbeddingItem) domain.EmbeddingItem {
	if item.Vector != nil {
		item.Vector = append([]float32(nil), item.Vector...)
	}
	if item.Children != nil {
		item.Children = append([]string(nil), item.Children...)
	}
	return item
}
