package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driven"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driving"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService answers similarity queries over the vector store. The
// query is embedded with the same service that produced the stored
// vectors, then matched by cosine similarity.
type SearchService struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
	defaults domain.SearchSettings
	log      driven.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	defaults domain.SearchSettings,
	log driven.Logger,
) *SearchService {
	return &SearchService{
		store:    store,
		embedder: embedder,
		defaults: defaults,
		log:      log,
	}
}

// Search embeds the query and returns the closest records in the kind
// family the options select, best match first.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	s.log.Section("Search Execution")
	s.log.Debug("Query: %q", query)

	// Return empty for empty query
	query = strings.TrimSpace(query)
	if query == "" {
		s.log.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.defaults.DefaultLimit
	}
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	mode := opts.Mode
	if mode == "" {
		mode = s.defaults.DefaultMode
	}
	if mode == "" {
		mode = domain.SearchModeOrigin
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: search mode %q", domain.ErrInvalidInput, mode)
	}
	s.log.Debug("Limit: %d, mode: %s", limit, mode)

	// Request more results internally to account for kind filtering.
	internalLimit := limit
	if mode.Kinds() != nil {
		internalLimit = limit * 2
	}

	s.log.Debug("Generating query embedding...")
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.log.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}
	s.log.Debug("Query embedding: %d dimensions", len(vector))

	matches, err := s.store.SearchSimilar(ctx, vector, internalLimit)
	if err != nil {
		s.log.Warn("Similarity search failed: %v", err)
		return nil, fmt.Errorf("search similar: %w", err)
	}
	s.log.Debug("Raw results: %d records", len(matches))

	results := make([]domain.SearchResult, 0, limit)
	for _, match := range matches {
		if !mode.Matches(match.Item.Kind) {
			continue
		}
		results = append(results, match)
		if len(results) == limit {
			break
		}
	}

	s.log.Info("Final results: %d", len(results))
	return results, nil
}
