package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopy-labs/canopy-cli/internal/adapters/driven/storage/memory"
	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

func TestNewSearchService(t *testing.T) {
	service := NewSearchService(memory.NewVectorStore(), newMockEmbedder(), domain.SearchSettings{}, nopLogger{})
	require.NotNil(t, service)
}

func TestSearchService_Search_RanksBySimilarity(t *testing.T) {
	store := memory.NewVectorStore()
	seedItem(t, store, "/data/a.txt", domain.KindOrigin, domain.ItemTypeFile, []float32{1, 0})
	seedItem(t, store, "/data/b.txt", domain.KindOrigin, domain.ItemTypeFile, []float32{0, 1})
	seedItem(t, store, "/data/c.txt", domain.KindOrigin, domain.ItemTypeFile, []float32{0.9, 0.1})

	embedder := newMockEmbedder()
	embedder.vectors["find alpha"] = []float32{1, 0}
	service := NewSearchService(store, embedder, domain.SearchSettings{}, nopLogger{})

	results, err := service.Search(context.Background(), "find alpha", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "/data/a.txt", results[0].Item.Path)
	assert.Equal(t, "/data/c.txt", results[1].Item.Path)
	assert.Equal(t, "/data/b.txt", results[2].Item.Path)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
	assert.Greater(t, results[1].Similarity, results[2].Similarity)
}

func TestSearchService_Search_EmptyQuery(t *testing.T) {
	embedder := newMockEmbedder()
	service := NewSearchService(memory.NewVectorStore(), embedder, domain.SearchSettings{}, nopLogger{})

	for _, query := range []string{"", "   ", "\t\n"} {
		results, err := service.Search(context.Background(), query, domain.SearchOptions{})
		require.NoError(t, err)
		assert.Empty(t, results)
	}
	assert.Equal(t, 0, embedder.callCount())
}

func TestSearchService_Search_NilEmbedder(t *testing.T) {
	service := NewSearchService(memory.NewVectorStore(), nil, domain.SearchSettings{}, nopLogger{})

	_, err := service.Search(context.Background(), "anything", domain.SearchOptions{})

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestSearchService_Search_ModeFiltersKinds(t *testing.T) {
	store := memory.NewVectorStore()
	seedItem(t, store, "/data/a.txt", domain.KindOrigin, domain.ItemTypeFile, []float32{1, 0})
	seedItem(t, store, "/data/a.txt", domain.KindSummarize, domain.ItemTypeFile, []float32{1, 0})
	seedItem(t, store, "/data", domain.KindVSOrigin, domain.ItemTypeDirectory, []float32{1, 0})
	seedItem(t, store, "/data", domain.KindVSSummarize, domain.ItemTypeDirectory, []float32{1, 0})

	embedder := newMockEmbedder()
	embedder.vectors["query"] = []float32{1, 0}
	service := NewSearchService(store, embedder, domain.SearchSettings{}, nopLogger{})
	ctx := context.Background()

	// Origin mode covers the raw-content family only
	results, err := service.Search(ctx, "query", domain.SearchOptions{Mode: domain.SearchModeOrigin})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, []domain.Kind{domain.KindOrigin, domain.KindVSOrigin}, r.Item.Kind)
	}

	// Summarize mode covers the summary family only
	results, err = service.Search(ctx, "query", domain.SearchOptions{Mode: domain.SearchModeSummarize})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, []domain.Kind{domain.KindSummarize, domain.KindVSSummarize}, r.Item.Kind)
	}

	// All mode returns every kind
	results, err = service.Search(ctx, "query", domain.SearchOptions{Mode: domain.SearchModeAll})
	require.NoError(t, err)
	assert.Len(t, results, 4)
}

func TestSearchService_Search_InvalidMode(t *testing.T) {
	service := NewSearchService(memory.NewVectorStore(), newMockEmbedder(), domain.SearchSettings{}, nopLogger{})

	_, err := service.Search(context.Background(), "query", domain.SearchOptions{Mode: "sideways"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchService_Search_LimitTruncates(t *testing.T) {
	store := memory.NewVectorStore()
	for _, path := range []string{"/data/a.txt", "/data/b.txt", "/data/c.txt", "/data/d.txt"} {
		seedItem(t, store, path, domain.KindOrigin, domain.ItemTypeFile, []float32{1, 0})
	}
	embedder := newMockEmbedder()
	embedder.vectors["query"] = []float32{1, 0}
	service := NewSearchService(store, embedder, domain.SearchSettings{}, nopLogger{})

	results, err := service.Search(context.Background(), "query", domain.SearchOptions{Limit: 2})

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchService_Search_LimitDefaultsChain(t *testing.T) {
	store := memory.NewVectorStore()
	for _, path := range []string{"/data/a.txt", "/data/b.txt", "/data/c.txt"} {
		seedItem(t, store, path, domain.KindOrigin, domain.ItemTypeFile, []float32{1, 0})
	}
	embedder := newMockEmbedder()
	embedder.vectors["query"] = []float32{1, 0}

	// The configured default applies when the options carry none
	service := NewSearchService(store, embedder, domain.SearchSettings{DefaultLimit: 1}, nopLogger{})
	results, err := service.Search(context.Background(), "query", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	// Explicit options win over the configured default
	results, err = service.Search(context.Background(), "query", domain.SearchOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchService_Search_ModeDefaultsChain(t *testing.T) {
	store := memory.NewVectorStore()
	seedItem(t, store, "/data/a.txt", domain.KindOrigin, domain.ItemTypeFile, []float32{1, 0})
	seedItem(t, store, "/data/a.txt", domain.KindSummarize, domain.ItemTypeFile, []float32{1, 0})

	embedder := newMockEmbedder()
	embedder.vectors["query"] = []float32{1, 0}
	service := NewSearchService(store, embedder, domain.SearchSettings{DefaultMode: domain.SearchModeSummarize}, nopLogger{})

	results, err := service.Search(context.Background(), "query", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.KindSummarize, results[0].Item.Kind)
}

func TestSearchService_Search_EmbedFailure(t *testing.T) {
	embedder := newMockEmbedder()
	embedder.errFor["query"] = errors.New("model exploded")
	service := NewSearchService(memory.NewVectorStore(), embedder, domain.SearchSettings{}, nopLogger{})

	_, err := service.Search(context.Background(), "query", domain.SearchOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed query")
}

func TestSearchService_Search_EmptyStore(t *testing.T) {
	embedder := newMockEmbedder()
	embedder.vectors["query"] = []float32{1, 0}
	service := NewSearchService(memory.NewVectorStore(), embedder, domain.SearchSettings{}, nopLogger{})

	results, err := service.Search(context.Background(), "query", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Empty(t, results)
}
