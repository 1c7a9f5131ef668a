package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopy-labs/canopy-cli/internal/adapters/driven/storage/memory"
	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

func TestNewStorageService(t *testing.T) {
	service := NewStorageService(memory.NewVectorStore(), NewStatusTracker(nil), nopLogger{})
	require.NotNil(t, service)
}

func TestStorageService_Count(t *testing.T) {
	store := memory.NewVectorStore()
	service := NewStorageService(store, NewStatusTracker(nil), nopLogger{})
	ctx := context.Background()

	count, err := service.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	seedItem(t, store, "/data/a.txt", domain.KindOrigin, domain.ItemTypeFile, []float32{1, 0})
	seedItem(t, store, "/data/a.txt", domain.KindSummarize, domain.ItemTypeFile, []float32{0, 1})

	count, err = service.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStorageService_Count_ClosedStore(t *testing.T) {
	store := memory.NewVectorStore()
	require.NoError(t, store.Close())
	service := NewStorageService(store, NewStatusTracker(nil), nopLogger{})

	_, err := service.Count(context.Background())

	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestStorageService_Clear(t *testing.T) {
	store := memory.NewVectorStore()
	tracker := NewStatusTracker(nil)
	service := NewStorageService(store, tracker, nopLogger{})
	ctx := context.Background()

	seedItem(t, store, "/data/a.txt", domain.KindOrigin, domain.ItemTypeFile, []float32{1, 0})
	tracker.Set("/data/a.txt", domain.StatusProcessed)

	require.NoError(t, service.Clear(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// The tracker follows the store
	assert.Equal(t, domain.StatusNotProcessed, tracker.Status("/data/a.txt"))
}

func TestStorageService_Clear_ClosedStore(t *testing.T) {
	store := memory.NewVectorStore()
	require.NoError(t, store.Close())
	tracker := NewStatusTracker(nil)
	tracker.Set("/data/a.txt", domain.StatusProcessed)
	service := NewStorageService(store, tracker, nopLogger{})

	err := service.Clear(context.Background())

	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	// A failed clear leaves the tracker untouched
	assert.Equal(t, domain.StatusProcessed, tracker.Status("/data/a.txt"))
}
