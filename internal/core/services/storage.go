package services

import (
	"context"
	"fmt"

	"github.com/canopy-labs/canopy-cli/internal/core/ports/driven"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driving"
)

// Ensure StorageService implements the interface.
var _ driving.StorageService = (*StorageService)(nil)

// StorageService exposes vector store maintenance to external actors.
type StorageService struct {
	store   driven.VectorStore
	tracker *StatusTracker
	log     driven.Logger
}

// NewStorageService creates a new storage service.
func NewStorageService(store driven.VectorStore, tracker *StatusTracker, log driven.Logger) *StorageService {
	return &StorageService{
		store:   store,
		tracker: tracker,
		log:     log,
	}
}

// Count returns the total number of stored embedding records.
func (s *StorageService) Count(ctx context.Context) (int, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// Clear removes every record and resets tracked path statuses. The
// store is the source of truth, so the tracker follows it.
func (s *StorageService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	s.tracker.Reset()
	s.log.Info("Storage cleared")
	return nil
}
