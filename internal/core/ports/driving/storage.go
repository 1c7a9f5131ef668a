package driving

import "context"

// StorageService exposes maintenance operations on the vector store.
type StorageService interface {
	// Count returns the total number of stored embedding records.
	Count(ctx context.Context) (int, error)

	// Clear removes every record and resets path statuses.
	Clear(ctx context.Context) error
}
