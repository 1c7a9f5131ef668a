package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Storage errors.

	// ErrStorageConflict indicates an insert collided with an existing
	// record for the same (path, kind).
	ErrStorageConflict = errors.New("embedding already exists for path and kind")

	// ErrStorageUnavailable indicates the vector store cannot be reached
	// or refuses operations.
	ErrStorageUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch indicates two vectors disagree on length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// Provider errors.

	// ErrProviderTimeout indicates an embedding or summariser call ran
	// past its deadline.
	ErrProviderTimeout = errors.New("provider timeout")

	// ErrProviderUnreachable indicates the provider endpoint could not
	// be reached at the connection level.
	ErrProviderUnreachable = errors.New("provider unreachable")

	// Configuration and lifecycle errors.

	// ErrConfigurationMissing indicates an operation needs a capability
	// that has not been configured.
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrVectorizeInProgress indicates a vectorisation run is already
	// running. Only one run may be active at a time.
	ErrVectorizeInProgress = errors.New("vectorize already in progress")
)

// Capability errors identify which configuration is missing. Both satisfy
// errors.Is against ErrConfigurationMissing.
var (
	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Vectorisation and similarity search are disabled.
	ErrEmbeddingUnavailable = fmt.Errorf("%w: embedding service not configured", ErrConfigurationMissing)

	// ErrSummarizerUnavailable indicates the summariser service is not
	// configured. Summarize kinds are disabled.
	ErrSummarizerUnavailable = fmt.Errorf("%w: summarizer service not configured", ErrConfigurationMissing)
)
