package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Distinct tests that sentinel errors do not alias each other
func TestErrors_Distinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrStorageConflict,
		ErrStorageUnavailable,
		ErrDimensionMismatch,
		ErrProviderTimeout,
		ErrProviderUnreachable,
		ErrConfigurationMissing,
		ErrVectorizeInProgress,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

// TestErrors_Wrapping tests errors.Is through fmt.Errorf wrapping
func TestErrors_Wrapping(t *testing.T) {
	err := fmt.Errorf("%w: embedding at /a/b.txt (origin)", ErrStorageConflict)

	assert.ErrorIs(t, err, ErrStorageConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
}

// TestErrors_CapabilityErrors tests that capability errors identify as
// missing configuration
func TestErrors_CapabilityErrors(t *testing.T) {
	assert.ErrorIs(t, ErrEmbeddingUnavailable, ErrConfigurationMissing)
	assert.ErrorIs(t, ErrSummarizerUnavailable, ErrConfigurationMissing)
	assert.NotErrorIs(t, ErrEmbeddingUnavailable, ErrSummarizerUnavailable)
}
