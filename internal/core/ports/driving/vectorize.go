package driving

import (
	"context"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

// VectorizeOrchestrator coordinates vectorisation runs over a file tree.
type VectorizeOrchestrator interface {
	// VectorizeAll walks the tree rooted at root and embeds every
	// pending path, files before their directories. Returns the run
	// report; a cancelled run returns the partial report alongside the
	// context error. Only one run may be active at a time.
	VectorizeAll(ctx context.Context, root string) (*domain.VectorizeReport, error)

	// Status returns a snapshot of the active (or most recent) run.
	Status() VectorizeStatus

	// PathStatus returns where a path stands in the lifecycle.
	PathStatus(path string) domain.PathStatus

	// SubscribeStatus registers fn to be pushed on every path status
	// change. The returned function cancels the subscription.
	SubscribeStatus(fn func(path string, status domain.PathStatus)) (cancel func())

	// InvalidatePath drops the records of a changed path plus every
	// ancestor aggregate up to root, so the next run re-embeds them.
	InvalidatePath(ctx context.Context, root, path string) error
}

// VectorizeStatus represents the current state of a vectorisation run.
type VectorizeStatus struct {
	// Running indicates if a run is currently in progress.
	Running bool

	// Processed is the count of paths completed so far.
	Processed int

	// Errors is the number of failed paths so far.
	Errors int
}
