package driving

import (
	"context"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

// SearchService provides similarity search to external actors.
type SearchService interface {
	// Search embeds the query and returns the most similar records,
	// filtered to the kind family the options select.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
