package driven

import "github.com/canopy-labs/canopy-cli/internal/core/domain"

// AIConfigValidator validates AI provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying AI services.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateSummarizer validates a summariser configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateSummarizer(config *domain.SummarizerSettings) error
}
