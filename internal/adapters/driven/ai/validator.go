package ai

import (
	"github.com/canopy-labs/canopy-cli/internal/core/domain"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding validates an embedding configuration by pinging the provider.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config)
}

// ValidateSummarizer validates a summariser configuration by pinging the provider.
func (v *ConfigValidator) ValidateSummarizer(config *domain.SummarizerSettings) error {
	return ValidateSummarizerConfig(config)
}
