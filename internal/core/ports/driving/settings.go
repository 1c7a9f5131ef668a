package driving

import "github.com/canopy-labs/canopy-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetSearchMode updates the default search mode.
	SetSearchMode(mode domain.SearchMode) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetSummarizerProvider configures the summariser provider.
	SetSummarizerProvider(provider domain.AIProvider, model, apiKey string) error

	// SetKindEnabled switches one embedding kind on or off.
	SetKindEnabled(kind domain.Kind, enabled bool) error

	// SetExclusions replaces the exclusion pattern list.
	SetExclusions(patterns []string) error

	// SetWorkers sets the vectorisation worker pool size.
	SetWorkers(n int) error

	// Validate checks if current settings are usable for vectorisation.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateSummarizerConfig validates the current summariser configuration by pinging the provider.
	ValidateSummarizerConfig() error
}
