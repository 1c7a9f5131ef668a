package services

import (
	"fmt"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driven"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySearchMode  = "search.mode"
	keySearchLimit = "search.limit"

	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedTimeout  = "embedding.timeout_seconds"
	keyEmbedDims     = "embedding.dimensions"
	keyEmbedRPS      = "embedding.requests_per_second"
	keyEmbedCache    = "embedding.cache_size"

	keySummProvider  = "summarizer.provider"
	keySummModel     = "summarizer.model"
	keySummBaseURL   = "summarizer.base_url"
	keySummAPIKey    = "summarizer.api_key"
	keySummTimeout   = "summarizer.timeout_seconds"
	keySummMaxInput  = "summarizer.max_input_runes"
	keySummMaxTokens = "summarizer.max_summary_tokens"

	keyKindOrigin      = "kinds.origin"
	keyKindSummarize   = "kinds.summarize"
	keyKindVSOrigin    = "kinds.vs_origin"
	keyKindVSSummarize = "kinds.vs_summarize"

	keyVectorizeWorkers    = "vectorize.workers"
	keyVectorizeExclusions = "vectorize.exclusions"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			TimeoutSeconds:    s.getInt(keyEmbedTimeout, defaults.Embedding.TimeoutSeconds),
			Dimensions:        s.getInt(keyEmbedDims, defaults.Embedding.Dimensions),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
			CacheSize:         s.getInt(keyEmbedCache, defaults.Embedding.CacheSize),
		},
		Summarizer: domain.SummarizerSettings{
			Provider:         s.getProvider(keySummProvider, defaults.Summarizer.Provider),
			Model:            s.getString(keySummModel, defaults.Summarizer.Model),
			BaseURL:          s.configStore.GetString(keySummBaseURL), // No default - empty is valid for cloud providers
			APIKey:           s.configStore.GetString(keySummAPIKey),
			TimeoutSeconds:   s.getInt(keySummTimeout, defaults.Summarizer.TimeoutSeconds),
			MaxInputRunes:    s.getInt(keySummMaxInput, defaults.Summarizer.MaxInputRunes),
			MaxSummaryTokens: s.getInt(keySummMaxTokens, defaults.Summarizer.MaxSummaryTokens),
		},
		Kinds: domain.KindSettings{
			Origin:      s.getBool(keyKindOrigin, defaults.Kinds.Origin),
			Summarize:   s.getBool(keyKindSummarize, defaults.Kinds.Summarize),
			VSOrigin:    s.getBool(keyKindVSOrigin, defaults.Kinds.VSOrigin),
			VSSummarize: s.getBool(keyKindVSSummarize, defaults.Kinds.VSSummarize),
		},
		Vectorize: domain.VectorizeSettings{
			Workers:    s.getInt(keyVectorizeWorkers, defaults.Vectorize.Workers),
			Exclusions: domain.ExclusionList(s.configStore.GetStringSlice(keyVectorizeExclusions)),
		},
		Search: domain.SearchSettings{
			DefaultLimit: s.getInt(keySearchLimit, defaults.Search.DefaultLimit),
			DefaultMode:  s.getSearchMode(defaults.Search.DefaultMode),
		},
	}

	return settings, nil
}

// Save persists application settings.
//
//nolint:gocyclo // Sequential key writes; splitting them obscures the flow.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyEmbedTimeout, settings.Embedding.TimeoutSeconds); err != nil {
		return fmt.Errorf("save embedding timeout: %w", err)
	}
	if err := s.configStore.Set(keyEmbedDims, settings.Embedding.Dimensions); err != nil {
		return fmt.Errorf("save embedding dimensions: %w", err)
	}
	if err := s.configStore.Set(keyEmbedRPS, settings.Embedding.RequestsPerSecond); err != nil {
		return fmt.Errorf("save embedding rate limit: %w", err)
	}
	if err := s.configStore.Set(keyEmbedCache, settings.Embedding.CacheSize); err != nil {
		return fmt.Errorf("save embedding cache size: %w", err)
	}

	// Save summariser settings
	if err := s.configStore.Set(keySummProvider, settings.Summarizer.Provider.String()); err != nil {
		return fmt.Errorf("save summarizer provider: %w", err)
	}
	if err := s.configStore.Set(keySummModel, settings.Summarizer.Model); err != nil {
		return fmt.Errorf("save summarizer model: %w", err)
	}
	if err := s.configStore.Set(keySummBaseURL, settings.Summarizer.BaseURL); err != nil {
		return fmt.Errorf("save summarizer base_url: %w", err)
	}
	if settings.Summarizer.APIKey != "" {
		if err := s.configStore.Set(keySummAPIKey, settings.Summarizer.APIKey); err != nil {
			return fmt.Errorf("save summarizer api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keySummTimeout, settings.Summarizer.TimeoutSeconds); err != nil {
		return fmt.Errorf("save summarizer timeout: %w", err)
	}
	if err := s.configStore.Set(keySummMaxInput, settings.Summarizer.MaxInputRunes); err != nil {
		return fmt.Errorf("save summarizer max input: %w", err)
	}
	if err := s.configStore.Set(keySummMaxTokens, settings.Summarizer.MaxSummaryTokens); err != nil {
		return fmt.Errorf("save summarizer max tokens: %w", err)
	}

	// Save kind switches
	if err := s.configStore.Set(keyKindOrigin, settings.Kinds.Origin); err != nil {
		return fmt.Errorf("save origin kind: %w", err)
	}
	if err := s.configStore.Set(keyKindSummarize, settings.Kinds.Summarize); err != nil {
		return fmt.Errorf("save summarize kind: %w", err)
	}
	if err := s.configStore.Set(keyKindVSOrigin, settings.Kinds.VSOrigin); err != nil {
		return fmt.Errorf("save vs_origin kind: %w", err)
	}
	if err := s.configStore.Set(keyKindVSSummarize, settings.Kinds.VSSummarize); err != nil {
		return fmt.Errorf("save vs_summarize kind: %w", err)
	}

	// Save vectorise settings
	if err := s.configStore.Set(keyVectorizeWorkers, settings.Vectorize.Workers); err != nil {
		return fmt.Errorf("save workers: %w", err)
	}
	if err := s.configStore.Set(keyVectorizeExclusions, []string(settings.Vectorize.Exclusions)); err != nil {
		return fmt.Errorf("save exclusions: %w", err)
	}

	// Save search settings
	if err := s.configStore.Set(keySearchMode, settings.Search.DefaultMode.String()); err != nil {
		return fmt.Errorf("save search mode: %w", err)
	}
	if err := s.configStore.Set(keySearchLimit, settings.Search.DefaultLimit); err != nil {
		return fmt.Errorf("save search limit: %w", err)
	}

	return nil
}

// SetSearchMode updates the default search mode.
func (s *SettingsService) SetSearchMode(mode domain.SearchMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid search mode: %s", mode)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Search.DefaultMode = mode

	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate provider supports embeddings
	validProviders := domain.AllEmbeddingProviders()
	valid := false
	for _, p := range validProviders {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		defaults := domain.DefaultEmbeddingModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.Embedding.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = domain.DefaultOllamaBaseURL
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.Embedding.BaseURL = ""
	}

	// Set API key
	settings.Embedding.APIKey = apiKey

	// Update expected dimensions based on model
	dims := domain.EmbeddingDimensions()
	if d, ok := dims[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// SetSummarizerProvider configures the summariser provider.
func (s *SettingsService) SetSummarizerProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid summarizer provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Summarizer.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Summarizer.Model = model
	} else {
		defaults := domain.DefaultSummarizerModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.Summarizer.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.Summarizer.BaseURL == "" {
			settings.Summarizer.BaseURL = domain.DefaultOllamaBaseURL
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.Summarizer.BaseURL = ""
	}

	// Set API key
	settings.Summarizer.APIKey = apiKey

	return s.Save(settings)
}

// SetKindEnabled switches one embedding kind on or off.
func (s *SettingsService) SetKindEnabled(kind domain.Kind, enabled bool) error {
	if !kind.IsValid() {
		return fmt.Errorf("invalid kind: %s", kind)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch kind {
	case domain.KindOrigin:
		settings.Kinds.Origin = enabled
	case domain.KindSummarize:
		settings.Kinds.Summarize = enabled
	case domain.KindVSOrigin:
		settings.Kinds.VSOrigin = enabled
	case domain.KindVSSummarize:
		settings.Kinds.VSSummarize = enabled
	}

	return s.Save(settings)
}

// SetExclusions replaces the exclusion pattern list.
func (s *SettingsService) SetExclusions(patterns []string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Vectorize.Exclusions = domain.ExclusionList(patterns)

	return s.Save(settings)
}

// SetWorkers sets the vectorisation worker pool size.
func (s *SettingsService) SetWorkers(n int) error {
	if n < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", n)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Vectorize.Workers = n

	return s.Save(settings)
}

// Validate checks if current settings are usable for vectorisation.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	// Validate search mode
	if !settings.Search.DefaultMode.IsValid() {
		return fmt.Errorf("invalid search mode: %s", settings.Search.DefaultMode)
	}

	// Embeddings are needed for every kind
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("vectorisation requires an embedding provider to be configured")
	}

	// Check summariser configuration if an enabled kind calls it
	if settings.Kinds.NeedsSummarizer() {
		if !settings.Summarizer.IsConfigured() {
			return fmt.Errorf(
				"the %q kind requires a summarizer provider to be configured",
				domain.KindSummarize,
			)
		}
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateSummarizerConfig validates the current summariser configuration by pinging the provider.
func (s *SettingsService) ValidateSummarizerConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateSummarizer(&settings.Summarizer)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getSearchMode(defaultVal domain.SearchMode) domain.SearchMode {
	val := s.configStore.GetString(keySearchMode)
	if val == "" {
		return defaultVal
	}
	mode := domain.SearchMode(val)
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
