package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or summaries.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// TimeoutSeconds bounds each embedding request.
	TimeoutSeconds int

	// Dimensions is the expected vector size. Zero looks the model up
	// in EmbeddingDimensions.
	Dimensions int

	// RequestsPerSecond throttles calls to the provider. Zero disables
	// throttling.
	RequestsPerSecond float64

	// CacheSize is the number of embeddings kept in the in-memory
	// cache. Zero uses the default size; negative disables caching.
	CacheSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// SummarizerSettings holds summariser provider configuration.
type SummarizerSettings struct {
	// Provider is the summariser service provider.
	Provider AIProvider

	// Model is the model name used for summaries.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// TimeoutSeconds bounds each summary request.
	TimeoutSeconds int

	// MaxInputRunes caps the content submitted for summarisation.
	// Longer content is truncated with TruncationMarker appended.
	MaxInputRunes int

	// MaxSummaryTokens caps the generated summary length.
	MaxSummaryTokens int
}

// IsConfigured returns true if the summariser provider is set up.
func (s SummarizerSettings) IsConfigured() bool {
	if !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// KindSettings selects which kinds a vectorisation run produces.
type KindSettings struct {
	// Origin enables raw-content embeddings for files.
	Origin bool

	// Summarize enables summary embeddings for files.
	Summarize bool

	// VSOrigin enables origin aggregates for directories.
	VSOrigin bool

	// VSSummarize enables summarize aggregates for directories.
	VSSummarize bool
}

// Enabled reports whether a kind is switched on.
func (k KindSettings) Enabled(kind Kind) bool {
	switch kind {
	case KindOrigin:
		return k.Origin
	case KindSummarize:
		return k.Summarize
	case KindVSOrigin:
		return k.VSOrigin
	case KindVSSummarize:
		return k.VSSummarize
	default:
		return false
	}
}

// FileKinds returns the enabled kinds produced for files.
func (k KindSettings) FileKinds() []Kind {
	var kinds []Kind
	for _, kind := range FileKinds() {
		if k.Enabled(kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// DirectoryKinds returns the enabled aggregate kinds for directories.
func (k KindSettings) DirectoryKinds() []Kind {
	var kinds []Kind
	for _, kind := range DirectoryKinds() {
		if k.Enabled(kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// NeedsSummarizer reports whether any enabled kind calls the summariser.
// Aggregates only sum stored vectors, so only Summarize qualifies.
func (k KindSettings) NeedsSummarizer() bool {
	return k.Summarize
}

// VectorizeSettings holds vectorisation run configuration.
type VectorizeSettings struct {
	// Workers is the size of the bounded worker pool.
	Workers int

	// Exclusions lists glob patterns for paths skipped entirely.
	Exclusions ExclusionList
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// DefaultLimit is the result count used when a query does not say.
	DefaultLimit int

	// DefaultMode is the kind family searched when a query does not say.
	DefaultMode SearchMode
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Summarizer holds summariser provider settings.
	Summarizer SummarizerSettings

	// Kinds selects the embedding kinds runs produce.
	Kinds KindSettings

	// Vectorize holds run configuration.
	Vectorize VectorizeSettings

	// Search holds search behaviour settings.
	Search SearchSettings
}

// Default values applied by DefaultAppSettings.
const (
	DefaultOllamaBaseURL    = "http://localhost:11434"
	DefaultEmbeddingModel   = "nomic-embed-text"
	DefaultSummarizerModel  = "llama3.2"
	DefaultTimeoutSeconds   = 30
	DefaultMaxInputRunes    = 8000
	DefaultMaxSummaryTokens = 256
	DefaultEmbedCacheSize   = 512
	DefaultWorkers          = 4
	DefaultSearchLimit      = 10
)

// DefaultAppSettings returns settings with sensible defaults: a local
// Ollama endpoint for both capabilities, every kind enabled, and a small
// worker pool.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:       AIProviderOllama,
			Model:          DefaultEmbeddingModel,
			BaseURL:        DefaultOllamaBaseURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
			Dimensions:     EmbeddingDimensions()[DefaultEmbeddingModel],
			CacheSize:      DefaultEmbedCacheSize,
		},
		Summarizer: SummarizerSettings{
			Provider:         AIProviderOllama,
			Model:            DefaultSummarizerModel,
			BaseURL:          DefaultOllamaBaseURL,
			TimeoutSeconds:   DefaultTimeoutSeconds,
			MaxInputRunes:    DefaultMaxInputRunes,
			MaxSummaryTokens: DefaultMaxSummaryTokens,
		},
		Kinds: KindSettings{
			Origin:      true,
			Summarize:   true,
			VSOrigin:    true,
			VSSummarize: true,
		},
		Vectorize: VectorizeSettings{
			Workers: DefaultWorkers,
		},
		Search: SearchSettings{
			DefaultLimit: DefaultSearchLimit,
			DefaultMode:  SearchModeOrigin,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllSummarizerProviders returns providers that support summarisation.
func AllSummarizerProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultSummarizerModels returns default models for each summariser provider.
func DefaultSummarizerModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
