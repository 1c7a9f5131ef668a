// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/canopy-labs/canopy-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/canopy-labs/canopy-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/canopy-labs/canopy-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/canopy-labs/canopy-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/canopy-labs/canopy-cli/internal/adapters/driven/llm/openai"
	"github.com/canopy-labs/canopy-cli/internal/core/domain"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation. A service
// left nil is not configured or failed validation; the matching warning
// explains why. The rest of the application keeps working without it.
type InitResult struct {
	EmbeddingService  driven.EmbeddingService
	SummarizerService driven.SummarizerService
	PromptStore       driven.PromptStore // User-customisable prompt templates.
	Warnings          []string           // Non-fatal issues from validation.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.SummarizerService != nil {
		r.SummarizerService.Close()
	}
}

// InitServices creates and validates both AI services from settings.
// Failures become warnings rather than errors so commands that do not
// need the failing capability still run.
func InitServices(settings domain.AppSettings, prompts driven.PromptStore) *InitResult {
	result := &InitResult{PromptStore: prompts}

	embedSvc, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	} else {
		result.EmbeddingService = embedSvc
	}

	sumSvc, err := CreateAndValidateSummarizerService(&settings.Summarizer)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	} else if sumSvc != nil {
		if aware, ok := sumSvc.(driven.PromptStoreAware); ok && prompts != nil {
			aware.SetPromptStore(prompts)
		}
		result.SummarizerService = sumSvc
	}

	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'canopy settings' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'canopy settings' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateSummarizerService creates a summariser service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateSummarizerService(settings *domain.SummarizerSettings) (driven.SummarizerService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateSummarizerService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'canopy settings' to fix",
			domain.ErrSummarizerUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'canopy settings' to fix",
			domain.ErrSummarizerUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// This is intended for the settings commands to validate credentials on configuration.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateSummarizerConfig validates a summariser configuration by creating a service and pinging it.
// This is intended for the settings commands to validate credentials on configuration.
func ValidateSummarizerConfig(settings *domain.SummarizerSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateSummarizerService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateSummarizerService creates the appropriate summariser service based on settings.
// Returns nil if the provider is not configured.
func CreateSummarizerService(settings *domain.SummarizerSettings) (driven.SummarizerService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaSummarizer(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAISummarizer(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicSummarizer(settings)

	default:
		return nil, fmt.Errorf("unsupported summarizer provider: %s", settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}

	cfg := ollamaembed.Config{
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		Dimensions:        dimensions,
		RequestsPerSecond: settings.RequestsPerSecond,
		CacheSize:         settings.CacheSize,
	}
	if settings.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(settings.TimeoutSeconds) * time.Second
	}

	return ollamaembed.NewEmbeddingService(cfg)
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}

	cfg := openaiembed.Config{
		APIKey:            settings.APIKey,
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		Dimensions:        dimensions,
		RequestsPerSecond: settings.RequestsPerSecond,
		CacheSize:         settings.CacheSize,
	}
	if settings.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(settings.TimeoutSeconds) * time.Second
	}

	return openaiembed.NewEmbeddingService(cfg)
}

// createOllamaSummarizer creates an Ollama summariser service.
func createOllamaSummarizer(settings *domain.SummarizerSettings) driven.SummarizerService {
	cfg := ollamallm.Config{
		BaseURL:          settings.BaseURL,
		Model:            settings.Model,
		MaxInputRunes:    settings.MaxInputRunes,
		MaxSummaryTokens: settings.MaxSummaryTokens,
	}
	if settings.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(settings.TimeoutSeconds) * time.Second
	}

	return ollamallm.NewSummarizerService(cfg)
}

// createOpenAISummarizer creates an OpenAI summariser service.
func createOpenAISummarizer(settings *domain.SummarizerSettings) (driven.SummarizerService, error) {
	cfg := openaillm.Config{
		APIKey:           settings.APIKey,
		BaseURL:          settings.BaseURL,
		Model:            settings.Model,
		MaxInputRunes:    settings.MaxInputRunes,
		MaxSummaryTokens: settings.MaxSummaryTokens,
	}
	if settings.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(settings.TimeoutSeconds) * time.Second
	}

	return openaillm.NewSummarizerService(cfg)
}

// createAnthropicSummarizer creates an Anthropic summariser service.
func createAnthropicSummarizer(settings *domain.SummarizerSettings) (driven.SummarizerService, error) {
	cfg := anthropicllm.Config{
		APIKey:           settings.APIKey,
		BaseURL:          settings.BaseURL,
		Model:            settings.Model,
		MaxInputRunes:    settings.MaxInputRunes,
		MaxSummaryTokens: settings.MaxSummaryTokens,
	}
	if settings.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(settings.TimeoutSeconds) * time.Second
	}

	return anthropicllm.NewSummarizerService(cfg)
}
