// Package ollama provides a summariser service adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/canopy-labs/canopy-cli/internal/adapters/driven/embedding"
	"github.com/canopy-labs/canopy-cli/internal/core/domain"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driven"
)

// Ensure SummarizerService implements the interfaces.
var (
	_ driven.SummarizerService = (*SummarizerService)(nil)
	_ driven.PromptStoreAware  = (*SummarizerService)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Ollama summariser service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// MaxInputRunes caps the content submitted for summarisation. Longer
	// content is truncated with domain.TruncationMarker appended. Zero
	// uses the default limit; negative disables truncation.
	MaxInputRunes int

	// MaxSummaryTokens caps the generated summary length (default: 256).
	MaxSummaryTokens int
}

// SummarizerService condenses content using Ollama.
type SummarizerService struct {
	client           *http.Client
	baseURL          string
	model            string
	maxInputRunes    int
	maxSummaryTokens int
	promptStore      driven.PromptStore
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewSummarizerService creates a new Ollama summariser service.
func NewSummarizerService(cfg Config) *SummarizerService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxInputRunes == 0 {
		cfg.MaxInputRunes = domain.DefaultMaxInputRunes
	}
	if cfg.MaxSummaryTokens == 0 {
		cfg.MaxSummaryTokens = domain.DefaultMaxSummaryTokens
	}

	return &SummarizerService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:          cfg.BaseURL,
		model:            cfg.Model,
		maxInputRunes:    cfg.MaxInputRunes,
		maxSummaryTokens: cfg.MaxSummaryTokens,
	}
}

// defaultSummarizePrompt is the fallback prompt when no PromptStore is configured.
const defaultSummarizePrompt = `Summarise the following file content in a short paragraph.
Be concise and capture what the content is about and its key points.

Content:
%s

Summary:`

// Summarize creates a summary of the given content. Content over the
// configured input limit is truncated before the prompt is built, so a
// given content and configuration always submit the same text.
func (s *SummarizerService) Summarize(ctx context.Context, content string) (string, error) {
	content = domain.TruncateForSummary(content, s.maxInputRunes)
	promptTemplate := s.loadPrompt(driven.PromptSummarize, defaultSummarizePrompt)
	prompt := fmt.Sprintf(promptTemplate, content)

	result, err := s.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	return strings.TrimSpace(result), nil
}

// generate submits a completion request with the summary bounds applied.
func (s *SummarizerService) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: false,
		Options: &options{
			NumPredict:  s.maxSummaryTokens,
			Temperature: 0.3,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := s.baseURL + "/api/generate"
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		endpoint,
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", embedding.ClassifyError(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return genResp.Response, nil
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *SummarizerService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// ModelName returns the name of the model being used.
func (s *SummarizerService) ModelName() string {
	return s.model
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses the hardcoded default prompt.
func (s *SummarizerService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (s *SummarizerService) Ping(ctx context.Context) error {
	endpoint := s.baseURL + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return embedding.ClassifyError(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ollama: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *SummarizerService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
