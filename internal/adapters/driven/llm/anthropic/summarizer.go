// Package anthropic provides a summariser service adapter using Anthropic API.
package anthropic

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
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 120 * time.Second

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic summariser service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model to use (default: claude-3-5-sonnet-latest).
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

// SummarizerService condenses content using Anthropic API.
type SummarizerService struct {
	client           *http.Client
	baseURL          string
	apiKey           string
	model            string
	maxInputRunes    int
	maxSummaryTokens int
	promptStore      driven.PromptStore
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature,omitempty"`
}

// messagesMessage is the Anthropic message format.
type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewSummarizerService creates a new Anthropic summariser service.
func NewSummarizerService(cfg Config) (*SummarizerService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
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
		apiKey:           cfg.APIKey,
		model:            cfg.Model,
		maxInputRunes:    cfg.MaxInputRunes,
		maxSummaryTokens: cfg.MaxSummaryTokens,
	}, nil
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

	result, err := s.sendMessage(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	return strings.TrimSpace(result), nil
}

// sendMessage submits a single-turn message with the summary bounds
// applied.
func (s *SummarizerService) sendMessage(ctx context.Context, prompt string) (string, error) {
	reqBody := messagesRequest{
		Model: s.model,
		Messages: []messagesMessage{
			{Role: "user", Content: prompt},
		},
		// Anthropic requires max_tokens to be set
		MaxTokens:   s.maxSummaryTokens,
		Temperature: 0.3,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := s.baseURL + "/v1/messages"
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
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", embedding.ClassifyError(endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if msgResp.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", msgResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(body))
	}

	if len(msgResp.Content) == 0 {
		return "", fmt.Errorf("anthropic: no response content returned")
	}

	// Concatenate all text content blocks
	var result strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}

	return result.String(), nil
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

// Ping validates the service is reachable by checking the /v1/models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (s *SummarizerService) Ping(ctx context.Context) error {
	endpoint := s.baseURL + "/v1/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: failed to create ping request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return embedding.ClassifyError(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("anthropic: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("anthropic: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *SummarizerService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
