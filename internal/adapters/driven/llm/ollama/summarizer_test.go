package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

// newGenerateServer serves /api/generate, capturing the submitted prompt.
func newGenerateServer(t *testing.T, reply string, lastPrompt *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*lastPrompt, _ = req["prompt"].(string)

		opts, ok := req["options"].(map[string]any)
		require.True(t, ok, "options should be set")
		assert.InDelta(t, 0.3, opts["temperature"], 1e-9)
		assert.Greater(t, opts["num_predict"], float64(0))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"response": reply, "done": true})
	}))
}

func TestSummarizerService_Summarize(t *testing.T) {
	var lastPrompt string
	server := newGenerateServer(t, "  a tidy summary\n", &lastPrompt)
	defer server.Close()

	svc := NewSummarizerService(Config{BaseURL: server.URL})

	summary, err := svc.Summarize(context.Background(), "some file content")
	require.NoError(t, err)
	assert.Equal(t, "a tidy summary", summary, "whitespace should be trimmed")
	assert.Contains(t, lastPrompt, "some file content")
}

func TestSummarizerService_Summarize_TruncatesLongInput(t *testing.T) {
	var lastPrompt string
	server := newGenerateServer(t, "summary", &lastPrompt)
	defer server.Close()

	svc := NewSummarizerService(Config{BaseURL: server.URL, MaxInputRunes: 10})

	_, err := svc.Summarize(context.Background(), "0123456789 tail that must not survive")
	require.NoError(t, err)
	assert.Contains(t, lastPrompt, "0123456789"+domain.TruncationMarker)
	assert.NotContains(t, lastPrompt, "tail that must not survive")
}

func TestSummarizerService_Summarize_ShortInputUntouched(t *testing.T) {
	var lastPrompt string
	server := newGenerateServer(t, "summary", &lastPrompt)
	defer server.Close()

	svc := NewSummarizerService(Config{BaseURL: server.URL, MaxInputRunes: 100})

	_, err := svc.Summarize(context.Background(), "short content")
	require.NoError(t, err)
	assert.NotContains(t, lastPrompt, domain.TruncationMarker)
}

func TestSummarizerService_Summarize_CustomPrompt(t *testing.T) {
	var lastPrompt string
	server := newGenerateServer(t, "summary", &lastPrompt)
	defer server.Close()

	svc := NewSummarizerService(Config{BaseURL: server.URL})
	svc.SetPromptStore(stubPromptStore{prompt: "Condense: %s"})

	_, err := svc.Summarize(context.Background(), "the content")
	require.NoError(t, err)
	assert.Equal(t, "Condense: the content", lastPrompt)
}

func TestSummarizerService_Summarize_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewSummarizerService(Config{BaseURL: server.URL})

	_, err := svc.Summarize(context.Background(), "content")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestSummarizerService_Defaults(t *testing.T) {
	svc := NewSummarizerService(Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.NoError(t, svc.Close())
}

// stubPromptStore returns a fixed prompt for any name.
type stubPromptStore struct {
	prompt string
}

func (s stubPromptStore) Load(string) (string, error) { return s.prompt, nil }
func (s stubPromptStore) Reload()                     {}
