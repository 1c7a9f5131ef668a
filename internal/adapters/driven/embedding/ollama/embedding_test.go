package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEmbedServer serves /api/embeddings returning the given vector and
// counts requests.
func newEmbedServer(t *testing.T, vector []float64, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		calls.Add(1)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req["model"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": vector})
	}))
}

func TestEmbeddingService_Embed(t *testing.T) {
	var calls atomic.Int32
	server := newEmbedServer(t, []float64{0.1, 0.2, 0.3}, &calls)
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL, CacheSize: -1})

	vector, err := svc.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbeddingService_Embed_CacheHit(t *testing.T) {
	var calls atomic.Int32
	server := newEmbedServer(t, []float64{0.5, 0.6}, &calls)
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	first, err := svc.Embed(context.Background(), "same text")
	require.NoError(t, err)
	second, err := svc.Embed(context.Background(), "same text")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "second call should hit the cache")
}

func TestEmbeddingService_Embed_CacheDisabled(t *testing.T) {
	var calls atomic.Int32
	server := newEmbedServer(t, []float64{0.5, 0.6}, &calls)
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL, CacheSize: -1})

	_, err := svc.Embed(context.Background(), "same text")
	require.NoError(t, err)
	_, err = svc.Embed(context.Background(), "same text")
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbeddingService_Embed_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL, CacheSize: -1})

	_, err := svc.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestEmbeddingService_EmbedBatch(t *testing.T) {
	var calls atomic.Int32
	server := newEmbedServer(t, []float64{1, 2}, &calls)
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL, CacheSize: -1})

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, embeddings, 3)
	assert.Equal(t, int32(3), calls.Load(), "one request per text")
}

func TestEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.NoError(t, svc.Close())
}

func TestEmbeddingService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestEmbeddingService_Ping_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})
	assert.Error(t, svc.Ping(context.Background()))
}
