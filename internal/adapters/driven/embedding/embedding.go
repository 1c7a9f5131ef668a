// Package embedding carries the pieces shared by the embedding provider
// adapters: an LRU cache keyed by model and text, request throttling, and
// classification of transport failures into domain provider errors.
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

// DefaultCacheSize is used when a non-positive cache size is requested.
const DefaultCacheSize = 512

// Cache is an in-memory LRU cache of embeddings keyed by the hash of the
// model name and input text. The same text embedded under a different
// model misses.
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache creates an embedding cache with LRU eviction.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		// Only reachable with a non-positive size, which is already
		// substituted above.
		cache, _ = lru.New[string, []float32](DefaultCacheSize)
	}
	return &Cache{cache: cache}
}

// Get retrieves a cached embedding. The returned slice is a copy so
// caller mutations cannot poison the cached value.
func (c *Cache) Get(model, text string) ([]float32, bool) {
	vector, ok := c.cache.Get(cacheKey(model, text))
	if !ok {
		return nil, false
	}
	out := make([]float32, len(vector))
	copy(out, vector)
	return out, true
}

// Put stores an embedding, evicting the least recently used entry when
// the cache is full.
func (c *Cache) Put(model, text string, vector []float32) {
	c.cache.Add(cacheKey(model, text), vector)
}

// Len returns the number of cached embeddings.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.cache.Purge()
}

// cacheKey hashes the model name and text into a fixed-size key.
func cacheKey(model, text string) string {
	h := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(h[:])
}

// Limiter returns a token-bucket limiter for the given sustained request
// rate, or nil when the rate is non-positive and throttling is disabled.
// Callers Wait(ctx) on the limiter before each provider request.
func Limiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}

// ClassifyError maps a transport error to the domain provider errors:
// deadline overruns wrap domain.ErrProviderTimeout, connection-level
// failures wrap domain.ErrProviderUnreachable, and anything else is
// returned wrapped with the endpoint only. Cancellation is not a
// provider fault and stays unclassified.
func ClassifyError(endpoint string, err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", domain.ErrProviderTimeout, endpoint, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %s: %v", domain.ErrProviderTimeout, endpoint, err)
	case isConnectionError(err):
		return fmt.Errorf("%w: %s: %v", domain.ErrProviderUnreachable, endpoint, err)
	default:
		return fmt.Errorf("%s: %w", endpoint, err)
	}
}

// isConnectionError reports whether err is a connection-level failure
// such as a refused dial or a failed DNS lookup.
func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
