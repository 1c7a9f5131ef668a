package driven

import "context"

// SummarizerService condenses file content into short summaries for the
// summarize embedding space. This is an optional service - when nil,
// summarize kinds are disabled while origin kinds keep working.
//
// The input policy lives inside the capability: content longer than the
// configured maximum is truncated to that many runes with
// domain.TruncationMarker appended before submission, so a given content
// and configuration always submit the same text.
//
// Failures are classified the same way as EmbeddingService: timeout and
// unreachable conditions wrap the matching domain sentinels and name the
// endpoint.
type SummarizerService interface {
	// Summarize returns a summary of the given content.
	Summarize(ctx context.Context, content string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
