package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

// snippetRunes caps the raw text echoed back with a search result.
const snippetRunes = 240

// VectorizeInput is the input schema for the vectorize_all tool.
type VectorizeInput struct {
	Root string `json:"root" jsonschema:"path of the directory tree to vectorise"`
}

// VectorizeOutput is the output schema for the vectorize_all tool.
type VectorizeOutput struct {
	Processed int             `json:"processed"`
	Errors    int             `json:"errors"`
	Failures  []FailureOutput `json:"failures,omitempty"`
}

// FailureOutput describes one path that failed to vectorise.
type FailureOutput struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find similar paths"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default from settings)"`
	Mode  string `json:"mode,omitempty" jsonschema:"kind family to search: origin, summarize or all (default from settings)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Path       string  `json:"path"`
	Kind       string  `json:"kind"`
	Similarity float64 `json:"similarity"`
	Snippet    string  `json:"snippet,omitempty"`
}

// CountInput is the input schema for the storage_count tool.
type CountInput struct{}

// CountOutput is the output schema for the storage_count tool.
type CountOutput struct {
	Count int `json:"count"`
}

// ClearInput is the input schema for the clear_storage tool.
type ClearInput struct{}

// ClearOutput is the output schema for the clear_storage tool.
type ClearOutput struct {
	Cleared bool `json:"cleared"`
}

// StatusInput is the input schema for the path_status tool.
type StatusInput struct {
	Path string `json:"path" jsonschema:"path to report the vectorisation status of"`
}

// StatusOutput is the output schema for the path_status tool.
type StatusOutput struct {
	Status string `json:"status"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "vectorize_all",
		Description: "Vectorise every pending file and directory under a root path",
	}, s.handleVectorizeAll)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search indexed paths by semantic similarity",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "storage_count",
		Description: "Count the stored embedding records",
	}, s.handleStorageCount)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_storage",
		Description: "Remove every stored embedding record and reset path statuses",
	}, s.handleClearStorage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "path_status",
		Description: "Report where a path stands in the vectorisation lifecycle",
	}, s.handlePathStatus)
}

// handleVectorizeAll handles the vectorize_all tool invocation.
func (s *Server) handleVectorizeAll(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input VectorizeInput,
) (*mcp.CallToolResult, VectorizeOutput, error) {
	if input.Root == "" {
		return nil, VectorizeOutput{}, fmt.Errorf("%w: root is required", domain.ErrInvalidInput)
	}

	report, err := s.ports.Vectorize.VectorizeAll(ctx, input.Root)
	if err != nil {
		return nil, VectorizeOutput{}, err
	}

	output := VectorizeOutput{
		Processed: report.Processed,
		Errors:    report.Errors,
	}
	for _, failure := range report.Failures {
		output.Failures = append(output.Failures, FailureOutput{
			Path:  failure.Path,
			Error: failure.Err,
		})
	}

	return nil, output, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	// Zero values defer to the configured defaults.
	opts := domain.SearchOptions{
		Limit: input.Limit,
		Mode:  domain.SearchMode(input.Mode),
	}

	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			Path:       results[i].Item.Path,
			Kind:       results[i].Item.Kind.String(),
			Similarity: results[i].Similarity,
			Snippet:    snippet(results[i].Item.Raw),
		}
	}

	return nil, output, nil
}

// handleStorageCount handles the storage_count tool invocation.
func (s *Server) handleStorageCount(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ CountInput,
) (*mcp.CallToolResult, CountOutput, error) {
	count, err := s.ports.Storage.Count(ctx)
	if err != nil {
		return nil, CountOutput{}, err
	}

	return nil, CountOutput{Count: count}, nil
}

// handleClearStorage handles the clear_storage tool invocation.
func (s *Server) handleClearStorage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ClearInput,
) (*mcp.CallToolResult, ClearOutput, error) {
	if err := s.ports.Storage.Clear(ctx); err != nil {
		return nil, ClearOutput{}, err
	}

	return nil, ClearOutput{Cleared: true}, nil
}

// handlePathStatus handles the path_status tool invocation.
func (s *Server) handlePathStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	if input.Path == "" {
		return nil, StatusOutput{}, fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}

	status := s.ports.Vectorize.PathStatus(domain.NormalisePath(input.Path))

	return nil, StatusOutput{Status: status.String()}, nil
}

// snippet shortens raw record text for tool output.
func snippet(raw string) string {
	runes := []rune(raw)
	if len(runes) <= snippetRunes {
		return raw
	}
	return string(runes[:snippetRunes]) + "..."
}
