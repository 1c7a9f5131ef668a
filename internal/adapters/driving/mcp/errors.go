// Package mcp provides an MCP (Model Context Protocol) server adapter for Canopy.
// It enables AI assistants like Claude to vectorise and search a local file tree.
package mcp

import "errors"

// ErrMissingVectorizeService is returned when the vectorize orchestrator is not provided.
var ErrMissingVectorizeService = errors.New("mcp: vectorize service is required")

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingStorageService is returned when the storage service is not provided.
var ErrMissingStorageService = errors.New("mcp: storage service is required")
