package mcp

import (
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Vectorize runs and reports vectorisation over a file tree.
	Vectorize driving.VectorizeOrchestrator

	// Search provides similarity search.
	Search driving.SearchService

	// Storage exposes vector store maintenance.
	Storage driving.StorageService

	// Settings reads application settings.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Vectorize == nil {
		return ErrMissingVectorizeService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Storage == nil {
		return ErrMissingStorageService
	}
	// Settings is optional; the settings resource degrades without it.
	return nil
}
