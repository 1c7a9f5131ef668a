package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Canopy resources.
	uriScheme = "canopy://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the current settings.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "settings",
		Name:        "settings",
		Description: "Current application settings with credentials redacted",
		MIMEType:    "application/json",
	}, s.handleSettingsResource)

	// Static resource for the vectorisation run state.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "vectorize-status",
		Description: "State of the active or most recent vectorisation run",
		MIMEType:    "application/json",
	}, s.handleStatusResource)
}

// handleSettingsResource returns the current settings. API keys never
// leave the process.
func (s *Server) handleSettingsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Settings == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "{}",
			}},
		}, nil
	}

	settings, err := s.ports.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	type providerInfo struct {
		Provider string `json:"provider"`
		Model    string `json:"model"`
		BaseURL  string `json:"base_url,omitempty"`
	}

	view := struct {
		Embedding   providerInfo `json:"embedding"`
		Summarizer  providerInfo `json:"summarizer"`
		Kinds       []string     `json:"kinds"`
		Workers     int          `json:"workers"`
		Exclusions  []string     `json:"exclusions,omitempty"`
		SearchLimit int          `json:"search_limit"`
		SearchMode  string       `json:"search_mode"`
	}{
		Embedding: providerInfo{
			Provider: settings.Embedding.Provider.String(),
			Model:    settings.Embedding.Model,
			BaseURL:  settings.Embedding.BaseURL,
		},
		Summarizer: providerInfo{
			Provider: settings.Summarizer.Provider.String(),
			Model:    settings.Summarizer.Model,
			BaseURL:  settings.Summarizer.BaseURL,
		},
		Kinds:       enabledKindNames(settings.Kinds),
		Workers:     settings.Vectorize.Workers,
		Exclusions:  settings.Vectorize.Exclusions,
		SearchLimit: settings.Search.DefaultLimit,
		SearchMode:  settings.Search.DefaultMode.String(),
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling settings: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleStatusResource returns a snapshot of the vectorisation run.
func (s *Server) handleStatusResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	status := s.ports.Vectorize.Status()

	view := struct {
		Running   bool `json:"running"`
		Processed int  `json:"processed"`
		Errors    int  `json:"errors"`
	}{
		Running:   status.Running,
		Processed: status.Processed,
		Errors:    status.Errors,
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// enabledKindNames lists the switched-on kinds in canonical order.
func enabledKindNames(kinds domain.KindSettings) []string {
	all := append(domain.FileKinds(), domain.DirectoryKinds()...)
	names := make([]string, 0, len(all))
	for _, kind := range all {
		if kinds.Enabled(kind) {
			names = append(names, kind.String())
		}
	}
	return names
}
