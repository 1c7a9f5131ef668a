package mcp

import (
	"context"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driving"
)

// mockVectorizeService is a mock implementation of driving.VectorizeOrchestrator.
type mockVectorizeService struct {
	report     *domain.VectorizeReport
	status     driving.VectorizeStatus
	pathStatus domain.PathStatus
	gotRoot    string
	gotPath    string
	err        error
}

func (m *mockVectorizeService) VectorizeAll(_ context.Context, root string) (*domain.VectorizeReport, error) {
	m.gotRoot = root
	return m.report, m.err
}

func (m *mockVectorizeService) Status() driving.VectorizeStatus {
	return m.status
}

func (m *mockVectorizeService) PathStatus(path string) domain.PathStatus {
	m.gotPath = path
	return m.pathStatus
}

func (m *mockVectorizeService) SubscribeStatus(_ func(string, domain.PathStatus)) func() {
	return func() {}
}

func (m *mockVectorizeService) InvalidatePath(_ context.Context, _, _ string) error {
	return m.err
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results  []domain.SearchResult
	gotQuery string
	gotOpts  domain.SearchOptions
	err      error
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.gotQuery = query
	m.gotOpts = opts
	return m.results, m.err
}

// mockStorageService is a mock implementation of driving.StorageService.
type mockStorageService struct {
	count   int
	cleared bool
	err     error
}

func (m *mockStorageService) Count(_ context.Context) (int, error) {
	return m.count, m.err
}

func (m *mockStorageService) Clear(_ context.Context) error {
	if m.err == nil {
		m.cleared = true
	}
	return m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings *domain.AppSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	return m.settings, m.err
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error {
	return m.err
}

func (m *mockSettingsService) SetSearchMode(_ domain.SearchMode) error {
	return m.err
}

func (m *mockSettingsService) SetEmbeddingProvider(_ domain.AIProvider, _, _ string) error {
	return m.err
}

func (m *mockSettingsService) SetSummarizerProvider(_ domain.AIProvider, _, _ string) error {
	return m.err
}

func (m *mockSettingsService) SetKindEnabled(_ domain.Kind, _ bool) error {
	return m.err
}

func (m *mockSettingsService) SetExclusions(_ []string) error {
	return m.err
}

func (m *mockSettingsService) SetWorkers(_ int) error {
	return m.err
}

func (m *mockSettingsService) Validate() error {
	return m.err
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.err
}

func (m *mockSettingsService) ValidateSummarizerConfig() error {
	return m.err
}

// validPorts returns a Ports with every required service mocked.
func validPorts() *Ports {
	return &Ports{
		Vectorize: &mockVectorizeService{},
		Search:    &mockSearchService{},
		Storage:   &mockStorageService{},
	}
}
