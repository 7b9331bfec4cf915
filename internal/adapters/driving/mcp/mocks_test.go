package mcp

import (
	"context"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driving"
)

// mockWorkspace is a mock implementation of driving.Workspace.
type mockWorkspace struct {
	settings    *mockSettings
	settingsErr error
	selection   *mockSelection
	selectorErr error

	overrides map[string]any
	released  bool
}

func (m *mockWorkspace) Settings(overrides map[string]any) (driving.SettingsService, error) {
	m.overrides = overrides
	if m.settingsErr != nil {
		return nil, m.settingsErr
	}
	if m.settings == nil {
		m.settings = &mockSettings{cfg: domain.DefaultPipelineConfig()}
	}
	cfg := m.settings.cfg
	if q, ok := overrides["query"].(string); ok {
		cfg.Query = q
	}
	if k, ok := overrides["top_k_docs"].(int); ok {
		cfg.TopKDocs = k
	}
	return &mockSettings{cfg: cfg, err: m.settings.err}, nil
}

func (m *mockWorkspace) Selector(_ domain.PipelineConfig) (driving.SelectionService, func(), error) {
	if m.selectorErr != nil {
		return nil, nil, m.selectorErr
	}
	if m.selection == nil {
		m.selection = &mockSelection{}
	}
	return m.selection, func() { m.released = true }, nil
}

// mockSettings is a mock implementation of driving.SettingsService.
type mockSettings struct {
	cfg domain.PipelineConfig
	err error
}

func (m *mockSettings) Get() (domain.PipelineConfig, error) { return m.cfg, m.err }
func (m *mockSettings) GetDefaults() domain.PipelineConfig  { return domain.DefaultPipelineConfig() }
func (m *mockSettings) Path() string                        { return "/tmp/passel.toml" }

func (m *mockSettings) Save(cfg domain.PipelineConfig) error {
	m.cfg = cfg
	return nil
}

// mockSelection is a mock implementation of driving.SelectionService.
type mockSelection struct {
	result *domain.SelectionResult
	err    error
	cfg    domain.PipelineConfig
}

func (m *mockSelection) Select(_ context.Context, cfg domain.PipelineConfig) (*domain.SelectionResult, error) {
	m.cfg = cfg
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.SelectionResult{Candidates: []domain.ScoredCandidate{}}, nil
	}
	return m.result, nil
}

func (m *mockSelection) SelectDocuments(
	ctx context.Context,
	cfg domain.PipelineConfig,
	_ []domain.Document,
) (*domain.SelectionResult, error) {
	return m.Select(ctx, cfg)
}
