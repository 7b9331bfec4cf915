package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driving"
)

// mockWorkspace is a mock implementation of driving.Workspace.
type mockWorkspace struct {
	cfg         domain.PipelineConfig
	getErr      error
	settingsErr error
	path        string
	saved       *domain.PipelineConfig

	selection   *mockSelection
	selectorErr error

	mu        sync.Mutex
	overrides []map[string]any
	released  int
}

func (m *mockWorkspace) Settings(overrides map[string]any) (driving.SettingsService, error) {
	m.mu.Lock()
	m.overrides = append(m.overrides, overrides)
	m.mu.Unlock()
	if m.settingsErr != nil {
		return nil, m.settingsErr
	}
	return &mockSettings{ws: m, overrides: overrides}, nil
}

func (m *mockWorkspace) Selector(_ domain.PipelineConfig) (driving.SelectionService, func(), error) {
	if m.selectorErr != nil {
		return nil, nil, m.selectorErr
	}
	return m.selection, func() {
		m.mu.Lock()
		m.released++
		m.mu.Unlock()
	}, nil
}

func (m *mockWorkspace) lastOverrides() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.overrides) == 0 {
		return nil
	}
	return m.overrides[len(m.overrides)-1]
}

// mockSettings is a mock implementation of driving.SettingsService that
// applies the overrides it understands.
type mockSettings struct {
	ws        *mockWorkspace
	overrides map[string]any
}

func (m *mockSettings) Get() (domain.PipelineConfig, error) {
	cfg := m.ws.cfg
	if v, ok := m.overrides["query"].(string); ok {
		cfg.Query = v
	}
	if v, ok := m.overrides["document_folder_path"].(string); ok {
		cfg.DocumentFolderPath = v
	}
	if v, ok := m.overrides["top_k_docs"].(int); ok {
		cfg.TopKDocs = v
	}
	if v, ok := m.overrides["output_file"].(string); ok {
		cfg.OutputFile = v
	}
	if v, ok := m.overrides["debug"].(bool); ok {
		cfg.Debug = v
	}
	return cfg, m.ws.getErr
}

func (m *mockSettings) Save(cfg domain.PipelineConfig) error {
	m.ws.saved = &cfg
	return nil
}

func (m *mockSettings) GetDefaults() domain.PipelineConfig { return domain.DefaultPipelineConfig() }
func (m *mockSettings) Path() string                       { return m.ws.path }

// mockSelection is a mock implementation of driving.SelectionService.
type mockSelection struct {
	result *domain.SelectionResult
	err    error

	mu   sync.Mutex
	cfgs []domain.PipelineConfig
}

func (m *mockSelection) Select(_ context.Context, cfg domain.PipelineConfig) (*domain.SelectionResult, error) {
	m.mu.Lock()
	m.cfgs = append(m.cfgs, cfg)
	m.mu.Unlock()
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

func (m *mockSelection) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cfgs)
}

// mockWatcher is a mock implementation of driven.FolderWatcher.
type mockWatcher struct {
	changes chan domain.DocumentChange
	err     error
	folder  string
}

func (m *mockWatcher) Watch(_ context.Context, folder string) (<-chan domain.DocumentChange, error) {
	m.folder = folder
	if m.err != nil {
		return nil, m.err
	}
	return m.changes, nil
}

func testResult() *domain.SelectionResult {
	return &domain.SelectionResult{
		RunID: "run-1",
		Query: domain.Query{Raw: "green tea"},
		Candidates: []domain.ScoredCandidate{
			{DocumentID: "tea.txt", Passage: "Green tea contains catechins.", Score: 0.91},
			{DocumentID: "coffee.md", Passage: "Coffee beans are roasted.", Score: 0.12},
		},
		Stats: domain.SelectionStats{DocumentsRead: 2, DocumentsRetrieved: 2, PassagesRanked: 4},
	}
}

// setupTestServices installs mock services for the duration of the test.
func setupTestServices(t *testing.T) (*mockWorkspace, *mockWatcher) {
	t.Helper()

	cfg := domain.DefaultPipelineConfig()
	cfg.Query = "green tea"
	ws := &mockWorkspace{
		cfg:       cfg,
		path:      "/home/user/.passel/config.toml",
		selection: &mockSelection{result: testResult()},
	}
	watcher := &mockWatcher{changes: make(chan domain.DocumentChange)}

	oldOpener, oldServices := opener, services
	services = nil
	opener = func(string) (*Services, error) {
		return &Services{Workspace: ws, Watcher: watcher}, nil
	}

	t.Cleanup(func() {
		opener, services = oldOpener, oldServices
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return ws, watcher
}

// resetFlags restores every flag to its default, since commands are
// package-level and keep flag state between executions.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(args ...string) (string, string, error) {
	return executeContext(context.Background(), args...)
}

func executeContext(ctx context.Context, args ...string) (string, string, error) {
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)

	// Subcommands keep the context of their previous execution.
	if cmd, _, err := rootCmd.Find(args); err == nil {
		cmd.SetContext(ctx)
	}

	err := rootCmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}
