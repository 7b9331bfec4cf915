// Package di wires driven adapters into the core services.
package di

import (
	"fmt"

	"github.com/custodia-labs/passel/internal/adapters/driven/ai"
	"github.com/custodia-labs/passel/internal/adapters/driven/config/file"
	"github.com/custodia-labs/passel/internal/adapters/driven/config/memory"
	"github.com/custodia-labs/passel/internal/adapters/driven/sink"
	"github.com/custodia-labs/passel/internal/connectors/filesystem"
	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/core/ports/driving"
	"github.com/custodia-labs/passel/internal/core/services"
	"github.com/custodia-labs/passel/internal/logger"
	"github.com/custodia-labs/passel/internal/normalisers"
)

// Ensure Container implements the interface.
var _ driving.Workspace = (*Container)(nil)

// Container holds the adapters shared by every invocation of the process.
type Container struct {
	store    driven.ConfigStore
	registry *normalisers.Registry
	source   *filesystem.Source
}

// New opens the configuration at configPath and builds the shared
// adapters. An empty path means ~/.passel/config.toml.
func New(configPath string) (*Container, error) {
	var (
		store *file.ConfigStore
		err   error
	)
	if configPath == "" {
		store, err = file.NewConfigStore("")
	} else {
		store, err = file.Open(configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	return NewWithStore(store), nil
}

// NewWithStore builds a container over an existing config store.
func NewWithStore(store driven.ConfigStore) *Container {
	registry := normalisers.NewDefaultRegistry()
	return &Container{
		store:    store,
		registry: registry,
		source:   filesystem.New(filesystem.WithMIMETypes(registry.SupportedMIMETypes())),
	}
}

// Settings returns the settings service. Overrides shadow the stored
// configuration in memory only.
func (c *Container) Settings(overrides map[string]any) (driving.SettingsService, error) {
	if len(overrides) == 0 {
		return services.NewSettingsService(c.store), nil
	}

	overlay := memory.NewOverlay(c.store)
	for key, value := range overrides {
		if err := overlay.Set(key, value); err != nil {
			return nil, fmt.Errorf("override %s: %w", key, err)
		}
	}
	return services.NewSettingsService(overlay), nil
}

// Selector builds a selection service for cfg. cfg is validated before
// anything is created. Embedding and rerank clients are created per call;
// the artifact sink only for debug runs.
func (c *Container) Selector(cfg domain.PipelineConfig) (driving.SelectionService, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	capabilities, err := ai.Init(cfg)
	if err != nil {
		return nil, nil, err
	}

	var (
		artifacts driven.ArtifactSink
		closeSink sink.Closer = func() error { return nil }
	)
	if cfg.Debug {
		artifacts, closeSink, err = sink.New(cfg.OutputFile)
		if err != nil {
			capabilities.Close()
			return nil, nil, fmt.Errorf("open output %s: %w", cfg.OutputFile, err)
		}
	}

	svc := services.NewSelectionService(c.source, c.registry, capabilities.EmbeddingService,
		capabilities.Reranker, artifacts)

	release := func() {
		capabilities.Close()
		if err := closeSink(); err != nil {
			logger.Warn("close output %s: %v", cfg.OutputFile, err)
		}
	}
	return svc, release, nil
}

// Watcher returns the folder watcher backing the document source.
func (c *Container) Watcher() driven.FolderWatcher {
	return c.source
}

// Close stops any folder watches.
func (c *Container) Close() error {
	return c.source.Close()
}
