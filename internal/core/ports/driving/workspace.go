package driving

import "github.com/custodia-labs/passel/internal/core/domain"

// Workspace builds the services one invocation needs. Commands and MCP
// tools layer their arguments over the stored configuration through it.
type Workspace interface {
	// Settings returns settings with overrides layered over the stored
	// configuration. Keys are configuration option names.
	// Saving through an overlaid service does not touch the stored file.
	Settings(overrides map[string]any) (SettingsService, error)

	// Selector builds a selection service with the capabilities cfg
	// names. The returned function releases them.
	Selector(cfg domain.PipelineConfig) (SelectionService, func(), error)
}
