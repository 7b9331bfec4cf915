package driving

import "github.com/custodia-labs/passel/internal/core/domain"

// SettingsService manages pipeline settings.
type SettingsService interface {
	// Get builds the pipeline configuration from stored settings,
	// filling in defaults for anything not set.
	Get() (domain.PipelineConfig, error)

	// Save persists the pipeline configuration.
	Save(cfg domain.PipelineConfig) error

	// GetDefaults returns default settings.
	GetDefaults() domain.PipelineConfig

	// Path returns where settings are stored.
	Path() string
}
