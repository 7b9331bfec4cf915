// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// SelectionService runs the passage pipeline over a document folder;
// SettingsService turns the configuration store into a PipelineConfig.
package services
