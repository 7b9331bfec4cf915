// Package driving defines interfaces that external actors (UI, CLI) use
// to interact with core services. These are the "driving" ports in hexagonal
// architecture terminology - they drive the application.
//
// Implementations of these interfaces live in internal/core/services:
// SelectionService runs the passage pipeline, SettingsService owns the
// configuration. Workspace is implemented by internal/di.
package driving
