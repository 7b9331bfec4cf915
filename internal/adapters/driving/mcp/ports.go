package mcp

import (
	"github.com/custodia-labs/passel/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Workspace builds settings and selection services per tool call.
	Workspace driving.Workspace
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Workspace == nil {
		return ErrMissingWorkspace
	}
	return nil
}
