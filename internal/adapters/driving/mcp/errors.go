// Package mcp provides an MCP (Model Context Protocol) server adapter for passel.
// It lets AI assistants select passages from a local document folder.
package mcp

import "errors"

// ErrMissingWorkspace is returned when no workspace is provided.
var ErrMissingWorkspace = errors.New("mcp: workspace is required")

// ErrEmptyQuery is returned when a tool call carries no query.
var ErrEmptyQuery = errors.New("mcp: query is required")
