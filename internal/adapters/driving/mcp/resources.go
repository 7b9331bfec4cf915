package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/passel/internal/core/domain"
)

// uriScheme is the custom URI scheme for passel resources.
const uriScheme = "passel://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "config",
		Name:        "config",
		Description: "Effective pipeline configuration used when tool arguments are omitted",
		MIMEType:    "application/json",
	}, s.handleConfigResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "strategies",
		Name:        "strategies",
		Description: "Split methods, retrieval algorithms and ranking methods accepted by select_passages",
		MIMEType:    "application/json",
	}, s.handleStrategiesResource)
}

// handleConfigResource returns the stored configuration with defaults
// applied. API keys are masked.
func (s *Server) handleConfigResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	settings, err := s.ports.Workspace.Settings(nil)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	cfg, err := settings.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	options := make(map[string]any)
	for _, o := range cfg.Options() {
		options[o.Name] = o.Value
	}
	return jsonResource(req.Params.URI, options)
}

// handleStrategiesResource lists every pluggable strategy.
func (s *Server) handleStrategiesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, strategies())
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

type strategy struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func strategies() map[string][]strategy {
	out := map[string][]strategy{}
	for _, m := range domain.AllSplitMethods() {
		out["split_method"] = append(out["split_method"], strategy{m.String(), m.Description()})
	}
	for _, a := range domain.AllRetrievalAlgorithms() {
		out["retrieval_algorithm"] = append(out["retrieval_algorithm"], strategy{a.String(), a.Description()})
	}
	for _, m := range domain.AllRankingMethods() {
		out["ranking_method"] = append(out["ranking_method"], strategy{m.String(), m.Description()})
	}
	return out
}
