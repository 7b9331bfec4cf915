package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SelectInput is the input schema for the select_passages tool.
// Zero values fall back to the stored configuration.
type SelectInput struct {
	Query              string `json:"query" jsonschema:"the natural-language question to select passages for"`
	Folder             string `json:"folder,omitempty" jsonschema:"document folder to read (default from configuration)"`
	TopKDocs           int    `json:"top_k_docs,omitempty" jsonschema:"number of documents to keep after retrieval"`
	TopNPassages       int    `json:"top_n_passages,omitempty" jsonschema:"passages to keep per document"`
	MaxOutputPassages  int    `json:"max_output_passages,omitempty" jsonschema:"upper bound on returned passages"`
	SplitMethod        string `json:"split_method,omitempty" jsonschema:"tokens, sentences or semantic"`
	RetrievalAlgorithm string `json:"retrieval_algorithm,omitempty" jsonschema:"bm25 or tfidf"`
	RankingMethod      string `json:"ranking_method,omitempty" jsonschema:"embedding_similarity or external_rerank"`
	PreprocessQuery    bool   `json:"preprocess_query,omitempty" jsonschema:"normalise the query like document text"`
}

// SelectOutput is the output schema for the select_passages tool.
type SelectOutput struct {
	RunID    string          `json:"run_id"`
	Results  []PassageOutput `json:"results"`
	Count    int             `json:"count"`
	Warnings []string        `json:"warnings,omitempty"`
}

// PassageOutput represents a single selected passage.
type PassageOutput struct {
	Document string  `json:"document"`
	Passage  string  `json:"passage"`
	Score    float64 `json:"score"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "select_passages",
		Description: "Select the passages of a local document folder most relevant to a question",
	}, s.handleSelect)
}

// overrides maps the non-zero tool arguments to configuration options.
func (in SelectInput) overrides() map[string]any {
	values := map[string]any{"query": strings.TrimSpace(in.Query)}
	if in.Folder != "" {
		values["document_folder_path"] = in.Folder
	}
	if in.TopKDocs != 0 {
		values["top_k_docs"] = in.TopKDocs
	}
	if in.TopNPassages != 0 {
		values["top_n_passages"] = in.TopNPassages
	}
	if in.MaxOutputPassages != 0 {
		values["max_output_passages"] = in.MaxOutputPassages
	}
	if in.SplitMethod != "" {
		values["split_method"] = in.SplitMethod
	}
	if in.RetrievalAlgorithm != "" {
		values["retrieval_algorithm"] = in.RetrievalAlgorithm
	}
	if in.RankingMethod != "" {
		values["ranking_method"] = in.RankingMethod
	}
	if in.PreprocessQuery {
		values["preprocess_query"] = true
	}
	// Tool calls never write artifacts.
	values["debug"] = false
	return values
}

// handleSelect handles the select_passages tool invocation.
func (s *Server) handleSelect(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SelectInput,
) (*mcp.CallToolResult, SelectOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SelectOutput{}, ErrEmptyQuery
	}

	settings, err := s.ports.Workspace.Settings(input.overrides())
	if err != nil {
		return nil, SelectOutput{}, err
	}
	cfg, err := settings.Get()
	if err != nil {
		return nil, SelectOutput{}, err
	}

	selector, release, err := s.ports.Workspace.Selector(cfg)
	if err != nil {
		return nil, SelectOutput{}, err
	}
	defer release()

	result, err := selector.Select(ctx, cfg)
	if err != nil {
		return nil, SelectOutput{}, fmt.Errorf("select passages: %w", err)
	}

	output := SelectOutput{
		RunID:    result.RunID,
		Results:  make([]PassageOutput, len(result.Candidates)),
		Count:    len(result.Candidates),
		Warnings: result.Warnings,
	}
	for i, c := range result.Candidates {
		output.Results[i] = PassageOutput{
			Document: c.DocumentID,
			Passage:  c.Passage,
			Score:    c.Score,
		}
	}

	return nil, output, nil
}
