package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/passel/internal/core/domain"
)

// selectionFlags maps command line flags to configuration options.
var selectionFlags = []struct {
	flag string
	key  string
}{
	{"folder", "document_folder_path"},
	{"preprocess", "preprocess_query"},
	{"top-k", "top_k_docs"},
	{"top-n", "top_n_passages"},
	{"max-output", "max_output_passages"},
	{"max-length", "passage_max_length"},
	{"overlap", "passage_overlap"},
	{"split", "split_method"},
	{"retrieval", "retrieval_algorithm"},
	{"ranking", "ranking_method"},
	{"output", "output_file"},
	{"threshold", "similarity_threshold"},
	{"workers", "workers"},
	{"debug", "debug"},
}

// addSelectionFlags registers the pipeline option flags on cmd. Defaults
// are left empty so that unset flags fall through to the configuration.
func addSelectionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("folder", "f", "", "document folder (document_folder_path)")
	f.Bool("preprocess", false, "normalise the query like document text (preprocess_query)")
	f.IntP("top-k", "k", 0, "documents kept after retrieval (top_k_docs)")
	f.IntP("top-n", "n", 0, "passages kept per document (top_n_passages)")
	f.Int("max-output", 0, "upper bound on returned passages (max_output_passages)")
	f.Int("max-length", 0, "passage length in tokens or characters (passage_max_length)")
	f.Int("overlap", 0, "overlap between consecutive passages (passage_overlap)")
	f.String("split", "", "split method: tokens, sentences or semantic (split_method)")
	f.String("retrieval", "", "retrieval algorithm: bm25 or tfidf (retrieval_algorithm)")
	f.String("ranking", "", "ranking method: embedding_similarity or external_rerank (ranking_method)")
	f.StringP("output", "o", "", "write results to this file, .json or .db (output_file, implies --debug)")
	f.Float64("threshold", 0, "deduplication similarity threshold (similarity_threshold)")
	f.Int("workers", 0, "documents processed concurrently (workers)")
	f.Bool("debug", false, "write results to output_file (debug)")
}

// selectionOverrides collects the flags set on the command line and the
// optional query argument as configuration overrides.
func selectionOverrides(cmd *cobra.Command, args []string) (map[string]any, error) {
	values := make(map[string]any)
	for _, sf := range selectionFlags {
		flag := cmd.Flags().Lookup(sf.flag)
		if flag == nil || !flag.Changed {
			continue
		}

		var (
			v   any
			err error
		)
		switch flag.Value.Type() {
		case "int":
			v, err = cmd.Flags().GetInt(sf.flag)
		case "bool":
			v, err = cmd.Flags().GetBool(sf.flag)
		case "float64":
			v, err = cmd.Flags().GetFloat64(sf.flag)
		default:
			v = flag.Value.String()
		}
		if err != nil {
			return nil, fmt.Errorf("reading --%s: %w", sf.flag, err)
		}
		values[sf.key] = v
	}

	if _, ok := values["output_file"]; ok {
		values["debug"] = true
	}
	if len(args) > 0 {
		values["query"] = args[0]
	}
	return values, nil
}

// loadConfig builds the run configuration: stored settings with the
// command line layered on top.
func loadConfig(cmd *cobra.Command, args []string, s *Services) (domain.PipelineConfig, error) {
	overrides, err := selectionOverrides(cmd, args)
	if err != nil {
		return domain.PipelineConfig{}, err
	}

	settings, err := s.Workspace.Settings(overrides)
	if err != nil {
		return domain.PipelineConfig{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings.Get()
}
