package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driving"
)

var runCmd = &cobra.Command{
	Use:   "run [query]",
	Short: "Select passages for a query",
	Long: `Runs the passage selection pipeline once over the document folder.

Documents are scored against the query (BM25 or TF-IDF), the best top_k_docs
are split into passages, ranked and deduplicated, and at most
min(top_n_passages * top_k_docs, max_output_passages) passages are printed.

The query argument overrides the query in the configuration file.`,
	Example: `  passel run "benefits of green tea"
  passel run -f ./papers -k 3 -n 2 --ranking external_rerank "caffeine content"
  passel run -o results.json "green tea"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	addSelectionFlags(runCmd)
	runCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	s, err := openServices()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, args, s)
	if err != nil {
		return err
	}

	selector, release, err := s.Workspace.Selector(cfg)
	if err != nil {
		return err
	}
	defer release()

	result, err := selectPassages(cmd.Context(), selector, cfg)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return outputResultJSON(cmd, result)
	}
	outputResult(cmd, result)
	return nil
}

func selectPassages(ctx context.Context, selector driving.SelectionService,
	cfg domain.PipelineConfig) (*domain.SelectionResult, error) {
	result, err := selector.Select(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("selection failed: %w", err)
	}
	return result, nil
}
