package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/passel/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/passel/internal/core/domain"
)

// resultJSON is the --json shape of a run.
type resultJSON struct {
	RunID    string                   `json:"run_id"`
	Query    string                   `json:"query"`
	Results  []domain.ScoredCandidate `json:"results"`
	Stats    domain.SelectionStats    `json:"stats"`
	Warnings []string                 `json:"warnings,omitempty"`
}

func outputResultJSON(cmd *cobra.Command, result *domain.SelectionResult) error {
	data, err := json.MarshalIndent(resultJSON{
		RunID:    result.RunID,
		Query:    result.Query.Raw,
		Results:  result.Candidates,
		Stats:    result.Stats,
		Warnings: result.Warnings,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// outputResult prints the passages as Document / Passage / Score blocks,
// styled when writing to a terminal.
func outputResult(cmd *cobra.Command, result *domain.SelectionResult) {
	out := cmd.OutOrStdout()
	if isTerminal(out) {
		outputResultStyled(out, result, styles.DefaultStyles())
	} else {
		outputResultPlain(out, result)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}

func outputResultPlain(w io.Writer, result *domain.SelectionResult) {
	if len(result.Candidates) == 0 {
		fmt.Fprintln(w, "No passages selected.")
		return
	}

	for _, c := range result.Candidates {
		fmt.Fprintf(w, "Document: %s\n", c.DocumentID)
		fmt.Fprintf(w, "Passage: %s\n", c.Passage)
		fmt.Fprintf(w, "Score: %.4f\n", c.Score)
		fmt.Fprintln(w)
	}
}

func outputResultStyled(w io.Writer, result *domain.SelectionResult, s *styles.Styles) {
	if len(result.Candidates) == 0 {
		fmt.Fprintln(w, s.Muted.Render("No passages selected."))
		return
	}

	for i, c := range result.Candidates {
		fmt.Fprintf(w, "%s %s  %s %s\n",
			s.Label.Render(fmt.Sprintf("[%d]", i+1)),
			s.Document.Render(c.DocumentID),
			s.Label.Render("score"),
			s.Score.Render(fmt.Sprintf("%.4f", c.Score)))
		fmt.Fprintln(w, s.Passage.Render(strings.TrimSpace(c.Passage)))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, s.Muted.Render(summary(result)))
}

// summary describes a run in one line.
func summary(result *domain.SelectionResult) string {
	st := result.Stats
	line := fmt.Sprintf("%d passages from %d of %d documents in %s",
		len(result.Candidates), st.DocumentsRetrieved, st.DocumentsRead, result.Duration.Round(time.Millisecond))
	if st.DocumentsSkipped > 0 || st.DocumentsFailed > 0 {
		line += fmt.Sprintf(" (%d skipped, %d failed)", st.DocumentsSkipped, st.DocumentsFailed)
	}
	return line
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
