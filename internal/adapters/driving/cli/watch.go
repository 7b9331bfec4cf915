package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/passel/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [query]",
	Short: "Re-run the selection whenever the document folder changes",
	Long: `Runs the passage selection pipeline, then watches the document folder and
runs it again after files are added, changed or removed. Bursts of changes
are coalesced. Press Ctrl-C to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	addSelectionFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", 500*time.Millisecond, "quiet period before re-running")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := openServices()
	if err != nil {
		return err
	}
	if s.Watcher == nil {
		return errors.New("folder watcher not configured")
	}

	debounce, err := cmd.Flags().GetDuration("debounce")
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

	ctx := cmd.Context()

	// The first run reports configuration problems, including a missing folder.
	result, err := selectPassages(ctx, selector, cfg)
	if err != nil {
		return err
	}
	outputResult(cmd, result)

	changes, err := s.Watcher.Watch(ctx, cfg.DocumentFolderPath)
	if err != nil {
		return err
	}
	cmd.PrintErrf("Watching %s for changes...\n", cfg.DocumentFolderPath)

	var rerun <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case change, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Info("%s %s", change.Type, change.URI)
			rerun = time.After(debounce)

		case <-rerun:
			rerun = nil
			cmd.Println("---")
			result, err := selectPassages(ctx, selector, cfg)
			if err != nil {
				logger.Error("%v", err)
				continue
			}
			outputResult(cmd, result)
		}
	}
}
