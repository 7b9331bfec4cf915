// Package cli implements the passel command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/core/ports/driving"
	"github.com/custodia-labs/passel/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var (
	configPath string
	verbose    bool
)

// Services are the ports commands run against.
type Services struct {
	Workspace driving.Workspace
	Watcher   driven.FolderWatcher

	// Close releases the services. Optional.
	Close func() error
}

// Opener builds the services for a configuration file.
// An empty path means the default location.
type Opener func(configPath string) (*Services, error)

var (
	opener   Opener
	services *Services
)

var rootCmd = &cobra.Command{
	Use:   "passel",
	Short: "Select the passages of a document folder that best answer a question",
	Long: `passel reads a folder of documents (PDF, DOCX, PPTX, Markdown, HTML and
plain text), keeps the documents most relevant to a query, splits them into
passages and returns the best passages, ranked and deduplicated.

Options come from the configuration file (~/.passel/config.toml by default)
and can be overridden per run with flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"configuration file (default ~/.passel/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"print pipeline progress to stderr")
}

// SetOpener sets how commands obtain their services.
func SetOpener(o Opener) {
	opener = o
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and releases any services it opened.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext is Execute with a context that commands observe.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, closeServices())
}

// openServices opens the services on first use.
func openServices() (*Services, error) {
	if services != nil {
		return services, nil
	}
	if opener == nil {
		return nil, errors.New("workspace not configured")
	}

	s, err := opener(configPath)
	if err != nil {
		return nil, err
	}
	if s == nil || s.Workspace == nil {
		return nil, errors.New("workspace not configured")
	}
	services = s
	return services, nil
}

func closeServices() error {
	s := services
	services = nil
	if s == nil || s.Close == nil {
		return nil
	}
	return s.Close()
}
