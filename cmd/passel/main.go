// Command passel selects the passages of a document folder that best
// answer a question.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/passel/internal/adapters/driving/cli"
	"github.com/custodia-labs/passel/internal/di"
	"github.com/custodia-labs/passel/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetOpener(func(configPath string) (*cli.Services, error) {
		container, err := di.New(configPath)
		if err != nil {
			return nil, err
		}
		return &cli.Services{
			Workspace: container,
			Watcher:   container.Watcher(),
			Close:     container.Close,
		}, nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
