// Command reportctl derives lease terms and exports payment reports from
// the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/lease-reports/internal/config"
	"github.com/garyjia/lease-reports/internal/container"
	"github.com/garyjia/lease-reports/pkg/utils"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "reportctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Lease term and payment report tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newLeaseTermCommand(),
		newExportCommand(opts),
		newSyncCommand(opts),
	)
	return root
}

func (o *rootOptions) logger() (*zap.Logger, error) {
	return utils.NewLogger(utils.LoggerConfig{
		Level:      o.logLevel,
		OutputPath: "stderr",
		Format:     "console",
	})
}

// withContainer loads configuration, starts a container, runs fn and
// closes the container again.
func (o *rootOptions) withContainer(ctx context.Context, fn func(*container.Container) error) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := o.logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	return fn(c)
}
