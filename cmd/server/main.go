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
	httpapi "github.com/garyjia/lease-reports/internal/interfaces/http"
	"github.com/garyjia/lease-reports/pkg/utils"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Lease and report API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to the YAML config file")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

// defaultConfigPath uses configs/config.yaml when present; settings then
// come from defaults and the environment alone.
func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	if _, err := os.Stat("configs/config.yaml"); err == nil {
		return "configs/config.yaml"
	}
	return ""
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
		Service:    "lease-reports",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lease report server",
		zap.String("version", httpapi.Version),
		zap.String("address", cfg.Address()),
		zap.Strings("services", cfg.ServiceOptions().Names()))

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("Shutdown finished with errors", zap.Error(err))
		}
	}()

	if err := c.StartWorkers(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}

	handlers := httpapi.NewHandlers(c.Services().Lease, c.Services().Report, c.Workers(), logger).
		WithHealth(containerHealth(c), cfg.ServiceOptions().Names())
	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		Mode:         cfg.Server.Mode,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

func containerHealth(c *container.Container) httpapi.HealthFunc {
	return func() (bool, map[string]httpapi.ComponentHealth) {
		status := c.Health()
		components := make(map[string]httpapi.ComponentHealth, len(status.Components))
		for name, comp := range status.Components {
			components[name] = httpapi.ComponentHealth{Healthy: comp.Healthy, Message: comp.Message}
		}
		return status.Overall, components
	}
}
