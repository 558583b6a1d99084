package container

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/garyjia/lease-reports/internal/application/port"
	"github.com/garyjia/lease-reports/internal/config"
	"github.com/garyjia/lease-reports/internal/infrastructure/external/backend"
	"github.com/garyjia/lease-reports/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/lease-reports/internal/infrastructure/worker"
	"github.com/garyjia/lease-reports/pkg/database"
	"go.uber.org/zap"
)

// Container owns every long-lived component. Components are built in
// dependency order by Start and torn down in reverse by Close.
type Container struct {
	config *config.Config
	logger *zap.Logger

	conn         *database.DB
	db           *sqlite.DB
	repositories *RepositoryBundle

	backend  *backend.Client
	source   port.PaymentSource
	notifier port.FailureNotifier
	storage  port.FileStorage

	services *ServiceBundle

	workers    *worker.WorkerManager
	syncWorker *worker.PaymentSyncWorker

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a container from validated configuration. Call
// Start to build the components.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Container{config: cfg, logger: logger}, nil
}

// Start builds the database, external clients, storage, services and
// workers. Workers are registered but not started; see StartWorkers.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization",
		zap.Strings("services", c.config.ServiceOptions().Names()))

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	c.initExternalClients()

	if err := c.initStorage(); err != nil {
		_ = c.closeDatabase()
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := c.initServices(); err != nil {
		_ = c.closeDatabase()
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	c.workers, c.syncWorker = ProvideWorkers(&WorkerDeps{
		Config:    c.config,
		Backend:   c.backend,
		Repos:     c.repositories,
		TxManager: c.db,
		Logger:    c.logger,
	})

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// StartWorkers starts the registered background workers
func (c *Container) StartWorkers(ctx context.Context) error {
	if !c.ready.Load() {
		return fmt.Errorf("container not started")
	}
	return c.workers.StartAll(ctx)
}

// Close stops workers and closes the database.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error
	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		}
	}
	if err := c.closeDatabase(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if err := errors.Join(errs...); err != nil {
		c.logger.Error("Container closed with errors", zap.Error(err))
		return err
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	if c.conn == nil {
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	} else if err := c.conn.Ping(); err != nil {
		status.Components["database"] = ComponentHealth{Healthy: false, Message: fmt.Sprintf("ping failed: %v", err)}
		status.Overall = false
	} else {
		status.Components["database"] = ComponentHealth{Healthy: true}
	}

	if c.syncWorker != nil {
		stats := c.syncWorker.GetStats()
		healthy := stats.IsRunning && stats.LastError == ""
		status.Components["payment_sync"] = ComponentHealth{Healthy: healthy, Message: stats.LastError}
		if !healthy {
			status.Overall = false
		}
	}

	return status
}

func (c *Container) initDatabase() error {
	bundle, err := ProvideDatabase(c.config.Database, c.logger)
	if err != nil {
		return err
	}
	c.conn = bundle.Conn
	c.db = bundle.TransactionMgr

	repos, err := ProvideRepositories(c.conn.DB, c.logger)
	if err != nil {
		_ = c.closeDatabase()
		return err
	}
	c.repositories = repos
	return nil
}

func (c *Container) initExternalClients() {
	c.backend = ProvideBackend(c.config.Backend, c.logger)
	c.source = ProvidePaymentSource(c.config.ServiceOptions(), c.backend, c.repositories.Payment)
	c.notifier = ProvideNotifier(c.config.Lark, c.logger)
}

func (c *Container) initStorage() error {
	fileStorage, err := ProvideStorage(c.config.Export, c.logger)
	if err != nil {
		return err
	}
	c.storage = fileStorage
	return nil
}

func (c *Container) initServices() error {
	services, err := ProvideServices(&ServiceDeps{
		Config:   c.config,
		Repos:    c.repositories,
		Source:   c.source,
		Storage:  c.storage,
		Notifier: c.notifier,
		Logger:   c.logger,
	})
	if err != nil {
		return err
	}
	c.services = services
	return nil
}

func (c *Container) closeDatabase() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Workers returns the worker manager.
func (c *Container) Workers() *worker.WorkerManager {
	return c.workers
}

// SyncWorker returns the payment sync worker, nil when payment_sync is off.
func (c *Container) SyncWorker() *worker.PaymentSyncWorker {
	return c.syncWorker
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *config.Config {
	return c.config
}
