// Package container wires the lease and report components together and
// manages their lifecycle.
package container

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"github.com/garyjia/lease-reports/internal/application/port"
	"github.com/garyjia/lease-reports/internal/application/service"
	"github.com/garyjia/lease-reports/internal/config"
	"github.com/garyjia/lease-reports/internal/export"
	"github.com/garyjia/lease-reports/internal/infrastructure/external/backend"
	infraLark "github.com/garyjia/lease-reports/internal/infrastructure/external/lark"
	"github.com/garyjia/lease-reports/internal/infrastructure/persistence/repository"
	"github.com/garyjia/lease-reports/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/lease-reports/internal/infrastructure/render"
	"github.com/garyjia/lease-reports/internal/infrastructure/storage"
	"github.com/garyjia/lease-reports/internal/infrastructure/worker"
	"github.com/garyjia/lease-reports/internal/report"
	"github.com/garyjia/lease-reports/migrations"
	"github.com/garyjia/lease-reports/pkg/database"
	"github.com/garyjia/lease-reports/pkg/utils"
	"go.uber.org/zap"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	Conn           *database.DB
	TransactionMgr *sqlite.DB
}

// RepositoryBundle groups all repositories.
type RepositoryBundle struct {
	Lease   port.LeaseRepository
	Payment port.PaymentRepository
	Export  port.ExportRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Lease  *service.LeaseService
	Report *service.ReportService
}

// ProvideDatabase opens the database and applies pending migrations. An
// empty MigrationsDir uses the migrations compiled into the binary.
func ProvideDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	conn, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	var source fs.FS = migrations.FS
	if cfg.MigrationsDir != "" {
		source = os.DirFS(cfg.MigrationsDir)
	}
	if err := database.NewMigrator(conn, logger).Run(source); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		Conn:           conn,
		TransactionMgr: sqlite.NewDB(conn.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &RepositoryBundle{
		Lease:   repository.NewLeaseRepository(sqlDB, logger),
		Payment: repository.NewPaymentRepository(sqlDB, logger),
		Export:  repository.NewExportRepository(sqlDB, logger),
	}, nil
}

// ProvideBackend creates the backend REST client, or nil when no base URL
// is configured.
func ProvideBackend(cfg config.BackendConfig, logger *zap.Logger) *backend.Client {
	if cfg.BaseURL == "" {
		return nil
	}
	return backend.NewClient(backend.Config{
		BaseURL:      cfg.BaseURL,
		Token:        cfg.Token,
		PaymentsPath: cfg.PaymentsPath,
		PageSize:     cfg.PageSize,
		Timeout:      cfg.Timeout,
	}, logger)
}

// ProvidePaymentSource picks where report data comes from. With
// payment_sync on, or without a backend, reports read the local mirror.
func ProvidePaymentSource(services config.ServiceOptions, client *backend.Client, mirror port.PaymentRepository) port.PaymentSource {
	if client == nil || services.Enabled(config.ServicePaymentSync) {
		return mirror
	}
	return client
}

// ProvideNotifier posts failures to Lark when credentials are configured
// and logs them otherwise.
func ProvideNotifier(cfg config.LarkConfig, logger *zap.Logger) port.FailureNotifier {
	larkCfg := infraLark.Config{
		AppID:         cfg.AppID,
		AppSecret:     cfg.AppSecret,
		ReceiveID:     cfg.ReceiveID,
		ReceiveIDType: cfg.ReceiveIDType,
	}
	if !larkCfg.Enabled() {
		logger.Info("Lark credentials not configured, export failures are logged only")
		return infraLark.NewLogNotifier(logger)
	}

	messenger := infraLark.NewMessenger(infraLark.NewSDKClient(larkCfg, logger), logger)
	return infraLark.NewNotifier(messenger, larkCfg, logger)
}

// ProvideFormatter builds the display formatter shared by both exporters.
func ProvideFormatter(cfg config.ReportConfig) utils.Formatter {
	return utils.NewFormatter(cfg.CurrencySymbol, cfg.DateLayout)
}

// ProvideExporters creates one exporter per document format.
func ProvideExporters(cfg config.ExportConfig, format utils.Formatter) []export.Exporter {
	return []export.Exporter{
		export.NewPDFExporter(export.PDFOptions{Compress: cfg.PDFCompress, Author: cfg.PDFAuthor}),
		export.NewWorkbookExporter(format),
	}
}

// ProvideStorage creates the artifact store, making sure its root exists.
func ProvideStorage(cfg config.ExportConfig, logger *zap.Logger) (port.FileStorage, error) {
	if err := os.MkdirAll(cfg.StorageDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return storage.NewLocalFileStorage(cfg.StorageDir, logger), nil
}

// ServiceDeps holds what ProvideServices needs.
type ServiceDeps struct {
	Config   *config.Config
	Repos    *RepositoryBundle
	Source   port.PaymentSource
	Storage  port.FileStorage
	Notifier port.FailureNotifier
	Logger   *zap.Logger
}

// ProvideServices creates the application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Config == nil || deps.Repos == nil {
		return nil, fmt.Errorf("service dependencies are incomplete")
	}

	format := ProvideFormatter(deps.Config.Report)
	services := deps.Config.ServiceOptions()

	var rasterizer port.PageRasterizer
	if services.Enabled(config.ServicePagePreview) {
		rasterizer = render.NewFitzRasterizer(deps.Config.Export.PreviewDPI, deps.Logger)
	}

	reports := service.NewReportService(service.ReportDependencies{
		Source:     deps.Source,
		Builder:    report.NewBuilder(format),
		Exporters:  ProvideExporters(deps.Config.Export, format),
		Rasterizer: rasterizer,
		Storage:    deps.Storage,
		Exports:    deps.Repos.Export,
		Notifier:   deps.Notifier,
		Services:   services,
		Logger:     deps.Logger,
	})

	return &ServiceBundle{
		Lease:  service.NewLeaseService(deps.Repos.Lease, deps.Logger),
		Report: reports,
	}, nil
}

// WorkerDeps holds what ProvideWorkers needs.
type WorkerDeps struct {
	Config    *config.Config
	Backend   *backend.Client
	Repos     *RepositoryBundle
	TxManager port.TransactionManager
	Logger    *zap.Logger
}

// ProvideWorkers registers the background workers the enabled services
// call for. The returned sync worker is nil when payment_sync is off.
func ProvideWorkers(deps *WorkerDeps) (*worker.WorkerManager, *worker.PaymentSyncWorker) {
	manager := worker.NewWorkerManager(deps.Logger)

	if !deps.Config.ServiceOptions().Enabled(config.ServicePaymentSync) || deps.Backend == nil {
		return manager, nil
	}

	sync := worker.NewPaymentSyncWorker(worker.PaymentSyncConfig{
		Interval:     deps.Config.Sync.Interval,
		LookbackDays: deps.Config.Sync.LookbackDays,
		SyncTimeout:  deps.Config.Sync.Timeout,
	}, deps.Backend, deps.Repos.Payment, deps.TxManager, deps.Logger)
	manager.Register(sync)

	return manager, sync
}
