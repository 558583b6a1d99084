package container

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/garyjia/lease-reports/internal/application/service"
	"github.com/garyjia/lease-reports/internal/config"
	"github.com/garyjia/lease-reports/internal/domain/entity"
	"github.com/garyjia/lease-reports/internal/domain/lease"
	"github.com/garyjia/lease-reports/internal/export"
	"github.com/garyjia/lease-reports/internal/infrastructure/external/backend"
	"github.com/garyjia/lease-reports/internal/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T, services ...string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "leases.db"), MaxOpenConns: 1},
		Export:   config.ExportConfig{StorageDir: filepath.Join(dir, "exports")},
		Report:   config.ReportConfig{CurrencySymbol: "KES"},
		Services: config.ServicesConfig{Enabled: services},
		Logger:   config.LoggerConfig{Level: "info", Format: "json"},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestContainer_Lifecycle(t *testing.T) {
	cfg := testConfig(t, "pdf_export", "spreadsheet_export")
	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(ctx))
	assert.Nil(t, c.SyncWorker())
	assert.True(t, c.Health().Overall)

	created, err := c.Services().Lease.Submit(ctx, lease.Form{
		TenantName:     "Jane Wanjiru",
		PropertyName:   "Riverside Apartments",
		StartDate:      "2024-01-01",
		DurationMonths: "12",
		MonthlyRent:    "8500",
	})
	require.NoError(t, err)

	got, err := c.Services().Lease.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), got.EndDate)

	require.NoError(t, c.Repositories().Payment.Upsert(ctx, &entity.Payment{
		ID: 1, Reference: "P-001", TenantName: "Jane Wanjiru", PropertyName: "Riverside Apartments",
		Source: entity.PaymentSourceRent, Method: entity.PaymentMethodMpesa, Status: entity.PaymentStatusCompleted,
		Amount: decimal.NewFromInt(8500), PaidAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	}))

	result, err := c.Services().Report.Export(ctx, service.ExportRequest{
		Kind:   report.KindIncome,
		Format: export.FormatXLSX,
		DateRange: report.DateRange{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.Artifact.Filename, ".xlsx"))

	downloaded, err := c.Services().Report.Download(ctx, result.RecordID)
	require.NoError(t, err)
	assert.Equal(t, result.Artifact.Content, downloaded.Content)

	records, err := c.Services().Report.ListExports(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(ctx))
}

func TestNewContainer_RequiresDependencies(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(testConfig(t), nil)
	assert.Error(t, err)
}

func TestProvidePaymentSource(t *testing.T) {
	cfg := testConfig(t)
	bundle, err := ProvideDatabase(cfg.Database, zap.NewNop())
	require.NoError(t, err)
	defer bundle.Conn.Close()

	repos, err := ProvideRepositories(bundle.Conn.DB, zap.NewNop())
	require.NoError(t, err)

	client := backend.NewClient(backend.Config{BaseURL: "http://backend.invalid"}, zap.NewNop())

	direct := config.NewServiceOptions(config.ServicePDFExport)
	assert.Same(t, client, ProvidePaymentSource(direct, client, repos.Payment))

	mirrored := config.NewServiceOptions(config.ServicePaymentSync)
	assert.Equal(t, repos.Payment, ProvidePaymentSource(mirrored, client, repos.Payment))

	assert.Equal(t, repos.Payment, ProvidePaymentSource(direct, nil, repos.Payment))
}

func TestProvideWorkers(t *testing.T) {
	cfg := testConfig(t, "pdf_export")
	manager, sync := ProvideWorkers(&WorkerDeps{Config: cfg, Repos: &RepositoryBundle{}, Logger: zap.NewNop()})
	assert.Nil(t, sync)
	assert.Equal(t, 0, manager.GetWorkerCount())

	cfg.Backend.BaseURL = "http://backend.invalid"
	cfg.Sync.Interval = time.Hour
	cfg.Services.Enabled = []string{"payment_sync"}
	require.NoError(t, cfg.Validate())

	client := ProvideBackend(cfg.Backend, zap.NewNop())
	manager, sync = ProvideWorkers(&WorkerDeps{Config: cfg, Backend: client, Repos: &RepositoryBundle{}, Logger: zap.NewNop()})
	assert.NotNil(t, sync)
	assert.Equal(t, 1, manager.GetWorkerCount())
}
