package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garyjia/lease-reports/internal/application/port"
	"github.com/garyjia/lease-reports/internal/domain/entity"
	"github.com/garyjia/lease-reports/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// ExportRepository implements port.ExportRepository
type ExportRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExportRepository creates a new export log repository
func NewExportRepository(db *sql.DB, logger *zap.Logger) port.ExportRepository {
	return &ExportRepository{db: db, logger: logger}
}

const exportColumns = `
	id, report_kind, format, filename, size_bytes, storage_path, preview_path,
	status, error_message, created_at`

// Create records an export attempt
func (r *ExportRepository) Create(ctx context.Context, record *entity.ExportRecord) error {
	query := `
		INSERT INTO exports (` + exportColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		record.ID,
		record.ReportKind,
		record.Format,
		record.Filename,
		record.SizeBytes,
		record.StoragePath,
		record.PreviewPath,
		record.Status,
		record.ErrorMessage,
		record.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create export record", zap.String("id", record.ID), zap.Error(err))
		return fmt.Errorf("failed to create export record: %w", err)
	}
	return nil
}

// GetByID retrieves an export record; it returns nil, nil when none exists
func (r *ExportRepository) GetByID(ctx context.Context, id string) (*entity.ExportRecord, error) {
	query := `SELECT ` + exportColumns + ` FROM exports WHERE id = ?`

	record, err := scanExport(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get export record", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get export record: %w", err)
	}
	return record, nil
}

// ListRecent returns the latest export attempts, newest first
func (r *ExportRepository) ListRecent(ctx context.Context, limit, offset int) ([]*entity.ExportRecord, error) {
	query := `SELECT ` + exportColumns + ` FROM exports ORDER BY created_at DESC, id LIMIT ? OFFSET ?`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list export records", zap.Error(err))
		return nil, fmt.Errorf("failed to list export records: %w", err)
	}
	defer rows.Close()

	var records []*entity.ExportRecord
	for rows.Next() {
		record, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanExport(row rowScanner) (*entity.ExportRecord, error) {
	var record entity.ExportRecord
	err := row.Scan(
		&record.ID,
		&record.ReportKind,
		&record.Format,
		&record.Filename,
		&record.SizeBytes,
		&record.StoragePath,
		&record.PreviewPath,
		&record.Status,
		&record.ErrorMessage,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
