package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garyjia/lease-reports/internal/application/port"
	"github.com/garyjia/lease-reports/internal/domain/entity"
	"github.com/garyjia/lease-reports/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/lease-reports/pkg/utils"
	"go.uber.org/zap"
)

// LeaseRepository implements port.LeaseRepository
type LeaseRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewLeaseRepository creates a new lease repository
func NewLeaseRepository(db *sql.DB, logger *zap.Logger) port.LeaseRepository {
	return &LeaseRepository{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

const leaseColumns = `
	id, tenant_name, property_name, unit, start_date, end_date, duration_months,
	monthly_rent, deposit, late_fee_mode, late_fee_percentage, late_fee_amount,
	grace_period_days, status, created_at, updated_at`

// Create inserts a lease and sets its ID and timestamps
func (r *LeaseRepository) Create(ctx context.Context, lease *entity.Lease) error {
	query := `
		INSERT INTO leases (
			tenant_name, property_name, unit, start_date, end_date, duration_months,
			monthly_rent, deposit, late_fee_mode, late_fee_percentage, late_fee_amount,
			grace_period_days, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := r.now()
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		lease.TenantName,
		lease.PropertyName,
		lease.Unit,
		lease.StartDate.Format(utils.ISODate),
		lease.EndDate.Format(utils.ISODate),
		lease.DurationMonths,
		lease.MonthlyRent.String(),
		lease.Deposit.String(),
		lease.LateFeeMode,
		lease.LateFeePercentage.String(),
		lease.LateFeeAmount.String(),
		lease.GracePeriodDays,
		lease.Status,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create lease", zap.Error(err))
		return fmt.Errorf("failed to create lease: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	lease.ID = id
	lease.CreatedAt = now
	lease.UpdatedAt = now
	return nil
}

// GetByID retrieves a lease by ID; it returns nil, nil when none exists
func (r *LeaseRepository) GetByID(ctx context.Context, id int64) (*entity.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE id = ?`

	lease, err := scanLease(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get lease by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get lease: %w", err)
	}
	return lease, nil
}

// List returns leases newest first
func (r *LeaseRepository) List(ctx context.Context, limit, offset int) ([]*entity.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases ORDER BY id DESC LIMIT ? OFFSET ?`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list leases", zap.Error(err))
		return nil, fmt.Errorf("failed to list leases: %w", err)
	}
	defer rows.Close()

	var leases []*entity.Lease
	for rows.Next() {
		lease, err := scanLease(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lease: %w", err)
		}
		leases = append(leases, lease)
	}
	return leases, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLease(row rowScanner) (*entity.Lease, error) {
	var (
		lease      entity.Lease
		start, end string
	)
	err := row.Scan(
		&lease.ID,
		&lease.TenantName,
		&lease.PropertyName,
		&lease.Unit,
		&start,
		&end,
		&lease.DurationMonths,
		&lease.MonthlyRent,
		&lease.Deposit,
		&lease.LateFeeMode,
		&lease.LateFeePercentage,
		&lease.LateFeeAmount,
		&lease.GracePeriodDays,
		&lease.Status,
		&lease.CreatedAt,
		&lease.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lease.StartDate, err = time.Parse(utils.ISODate, start); err != nil {
		return nil, fmt.Errorf("invalid start_date %q: %w", start, err)
	}
	if lease.EndDate, err = time.Parse(utils.ISODate, end); err != nil {
		return nil, fmt.Errorf("invalid end_date %q: %w", end, err)
	}
	return &lease, nil
}
