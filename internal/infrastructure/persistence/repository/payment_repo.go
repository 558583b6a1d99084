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

// PaymentRepository implements port.PaymentRepository
type PaymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB, logger *zap.Logger) port.PaymentRepository {
	return &PaymentRepository{db: db, logger: logger}
}

// Upsert inserts a payment or refreshes the row with the same backend id.
// References are not unique: the backend allows blanks and repeats.
func (r *PaymentRepository) Upsert(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (
			backend_id, reference, tenant_name, property_name, source, method,
			status, amount, paid_at, synced_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(backend_id) DO UPDATE SET
			reference = excluded.reference,
			tenant_name = excluded.tenant_name,
			property_name = excluded.property_name,
			source = excluded.source,
			method = excluded.method,
			status = excluded.status,
			amount = excluded.amount,
			paid_at = excluded.paid_at,
			synced_at = excluded.synced_at
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		payment.ID,
		payment.Reference,
		payment.TenantName,
		payment.PropertyName,
		payment.Source,
		payment.Method,
		payment.Status,
		payment.Amount.String(),
		payment.PaidAt.Format(utils.ISODate),
		time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to upsert payment",
			zap.Int64("backend_id", payment.ID),
			zap.String("reference", payment.Reference),
			zap.Error(err))
		return fmt.Errorf("failed to upsert payment: %w", err)
	}
	return nil
}

// ListBetween returns payments paid on a day inside [start, end]
func (r *PaymentRepository) ListBetween(ctx context.Context, start, end time.Time) ([]*entity.Payment, error) {
	query := `
		SELECT backend_id, reference, tenant_name, property_name, source, method,
			status, amount, paid_at
		FROM payments
		WHERE paid_at BETWEEN ? AND ?
		ORDER BY paid_at, reference, backend_id
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query,
		start.Format(utils.ISODate), end.Format(utils.ISODate))
	if err != nil {
		r.logger.Error("Failed to list payments", zap.Error(err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		var (
			p      entity.Payment
			paidAt string
		)
		if err := rows.Scan(
			&p.ID,
			&p.Reference,
			&p.TenantName,
			&p.PropertyName,
			&p.Source,
			&p.Method,
			&p.Status,
			&p.Amount,
			&paidAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		if p.PaidAt, err = time.Parse(utils.ISODate, paidAt); err != nil {
			return nil, fmt.Errorf("invalid paid_at %q: %w", paidAt, err)
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

// FetchPayments serves report requests from the mirror
func (r *PaymentRepository) FetchPayments(ctx context.Context, start, end time.Time) ([]*entity.Payment, error) {
	return r.ListBetween(ctx, start, end)
}
