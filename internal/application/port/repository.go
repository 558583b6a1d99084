package port

import (
	"context"
	"time"

	"github.com/garyjia/lease-reports/internal/domain/entity"
)

// LeaseRepository defines persistence operations for Lease
type LeaseRepository interface {
	Create(ctx context.Context, lease *entity.Lease) error
	GetByID(ctx context.Context, id int64) (*entity.Lease, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Lease, error)
}

// PaymentRepository holds the local mirror of backend payments. It doubles
// as a PaymentSource so reports can be built from the mirror.
type PaymentRepository interface {
	PaymentSource

	// Upsert inserts or replaces a payment keyed by its backend id
	Upsert(ctx context.Context, payment *entity.Payment) error

	// ListBetween returns payments paid on a day inside [start, end]
	ListBetween(ctx context.Context, start, end time.Time) ([]*entity.Payment, error)
}

// ExportRepository defines persistence operations for ExportRecord
type ExportRepository interface {
	Create(ctx context.Context, record *entity.ExportRecord) error
	GetByID(ctx context.Context, id string) (*entity.ExportRecord, error)
	ListRecent(ctx context.Context, limit, offset int) ([]*entity.ExportRecord, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
