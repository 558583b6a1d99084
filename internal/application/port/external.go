package port

import (
	"context"
	"time"

	"github.com/garyjia/lease-reports/internal/domain/entity"
)

// PaymentSource fetches report-shaped payment records
type PaymentSource interface {
	FetchPayments(ctx context.Context, start, end time.Time) ([]*entity.Payment, error)
}

// PageRasterizer renders the first page of a PDF to a PNG preview
type PageRasterizer interface {
	FirstPagePNG(pdf []byte) ([]byte, error)
}

// ExportFailure describes a failed export for notification
type ExportFailure struct {
	ReportID   string
	ReportKind string
	Format     string
	Message    string
	OccurredAt time.Time
}

// FailureNotifier reports export failures to operators
type FailureNotifier interface {
	NotifyExportFailure(ctx context.Context, failure ExportFailure) error
}
