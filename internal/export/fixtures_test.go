package export

import (
	"fmt"
	"testing"
	"time"

	"github.com/garyjia/lease-reports/internal/domain/entity"
	"github.com/garyjia/lease-reports/internal/report"
	"github.com/garyjia/lease-reports/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	generatedAt = time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)
	firstHalf   = report.DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	testFormat = utils.NewFormatter("KES", "")
)

func samplePayments() []*entity.Payment {
	mk := func(ref, property, source, method, status string, amount int64, month time.Month) *entity.Payment {
		return &entity.Payment{
			Reference:    ref,
			TenantName:   "Tenant " + ref,
			PropertyName: property,
			Source:       source,
			Method:       method,
			Status:       status,
			Amount:       decimal.NewFromInt(amount),
			PaidAt:       time.Date(2024, month, 5, 0, 0, 0, 0, time.UTC),
		}
	}
	return []*entity.Payment{
		mk("P-001", "Oak Court", entity.PaymentSourceRent, entity.PaymentMethodMpesa, entity.PaymentStatusCompleted, 8500, time.January),
		mk("P-002", "Pine View", entity.PaymentSourceRent, entity.PaymentMethodBankTransfer, entity.PaymentStatusCompleted, 12000, time.February),
		mk("P-003", "Oak Court", entity.PaymentSourceDeposit, entity.PaymentMethodCash, entity.PaymentStatusCompleted, 17000, time.March),
		mk("P-004", "Elm House", entity.PaymentSourceLateFee, entity.PaymentMethodMpesa, entity.PaymentStatusPending, 425, time.April),
		mk("P-005", "Pine View", entity.PaymentSourceRent, entity.PaymentMethodCard, entity.PaymentStatusFailed, 12000, time.May),
	}
}

func buildDocument(t *testing.T, kind report.Kind, records []*entity.Payment) *report.Document {
	t.Helper()
	b := report.NewBuilder(testFormat,
		report.WithClock(func() time.Time { return generatedAt }),
		report.WithIDGenerator(func() string { return "report-1" }))
	doc, err := b.Build(kind, firstHalf, records)
	require.NoError(t, err)
	return doc
}

// manyPayments produces enough rows to span several PDF pages
func manyPayments(n int) []*entity.Payment {
	out := make([]*entity.Payment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &entity.Payment{
			Reference:    fmt.Sprintf("R-%04d", i),
			TenantName:   fmt.Sprintf("Tenant %d", i),
			PropertyName: fmt.Sprintf("Block %d", i%7),
			Source:       entity.PaymentSourceRent,
			Method:       entity.PaymentMethodMpesa,
			Status:       entity.PaymentStatusCompleted,
			Amount:       decimal.NewFromInt(int64(1000 + i)),
			PaidAt:       time.Date(2024, time.Month(1+i%6), 1+i%28, 0, 0, 0, 0, time.UTC),
		})
	}
	return out
}
