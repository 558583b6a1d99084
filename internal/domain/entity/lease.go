package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lease is the persisted lease record. Exactly one of LateFeePercentage and
// LateFeeAmount is non-zero, as selected by LateFeeMode.
type Lease struct {
	ID                int64           `json:"id"`
	TenantName        string          `json:"tenant_name"`
	PropertyName      string          `json:"property_name"`
	Unit              string          `json:"unit,omitempty"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           time.Time       `json:"end_date"`
	DurationMonths    int             `json:"duration_months"`
	MonthlyRent       decimal.Decimal `json:"monthly_rent"`
	Deposit           decimal.Decimal `json:"deposit"`
	LateFeeMode       string          `json:"late_fee_mode"`
	LateFeePercentage decimal.Decimal `json:"late_fee_percentage"`
	LateFeeAmount     decimal.Decimal `json:"late_fee_amount"`
	GracePeriodDays   int             `json:"grace_period_days"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
