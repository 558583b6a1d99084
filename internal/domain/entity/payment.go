package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a single rent-roll transaction as returned by the backend
type Payment struct {
	ID           int64           `json:"id"`
	Reference    string          `json:"reference"`
	TenantName   string          `json:"tenant_name"`
	PropertyName string          `json:"property_name"`
	Source       string          `json:"source"`
	Method       string          `json:"method"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	PaidAt       time.Time       `json:"paid_at"`
}

// IsCompleted reports whether the payment settled
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

// IsOutstanding reports whether the payment is still owed
func (p *Payment) IsOutstanding() bool {
	return p.Status == PaymentStatusPending || p.Status == PaymentStatusOverdue
}
