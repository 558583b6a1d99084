package entity

// Lease status constants
const (
	LeaseStatusDraft      = "draft"
	LeaseStatusActive     = "active"
	LeaseStatusExpired    = "expired"
	LeaseStatusTerminated = "terminated"
)

// Late fee modes as they appear on the lease form and in storage
const (
	LateFeeModePercentage  = "percentage"
	LateFeeModeFixedAmount = "fixed_amount"
)

// Payment source constants (what the money was for)
const (
	PaymentSourceRent    = "rent"
	PaymentSourceDeposit = "deposit"
	PaymentSourceLateFee = "late_fee"
	PaymentSourceUtility = "utility"
	PaymentSourceOther   = "other"
)

// Payment method constants
const (
	PaymentMethodMpesa        = "mpesa"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCash         = "cash"
	PaymentMethodCard         = "card"
	PaymentMethodCheque       = "cheque"
)

// Payment status constants
const (
	PaymentStatusCompleted = "completed"
	PaymentStatusPending   = "pending"
	PaymentStatusOverdue   = "overdue"
	PaymentStatusFailed    = "failed"
)

// Export status constants
const (
	ExportStatusSucceeded = "succeeded"
	ExportStatusFailed    = "failed"
)
