package lease

import (
	"fmt"

	"github.com/garyjia/lease-reports/internal/domain/entity"
	"github.com/garyjia/lease-reports/pkg/utils"
	"github.com/shopspring/decimal"
)

// LateFeeMode selects how a late fee is expressed
type LateFeeMode string

const (
	ModePercentage  LateFeeMode = entity.LateFeeModePercentage
	ModeFixedAmount LateFeeMode = entity.LateFeeModeFixedAmount
)

// ParseLateFeeMode validates a mode string from the form
func ParseLateFeeMode(s string) (LateFeeMode, error) {
	switch LateFeeMode(s) {
	case ModePercentage, ModeFixedAmount:
		return LateFeeMode(s), nil
	}
	return "", fmt.Errorf("unknown late fee mode %q", s)
}

// LateFee is either a percentage of rent or a fixed amount, never both.
// Build one with PercentageFee or FixedFee.
type LateFee struct {
	mode  LateFeeMode
	value decimal.Decimal
}

// PercentageFee is a late fee of pct percent of the monthly rent
func PercentageFee(pct decimal.Decimal) LateFee {
	return LateFee{mode: ModePercentage, value: pct}
}

// FixedFee is a late fee of a fixed currency amount
func FixedFee(amount decimal.Decimal) LateFee {
	return LateFee{mode: ModeFixedAmount, value: amount}
}

// Mode returns the active representation
func (f LateFee) Mode() LateFeeMode { return f.mode }

// Value returns the active value
func (f LateFee) Value() decimal.Decimal { return f.value }

// Percentage is the effective percentage; zero for fixed-amount fees
func (f LateFee) Percentage() decimal.Decimal {
	if f.mode == ModePercentage {
		return f.value
	}
	return decimal.Zero
}

// Amount is the effective fixed amount; zero for percentage fees
func (f LateFee) Amount() decimal.Decimal {
	if f.mode == ModeFixedAmount {
		return f.value
	}
	return decimal.Zero
}

// ResolveLateFee collapses the dual percentage/amount form fields into the
// single active fee for mode. Only the active field is validated; the
// inactive one is discarded whatever it holds. Out-of-range values are
// reported as FieldErrors and never clamped.
//
// Feeding the result's Percentage and Amount back in with the same mode
// yields the same fee.
func ResolveLateFee(mode LateFeeMode, percentage, amount decimal.Decimal) (LateFee, error) {
	errs := FieldErrors{}

	switch mode {
	case ModePercentage:
		if err := utils.ValidatePercentage(percentage); err != nil {
			errs.Add("late_fee_percentage", "must be between 0 and 100")
			return LateFee{}, errs
		}
		return PercentageFee(percentage), nil

	case ModeFixedAmount:
		if err := utils.ValidateNonNegative(amount); err != nil {
			errs.Add("late_fee_amount", "must not be negative")
			return LateFee{}, errs
		}
		return FixedFee(amount), nil
	}

	errs.Add("late_fee_mode", fmt.Sprintf("must be %q or %q", ModePercentage, ModeFixedAmount))
	return LateFee{}, errs
}
