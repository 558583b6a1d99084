package lease

import (
	"time"

	"github.com/shopspring/decimal"
)

// Duration limits accepted by validation. The calculator itself accepts any value.
const (
	MinDurationMonths = 1
	MaxDurationMonths = 120
)

// DepositMultiplier is the number of monthly rents taken as the default deposit.
var DepositMultiplier = decimal.NewFromInt(2)

// DeriveEndDate returns the last day of a lease that starts on start and
// runs for durationMonths calendar months. The anniversary day is clamped to
// the length of the target month (Jan 31 + 1 month lands on Feb 28/29) and
// the result is the day before it.
func DeriveEndDate(start time.Time, durationMonths int) time.Time {
	year, month, day := start.Date()

	monthIndex := int(month) - 1 + durationMonths
	targetYear := year + floorDiv(monthIndex, 12)
	targetMonth := time.Month(monthIndex - floorDiv(monthIndex, 12)*12 + 1)

	if last := daysIn(targetYear, targetMonth); day > last {
		day = last
	}

	anniversary := time.Date(targetYear, targetMonth, day, 0, 0, 0, 0, start.Location())
	return anniversary.AddDate(0, 0, -1)
}

// DefaultDeposit is the deposit suggested for a monthly rent.
func DefaultDeposit(monthlyRent decimal.Decimal) decimal.Decimal {
	return monthlyRent.Mul(DepositMultiplier)
}

// DeriveDefaultDeposit returns the default deposit for monthlyRent when the
// current deposit is unset. A deposit that already holds a value, derived or
// typed by the user, is returned unchanged.
func DeriveDefaultDeposit(monthlyRent decimal.Decimal, current AmountField) AmountField {
	if current.Source != ProvenanceUnset {
		return current
	}
	return AmountField{Value: DefaultDeposit(monthlyRent), Source: ProvenanceDerived}
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
