package lease

import "github.com/garyjia/lease-reports/pkg/utils"

// ValidateDraft checks the derived lease terms before submission
func ValidateDraft(d Draft) FieldErrors {
	errs := FieldErrors{}

	if !d.StartDate.IsSet() {
		errs.Add(string(FieldStartDate), "is required")
	}

	if d.DurationMonths.IsSet() {
		if err := utils.ValidateRange(d.DurationMonths.Value, MinDurationMonths, MaxDurationMonths); err != nil {
			errs.Add(string(FieldDurationMonths), "must be between 1 and 120 months")
		}
	}

	if !d.EndDate.IsSet() {
		errs.Add(string(FieldEndDate), "is required")
	} else if d.StartDate.IsSet() && d.EndDate.Value.Before(d.StartDate.Value) {
		errs.Add(string(FieldEndDate), "must not be before the start date")
	}

	if !d.MonthlyRent.IsSet() {
		errs.Add(string(FieldMonthlyRent), "is required")
	} else if err := utils.ValidateNonNegative(d.MonthlyRent.Value); err != nil {
		errs.Add(string(FieldMonthlyRent), "must not be negative")
	}

	if d.Deposit.IsSet() {
		if err := utils.ValidateNonNegative(d.Deposit.Value); err != nil {
			errs.Add(string(FieldDeposit), "must not be negative")
		}
	}

	return errs
}
