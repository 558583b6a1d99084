package lease

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/garyjia/lease-reports/internal/domain/entity"
	"github.com/garyjia/lease-reports/pkg/utils"
	"github.com/shopspring/decimal"
)

// Input is a raw form value. It decodes from a JSON string, number or null
// so the UI can post fields exactly as they sit in its inputs.
type Input string

// UnmarshalJSON accepts "12", 12 and null
func (in *Input) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*in = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*in = Input(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*in = Input(n.String())
	return nil
}

func (in Input) String() string { return strings.TrimSpace(string(in)) }

// Form is the lease form as submitted by the UI. Both late fee inputs
// travel with the form whatever the selected mode; they are collapsed into
// a LateFee only in ToLease.
type Form struct {
	TenantName        string `json:"tenant_name"`
	PropertyName      string `json:"property_name"`
	Unit              string `json:"unit"`
	StartDate         Input  `json:"start_date"`
	DurationMonths    Input  `json:"duration_months"`
	EndDate           Input  `json:"end_date"`
	MonthlyRent       Input  `json:"monthly_rent"`
	Deposit           Input  `json:"deposit"`
	LateFeeMode       string `json:"late_fee_mode"`
	LateFeePercentage Input  `json:"late_fee_percentage"`
	LateFeeAmount     Input  `json:"late_fee_amount"`
	GracePeriodDays   Input  `json:"grace_period_days"`
}

// Draft replays the form inputs in entry order: start date, duration,
// rent, deposit, then an explicit end date. An end date equal to the
// derived one keeps its derived provenance.
func (f Form) Draft() (Draft, FieldErrors) {
	errs := FieldErrors{}
	d := Draft{}

	steps := []struct {
		field Field
		raw   Input
	}{
		{FieldStartDate, f.StartDate},
		{FieldDurationMonths, f.DurationMonths},
		{FieldMonthlyRent, f.MonthlyRent},
		{FieldDeposit, f.Deposit},
	}
	for _, step := range steps {
		next, err := d.Apply(step.field, step.raw.String())
		if err != nil {
			errs.Add(string(step.field), malformedMessage(err))
			continue
		}
		d = next
	}

	if raw := f.EndDate.String(); raw != "" {
		end, err := parseDate(raw)
		switch {
		case err != nil:
			errs.Add(string(FieldEndDate), malformedMessage(err))
		case !d.EndDate.IsSet() || !end.Equal(d.EndDate.Value):
			d = d.SetEndDate(end)
		}
	}

	return d, errs
}

// ToLease validates the form and builds the record to persist. The late
// fee is resolved here and only here.
func (f Form) ToLease() (*entity.Lease, error) {
	d, errs := f.Draft()
	errs.Merge(ValidateDraft(d))

	tenant := utils.SanitizeString(strings.TrimSpace(f.TenantName))
	property := utils.SanitizeString(strings.TrimSpace(f.PropertyName))
	if tenant == "" {
		errs.Add("tenant_name", "is required")
	}
	if property == "" {
		errs.Add("property_name", "is required")
	}

	grace := 0
	if raw := f.GracePeriodDays.String(); raw != "" {
		n, err := parseInt(raw)
		switch {
		case err != nil:
			errs.Add("grace_period_days", "must be a whole number")
		case n < 0:
			errs.Add("grace_period_days", "must not be negative")
		default:
			grace = n
		}
	}

	fee, feeErrs := f.resolveLateFee()
	errs.Merge(feeErrs)

	if len(errs) > 0 {
		return nil, errs
	}

	duration := 0
	if d.DurationMonths.IsSet() {
		duration = d.DurationMonths.Value
	}

	return &entity.Lease{
		TenantName:        tenant,
		PropertyName:      property,
		Unit:              strings.TrimSpace(f.Unit),
		StartDate:         d.StartDate.Value,
		EndDate:           d.EndDate.Value,
		DurationMonths:    duration,
		MonthlyRent:       d.MonthlyRent.Value,
		Deposit:           d.Deposit.Value,
		LateFeeMode:       string(fee.Mode()),
		LateFeePercentage: fee.Percentage(),
		LateFeeAmount:     fee.Amount(),
		GracePeriodDays:   grace,
		Status:            statusFor(d.StartDate.Value, d.EndDate.Value, time.Now()),
	}, nil
}

func (f Form) resolveLateFee() (LateFee, FieldErrors) {
	errs := FieldErrors{}

	modeStr := strings.TrimSpace(f.LateFeeMode)
	if modeStr == "" {
		modeStr = string(ModePercentage)
	}
	mode, err := ParseLateFeeMode(modeStr)
	if err != nil {
		errs.Add("late_fee_mode", err.Error())
		return LateFee{}, errs
	}

	// Only the active input has to parse; the other may hold stale UI text.
	pct, amount := decimal.Zero, decimal.Zero
	if mode == ModePercentage {
		if raw := f.LateFeePercentage.String(); raw != "" {
			if pct, err = parseAmount(raw); err != nil {
				errs.Add("late_fee_percentage", "must be a number")
				return LateFee{}, errs
			}
		}
	} else if raw := f.LateFeeAmount.String(); raw != "" {
		if amount, err = parseAmount(raw); err != nil {
			errs.Add("late_fee_amount", "must be a number")
			return LateFee{}, errs
		}
	}

	fee, err := ResolveLateFee(mode, pct, amount)
	if err != nil {
		if fe, ok := AsFieldErrors(err); ok {
			return LateFee{}, fe
		}
		errs.Add("late_fee_mode", err.Error())
		return LateFee{}, errs
	}
	return fee, nil
}

func statusFor(start, end, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case today.Before(start):
		return entity.LeaseStatusDraft
	case today.After(end):
		return entity.LeaseStatusExpired
	}
	return entity.LeaseStatusActive
}

func malformedMessage(err error) string {
	switch {
	case errors.Is(err, ErrMalformedDate):
		return "must be a date in YYYY-MM-DD format"
	case errors.Is(err, ErrMalformedAmount):
		return "must be a number"
	case errors.Is(err, ErrMalformedNumber):
		return "must be a whole number"
	}
	return err.Error()
}
