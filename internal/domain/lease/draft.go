package lease

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/lease-reports/pkg/utils"
	"github.com/shopspring/decimal"
)

// Provenance records where a draft field's current value came from.
type Provenance int

const (
	ProvenanceUnset Provenance = iota
	ProvenanceDerived
	ProvenanceUserOverridden
)

var provenanceNames = map[Provenance]string{
	ProvenanceUnset:          "unset",
	ProvenanceDerived:        "derived",
	ProvenanceUserOverridden: "user_overridden",
}

func (p Provenance) String() string {
	if name, ok := provenanceNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Provenance(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler
func (p Provenance) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Provenance) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		*p = ProvenanceUnset
		return nil
	}
	for k, v := range provenanceNames {
		if v == s {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown provenance %q", s)
}

// DateField is a calendar date with provenance
type DateField struct {
	Value  time.Time
	Source Provenance
}

// IsSet reports whether the field holds a value
func (f DateField) IsSet() bool { return f.Source != ProvenanceUnset }

type dateFieldJSON struct {
	Value  string     `json:"value"`
	Source Provenance `json:"source"`
}

// MarshalJSON encodes the date as YYYY-MM-DD
func (f DateField) MarshalJSON() ([]byte, error) {
	out := dateFieldJSON{Source: f.Source}
	if f.IsSet() {
		out.Value = f.Value.Format(utils.ISODate)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes {"value": "YYYY-MM-DD", "source": "..."}
func (f *DateField) UnmarshalJSON(data []byte) error {
	var in dateFieldJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Value == "" || in.Source == ProvenanceUnset {
		*f = DateField{}
		return nil
	}
	t, err := parseDate(in.Value)
	if err != nil {
		return err
	}
	*f = DateField{Value: t, Source: in.Source}
	return nil
}

// AmountField is a money value with provenance
type AmountField struct {
	Value  decimal.Decimal `json:"value"`
	Source Provenance      `json:"source"`
}

// IsSet reports whether the field holds a value
func (f AmountField) IsSet() bool { return f.Source != ProvenanceUnset }

// IntField is a whole-number value with provenance
type IntField struct {
	Value  int        `json:"value"`
	Source Provenance `json:"source"`
}

// IsSet reports whether the field holds a value
func (f IntField) IsSet() bool { return f.Source != ProvenanceUnset }

// Field names a draft input
type Field string

const (
	FieldStartDate      Field = "start_date"
	FieldDurationMonths Field = "duration_months"
	FieldEndDate        Field = "end_date"
	FieldMonthlyRent    Field = "monthly_rent"
	FieldDeposit        Field = "deposit"
)

// Draft is the in-progress state of a lease form. Its setters return a new
// Draft; the receiver is never modified, so a rejected edit leaves the
// caller's state as it was.
//
// The end date is re-derived whenever the start date or duration changes
// and the other one is populated. A later direct edit of the end date marks
// it user-overridden until the next start/duration edit (last write wins).
// Without a duration the end date is entered by hand and never touched.
type Draft struct {
	StartDate      DateField   `json:"start_date"`
	DurationMonths IntField    `json:"duration_months"`
	EndDate        DateField   `json:"end_date"`
	MonthlyRent    AmountField `json:"monthly_rent"`
	Deposit        AmountField `json:"deposit"`
}

// SetStartDate records a user-entered start date
func (d Draft) SetStartDate(t time.Time) Draft {
	d.StartDate = DateField{Value: t, Source: ProvenanceUserOverridden}
	return d.rederive()
}

// SetDurationMonths records a user-entered duration
func (d Draft) SetDurationMonths(months int) Draft {
	d.DurationMonths = IntField{Value: months, Source: ProvenanceUserOverridden}
	return d.rederive()
}

// SetEndDate records a user-entered end date, overriding any derived one
func (d Draft) SetEndDate(t time.Time) Draft {
	d.EndDate = DateField{Value: t, Source: ProvenanceUserOverridden}
	return d
}

// SetMonthlyRent records the rent and fills in the default deposit once
func (d Draft) SetMonthlyRent(rent decimal.Decimal) Draft {
	d.MonthlyRent = AmountField{Value: rent, Source: ProvenanceUserOverridden}
	d.Deposit = DeriveDefaultDeposit(rent, d.Deposit)
	return d
}

// SetDeposit records a user-entered deposit
func (d Draft) SetDeposit(deposit decimal.Decimal) Draft {
	d.Deposit = AmountField{Value: deposit, Source: ProvenanceUserOverridden}
	return d
}

// Clear empties a field. Clearing never triggers re-derivation.
func (d Draft) Clear(field Field) (Draft, error) {
	switch field {
	case FieldStartDate:
		d.StartDate = DateField{}
	case FieldDurationMonths:
		d.DurationMonths = IntField{}
	case FieldEndDate:
		d.EndDate = DateField{}
	case FieldMonthlyRent:
		d.MonthlyRent = AmountField{}
	case FieldDeposit:
		d.Deposit = AmountField{}
	default:
		return d, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return d, nil
}

// Apply parses a raw form input and applies it to field. An empty input
// clears the field. Malformed input returns the draft unchanged with an
// error wrapping ErrMalformedDate, ErrMalformedAmount or ErrMalformedNumber.
func (d Draft) Apply(field Field, raw string) (Draft, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return d.Clear(field)
	}

	switch field {
	case FieldStartDate, FieldEndDate:
		t, err := parseDate(raw)
		if err != nil {
			return d, err
		}
		if field == FieldStartDate {
			return d.SetStartDate(t), nil
		}
		return d.SetEndDate(t), nil

	case FieldDurationMonths:
		n, err := parseInt(raw)
		if err != nil {
			return d, err
		}
		return d.SetDurationMonths(n), nil

	case FieldMonthlyRent, FieldDeposit:
		amount, err := parseAmount(raw)
		if err != nil {
			return d, err
		}
		if field == FieldMonthlyRent {
			return d.SetMonthlyRent(amount), nil
		}
		return d.SetDeposit(amount), nil
	}

	return d, fmt.Errorf("%w: %s", ErrUnknownField, field)
}

func (d Draft) rederive() Draft {
	if d.StartDate.IsSet() && d.DurationMonths.IsSet() {
		d.EndDate = DateField{
			Value:  DeriveEndDate(d.StartDate.Value, d.DurationMonths.Value),
			Source: ProvenanceDerived,
		}
	}
	return d
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(utils.ISODate, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, raw)
	}
	return t, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}
	return amount, nil
}

func parseInt(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, raw)
	}
	return n, nil
}
