package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ISODate is the wire layout for calendar dates.
const ISODate = "2006-01-02"

// DefaultCurrency is used when no currency symbol is configured.
const DefaultCurrency = "KES"

// Formatter turns amounts and dates into display strings.
// The zero value formats with DefaultCurrency and ISODate.
type Formatter struct {
	CurrencySymbol string
	DateLayout     string
}

// NewFormatter creates a formatter for the given currency symbol
func NewFormatter(currencySymbol, dateLayout string) Formatter {
	return Formatter{CurrencySymbol: currencySymbol, DateLayout: dateLayout}
}

func (f Formatter) symbol() string {
	if f.CurrencySymbol == "" {
		return DefaultCurrency
	}
	return f.CurrencySymbol
}

func (f Formatter) layout() string {
	if f.DateLayout == "" {
		return ISODate
	}
	return f.DateLayout
}

// Currency formats an amount as "KES 8,500.00". Negative amounts get a
// leading minus sign before the symbol.
func (f Formatter) Currency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-" + f.symbol() + " " + f.Amount(amount.Neg())
	}
	return f.symbol() + " " + f.Amount(amount)
}

// Amount formats a number with two decimals and thousands separators.
func (f Formatter) Amount(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + groupThousands(intPart) + "." + frac
}

// Integer formats a count with thousands separators.
func (f Formatter) Integer(n int64) string {
	if n < 0 {
		return "-" + groupThousands(fmt.Sprintf("%d", -n))
	}
	return groupThousands(fmt.Sprintf("%d", n))
}

// Percent formats a percentage rounded half up to a whole number: "67%".
func (f Formatter) Percent(p decimal.Decimal) string {
	return p.Round(0).String() + "%"
}

// Date formats a calendar date with the configured layout.
func (f Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(f.layout())
}

// CurrencyNumberFormat is the spreadsheet number format that renders a
// numeric cell exactly like Currency.
func (f Formatter) CurrencyNumberFormat() string {
	sym := strings.ReplaceAll(f.symbol(), `"`, `""`)
	return fmt.Sprintf(`"%s "#,##0.00;-"%s "#,##0.00`, sym, sym)
}

// PercentNumberFormat renders a 0-100 value like Percent.
func (f Formatter) PercentNumberFormat() string {
	return `0"%"`
}

// IntegerNumberFormat renders a count like Integer.
func (f Formatter) IntegerNumberFormat() string {
	return `#,##0`
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
