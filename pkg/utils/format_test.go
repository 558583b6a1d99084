package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatter_Currency(t *testing.T) {
	f := NewFormatter("KES", "")

	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{"zero", "0", "KES 0.00"},
		{"small", "5.5", "KES 5.50"},
		{"thousands", "8500", "KES 8,500.00"},
		{"millions", "1234567.891", "KES 1,234,567.89"},
		{"exact group boundary", "100000", "KES 100,000.00"},
		{"negative", "-1200", "-KES 1,200.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Currency(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestFormatter_ZeroValueDefaults(t *testing.T) {
	var f Formatter
	assert.Equal(t, "KES 17,000.00", f.Currency(decimal.NewFromInt(17000)))
	assert.Equal(t, "2024-12-31", f.Date(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", f.Date(time.Time{}))
}

func TestFormatter_PercentRoundsHalfUp(t *testing.T) {
	var f Formatter
	assert.Equal(t, "67%", f.Percent(decimal.RequireFromString("66.6666667")))
	assert.Equal(t, "3%", f.Percent(decimal.RequireFromString("2.5")))
	assert.Equal(t, "100%", f.Percent(decimal.NewFromInt(100)))
	assert.Equal(t, "0%", f.Percent(decimal.Zero))
}

func TestFormatter_Integer(t *testing.T) {
	var f Formatter
	assert.Equal(t, "7", f.Integer(7))
	assert.Equal(t, "1,024", f.Integer(1024))
	assert.Equal(t, "-12,345", f.Integer(-12345))
}

func TestFormatter_CurrencyNumberFormat(t *testing.T) {
	f := NewFormatter("USD", "")
	assert.Equal(t, `"USD "#,##0.00;-"USD "#,##0.00`, f.CurrencyNumberFormat())
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "Income_Report", SanitizeFileName("Income Report"))
	assert.Equal(t, "Rent_Roll_Q1", SanitizeFileName("  Rent Roll / Q1 "))
	assert.Equal(t, "report", SanitizeFileName("   "))
}

func TestValidatePercentage(t *testing.T) {
	assert.NoError(t, ValidatePercentage(decimal.Zero))
	assert.NoError(t, ValidatePercentage(decimal.NewFromInt(100)))
	assert.Error(t, ValidatePercentage(decimal.RequireFromString("100.01")))
	assert.Error(t, ValidatePercentage(decimal.NewFromInt(-1)))
}
