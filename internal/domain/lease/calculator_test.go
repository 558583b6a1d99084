package lease

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeriveEndDate(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"twelve months from Jan 1", date(2024, 1, 1), 12, date(2024, 12, 31)},
		{"one month from mid month", date(2024, 3, 15), 1, date(2024, 4, 14)},
		{"Jan 31 plus one month in leap year", date(2024, 1, 31), 1, date(2024, 2, 28)},
		{"Jan 31 plus one month in common year", date(2023, 1, 31), 1, date(2023, 2, 27)},
		{"Jan 30 plus one month in leap year", date(2024, 1, 30), 1, date(2024, 2, 28)},
		{"Mar 31 plus one month", date(2024, 3, 31), 1, date(2024, 4, 29)},
		{"Feb 29 plus twelve months", date(2024, 2, 29), 12, date(2025, 2, 27)},
		{"crosses year boundary", date(2024, 11, 1), 3, date(2025, 1, 31)},
		{"maximum duration", date(2024, 1, 1), 120, date(2033, 12, 31)},
		{"zero months is the day before", date(2024, 5, 10), 0, date(2024, 5, 9)},
		{"negative months goes backwards", date(2024, 1, 15), -1, date(2023, 12, 14)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveEndDate(tt.start, tt.months))
		})
	}
}

func TestDeriveEndDate_OneDayBeforeAnniversary(t *testing.T) {
	start := date(2020, 1, 1)
	for day := 0; day < 366; day += 7 {
		s := start.AddDate(0, 0, day)
		for months := MinDurationMonths; months <= MaxDurationMonths; months += 13 {
			end := DeriveEndDate(s, months)
			next := end.AddDate(0, 0, 1)

			wantYear, wantMonth := s.Year(), int(s.Month())-1+months
			wantYear += wantMonth / 12
			wantMonth = wantMonth%12 + 1
			assert.Equal(t, wantYear, next.Year(), "start=%s months=%d", s.Format("2006-01-02"), months)
			assert.Equal(t, time.Month(wantMonth), next.Month(), "start=%s months=%d", s.Format("2006-01-02"), months)
			assert.LessOrEqual(t, next.Day(), s.Day())
		}
	}
}

func TestDeriveDefaultDeposit(t *testing.T) {
	rent := decimal.NewFromInt(8500)

	t.Run("fills unset deposit", func(t *testing.T) {
		got := DeriveDefaultDeposit(rent, AmountField{})
		assert.True(t, got.Value.Equal(decimal.NewFromInt(17000)))
		assert.Equal(t, ProvenanceDerived, got.Source)
	})

	t.Run("keeps user deposit", func(t *testing.T) {
		current := AmountField{Value: decimal.NewFromInt(5000), Source: ProvenanceUserOverridden}
		assert.Equal(t, current, DeriveDefaultDeposit(rent, current))
	})

	t.Run("keeps previously derived deposit", func(t *testing.T) {
		current := AmountField{Value: decimal.NewFromInt(17000), Source: ProvenanceDerived}
		assert.Equal(t, current, DeriveDefaultDeposit(decimal.NewFromInt(9000), current))
	})
}
