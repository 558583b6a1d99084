package report

import (
	"sort"

	"github.com/garyjia/lease-reports/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// group accumulates the payments sharing one dimension value
type group struct {
	name        string
	count       int64
	completed   int64
	total       decimal.Decimal // every payment in the group
	paid        decimal.Decimal // completed payments
	outstanding decimal.Decimal // pending and overdue payments
}

// successRate is completed/count*100 at full precision
func (g *group) successRate() (decimal.Decimal, bool) {
	if g.count == 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(g.completed).Mul(hundred).Div(decimal.NewFromInt(g.count)), true
}

// collectionRate is paid/(paid+outstanding)*100 at full precision
func (g *group) collectionRate() (decimal.Decimal, bool) {
	return collectionRate(g.paid, g.outstanding)
}

func collectionRate(paid, outstanding decimal.Decimal) (decimal.Decimal, bool) {
	denom := paid.Add(outstanding)
	if denom.IsZero() {
		return decimal.Zero, false
	}
	return paid.Mul(hundred).Div(denom), true
}

func share(part, whole decimal.Decimal) (decimal.Decimal, bool) {
	if whole.IsZero() {
		return decimal.Zero, false
	}
	return part.Mul(hundred).Div(whole), true
}

// groupPayments buckets payments by the display label key returns
func groupPayments(payments []*entity.Payment, key func(*entity.Payment) string) []*group {
	index := make(map[string]*group)
	var groups []*group

	for _, p := range payments {
		name := key(p)
		g, ok := index[name]
		if !ok {
			g = &group{name: name}
			index[name] = g
			groups = append(groups, g)
		}

		g.count++
		g.total = g.total.Add(p.Amount)
		switch {
		case p.IsCompleted():
			g.completed++
			g.paid = g.paid.Add(p.Amount)
		case p.IsOutstanding():
			g.outstanding = g.outstanding.Add(p.Amount)
		}
	}
	return groups
}

// sortGroups orders groups by amount descending, then name ascending
func sortGroups(groups []*group, amount func(*group) decimal.Decimal) {
	sort.SliceStable(groups, func(i, j int) bool {
		ai, aj := amount(groups[i]), amount(groups[j])
		if c := ai.Cmp(aj); c != 0 {
			return c > 0
		}
		return groups[i].name < groups[j].name
	})
}

// sortPayments orders payments by amount descending, then reference ascending
func sortPayments(payments []*entity.Payment) {
	sort.SliceStable(payments, func(i, j int) bool {
		if c := payments[i].Amount.Cmp(payments[j].Amount); c != 0 {
			return c > 0
		}
		return payments[i].Reference < payments[j].Reference
	})
}

func filterPayments(payments []*entity.Payment, keep func(*entity.Payment) bool) []*entity.Payment {
	out := make([]*entity.Payment, 0, len(payments))
	for _, p := range payments {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func sumAmounts(payments []*entity.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
