package report

import (
	"fmt"
	"time"

	"github.com/garyjia/lease-reports/internal/domain/entity"
	"github.com/garyjia/lease-reports/pkg/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Table titles shared by the builder and its callers
const (
	TableIncomeBySource      = "Income by Source"
	TableIncomeByProperty    = "Income by Property"
	TableRevenueByProperty   = "Revenue by Property"
	TablePaymentMethods      = "Payment Methods"
	TableCollectionByProp    = "Collection by Property"
	TableOutstandingPayments = "Outstanding Payments"
	TableTransactions        = "Transactions"
)

// Builder turns payment records into report documents. Build has no side
// effects beyond reading the clock and drawing a document ID.
type Builder struct {
	format utils.Formatter
	now    func() time.Time
	newID  func() string
}

// Option customizes a Builder
type Option func(*Builder)

// WithClock fixes the generation timestamp source
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithIDGenerator replaces the document ID source
func WithIDGenerator(newID func() string) Option {
	return func(b *Builder) { b.newID = newID }
}

// NewBuilder creates a report builder
func NewBuilder(format utils.Formatter, opts ...Option) *Builder {
	b := &Builder{
		format: format,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build groups the payments inside dateRange by the dimension of kind and
// assembles the summary and tables. Group rows are ordered by amount
// descending with ties broken by name ascending.
func (b *Builder) Build(kind Kind, dateRange DateRange, records []*entity.Payment) (*Document, error) {
	if err := dateRange.Validate(); err != nil {
		return nil, err
	}

	inRange := filterPayments(records, func(p *entity.Payment) bool {
		return p != nil && dateRange.Contains(p.PaidAt)
	})

	doc := &Document{
		ID:          b.newID(),
		Kind:        kind,
		Title:       kind.Title(),
		GeneratedAt: b.now(),
		DateRange:   dateRange,
	}

	switch kind {
	case KindIncome:
		b.buildIncome(doc, inRange)
	case KindProperty:
		b.buildProperty(doc, inRange)
	case KindPaymentMethods:
		b.buildPaymentMethods(doc, inRange)
	case KindCollection:
		b.buildCollection(doc, inRange)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (b *Builder) buildIncome(doc *Document, payments []*entity.Payment) {
	completed := filterPayments(payments, (*entity.Payment).IsCompleted)
	outstanding := filterPayments(payments, (*entity.Payment).IsOutstanding)
	total := sumAmounts(completed)

	doc.Summary = []KPI{
		{Label: "Total Income", Value: b.currency(total)},
		{Label: "Payments Received", Value: b.integer(int64(len(completed)))},
		{Label: "Average Payment", Value: b.average(total, int64(len(completed)))},
		{Label: "Outstanding Amount", Value: b.currency(sumAmounts(outstanding))},
	}

	bySource := groupPayments(completed, func(p *entity.Payment) string { return labelFor(p.Source) })
	byProperty := groupPayments(completed, func(p *entity.Payment) string { return p.PropertyName })

	doc.Sections = []Section{
		b.shareTable(TableIncomeBySource, "Source", bySource, total),
		&ChartPlaceholder{
			Title:       "Income by Source Chart",
			Table:       TableIncomeBySource,
			LabelColumn: 0,
			ValueColumn: 2,
		},
		b.shareTable(TableIncomeByProperty, "Property", byProperty, total),
		b.transactionTable(TableTransactions, completed, false),
	}
}

func (b *Builder) buildProperty(doc *Document, payments []*entity.Payment) {
	completed := filterPayments(payments, (*entity.Payment).IsCompleted)
	total := sumAmounts(completed)

	groups := groupPayments(payments, func(p *entity.Payment) string { return p.PropertyName })
	sortGroups(groups, func(g *group) decimal.Decimal { return g.paid })

	table := &Table{
		Title:   TableRevenueByProperty,
		Headers: []string{"Property", "Payments", "Amount", "Outstanding"},
	}
	var count int64
	outstanding := decimal.Zero
	for _, g := range groups {
		table.Rows = append(table.Rows, []Cell{
			b.text(g.name), b.integer(g.completed), b.currency(g.paid), b.currency(g.outstanding),
		})
		count += g.completed
		outstanding = outstanding.Add(g.outstanding)
	}
	table.Totals = []Cell{b.text("Total"), b.integer(count), b.currency(total), b.currency(outstanding)}

	doc.Summary = []KPI{
		{Label: "Total Revenue", Value: b.currency(total)},
		{Label: "Properties", Value: b.integer(int64(len(groups)))},
		{Label: "Payments Received", Value: b.integer(count)},
		{Label: "Average per Property", Value: b.average(total, int64(len(groups)))},
	}
	doc.Sections = []Section{
		table,
		&ChartPlaceholder{
			Title:       "Revenue by Property Chart",
			Table:       TableRevenueByProperty,
			LabelColumn: 0,
			ValueColumn: 2,
		},
		b.transactionTable(TableTransactions, completed, false),
	}
}

func (b *Builder) buildPaymentMethods(doc *Document, payments []*entity.Payment) {
	groups := groupPayments(payments, func(p *entity.Payment) string { return labelFor(p.Method) })
	sortGroups(groups, func(g *group) decimal.Decimal { return g.total })

	table := &Table{
		Title:   TablePaymentMethods,
		Headers: []string{"Method", "Transactions", "Completed", "Amount", "Success Rate"},
	}
	overall := &group{name: "Total"}
	for _, g := range groups {
		rate, ok := g.successRate()
		table.Rows = append(table.Rows, []Cell{
			b.text(g.name), b.integer(g.count), b.integer(g.completed), b.currency(g.total), b.percent(rate, ok),
		})
		overall.count += g.count
		overall.completed += g.completed
		overall.total = overall.total.Add(g.total)
	}
	overallRate, ok := overall.successRate()
	table.Totals = []Cell{
		b.text(overall.name), b.integer(overall.count), b.integer(overall.completed),
		b.currency(overall.total), b.percent(overallRate, ok),
	}

	doc.Summary = []KPI{
		{Label: "Total Transactions", Value: b.integer(overall.count)},
		{Label: "Completed Transactions", Value: b.integer(overall.completed)},
		{Label: "Overall Success Rate", Value: b.percent(overallRate, ok)},
		{Label: "Total Amount", Value: b.currency(overall.total)},
	}
	doc.Sections = []Section{
		table,
		&ChartPlaceholder{
			Title:       "Payment Methods Chart",
			Table:       TablePaymentMethods,
			LabelColumn: 0,
			ValueColumn: 3,
		},
		b.transactionTable(TableTransactions, payments, true),
	}
}

func (b *Builder) buildCollection(doc *Document, payments []*entity.Payment) {
	payments = filterPayments(payments, func(p *entity.Payment) bool {
		return p.IsCompleted() || p.IsOutstanding()
	})
	groups := groupPayments(payments, func(p *entity.Payment) string { return p.PropertyName })
	sortGroups(groups, func(g *group) decimal.Decimal { return g.outstanding })

	table := &Table{
		Title:   TableCollectionByProp,
		Headers: []string{"Property", "Collected", "Outstanding", "Collection Rate"},
	}
	paid, outstanding := decimal.Zero, decimal.Zero
	for _, g := range groups {
		rate, ok := g.collectionRate()
		table.Rows = append(table.Rows, []Cell{
			b.text(g.name), b.currency(g.paid), b.currency(g.outstanding), b.percent(rate, ok),
		})
		paid = paid.Add(g.paid)
		outstanding = outstanding.Add(g.outstanding)
	}
	rate, ok := collectionRate(paid, outstanding)
	table.Totals = []Cell{b.text("Total"), b.currency(paid), b.currency(outstanding), b.percent(rate, ok)}

	owed := filterPayments(payments, (*entity.Payment).IsOutstanding)
	overdue := filterPayments(owed, func(p *entity.Payment) bool { return p.Status == entity.PaymentStatusOverdue })

	doc.Summary = []KPI{
		{Label: "Amount Collected", Value: b.currency(paid)},
		{Label: "Amount Outstanding", Value: b.currency(outstanding)},
		{Label: "Collection Rate", Value: b.percent(rate, ok)},
		{Label: "Overdue Payments", Value: b.integer(int64(len(overdue)))},
	}

	sortPayments(owed)
	outTable := &Table{
		Title:   TableOutstandingPayments,
		Headers: []string{"Due Date", "Reference", "Tenant", "Property", "Status", "Amount"},
	}
	for _, p := range owed {
		outTable.Rows = append(outTable.Rows, []Cell{
			b.date(p.PaidAt), b.text(p.Reference), b.text(p.TenantName), b.text(p.PropertyName),
			b.text(labelFor(p.Status)), b.currency(p.Amount),
		})
	}
	outTable.Totals = []Cell{
		b.text("Total"), b.text(""), b.text(""), b.text(""), b.text(""), b.currency(outstanding),
	}

	doc.Sections = []Section{table, outTable}
}

// shareTable renders groups with their share of total
func (b *Builder) shareTable(title, dimension string, groups []*group, total decimal.Decimal) *Table {
	sortGroups(groups, func(g *group) decimal.Decimal { return g.paid })

	t := &Table{
		Title:   title,
		Headers: []string{dimension, "Payments", "Amount", "Share"},
	}
	var count int64
	for _, g := range groups {
		pct, ok := share(g.paid, total)
		t.Rows = append(t.Rows, []Cell{b.text(g.name), b.integer(g.count), b.currency(g.paid), b.percent(pct, ok)})
		count += g.count
	}
	pct, ok := share(total, total)
	t.Totals = []Cell{b.text("Total"), b.integer(count), b.currency(total), b.percent(pct, ok)}
	return t
}

// transactionTable lists individual payments, largest first
func (b *Builder) transactionTable(title string, payments []*entity.Payment, withStatus bool) *Table {
	rows := append([]*entity.Payment(nil), payments...)
	sortPayments(rows)

	headers := []string{"Date", "Reference", "Tenant", "Property", "Source", "Method"}
	if withStatus {
		headers = append(headers, "Status")
	}
	headers = append(headers, "Amount")

	t := &Table{Title: title, Headers: headers}
	for _, p := range rows {
		row := []Cell{
			b.date(p.PaidAt), b.text(p.Reference), b.text(p.TenantName), b.text(p.PropertyName),
			b.text(labelFor(p.Source)), b.text(labelFor(p.Method)),
		}
		if withStatus {
			row = append(row, b.text(labelFor(p.Status)))
		}
		t.Rows = append(t.Rows, append(row, b.currency(p.Amount)))
	}

	totals := make([]Cell, len(headers))
	totals[0] = b.text("Total")
	for i := 1; i < len(headers)-1; i++ {
		totals[i] = b.text("")
	}
	totals[len(headers)-1] = b.currency(sumAmounts(rows))
	t.Totals = totals
	return t
}

func (b *Builder) text(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

func (b *Builder) integer(n int64) Cell {
	return Cell{Kind: CellInteger, Text: b.format.Integer(n), Number: decimal.NewFromInt(n), Valid: true}
}

func (b *Builder) currency(d decimal.Decimal) Cell {
	return Cell{Kind: CellCurrency, Text: b.format.Currency(d), Number: d, Valid: true}
}

// percent keeps the full-precision rate and displays it rounded half up
func (b *Builder) percent(p decimal.Decimal, valid bool) Cell {
	if !valid {
		return Cell{Kind: CellPercent}
	}
	return Cell{Kind: CellPercent, Text: b.format.Percent(p), Number: p, Valid: true}
}

func (b *Builder) date(t time.Time) Cell {
	return Cell{Kind: CellDate, Text: b.format.Date(t)}
}

func (b *Builder) average(total decimal.Decimal, n int64) Cell {
	if n == 0 {
		return Cell{Kind: CellCurrency}
	}
	return b.currency(total.Div(decimal.NewFromInt(n)).Round(2))
}
