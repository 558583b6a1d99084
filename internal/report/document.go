package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CellKind tells exporters how to render a cell
type CellKind int

const (
	CellText CellKind = iota
	CellInteger
	CellCurrency
	CellPercent
	CellDate
)

// Cell is one table value. Numeric cells carry the full-precision Number
// for spreadsheets and the display Text for PDFs. A numeric cell with
// Valid=false is absent and renders empty.
type Cell struct {
	Kind   CellKind
	Text   string
	Number decimal.Decimal
	Valid  bool
}

// IsNumeric reports whether the cell has a numeric value to export
func (c Cell) IsNumeric() bool {
	switch c.Kind {
	case CellInteger, CellCurrency, CellPercent:
		return c.Valid
	}
	return false
}

// DisplayText is the text shown for the cell; empty when absent
func (c Cell) DisplayText() string {
	if c.Kind != CellText && c.Kind != CellDate && !c.Valid {
		return ""
	}
	return c.Text
}

// DateRange is an inclusive range of calendar dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls on a day inside the range
func (r DateRange) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(r.End.Year(), r.End.Month(), r.End.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(start) && !day.After(end)
}

// Validate checks the range is ordered
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidDateRange)
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidDateRange,
			r.End.Format("2006-01-02"), r.Start.Format("2006-01-02"))
	}
	return nil
}

// KPI is a named summary figure
type KPI struct {
	Label string
	Value Cell
}

// Section is a Table or a ChartPlaceholder
type Section interface {
	SectionTitle() string
}

// Table is a titled grid. Every row and the optional Totals row have
// exactly len(Headers) cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]Cell
	Totals  []Cell
}

// SectionTitle implements Section
func (t *Table) SectionTitle() string { return t.Title }

// Validate checks every row matches the header width
func (t *Table) Validate() error {
	if len(t.Headers) == 0 {
		return fmt.Errorf("%w: table %q has no headers", ErrMalformedTable, t.Title)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return fmt.Errorf("%w: table %q row %d has %d cells, want %d",
				ErrMalformedTable, t.Title, i, len(row), len(t.Headers))
		}
	}
	if t.Totals != nil && len(t.Totals) != len(t.Headers) {
		return fmt.Errorf("%w: table %q totals has %d cells, want %d",
			ErrMalformedTable, t.Title, len(t.Totals), len(t.Headers))
	}
	return nil
}

// ChartPlaceholder marks where a chart of one table's columns belongs
type ChartPlaceholder struct {
	Title       string
	Table       string // title of the source table in the same document
	LabelColumn int
	ValueColumn int
}

// SectionTitle implements Section
func (c *ChartPlaceholder) SectionTitle() string { return c.Title }

// Document is the exporter-agnostic form of a generated report. It is
// built fresh for each export and must not be modified once handed to an
// exporter.
type Document struct {
	ID          string
	Kind        Kind
	Title       string
	GeneratedAt time.Time
	DateRange   DateRange
	Summary     []KPI
	Sections    []Section
}

// Tables returns the document's tables in section order
func (d *Document) Tables() []*Table {
	var tables []*Table
	for _, s := range d.Sections {
		if t, ok := s.(*Table); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// Table finds a table by title
func (d *Document) Table(title string) (*Table, bool) {
	for _, t := range d.Tables() {
		if t.Title == title {
			return t, true
		}
	}
	return nil, false
}

// Validate checks all tables and that charts reference existing columns
func (d *Document) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("%w: document title is required", ErrMalformedTable)
	}
	for _, s := range d.Sections {
		switch sec := s.(type) {
		case *Table:
			if err := sec.Validate(); err != nil {
				return err
			}
		case *ChartPlaceholder:
			t, ok := d.Table(sec.Table)
			if !ok {
				return fmt.Errorf("%w: chart %q references missing table %q", ErrMalformedTable, sec.Title, sec.Table)
			}
			if sec.LabelColumn < 0 || sec.LabelColumn >= len(t.Headers) ||
				sec.ValueColumn < 0 || sec.ValueColumn >= len(t.Headers) {
				return fmt.Errorf("%w: chart %q column out of range", ErrMalformedTable, sec.Title)
			}
		default:
			return fmt.Errorf("%w: unsupported section %T", ErrMalformedTable, s)
		}
	}
	return nil
}
