package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTable_Validate(t *testing.T) {
	ok := &Table{Title: "T", Headers: []string{"A", "B"}, Rows: [][]Cell{{{Text: "1"}, {Text: "2"}}}}
	assert.NoError(t, ok.Validate())

	short := &Table{Title: "T", Headers: []string{"A", "B"}, Rows: [][]Cell{{{Text: "1"}}}}
	assert.ErrorIs(t, short.Validate(), ErrMalformedTable)

	badTotals := &Table{Title: "T", Headers: []string{"A"}, Totals: []Cell{{}, {}}}
	assert.ErrorIs(t, badTotals.Validate(), ErrMalformedTable)
}

func TestDocument_ValidateChartReference(t *testing.T) {
	doc := &Document{
		Title: "R",
		Sections: []Section{
			&Table{Title: "T", Headers: []string{"A", "B"}},
			&ChartPlaceholder{Title: "C", Table: "missing", ValueColumn: 1},
		},
	}
	assert.ErrorIs(t, doc.Validate(), ErrMalformedTable)

	doc.Sections[1] = &ChartPlaceholder{Title: "C", Table: "T", ValueColumn: 2}
	assert.ErrorIs(t, doc.Validate(), ErrMalformedTable)

	doc.Sections[1] = &ChartPlaceholder{Title: "C", Table: "T", ValueColumn: 1}
	assert.NoError(t, doc.Validate())
}

func TestDateRange_Contains(t *testing.T) {
	r := DateRange{Start: day(time.January, 1), End: day(time.January, 31)}
	assert.True(t, r.Contains(time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)))
	assert.True(t, r.Contains(day(time.January, 1)))
	assert.False(t, r.Contains(day(time.February, 1)))
}

func TestCell_DisplayText(t *testing.T) {
	assert.Equal(t, "", Cell{Kind: CellCurrency, Text: "KES 1.00"}.DisplayText())
	assert.Equal(t, "x", Cell{Kind: CellText, Text: "x"}.DisplayText())
}
