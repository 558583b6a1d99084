package export

import (
	"fmt"
	"strings"

	"github.com/garyjia/lease-reports/internal/report"
	"github.com/garyjia/lease-reports/pkg/utils"
	"github.com/xuri/excelize/v2"
)

// SummarySheet is always the first sheet of an exported workbook
const SummarySheet = "Summary"

const (
	maxSheetNameLen = 31
	defaultColWidth = 20.0
	titleRow        = 1
	headerRow       = 2
	firstDataRow    = 3
)

// WorkbookExporter writes a report document as an XLSX workbook: the
// summary sheet, then one sheet per table in section order.
type WorkbookExporter struct {
	format utils.Formatter
}

// NewWorkbookExporter creates a spreadsheet exporter. The formatter
// supplies the number formats that make numeric cells display like the
// PDF text.
func NewWorkbookExporter(format utils.Formatter) *WorkbookExporter {
	return &WorkbookExporter{format: format}
}

// Format implements Exporter
func (e *WorkbookExporter) Format() Format { return FormatXLSX }

// Export implements Exporter
func (e *WorkbookExporter) Export(doc *report.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}

	stamp := doc.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z")
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:    doc.Title,
		Creator:  "lease-reports",
		Created:  stamp,
		Modified: stamp,
	}); err != nil {
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	w, err := newSheetWriter(f, e.format)
	if err != nil {
		return nil, err
	}

	if err := w.writeSummary(doc); err != nil {
		return nil, err
	}

	names := newSheetNamer(SummarySheet)
	sheetOf := make(map[string]string)
	for _, t := range doc.Tables() {
		name := names.next(t.Title)
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
		if err := w.writeTable(name, t); err != nil {
			return nil, err
		}
		sheetOf[t.Title] = name
	}

	for _, s := range doc.Sections {
		c, ok := s.(*report.ChartPlaceholder)
		if !ok {
			continue
		}
		t, _ := doc.Table(c.Table)
		if err := w.addChart(sheetOf[c.Table], t, c); err != nil {
			return nil, err
		}
	}

	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetWriter struct {
	f      *excelize.File
	styles workbookStyles
}

type workbookStyles struct {
	title, header, text, totalsText int
	currency, percent, integer      int
	totalsCurrency, totalsPercent   int
	totalsInteger                   int
}

func newSheetWriter(f *excelize.File, format utils.Formatter) (*sheetWriter, error) {
	currencyFmt := format.CurrencyNumberFormat()
	percentFmt := format.PercentNumberFormat()
	integerFmt := format.IntegerNumberFormat()
	border := []excelize.Border{
		{Type: "left", Color: "BFBFBF", Style: 1},
		{Type: "right", Color: "BFBFBF", Style: 1},
		{Type: "top", Color: "BFBFBF", Style: 1},
		{Type: "bottom", Color: "BFBFBF", Style: 1},
	}
	bold := &excelize.Font{Bold: true}
	totalsFill := excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F5F5F5"}}

	var s workbookStyles
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}},
		{&s.header, &excelize.Style{
			Font:   bold,
			Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6EAF0"}},
			Border: border,
		}},
		{&s.text, &excelize.Style{Border: border}},
		{&s.totalsText, &excelize.Style{Font: bold, Fill: totalsFill, Border: border}},
		{&s.currency, &excelize.Style{CustomNumFmt: &currencyFmt, Border: border}},
		{&s.percent, &excelize.Style{CustomNumFmt: &percentFmt, Border: border}},
		{&s.integer, &excelize.Style{CustomNumFmt: &integerFmt, Border: border}},
		{&s.totalsCurrency, &excelize.Style{CustomNumFmt: &currencyFmt, Font: bold, Fill: totalsFill, Border: border}},
		{&s.totalsPercent, &excelize.Style{CustomNumFmt: &percentFmt, Font: bold, Fill: totalsFill, Border: border}},
		{&s.totalsInteger, &excelize.Style{CustomNumFmt: &integerFmt, Font: bold, Fill: totalsFill, Border: border}},
	}

	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return nil, fmt.Errorf("failed to create workbook style: %w", err)
		}
		*d.dst = id
	}

	return &sheetWriter{f: f, styles: s}, nil
}

func (w *sheetWriter) writeSummary(doc *report.Document) error {
	sheet := SummarySheet
	title := fmt.Sprintf("%s (%s to %s)", doc.Title,
		doc.DateRange.Start.Format(utils.ISODate), doc.DateRange.End.Format(utils.ISODate))

	if err := w.setTitle(sheet, title); err != nil {
		return err
	}
	if err := w.setHeaders(sheet, []string{"Metric", "Value"}); err != nil {
		return err
	}

	row := firstDataRow
	for _, kpi := range doc.Summary {
		if err := w.setCell(sheet, 1, row, report.Cell{Kind: report.CellText, Text: kpi.Label}, false); err != nil {
			return err
		}
		if err := w.setCell(sheet, 2, row, kpi.Value, false); err != nil {
			return err
		}
		row++
	}

	meta := [][2]string{
		{"Generated", doc.GeneratedAt.UTC().Format("2006-01-02 15:04") + " UTC"},
		{"Period", doc.DateRange.Start.Format(utils.ISODate) + " to " + doc.DateRange.End.Format(utils.ISODate)},
	}
	for _, m := range meta {
		for col, v := range m {
			if err := w.setCell(sheet, col+1, row, report.Cell{Kind: report.CellText, Text: v}, false); err != nil {
				return err
			}
		}
		row++
	}

	return w.f.SetColWidth(sheet, "A", "B", 28)
}

func (w *sheetWriter) writeTable(sheet string, t *report.Table) error {
	if err := w.setTitle(sheet, t.Title); err != nil {
		return err
	}
	if err := w.setHeaders(sheet, t.Headers); err != nil {
		return err
	}

	row := firstDataRow
	for _, cells := range t.Rows {
		for i, c := range cells {
			if err := w.setCell(sheet, i+1, row, c, false); err != nil {
				return err
			}
		}
		row++
	}

	if t.Totals != nil {
		for i, c := range t.Totals {
			if err := w.setCell(sheet, i+1, row, c, true); err != nil {
				return err
			}
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(t.Headers))
	if err != nil {
		return fmt.Errorf("failed to resolve column: %w", err)
	}
	return w.f.SetColWidth(sheet, "A", lastCol, defaultColWidth)
}

func (w *sheetWriter) setTitle(sheet, title string) error {
	if err := w.f.SetCellStr(sheet, "A1", title); err != nil {
		return fmt.Errorf("failed to set title on %q: %w", sheet, err)
	}
	return w.f.SetCellStyle(sheet, "A1", "A1", w.styles.title)
}

func (w *sheetWriter) setHeaders(sheet string, headers []string) error {
	for i, h := range headers {
		ref, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		if err := w.f.SetCellStr(sheet, ref, h); err != nil {
			return fmt.Errorf("failed to set header %s on %q: %w", ref, sheet, err)
		}
		if err := w.f.SetCellStyle(sheet, ref, ref, w.styles.header); err != nil {
			return err
		}
	}
	return nil
}

// setCell writes numeric cells as numbers so spreadsheets keep their type.
// Absent numerics are left empty.
func (w *sheetWriter) setCell(sheet string, col, row int, c report.Cell, totals bool) error {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}

	style := w.styles.text
	if totals {
		style = w.styles.totalsText
	}

	switch {
	case c.IsNumeric() && c.Kind == report.CellInteger:
		err = w.f.SetCellValue(sheet, ref, c.Number.IntPart())
		style = pick(totals, w.styles.totalsInteger, w.styles.integer)
	case c.IsNumeric() && c.Kind == report.CellPercent:
		err = w.f.SetCellFloat(sheet, ref, c.Number.InexactFloat64(), -1, 64)
		style = pick(totals, w.styles.totalsPercent, w.styles.percent)
	case c.IsNumeric():
		err = w.f.SetCellFloat(sheet, ref, c.Number.InexactFloat64(), -1, 64)
		style = pick(totals, w.styles.totalsCurrency, w.styles.currency)
	case c.DisplayText() != "":
		err = w.f.SetCellStr(sheet, ref, c.DisplayText())
	}
	if err != nil {
		return fmt.Errorf("failed to set %s on %q: %w", ref, sheet, err)
	}
	return w.f.SetCellStyle(sheet, ref, ref, style)
}

// addChart places a column chart of the table's label/value columns to
// the right of the table. Empty tables get no chart.
func (w *sheetWriter) addChart(sheet string, t *report.Table, c *report.ChartPlaceholder) error {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}

	labelCol, err := excelize.ColumnNumberToName(c.LabelColumn + 1)
	if err != nil {
		return err
	}
	valueCol, err := excelize.ColumnNumberToName(c.ValueColumn + 1)
	if err != nil {
		return err
	}
	anchorCol, err := excelize.ColumnNumberToName(len(t.Headers) + 2)
	if err != nil {
		return err
	}

	lastRow := firstDataRow + len(t.Rows) - 1
	quoted := "'" + sheet + "'"

	chart := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$%s$%d", quoted, valueCol, headerRow),
			Categories: fmt.Sprintf("%s!$%s$%d:$%s$%d", quoted, labelCol, firstDataRow, labelCol, lastRow),
			Values:     fmt.Sprintf("%s!$%s$%d:$%s$%d", quoted, valueCol, firstDataRow, valueCol, lastRow),
		}},
		Title:  []excelize.RichTextRun{{Text: c.Title}},
		Legend: excelize.ChartLegend{Position: "none"},
	}
	if err := w.f.AddChart(sheet, fmt.Sprintf("%s%d", anchorCol, headerRow), chart); err != nil {
		return fmt.Errorf("failed to add chart %q: %w", c.Title, err)
	}
	return nil
}

func pick(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}

// sheetNamer produces unique sheet names within Excel's limits
type sheetNamer struct {
	used map[string]bool
}

func newSheetNamer(reserved ...string) *sheetNamer {
	n := &sheetNamer{used: make(map[string]bool)}
	for _, r := range reserved {
		n.used[strings.ToLower(r)] = true
	}
	return n
}

var sheetNameReplacer = strings.NewReplacer(
	":", " ", `\`, " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")", "'", "",
)

func (n *sheetNamer) next(title string) string {
	base := strings.TrimSpace(sheetNameReplacer.Replace(title))
	if base == "" {
		base = "Table"
	}
	base = clip(base, maxSheetNameLen)

	name := base
	for i := 2; n.used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		name = clip(base, maxSheetNameLen-len(suffix)) + suffix
	}
	n.used[strings.ToLower(name)] = true
	return name
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}
