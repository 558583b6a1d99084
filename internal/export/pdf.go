package export

import (
	"bytes"
	"fmt"

	"github.com/garyjia/lease-reports/internal/report"
	"github.com/go-pdf/fpdf"
)

// Page geometry in millimetres for A4 landscape. pageBreakY is a hard
// threshold: content that would end below it starts a new page.
const (
	pdfMargin        = 15.0
	pdfContentWidth  = 297.0 - 2*pdfMargin
	pageBreakY       = 188.0
	pdfFooterY       = 195.0
	pdfTitleHeight   = 10.0
	pdfLineHeight    = 6.0
	pdfRowHeight     = 7.0
	pdfSectionGap    = 6.0
	pdfChartHeight   = 40.0
	pdfKPILabelWidth = 80.0

	// Average glyph width of 8pt Helvetica, used to derive the fixed
	// character budget of a column.
	pdfCharWidth = 1.6
	pdfBodyFont  = 8.0
)

const pdfFont = "Helvetica"

// PDFOptions tunes PDF output
type PDFOptions struct {
	Compress bool
	Author   string
}

// PDFExporter lays a report document out as a paginated PDF
type PDFExporter struct {
	opts PDFOptions
}

// NewPDFExporter creates a PDF exporter
func NewPDFExporter(opts PDFOptions) *PDFExporter {
	return &PDFExporter{opts: opts}
}

// Format implements Exporter
func (e *PDFExporter) Format() Format { return FormatPDF }

// Export implements Exporter
func (e *PDFExporter) Export(doc *report.Document) ([]byte, error) {
	pdf, err := e.render(doc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) render(doc *report.Document) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(e.opts.Compress)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetModificationDate(doc.GeneratedAt)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("lease-reports", true)
	if e.opts.Author != "" {
		pdf.SetAuthor(e.opts.Author, true)
	}
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(pdfFooterY)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	l := &pdfLayout{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.AddPage()
	l.header(doc)
	l.summary(doc)

	for _, section := range doc.Sections {
		switch s := section.(type) {
		case *report.Table:
			l.table(s)
		case *report.ChartPlaceholder:
			l.chart(s)
		}
	}

	if pdf.Err() {
		return nil, fmt.Errorf("failed to lay out pdf: %w", pdf.Error())
	}
	return pdf, nil
}

type pdfLayout struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	// onRow, when set, observes the page and vertical span of each data row
	onRow func(page int, top, bottom float64)
}

// ensureSpace starts a new page when h more millimetres would cross pageBreakY
func (l *pdfLayout) ensureSpace(h float64) bool {
	if l.pdf.GetY()+h > pageBreakY {
		l.pdf.AddPage()
		return true
	}
	return false
}

func (l *pdfLayout) header(doc *report.Document) {
	l.pdf.SetFont(pdfFont, "B", 16)
	l.pdf.CellFormat(0, pdfTitleHeight, l.tr(doc.Title), "", 1, "L", false, 0, "")

	l.pdf.SetFont(pdfFont, "", 10)
	l.pdf.CellFormat(0, pdfLineHeight,
		"Generated: "+doc.GeneratedAt.UTC().Format("2006-01-02 15:04")+" UTC", "", 1, "L", false, 0, "")
	l.pdf.CellFormat(0, pdfLineHeight,
		fmt.Sprintf("Period: %s to %s",
			doc.DateRange.Start.Format("2006-01-02"), doc.DateRange.End.Format("2006-01-02")),
		"", 1, "L", false, 0, "")
	l.pdf.Ln(pdfSectionGap)
}

func (l *pdfLayout) summary(doc *report.Document) {
	if len(doc.Summary) == 0 {
		return
	}
	l.ensureSpace(pdfTitleHeight + pdfRowHeight)
	l.sectionTitle("Summary")

	for _, kpi := range doc.Summary {
		l.ensureSpace(pdfRowHeight)
		l.pdf.SetFont(pdfFont, "", 10)
		l.pdf.CellFormat(pdfKPILabelWidth, pdfRowHeight, l.tr(kpi.Label), "", 0, "L", false, 0, "")
		l.pdf.SetFont(pdfFont, "B", 10)
		l.pdf.CellFormat(0, pdfRowHeight, l.tr(kpi.Value.DisplayText()), "", 1, "L", false, 0, "")
	}
	l.pdf.Ln(pdfSectionGap)
}

func (l *pdfLayout) sectionTitle(title string) {
	l.pdf.SetFont(pdfFont, "B", 12)
	l.pdf.CellFormat(0, pdfTitleHeight, l.tr(title), "", 1, "L", false, 0, "")
}

func (l *pdfLayout) table(t *report.Table) {
	width := columnWidth(len(t.Headers))
	budget := columnBudget(len(t.Headers))

	// Keep the title with its header and first row.
	l.ensureSpace(pdfTitleHeight + 2*pdfRowHeight)
	l.sectionTitle(t.Title)
	l.headerRow(t.Headers, width, budget)

	for _, row := range t.Rows {
		if l.ensureSpace(pdfRowHeight) {
			l.headerRow(t.Headers, width, budget)
		}
		l.dataRow(row, width, budget, false)
	}

	if t.Totals != nil {
		if l.ensureSpace(pdfRowHeight) {
			l.headerRow(t.Headers, width, budget)
		}
		l.dataRow(t.Totals, width, budget, true)
	}
	l.pdf.Ln(pdfSectionGap)
}

func (l *pdfLayout) headerRow(headers []string, width float64, budget int) {
	l.pdf.SetFont(pdfFont, "B", pdfBodyFont)
	l.pdf.SetFillColor(230, 234, 240)
	for _, h := range headers {
		l.pdf.CellFormat(width, pdfRowHeight, l.tr(Truncate(h, budget)), "1", 0, "L", true, 0, "")
	}
	l.pdf.Ln(-1)
}

func (l *pdfLayout) dataRow(cells []report.Cell, width float64, budget int, totals bool) {
	style := ""
	if totals {
		style = "B"
		l.pdf.SetFillColor(245, 245, 245)
	}
	l.pdf.SetFont(pdfFont, style, pdfBodyFont)

	top := l.pdf.GetY()
	for _, c := range cells {
		align := "L"
		if c.Kind == report.CellInteger || c.Kind == report.CellCurrency || c.Kind == report.CellPercent {
			align = "R"
		}
		l.pdf.CellFormat(width, pdfRowHeight, l.tr(Truncate(c.DisplayText(), budget)), "1", 0, align, totals, 0, "")
	}
	l.pdf.Ln(-1)
	if l.onRow != nil {
		l.onRow(l.pdf.PageNo(), top, top+pdfRowHeight)
	}
}

func (l *pdfLayout) chart(c *report.ChartPlaceholder) {
	l.ensureSpace(pdfTitleHeight + pdfChartHeight)
	l.sectionTitle(c.Title)

	x, y := l.pdf.GetX(), l.pdf.GetY()
	l.pdf.SetDrawColor(160, 160, 160)
	l.pdf.Rect(x, y, pdfContentWidth, pdfChartHeight, "D")
	l.pdf.SetDrawColor(0, 0, 0)

	l.pdf.SetFont(pdfFont, "I", 9)
	l.pdf.SetXY(x, y+pdfChartHeight/2-pdfLineHeight/2)
	l.pdf.CellFormat(pdfContentWidth, pdfLineHeight, l.tr("Chart of "+c.Table), "", 0, "C", false, 0, "")
	l.pdf.SetXY(x, y+pdfChartHeight)
	l.pdf.Ln(pdfSectionGap)
}

func columnWidth(columns int) float64 {
	if columns == 0 {
		return pdfContentWidth
	}
	return pdfContentWidth / float64(columns)
}

// columnBudget is the number of characters that fit in one column
func columnBudget(columns int) int {
	return int(columnWidth(columns) / pdfCharWidth)
}

// Truncate shortens s to budget runes, marking the cut with "...".
func Truncate(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	if budget <= 3 {
		return string(runes[:budget])
	}
	return string(runes[:budget-3]) + "..."
}
