package export

import (
	"errors"
	"testing"

	"github.com/garyjia/lease-reports/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubExporter struct {
	format Format
	export func(doc *report.Document) ([]byte, error)
}

func (s *stubExporter) Format() Format { return s.format }

func (s *stubExporter) Export(doc *report.Document) ([]byte, error) {
	return s.export(doc)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"pdf", FormatPDF, false},
		{" PDF ", FormatPDF, false},
		{"xlsx", FormatXLSX, false},
		{"excel", FormatXLSX, false},
		{"csv", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilename(t *testing.T) {
	doc := buildDocument(t, report.KindIncome, samplePayments())

	assert.Equal(t, "Income_Report_2024-07-01.pdf", Filename(doc, FormatPDF))
	assert.Equal(t, "Income_Report_2024-07-01.xlsx", Filename(doc, FormatXLSX))

	doc.Title = "Rent Roll: Q1/Q2"
	assert.Equal(t, "Rent_Roll_Q1_Q2_2024-07-01.pdf", Filename(doc, FormatPDF))
}

func TestRun_Success(t *testing.T) {
	doc := buildDocument(t, report.KindIncome, samplePayments())
	exporter := &stubExporter{format: FormatPDF, export: func(*report.Document) ([]byte, error) {
		return []byte("%PDF-1.3"), nil
	}}

	artifact, err := Run(exporter, doc, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Income_Report_2024-07-01.pdf", artifact.Filename)
	assert.Equal(t, MIMETypePDF, artifact.MIMEType)
	assert.Equal(t, []byte("%PDF-1.3"), artifact.Content)
}

func TestRun_RecoversPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	doc := buildDocument(t, report.KindIncome, samplePayments())
	exporter := &stubExporter{format: FormatXLSX, export: func(*report.Document) ([]byte, error) {
		panic("index out of range")
	}}

	artifact, err := Run(exporter, doc, zap.New(core))
	assert.Nil(t, artifact)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRenderPanic)

	var exportErr *Error
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, "report-1", exportErr.ReportID)
	assert.Equal(t, FormatXLSX, exportErr.Format)
	assert.Equal(t, "Failed to generate the XLSX report. Please try again.", exportErr.UserMessage())

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "report-1", fields["report_id"])
	assert.Equal(t, "xlsx", fields["format"])
}

func TestRun_WrapsExporterError(t *testing.T) {
	doc := buildDocument(t, report.KindCollection, samplePayments())
	cause := errors.New("disk full")
	exporter := &stubExporter{format: FormatPDF, export: func(*report.Document) ([]byte, error) {
		return []byte("partial"), cause
	}}

	artifact, err := Run(exporter, doc, zap.NewNop())
	assert.Nil(t, artifact)
	assert.ErrorIs(t, err, cause)
}

func TestRun_RejectsEmptyOutput(t *testing.T) {
	doc := buildDocument(t, report.KindIncome, nil)
	exporter := &stubExporter{format: FormatPDF, export: func(*report.Document) ([]byte, error) {
		return nil, nil
	}}

	_, err := Run(exporter, doc, zap.NewNop())
	assert.ErrorIs(t, err, ErrEmptyOutput)
}

func TestRun_RejectsMalformedDocument(t *testing.T) {
	doc := buildDocument(t, report.KindIncome, samplePayments())
	doc.Sections = append(doc.Sections, &report.Table{
		Title:   "Broken",
		Headers: []string{"A", "B"},
		Rows:    [][]report.Cell{{{Kind: report.CellText, Text: "only one"}}},
	})
	called := false
	exporter := &stubExporter{format: FormatPDF, export: func(*report.Document) ([]byte, error) {
		called = true
		return []byte("x"), nil
	}}

	_, err := Run(exporter, doc, zap.NewNop())
	assert.ErrorIs(t, err, report.ErrMalformedTable)
	assert.False(t, called)
}
