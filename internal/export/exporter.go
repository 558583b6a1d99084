package export

import (
	"fmt"
	"strings"

	"github.com/garyjia/lease-reports/internal/report"
	"github.com/garyjia/lease-reports/pkg/utils"
	"go.uber.org/zap"
)

// Format is a downloadable document format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// MIME types per format
const (
	MIMETypePDF  = "application/pdf"
	MIMETypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseFormat validates a format string
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatXLSX:
		return f, nil
	case "excel", "spreadsheet":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Extension returns the file extension without the dot
func (f Format) Extension() string { return string(f) }

// MIMEType returns the content type for downloads
func (f Format) MIMEType() string {
	if f == FormatPDF {
		return MIMETypePDF
	}
	return MIMETypeXLSX
}

// Artifact is a finished export ready to hand to a file-save mechanism
type Artifact struct {
	Filename string
	Content  []byte
	MIMEType string
}

// Exporter serializes a report document. Implementations must be
// deterministic: the same document always yields the same bytes.
type Exporter interface {
	Format() Format
	Export(doc *report.Document) ([]byte, error)
}

// Filename builds "{Title_With_Underscores}_{YYYY-MM-DD}.{ext}" from the
// document's generation date.
func Filename(doc *report.Document, format Format) string {
	return fmt.Sprintf("%s_%s.%s",
		utils.SanitizeFileName(doc.Title),
		doc.GeneratedAt.Format(utils.ISODate),
		format.Extension())
}

// Run executes exporter against doc and packages the result. Any failure,
// including a panic inside the exporter, is logged with the report id and
// format and returned as a single *Error; no partial artifact is returned.
func Run(exporter Exporter, doc *report.Document, logger *zap.Logger) (artifact *Artifact, err error) {
	format := exporter.Format()

	defer func() {
		if r := recover(); r != nil {
			err = &Error{ReportID: doc.ID, Format: format, Err: fmt.Errorf("%w: %v", ErrRenderPanic, r)}
			artifact = nil
		}
		if err != nil {
			logger.Error("Report export failed",
				zap.String("report_id", doc.ID),
				zap.String("report_kind", string(doc.Kind)),
				zap.String("format", string(format)),
				zap.Error(err))
		}
	}()

	if vErr := doc.Validate(); vErr != nil {
		return nil, &Error{ReportID: doc.ID, Format: format, Err: vErr}
	}

	content, exportErr := exporter.Export(doc)
	if exportErr != nil {
		return nil, &Error{ReportID: doc.ID, Format: format, Err: exportErr}
	}
	if len(content) == 0 {
		return nil, &Error{ReportID: doc.ID, Format: format, Err: ErrEmptyOutput}
	}

	logger.Info("Report exported",
		zap.String("report_id", doc.ID),
		zap.String("format", string(format)),
		zap.Int("size", len(content)))

	return &Artifact{
		Filename: Filename(doc, format),
		Content:  content,
		MIMEType: format.MIMEType(),
	}, nil
}
