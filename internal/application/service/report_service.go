package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/garyjia/lease-reports/internal/application/port"
	"github.com/garyjia/lease-reports/internal/config"
	"github.com/garyjia/lease-reports/internal/domain/entity"
	"github.com/garyjia/lease-reports/internal/export"
	"github.com/garyjia/lease-reports/internal/report"
	"go.uber.org/zap"
)

var (
	// ErrServiceDisabled is returned when the requested export format is switched off
	ErrServiceDisabled = errors.New("service disabled")

	// ErrExportNotFound is returned for unknown export record IDs
	ErrExportNotFound = errors.New("export not found")

	// ErrArtifactUnavailable is returned when an export record has no stored file
	ErrArtifactUnavailable = errors.New("export artifact not stored")

	// ErrPreviewFailed wraps rasterizer failures
	ErrPreviewFailed = errors.New("page preview failed")

	// ErrStorageFailed wraps artifact storage failures
	ErrStorageFailed = errors.New("artifact storage failed")
)

// ExportRequest asks for one report in one format
type ExportRequest struct {
	Kind      report.Kind
	Format    export.Format
	DateRange report.DateRange
	Title     string // optional override of the kind's default title
}

// ExportResult is a finished export
type ExportResult struct {
	Artifact *export.Artifact
	RecordID string
	Preview  []byte // PNG of the first PDF page, when page_preview is on
}

// ReportDependencies groups the collaborators of ReportService. Rasterizer,
// Storage, Exports and Notifier are optional.
type ReportDependencies struct {
	Source     port.PaymentSource
	Builder    *report.Builder
	Exporters  []export.Exporter
	Rasterizer port.PageRasterizer
	Storage    port.FileStorage
	Exports    port.ExportRepository
	Notifier   port.FailureNotifier
	Services   config.ServiceOptions
	Logger     *zap.Logger
}

// ReportService runs report exports end to end
type ReportService struct {
	source     port.PaymentSource
	builder    *report.Builder
	exporters  map[export.Format]export.Exporter
	rasterizer port.PageRasterizer
	storage    port.FileStorage
	exports    port.ExportRepository
	notifier   port.FailureNotifier
	services   config.ServiceOptions
	logger     *zap.Logger
	now        func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(deps ReportDependencies) *ReportService {
	exporters := make(map[export.Format]export.Exporter, len(deps.Exporters))
	for _, e := range deps.Exporters {
		exporters[e.Format()] = e
	}
	return &ReportService{
		source:     deps.Source,
		builder:    deps.Builder,
		exporters:  exporters,
		rasterizer: deps.Rasterizer,
		storage:    deps.Storage,
		exports:    deps.Exports,
		notifier:   deps.Notifier,
		services:   deps.Services,
		logger:     deps.Logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// FormatEnabled reports whether exports in format are switched on
func (s *ReportService) FormatEnabled(format export.Format) bool {
	switch format {
	case export.FormatPDF:
		return s.services.Enabled(config.ServicePDFExport)
	case export.FormatXLSX:
		return s.services.Enabled(config.ServiceSpreadsheetExport)
	}
	return false
}

// Export fetches the payments in range, builds the report and renders it.
// Render, preview and storage failures come back as *export.Error, are
// recorded and, when enabled, sent to operators.
func (s *ReportService) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if !s.FormatEnabled(req.Format) {
		return nil, fmt.Errorf("%w: %s export", ErrServiceDisabled, req.Format)
	}
	exporter, ok := s.exporters[req.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", export.ErrUnsupportedFormat, req.Format)
	}
	if _, err := report.ParseKind(string(req.Kind)); err != nil {
		return nil, err
	}
	if err := req.DateRange.Validate(); err != nil {
		return nil, err
	}

	payments, err := s.source.FetchPayments(ctx, req.DateRange.Start, req.DateRange.End)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}

	doc, err := s.builder.Build(req.Kind, req.DateRange, payments)
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}
	if title := strings.TrimSpace(req.Title); title != "" {
		doc.Title = title
	}

	s.logger.Info("Exporting report",
		zap.String("report_id", doc.ID),
		zap.String("report_kind", string(doc.Kind)),
		zap.String("format", string(req.Format)),
		zap.Int("payments", len(payments)))

	artifact, err := export.Run(exporter, doc, s.logger)
	if err != nil {
		s.fail(ctx, doc, req.Format, err)
		return nil, err
	}

	result := &ExportResult{Artifact: artifact, RecordID: doc.ID}

	if req.Format == export.FormatPDF && s.rasterizer != nil && s.services.Enabled(config.ServicePagePreview) {
		png, err := s.rasterizer.FirstPagePNG(artifact.Content)
		if err != nil {
			exportErr := &export.Error{ReportID: doc.ID, Format: req.Format, Err: fmt.Errorf("%w: %v", ErrPreviewFailed, err)}
			s.fail(ctx, doc, req.Format, exportErr)
			return nil, exportErr
		}
		result.Preview = png
	}

	record := &entity.ExportRecord{
		ID:         doc.ID,
		ReportKind: string(doc.Kind),
		Format:     string(req.Format),
		Filename:   artifact.Filename,
		SizeBytes:  int64(len(artifact.Content)),
		Status:     entity.ExportStatusSucceeded,
		CreatedAt:  doc.GeneratedAt,
	}

	if s.storage != nil {
		if err := s.store(ctx, doc, artifact, result.Preview, record); err != nil {
			exportErr := &export.Error{ReportID: doc.ID, Format: req.Format, Err: fmt.Errorf("%w: %v", ErrStorageFailed, err)}
			s.fail(ctx, doc, req.Format, exportErr)
			return nil, exportErr
		}
	}

	s.record(ctx, record)
	return result, nil
}

func (s *ReportService) store(ctx context.Context, doc *report.Document, artifact *export.Artifact, preview []byte, record *entity.ExportRecord) error {
	artifactRel := artifactPath(doc.GeneratedAt, doc.ID, artifact.Filename)
	if err := s.storage.Save(ctx, artifactRel, artifact.Content); err != nil {
		return err
	}
	record.StoragePath = artifactRel

	if len(preview) > 0 {
		previewRel := previewPath(doc.GeneratedAt, doc.ID, artifact.Filename)
		if err := s.storage.Save(ctx, previewRel, preview); err != nil {
			if delErr := s.storage.Delete(ctx, artifactRel); delErr != nil {
				s.logger.Warn("Failed to remove orphaned artifact",
					zap.String("report_id", doc.ID),
					zap.String("path", artifactRel),
					zap.Error(delErr))
			}
			return err
		}
		record.PreviewPath = previewRel
	}
	return nil
}

// fail records and announces a failed export. Neither step can change the
// outcome the caller sees.
func (s *ReportService) fail(ctx context.Context, doc *report.Document, format export.Format, err error) {
	s.record(ctx, &entity.ExportRecord{
		ID:           doc.ID,
		ReportKind:   string(doc.Kind),
		Format:       string(format),
		Filename:     export.Filename(doc, format),
		Status:       entity.ExportStatusFailed,
		ErrorMessage: err.Error(),
		CreatedAt:    doc.GeneratedAt,
	})

	if s.notifier == nil || !s.services.Enabled(config.ServiceFailureNotifications) {
		return
	}
	failure := port.ExportFailure{
		ReportID:   doc.ID,
		ReportKind: string(doc.Kind),
		Format:     string(format),
		Message:    err.Error(),
		OccurredAt: s.now(),
	}
	if nErr := s.notifier.NotifyExportFailure(ctx, failure); nErr != nil {
		s.logger.Warn("Failed to send export failure notification",
			zap.String("report_id", doc.ID),
			zap.Error(nErr))
	}
}

func (s *ReportService) record(ctx context.Context, record *entity.ExportRecord) {
	if s.exports == nil {
		return
	}
	if err := s.exports.Create(ctx, record); err != nil {
		s.logger.Warn("Failed to record export",
			zap.String("report_id", record.ID),
			zap.String("status", record.Status),
			zap.Error(err))
	}
}

// ListExports returns export records newest first, one page at a time
func (s *ReportService) ListExports(ctx context.Context, limit, offset int) ([]*entity.ExportRecord, error) {
	if s.exports == nil {
		return []*entity.ExportRecord{}, nil
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	records, err := s.exports.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return records, nil
}

// Download reads a previously stored artifact back
func (s *ReportService) Download(ctx context.Context, id string) (*export.Artifact, error) {
	if s.exports == nil || s.storage == nil {
		return nil, ErrArtifactUnavailable
	}
	record, err := s.exports.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get export: %w", err)
	}
	if record == nil {
		return nil, ErrExportNotFound
	}
	if record.StoragePath == "" || !s.storage.Exists(ctx, record.StoragePath) {
		return nil, ErrArtifactUnavailable
	}

	content, err := s.storage.Read(ctx, record.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	format, err := export.ParseFormat(record.Format)
	if err != nil {
		return nil, err
	}
	return &export.Artifact{
		Filename: record.Filename,
		Content:  content,
		MIMEType: format.MIMEType(),
	}, nil
}

// artifactPath files exports by month: "2024-07/{id}_{filename}"
func artifactPath(generatedAt time.Time, id, filename string) string {
	return path.Join(generatedAt.Format("2006-01"), id+"_"+path.Base(filename))
}

func previewPath(generatedAt time.Time, id, filename string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	return path.Join(generatedAt.Format("2006-01"), id+"_"+base+"_preview.png")
}
