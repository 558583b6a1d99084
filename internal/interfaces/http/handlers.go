package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/lease-reports/internal/application/service"
	"github.com/garyjia/lease-reports/internal/domain/entity"
	"github.com/garyjia/lease-reports/internal/domain/lease"
	"github.com/garyjia/lease-reports/internal/export"
	"github.com/garyjia/lease-reports/internal/infrastructure/worker"
	"github.com/garyjia/lease-reports/internal/report"
	"github.com/garyjia/lease-reports/pkg/utils"
)

// Version is reported by the health check
const Version = "1.0.0"

// LeaseService is the lease use case surface the handlers need
type LeaseService interface {
	ApplyDraftEdit(draft lease.Draft, field lease.Field, raw string) (lease.Draft, error)
	Submit(ctx context.Context, form lease.Form) (*entity.Lease, error)
	Get(ctx context.Context, id int64) (*entity.Lease, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Lease, error)
}

// ReportService is the export use case surface the handlers need
type ReportService interface {
	FormatEnabled(format export.Format) bool
	Export(ctx context.Context, req service.ExportRequest) (*service.ExportResult, error)
	ListExports(ctx context.Context, limit, offset int) ([]*entity.ExportRecord, error)
	Download(ctx context.Context, id string) (*export.Artifact, error)
}

// WorkerStats reports background worker progress
type WorkerStats interface {
	Stats() map[string]worker.SyncStats
}

// ComponentHealth is the state of one component on /health
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// HealthFunc reports overall health and the state of each component
type HealthFunc func() (bool, map[string]ComponentHealth)

// Handlers contains all HTTP request handlers
type Handlers struct {
	leases   LeaseService
	reports  ReportService
	workers  WorkerStats
	health   HealthFunc
	services []string
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance. workers may be nil.
func NewHandlers(leases LeaseService, reports ReportService, workers WorkerStats, logger *zap.Logger) *Handlers {
	return &Handlers{
		leases:  leases,
		reports: reports,
		workers: workers,
		logger:  logger,
	}
}

// WithHealth sets the component check and the enabled service names
// reported by the health endpoint.
func (h *Handlers) WithHealth(check HealthFunc, services []string) *Handlers {
	h.health = check
	h.services = services
	return h
}

// Response represents a standard JSON response
type Response struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string                      `json:"status"`
	Timestamp  string                      `json:"timestamp"`
	Version    string                      `json:"version"`
	Services   []string                    `json:"services"`
	Components map[string]ComponentHealth  `json:"components,omitempty"`
	Workers    map[string]worker.SyncStats `json:"workers,omitempty"`
}

// DraftEditRequest applies one field edit to a draft
type DraftEditRequest struct {
	Draft lease.Draft `json:"draft"`
	Field string      `json:"field" binding:"required"`
	Value string      `json:"value"`
}

// DraftResponse carries the updated draft and any blocking problems
type DraftResponse struct {
	Draft  lease.Draft       `json:"draft"`
	Errors lease.FieldErrors `json:"errors,omitempty"`
}

// ExportRequest asks for one report in one format
type ExportRequest struct {
	Kind      string `json:"kind" binding:"required"`
	Format    string `json:"format" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Title     string `json:"title"`
}

// ReportKindResponse describes an available report kind
type ReportKindResponse struct {
	Kind    string   `json:"kind"`
	Title   string   `json:"title"`
	Formats []string `json:"formats"`
}

// ListRequest holds paging query parameters
type ListRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
		Services:  h.services,
	}
	if response.Services == nil {
		response.Services = []string{}
	}
	if h.workers != nil {
		response.Workers = h.workers.Stats()
	}

	healthy := true
	if h.health != nil {
		healthy, response.Components = h.health()
	}
	if !healthy {
		response.Status = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, Response{Success: false, Data: response, Error: "one or more components are unhealthy"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: response})
}

// EditDraft handles POST /api/leases/draft
func (h *Handlers) EditDraft(c *gin.Context) {
	var req DraftEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	draft, err := h.leases.ApplyDraftEdit(req.Draft, lease.Field(req.Field), req.Value)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, lease.ErrUnknownField) {
			status = http.StatusBadRequest
		}
		c.JSON(status, Response{
			Success: false,
			Data:    DraftResponse{Draft: draft},
			Error:   err.Error(),
			Fields:  map[string]string{req.Field: err.Error()},
		})
		return
	}

	resp := DraftResponse{Draft: draft}
	if errs := lease.ValidateDraft(draft); len(errs) > 0 {
		resp.Errors = errs
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// CreateLease handles POST /api/leases
func (h *Handlers) CreateLease(c *gin.Context) {
	var form lease.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	created, err := h.leases.Submit(c.Request.Context(), form)
	if err != nil {
		if fe, ok := lease.AsFieldErrors(err); ok {
			c.JSON(http.StatusUnprocessableEntity, Response{
				Success: false,
				Error:   "validation failed",
				Fields:  fe,
			})
			return
		}
		h.logger.Error("Failed to create lease", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to create lease"})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: created})
}

// ListLeases handles GET /api/leases
func (h *Handlers) ListLeases(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters", err)
		return
	}

	leases, err := h.leases.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.logger.Error("Failed to list leases", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve leases"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: leases})
}

// GetLease handles GET /api/leases/:id
func (h *Handlers) GetLease(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.badRequest(c, "invalid lease ID", err)
		return
	}

	found, err := h.leases.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrLeaseNotFound) {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "lease not found"})
			return
		}
		h.logger.Error("Failed to get lease", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve lease"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: found})
}

// ListReportKinds handles GET /api/reports/kinds
func (h *Handlers) ListReportKinds(c *gin.Context) {
	var formats []string
	for _, f := range []export.Format{export.FormatPDF, export.FormatXLSX} {
		if h.reports.FormatEnabled(f) {
			formats = append(formats, string(f))
		}
	}

	kinds := make([]ReportKindResponse, 0, len(report.Kinds()))
	for _, k := range report.Kinds() {
		kinds = append(kinds, ReportKindResponse{Kind: string(k), Title: k.Title(), Formats: formats})
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: kinds})
}

// ExportReport handles POST /api/reports/export. The artifact is returned
// as the response body with a download filename.
func (h *Handlers) ExportReport(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	exportReq, fields := parseExportRequest(req)
	if len(fields) > 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid export request", Fields: fields})
		return
	}

	result, err := h.reports.Export(c.Request.Context(), exportReq)
	if err != nil {
		h.exportError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.Artifact.Filename))
	c.Header("X-Export-ID", result.RecordID)
	c.Data(http.StatusOK, result.Artifact.MIMEType, result.Artifact.Content)
}

func parseExportRequest(req ExportRequest) (service.ExportRequest, lease.FieldErrors) {
	fields := lease.FieldErrors{}
	out := service.ExportRequest{Title: req.Title}

	kind, err := report.ParseKind(req.Kind)
	if err != nil {
		fields.Add("kind", "unknown report kind")
	}
	out.Kind = kind

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		fields.Add("format", "must be pdf or xlsx")
	}
	out.Format = format

	start, err := time.Parse(utils.ISODate, strings.TrimSpace(req.StartDate))
	if err != nil {
		fields.Add("start_date", "must be a date (YYYY-MM-DD)")
	}
	end, err := time.Parse(utils.ISODate, strings.TrimSpace(req.EndDate))
	if err != nil {
		fields.Add("end_date", "must be a date (YYYY-MM-DD)")
	}
	out.DateRange = report.DateRange{Start: start, End: end}
	if len(fields) == 0 && end.Before(start) {
		fields.Add("end_date", "must not be before start date")
	}

	return out, fields
}

func (h *Handlers) exportError(c *gin.Context, err error) {
	var exportErr *export.Error
	switch {
	case errors.Is(err, service.ErrServiceDisabled):
		c.JSON(http.StatusServiceUnavailable, Response{Success: false, Error: err.Error()})
	case errors.Is(err, report.ErrInvalidDateRange), errors.Is(err, report.ErrUnknownKind),
		errors.Is(err, export.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.As(err, &exportErr):
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: exportErr.UserMessage()})
	default:
		h.logger.Error("Report export failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: "failed to load report data"})
	}
}

// ListExports handles GET /api/exports
func (h *Handlers) ListExports(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters", err)
		return
	}

	records, err := h.reports.ListExports(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.logger.Error("Failed to list exports", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve exports"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// DownloadExport handles GET /api/exports/:id/download
func (h *Handlers) DownloadExport(c *gin.Context) {
	artifact, err := h.reports.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExportNotFound):
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "export not found"})
		case errors.Is(err, service.ErrArtifactUnavailable):
			c.JSON(http.StatusGone, Response{Success: false, Error: "export file is not available"})
		default:
			h.logger.Error("Failed to download export", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to read export"})
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, artifact.Filename))
	c.Data(http.StatusOK, artifact.MIMEType, artifact.Content)
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	h.logger.Warn(msg, zap.Error(err))
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}
