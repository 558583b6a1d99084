package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/lease-reports/internal/application/service"
	"github.com/garyjia/lease-reports/internal/domain/entity"
	"github.com/garyjia/lease-reports/internal/domain/lease"
	"github.com/garyjia/lease-reports/internal/export"
	"github.com/garyjia/lease-reports/internal/infrastructure/worker"
	"github.com/garyjia/lease-reports/internal/report"
)

type stubLeases struct {
	store map[int64]*entity.Lease
}

func (s *stubLeases) ApplyDraftEdit(draft lease.Draft, field lease.Field, raw string) (lease.Draft, error) {
	return draft.Apply(field, raw)
}

func (s *stubLeases) Submit(ctx context.Context, form lease.Form) (*entity.Lease, error) {
	l, err := form.ToLease()
	if err != nil {
		return nil, err
	}
	l.ID = int64(len(s.store) + 1)
	s.store[l.ID] = l
	return l, nil
}

func (s *stubLeases) Get(ctx context.Context, id int64) (*entity.Lease, error) {
	if l, ok := s.store[id]; ok {
		return l, nil
	}
	return nil, service.ErrLeaseNotFound
}

func (s *stubLeases) List(ctx context.Context, limit, offset int) ([]*entity.Lease, error) {
	out := []*entity.Lease{}
	for _, l := range s.store {
		out = append(out, l)
	}
	return out, nil
}

type stubReports struct {
	enabled    map[export.Format]bool
	exportErr  error
	lastReq    service.ExportRequest
	artifacts  map[string]*export.Artifact
	lastLimit  int
	lastOffset int
}

func (s *stubReports) FormatEnabled(format export.Format) bool { return s.enabled[format] }

func (s *stubReports) Export(ctx context.Context, req service.ExportRequest) (*service.ExportResult, error) {
	s.lastReq = req
	if s.exportErr != nil {
		return nil, s.exportErr
	}
	artifact := &export.Artifact{
		Filename: "Income_Report_2024-07-01." + req.Format.Extension(),
		Content:  []byte("%PDF-1.3 stub"),
		MIMEType: req.Format.MIMEType(),
	}
	s.artifacts["rpt-1"] = artifact
	return &service.ExportResult{Artifact: artifact, RecordID: "rpt-1"}, nil
}

func (s *stubReports) ListExports(ctx context.Context, limit, offset int) ([]*entity.ExportRecord, error) {
	s.lastLimit, s.lastOffset = limit, offset
	return []*entity.ExportRecord{{ID: "rpt-1", Status: entity.ExportStatusSucceeded}}, nil
}

func (s *stubReports) Download(ctx context.Context, id string) (*export.Artifact, error) {
	if a, ok := s.artifacts[id]; ok {
		return a, nil
	}
	return nil, service.ErrExportNotFound
}

type stubWorkers struct{}

func (stubWorkers) Stats() map[string]worker.SyncStats {
	return map[string]worker.SyncStats{"PaymentSyncWorker": {SyncedCount: 3}}
}

func newTestServer() (*Server, *stubLeases, *stubReports) {
	leases := &stubLeases{store: map[int64]*entity.Lease{}}
	reports := &stubReports{
		enabled:   map[export.Format]bool{export.FormatPDF: true, export.FormatXLSX: true},
		artifacts: map[string]*export.Artifact{},
	}
	cfg := DefaultServerConfig()
	cfg.Mode = gin.TestMode
	h := NewHandlers(leases, reports, stubWorkers{}, zap.NewNop())
	return NewServer(cfg, h, zap.NewNop()), leases, reports
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	s, _, _ := newTestServer()
	w := do(t, s, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
	assert.Contains(t, data["workers"], "PaymentSyncWorker")
	assert.Equal(t, []interface{}{}, data["services"])
}

func TestHealthCheck_ReportsComponentsAndServices(t *testing.T) {
	leases := &stubLeases{store: map[int64]*entity.Lease{}}
	reports := &stubReports{artifacts: map[string]*export.Artifact{}}
	cfg := DefaultServerConfig()
	cfg.Mode = gin.TestMode

	overall := true
	check := func() (bool, map[string]ComponentHealth) {
		components := map[string]ComponentHealth{"database": {Healthy: overall}}
		if !overall {
			components["database"] = ComponentHealth{Healthy: false, Message: "ping failed: disk I/O error"}
		}
		return overall, components
	}
	h := NewHandlers(leases, reports, nil, zap.NewNop()).
		WithHealth(check, []string{"pdf_export", "spreadsheet_export"})
	s := NewServer(cfg, h, zap.NewNop())

	w := do(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, []interface{}{"pdf_export", "spreadsheet_export"}, data["services"])
	db := data["components"].(map[string]interface{})["database"].(map[string]interface{})
	assert.Equal(t, true, db["healthy"])

	overall = false
	w = do(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	data = body["data"].(map[string]interface{})
	assert.Equal(t, "unhealthy", data["status"])
	db = data["components"].(map[string]interface{})["database"].(map[string]interface{})
	assert.Equal(t, "ping failed: disk I/O error", db["message"])
}

func TestEditDraft(t *testing.T) {
	s, _, _ := newTestServer()

	t.Run("derives end date", func(t *testing.T) {
		draft := lease.Draft{}.SetStartDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		w := do(t, s, http.MethodPost, "/api/leases/draft", map[string]interface{}{
			"draft": draft,
			"field": "duration_months",
			"value": "12",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		data := decode(t, w)["data"].(map[string]interface{})
		end := data["draft"].(map[string]interface{})["end_date"].(map[string]interface{})
		assert.Equal(t, "2024-12-31", end["value"])
		assert.Equal(t, "derived", end["source"])
	})

	t.Run("malformed value keeps draft", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/leases/draft", map[string]interface{}{
			"draft": lease.Draft{},
			"field": "monthly_rent",
			"value": "lots",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decode(t, w)["fields"], "monthly_rent")
	})

	t.Run("unknown field", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/leases/draft", map[string]interface{}{
			"field": "colour",
			"value": "blue",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateAndGetLease(t *testing.T) {
	s, _, _ := newTestServer()

	w := do(t, s, http.MethodPost, "/api/leases", map[string]interface{}{
		"tenant_name":         "Jane Wanjiru",
		"property_name":       "Riverside Apartments",
		"start_date":          "2024-01-01",
		"duration_months":     12,
		"monthly_rent":        8500,
		"late_fee_mode":       "percentage",
		"late_fee_percentage": "10",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["id"])

	w = do(t, s, http.MethodGet, "/api/leases/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/leases/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/api/leases/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/api/leases?limit=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateLease_ValidationErrors(t *testing.T) {
	s, _, _ := newTestServer()

	w := do(t, s, http.MethodPost, "/api/leases", map[string]interface{}{
		"tenant_name":     "Jane",
		"property_name":   "Riverside",
		"start_date":      "2024-13-01",
		"duration_months": "12",
		"monthly_rent":    "8500",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["fields"], "start_date")
}

func TestExportReport(t *testing.T) {
	s, _, reports := newTestServer()

	w := do(t, s, http.MethodPost, "/api/reports/export", map[string]interface{}{
		"kind":       "income",
		"format":     "pdf",
		"start_date": "2024-01-01",
		"end_date":   "2024-06-30",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, export.MIMETypePDF, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Income_Report_2024-07-01.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "rpt-1", w.Header().Get("X-Export-ID"))
	assert.Equal(t, "%PDF-1.3 stub", w.Body.String())

	assert.Equal(t, report.KindIncome, reports.lastReq.Kind)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), reports.lastReq.DateRange.End)

	w = do(t, s, http.MethodGet, "/api/exports/rpt-1/download", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, s, http.MethodGet, "/api/exports/nope/download", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportReport_Errors(t *testing.T) {
	valid := map[string]interface{}{
		"kind":       "income",
		"format":     "xlsx",
		"start_date": "2024-01-01",
		"end_date":   "2024-06-30",
	}

	t.Run("bad fields", func(t *testing.T) {
		s, _, _ := newTestServer()
		w := do(t, s, http.MethodPost, "/api/reports/export", map[string]interface{}{
			"kind":       "forecast",
			"format":     "docx",
			"start_date": "2024-06-30",
			"end_date":   "yesterday",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		fields := decode(t, w)["fields"].(map[string]interface{})
		assert.Contains(t, fields, "kind")
		assert.Contains(t, fields, "format")
		assert.Contains(t, fields, "end_date")
	})

	t.Run("reversed range", func(t *testing.T) {
		s, _, _ := newTestServer()
		w := do(t, s, http.MethodPost, "/api/reports/export", map[string]interface{}{
			"kind":       "income",
			"format":     "pdf",
			"start_date": "2024-06-30",
			"end_date":   "2024-01-01",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"disabled", service.ErrServiceDisabled, http.StatusServiceUnavailable},
		{"render failure", &export.Error{ReportID: "r", Format: export.FormatXLSX, Err: errors.New("boom")}, http.StatusInternalServerError},
		{"backend failure", errors.New("connection refused"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, reports := newTestServer()
			reports.exportErr = tt.err
			w := do(t, s, http.MethodPost, "/api/reports/export", valid)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, false, decode(t, w)["success"])
		})
	}

	t.Run("render failure shows user message", func(t *testing.T) {
		s, _, reports := newTestServer()
		reports.exportErr = &export.Error{ReportID: "r", Format: export.FormatXLSX, Err: errors.New("boom")}
		w := do(t, s, http.MethodPost, "/api/reports/export", valid)
		assert.Equal(t, "Failed to generate the XLSX report. Please try again.", decode(t, w)["error"])
	})
}

func TestListReportKinds(t *testing.T) {
	s, _, reports := newTestServer()
	reports.enabled[export.FormatXLSX] = false

	w := do(t, s, http.MethodGet, "/api/reports/kinds", nil)
	require.Equal(t, http.StatusOK, w.Code)

	kinds := decode(t, w)["data"].([]interface{})
	require.Len(t, kinds, len(report.Kinds()))
	first := kinds[0].(map[string]interface{})
	assert.Equal(t, "income", first["kind"])
	assert.Equal(t, "Income Report", first["title"])
	assert.Equal(t, []interface{}{"pdf"}, first["formats"])
}

func TestListExports(t *testing.T) {
	s, _, reports := newTestServer()
	w := do(t, s, http.MethodGet, "/api/exports?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)
	assert.Equal(t, 10, reports.lastLimit)
	assert.Equal(t, 0, reports.lastOffset)

	w = do(t, s, http.MethodGet, "/api/exports?limit=5&offset=20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, reports.lastLimit)
	assert.Equal(t, 20, reports.lastOffset)
}
