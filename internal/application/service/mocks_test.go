package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/garyjia/lease-reports/internal/application/port"
	"github.com/garyjia/lease-reports/internal/domain/entity"
	"github.com/garyjia/lease-reports/internal/export"
	"github.com/garyjia/lease-reports/internal/report"
)

type mockLeaseRepo struct {
	createFunc  func(ctx context.Context, lease *entity.Lease) error
	getByIDFunc func(ctx context.Context, id int64) (*entity.Lease, error)
	listFunc    func(ctx context.Context, limit, offset int) ([]*entity.Lease, error)
}

func (m *mockLeaseRepo) Create(ctx context.Context, lease *entity.Lease) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, lease)
	}
	lease.ID = 1
	return nil
}

func (m *mockLeaseRepo) GetByID(ctx context.Context, id int64) (*entity.Lease, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockLeaseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Lease, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return []*entity.Lease{}, nil
}

type mockPaymentSource struct {
	fetchFunc func(ctx context.Context, start, end time.Time) ([]*entity.Payment, error)
}

func (m *mockPaymentSource) FetchPayments(ctx context.Context, start, end time.Time) ([]*entity.Payment, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, start, end)
	}
	return nil, nil
}

type mockExportRepo struct {
	mu         sync.Mutex
	records    []*entity.ExportRecord
	createErr  error
	lastLimit  int
	lastOffset int
}

func (m *mockExportRepo) Create(ctx context.Context, record *entity.ExportRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockExportRepo) GetByID(ctx context.Context, id string) (*entity.ExportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockExportRepo) ListRecent(ctx context.Context, limit, offset int) ([]*entity.ExportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit, m.lastOffset = limit, offset
	if offset >= len(m.records) {
		return []*entity.ExportRecord{}, nil
	}
	end := offset + limit
	if end > len(m.records) {
		end = len(m.records)
	}
	return m.records[offset:end], nil
}

type memoryStorage struct {
	files   map[string][]byte
	saveErr error
	// failSuffix limits saveErr to paths ending in it
	failSuffix string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{files: make(map[string][]byte)}
}

func (m *memoryStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.saveErr != nil && strings.HasSuffix(path, m.failSuffix) {
		return m.saveErr
	}
	m.files[path] = append([]byte(nil), content...)
	return nil
}

func (m *memoryStorage) Read(ctx context.Context, path string) ([]byte, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, errors.New("file not found")
	}
	return content, nil
}

func (m *memoryStorage) Exists(ctx context.Context, path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *memoryStorage) Delete(ctx context.Context, path string) error {
	delete(m.files, path)
	return nil
}

func (m *memoryStorage) GetFullPath(relativePath string) string {
	return "/mem/" + relativePath
}

type mockNotifier struct {
	failures []port.ExportFailure
	err      error
}

func (m *mockNotifier) NotifyExportFailure(ctx context.Context, failure port.ExportFailure) error {
	m.failures = append(m.failures, failure)
	return m.err
}

type mockRasterizer struct {
	png []byte
	err error
}

func (m *mockRasterizer) FirstPagePNG(pdf []byte) ([]byte, error) {
	return m.png, m.err
}

type failingExporter struct {
	format export.Format
	err    error
}

func (e *failingExporter) Format() export.Format { return e.format }

func (e *failingExporter) Export(doc *report.Document) ([]byte, error) {
	return nil, e.err
}
