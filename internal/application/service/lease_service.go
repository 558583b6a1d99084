package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/garyjia/lease-reports/internal/application/port"
	"github.com/garyjia/lease-reports/internal/domain/entity"
	"github.com/garyjia/lease-reports/internal/domain/lease"
	"go.uber.org/zap"
)

// ErrLeaseNotFound is returned when a lease ID has no record
var ErrLeaseNotFound = errors.New("lease not found")

// Paging bounds for lease listings
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// LeaseService validates lease forms and persists the resulting leases
type LeaseService struct {
	repo   port.LeaseRepository
	logger *zap.Logger
}

// NewLeaseService creates a new LeaseService
func NewLeaseService(repo port.LeaseRepository, logger *zap.Logger) *LeaseService {
	return &LeaseService{repo: repo, logger: logger}
}

// ApplyDraftEdit applies one field edit to a draft. On malformed input the
// returned draft is the one passed in.
func (s *LeaseService) ApplyDraftEdit(draft lease.Draft, field lease.Field, raw string) (lease.Draft, error) {
	next, err := draft.Apply(field, raw)
	if err != nil {
		s.logger.Debug("Rejected draft edit",
			zap.String("field", string(field)),
			zap.Error(err))
		return draft, err
	}
	return next, nil
}

// Submit validates the form, resolves the late fee and stores the lease.
// Validation failures are returned as lease.FieldErrors.
func (s *LeaseService) Submit(ctx context.Context, form lease.Form) (*entity.Lease, error) {
	record, err := form.ToLease()
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save lease: %w", err)
	}

	s.logger.Info("Lease created",
		zap.Int64("lease_id", record.ID),
		zap.String("property", record.PropertyName),
		zap.String("end_date", record.EndDate.Format("2006-01-02")),
		zap.String("late_fee_mode", record.LateFeeMode))

	return record, nil
}

// Get returns a lease by ID
func (s *LeaseService) Get(ctx context.Context, id int64) (*entity.Lease, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lease: %w", err)
	}
	if record == nil {
		return nil, ErrLeaseNotFound
	}
	return record, nil
}

// List returns a page of leases, newest first
func (s *LeaseService) List(ctx context.Context, limit, offset int) ([]*entity.Lease, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	leases, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list leases: %w", err)
	}
	return leases, nil
}
