package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/garyjia/lease-reports/internal/application/port"
	"go.uber.org/zap"
)

// PaymentSyncConfig holds configuration for the payment sync worker
type PaymentSyncConfig struct {
	Interval     time.Duration
	LookbackDays int
	SyncTimeout  time.Duration
}

// DefaultPaymentSyncConfig returns default configuration
func DefaultPaymentSyncConfig() PaymentSyncConfig {
	return PaymentSyncConfig{
		Interval:     15 * time.Minute,
		LookbackDays: 400,
		SyncTimeout:  2 * time.Minute,
	}
}

// SyncStats is a snapshot of the worker's progress
type SyncStats struct {
	IsRunning   bool      `json:"is_running"`
	LastSync    time.Time `json:"last_sync"`
	SyncedCount int       `json:"synced_count"`
	FailedCount int       `json:"failed_count"`
	LastError   string    `json:"last_error,omitempty"`
}

// PaymentSyncWorker copies backend payments into the local mirror on a
// fixed interval. Each pass re-reads the lookback window, so late status
// changes on the backend are picked up.
type PaymentSyncWorker struct {
	config PaymentSyncConfig

	backend port.PaymentSource
	mirror  port.PaymentRepository
	txm     port.TransactionManager
	logger  *zap.Logger
	now     func() time.Time

	mu          sync.RWMutex
	cancel      context.CancelFunc
	done        chan struct{}
	isRunning   bool
	lastSync    time.Time
	syncedCount int
	failedCount int
	lastError   error
}

// NewPaymentSyncWorker creates a new payment sync worker. txm may be nil,
// in which case each payment is written on its own.
func NewPaymentSyncWorker(
	config PaymentSyncConfig,
	backend port.PaymentSource,
	mirror port.PaymentRepository,
	txm port.TransactionManager,
	logger *zap.Logger,
) *PaymentSyncWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultPaymentSyncConfig().Interval
	}
	if config.LookbackDays <= 0 {
		config.LookbackDays = DefaultPaymentSyncConfig().LookbackDays
	}
	if config.SyncTimeout <= 0 {
		config.SyncTimeout = DefaultPaymentSyncConfig().SyncTimeout
	}
	return &PaymentSyncWorker{
		config:  config,
		backend: backend,
		mirror:  mirror,
		txm:     txm,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start runs one sync immediately, then one per interval
func (w *PaymentSyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("payment sync worker already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true
	w.mu.Unlock()

	w.logger.Info("PaymentSyncWorker started",
		zap.Duration("interval", w.config.Interval),
		zap.Int("lookback_days", w.config.LookbackDays))

	go w.pollLoop(runCtx, w.done)

	return nil
}

// Stop cancels the loop and waits for an in-flight sync to finish
func (w *PaymentSyncWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	stats := w.GetStats()
	w.logger.Info("PaymentSyncWorker stopped",
		zap.Int("synced_count", stats.SyncedCount),
		zap.Int("failed_count", stats.FailedCount))

	return nil
}

// Name returns the worker name for identification
func (w *PaymentSyncWorker) Name() string {
	return "PaymentSyncWorker"
}

func (w *PaymentSyncWorker) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Sync loop context cancelled")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *PaymentSyncWorker) runOnce(ctx context.Context) {
	if _, err := w.SyncOnce(ctx); err != nil && ctx.Err() == nil {
		w.logger.Error("Payment sync failed", zap.Error(err))
	}
}

// SyncOnce mirrors the payments of the lookback window and returns how
// many were written
func (w *PaymentSyncWorker) SyncOnce(ctx context.Context) (int, error) {
	syncCtx, cancel := context.WithTimeout(ctx, w.config.SyncTimeout)
	defer cancel()

	end := w.now()
	start := end.AddDate(0, 0, -w.config.LookbackDays)

	payments, err := w.backend.FetchPayments(syncCtx, start, end)
	if err != nil {
		w.recordFailure(err)
		return 0, fmt.Errorf("failed to fetch payments: %w", err)
	}

	write := func(ctx context.Context) error {
		for _, p := range payments {
			if err := w.mirror.Upsert(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}

	if w.txm != nil {
		err = w.txm.WithTransaction(syncCtx, write)
	} else {
		err = write(syncCtx)
	}
	if err != nil {
		w.recordFailure(err)
		return 0, fmt.Errorf("failed to mirror payments: %w", err)
	}

	w.mu.Lock()
	w.lastSync = end
	w.syncedCount += len(payments)
	w.lastError = nil
	w.mu.Unlock()

	w.logger.Info("Payments synced",
		zap.Int("count", len(payments)),
		zap.String("from", start.Format("2006-01-02")),
		zap.String("to", end.Format("2006-01-02")))

	return len(payments), nil
}

func (w *PaymentSyncWorker) recordFailure(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failedCount++
	w.lastError = err
}

// GetStats returns a snapshot of the worker's progress
func (w *PaymentSyncWorker) GetStats() SyncStats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	stats := SyncStats{
		IsRunning:   w.isRunning,
		LastSync:    w.lastSync,
		SyncedCount: w.syncedCount,
		FailedCount: w.failedCount,
	}
	if w.lastError != nil {
		stats.LastError = w.lastError.Error()
	}
	return stats
}
