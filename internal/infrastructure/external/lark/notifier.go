package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/garyjia/lease-reports/internal/application/port"
	"go.uber.org/zap"
)

// Notifier posts export failures to a Lark chat
type Notifier struct {
	sender        MessageSender
	receiveID     string
	receiveIDType string
	logger        *zap.Logger
}

// NewNotifier creates a failure notifier for the configured recipient
func NewNotifier(sender MessageSender, cfg Config, logger *zap.Logger) port.FailureNotifier {
	idType := cfg.ReceiveIDType
	if idType == "" {
		idType = "chat_id"
	}
	return &Notifier{
		sender:        sender,
		receiveID:     cfg.ReceiveID,
		receiveIDType: idType,
		logger:        logger,
	}
}

// NotifyExportFailure implements port.FailureNotifier
func (n *Notifier) NotifyExportFailure(ctx context.Context, failure port.ExportFailure) error {
	content, err := json.Marshal(map[string]string{"text": FailureText(failure)})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	if _, err := n.sender.SendMessage(ctx, n.receiveIDType, n.receiveID, "text", string(content)); err != nil {
		return fmt.Errorf("failed to notify export failure: %w", err)
	}

	n.logger.Info("Export failure notified",
		zap.String("report_id", failure.ReportID),
		zap.String("format", failure.Format))
	return nil
}

// FailureText is the chat message for a failed export
func FailureText(f port.ExportFailure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report export failed\n")
	fmt.Fprintf(&b, "Report: %s (%s)\n", f.ReportKind, strings.ToUpper(f.Format))
	fmt.Fprintf(&b, "Report ID: %s\n", f.ReportID)
	if !f.OccurredAt.IsZero() {
		fmt.Fprintf(&b, "Time: %s\n", f.OccurredAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	fmt.Fprintf(&b, "Error: %s", f.Message)
	return b.String()
}

// LogNotifier only logs failures. It stands in when no Lark app is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-only failure notifier
func NewLogNotifier(logger *zap.Logger) port.FailureNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyExportFailure implements port.FailureNotifier
func (n *LogNotifier) NotifyExportFailure(ctx context.Context, failure port.ExportFailure) error {
	n.logger.Warn("Report export failed",
		zap.String("report_id", failure.ReportID),
		zap.String("report_kind", failure.ReportKind),
		zap.String("format", failure.Format),
		zap.String("error", failure.Message))
	return nil
}
