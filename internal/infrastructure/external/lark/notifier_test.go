package lark

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/garyjia/lease-reports/internal/application/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSender struct {
	sendFunc func(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error)
}

func (m *mockSender) SendMessage(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error) {
	if m.sendFunc != nil {
		return m.sendFunc(ctx, receiveIDType, receiveID, msgType, content)
	}
	return "om_1", nil
}

var sampleFailure = port.ExportFailure{
	ReportID:   "report-1",
	ReportKind: "income",
	Format:     "pdf",
	Message:    `rendering panicked: "bad font"`,
	OccurredAt: time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC),
}

func TestNotifier_SendsTextToChat(t *testing.T) {
	var gotType, gotID, gotMsgType, gotContent string
	sender := &mockSender{sendFunc: func(_ context.Context, idType, id, msgType, content string) (string, error) {
		gotType, gotID, gotMsgType, gotContent = idType, id, msgType, content
		return "om_1", nil
	}}

	n := NewNotifier(sender, Config{ReceiveID: "oc_ops"}, zap.NewNop())
	require.NoError(t, n.NotifyExportFailure(context.Background(), sampleFailure))

	assert.Equal(t, "chat_id", gotType)
	assert.Equal(t, "oc_ops", gotID)
	assert.Equal(t, "text", gotMsgType)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(gotContent), &body))
	assert.Equal(t, FailureText(sampleFailure), body["text"])
}

func TestNotifier_WrapsSendError(t *testing.T) {
	cause := errors.New("code=99991663")
	sender := &mockSender{sendFunc: func(context.Context, string, string, string, string) (string, error) {
		return "", cause
	}}

	n := NewNotifier(sender, Config{ReceiveID: "ou_1", ReceiveIDType: "open_id"}, zap.NewNop())
	err := n.NotifyExportFailure(context.Background(), sampleFailure)
	assert.ErrorIs(t, err, cause)
}

func TestFailureText(t *testing.T) {
	text := FailureText(sampleFailure)
	assert.Contains(t, text, "Report: income (PDF)")
	assert.Contains(t, text, "Report ID: report-1")
	assert.Contains(t, text, "Time: 2024-07-01 09:30:00 UTC")
	assert.Contains(t, text, `Error: rendering panicked: "bad font"`)
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.False(t, Config{AppID: "cli_a", AppSecret: "s"}.Enabled())
	assert.True(t, Config{AppID: "cli_a", AppSecret: "s", ReceiveID: "oc_1"}.Enabled())
}

func TestLogNotifier_NeverFails(t *testing.T) {
	assert.NoError(t, NewLogNotifier(zap.NewNop()).NotifyExportFailure(context.Background(), sampleFailure))
}
