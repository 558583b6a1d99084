package lark

import (
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"go.uber.org/zap"
)

// Config holds Lark app credentials and the chat that receives alerts
type Config struct {
	AppID         string
	AppSecret     string
	ReceiveID     string // chat_id or open_id of the recipient
	ReceiveIDType string // "chat_id" (default) or "open_id"
}

// Enabled reports whether enough is configured to send messages
func (c Config) Enabled() bool {
	return c.AppID != "" && c.AppSecret != "" && c.ReceiveID != ""
}

// NewSDKClient creates a Lark SDK client with token caching
func NewSDKClient(cfg Config, logger *zap.Logger) *lark.Client {
	logger.Debug("Creating Lark client", zap.String("app_id", cfg.AppID))
	return lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)
}
