package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/lease-reports/internal/application/port"
	"github.com/garyjia/lease-reports/internal/domain/entity"
	"github.com/garyjia/lease-reports/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrUnexpectedStatus is returned for non-2xx backend responses
	ErrUnexpectedStatus = errors.New("unexpected backend status")

	// ErrTooManyPages guards against a backend whose count never converges
	ErrTooManyPages = errors.New("too many result pages")
)

const maxPages = 1000

// Config holds backend API settings
type Config struct {
	BaseURL      string
	Token        string
	PaymentsPath string
	PageSize     int
	Timeout      time.Duration
}

// Client reads the property-management REST API. List endpoints answer
// with a {count, next, previous, results} envelope and take page and
// page_size query parameters.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a backend client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.PaymentsPath == "" {
		cfg.PaymentsPath = "/api/payments/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type paymentDTO struct {
	ID           int64           `json:"id"`
	Reference    string          `json:"reference"`
	TenantName   string          `json:"tenant_name"`
	PropertyName string          `json:"property_name"`
	Source       string          `json:"source"`
	Method       string          `json:"method"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	PaidAt       string          `json:"paid_at"`
}

func (d paymentDTO) toEntity() (*entity.Payment, error) {
	paidAt, err := parseDay(d.PaidAt)
	if err != nil {
		return nil, fmt.Errorf("payment %s: %w", d.Reference, err)
	}
	return &entity.Payment{
		ID:           d.ID,
		Reference:    d.Reference,
		TenantName:   d.TenantName,
		PropertyName: d.PropertyName,
		Source:       strings.ToLower(d.Source),
		Method:       strings.ToLower(d.Method),
		Status:       strings.ToLower(d.Status),
		Amount:       d.Amount,
		PaidAt:       paidAt,
	}, nil
}

// parseDay accepts a plain ISO date or an RFC 3339 timestamp and keeps the
// calendar day.
func parseDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(utils.ISODate, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid paid_at %q", raw)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// FetchPayments implements port.PaymentSource. It walks every page of
// payments paid between start and end inclusive.
func (c *Client) FetchPayments(ctx context.Context, start, end time.Time) ([]*entity.Payment, error) {
	var payments []*entity.Payment

	for n := 1; ; n++ {
		if n > maxPages {
			return nil, ErrTooManyPages
		}

		q := url.Values{}
		q.Set("page", strconv.Itoa(n))
		q.Set("page_size", strconv.Itoa(c.cfg.PageSize))
		q.Set("paid_after", start.Format(utils.ISODate))
		q.Set("paid_before", end.Format(utils.ISODate))

		var p page[paymentDTO]
		if err := c.get(ctx, c.cfg.PaymentsPath, q, &p); err != nil {
			return nil, err
		}

		for _, dto := range p.Results {
			payment, err := dto.toEntity()
			if err != nil {
				return nil, err
			}
			payments = append(payments, payment)
		}

		if len(p.Results) == 0 || p.Next == nil || len(payments) >= p.Count {
			break
		}
	}

	c.logger.Info("Fetched payments from backend",
		zap.Int("count", len(payments)),
		zap.String("from", start.Format(utils.ISODate)),
		zap.String("to", end.Format(utils.ISODate)))

	return payments, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("Backend returned an error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

var _ port.PaymentSource = (*Client)(nil)
