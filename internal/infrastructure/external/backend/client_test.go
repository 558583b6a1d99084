package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_FetchPaymentsWalksPages(t *testing.T) {
	all := []map[string]interface{}{
		{"id": 1, "reference": "P-001", "property_name": "Oak Court", "status": "COMPLETED",
			"method": "mpesa", "source": "rent", "amount": "8500.00", "paid_at": "2024-01-05"},
		{"id": 2, "reference": "P-002", "property_name": "Pine View", "status": "pending",
			"method": "cash", "source": "rent", "amount": 12000, "paid_at": "2024-02-05T10:15:00Z"},
		{"id": 3, "reference": "P-003", "property_name": "Elm House", "status": "overdue",
			"method": "card", "source": "late_fee", "amount": "425.5", "paid_at": "2024-03-05"},
	}

	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RawQuery)
		assert.Equal(t, "/api/payments/", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("paid_after"))
		assert.Equal(t, "2024-06-30", r.URL.Query().Get("paid_before"))

		pageNum, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
		lo := (pageNum - 1) * size
		hi := lo + size
		if hi > len(all) {
			hi = len(all)
		}

		var next interface{}
		if hi < len(all) {
			next = fmt.Sprintf("/api/payments/?page=%d", pageNum+1)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"count":    len(all),
			"next":     next,
			"previous": nil,
			"results":  all[lo:hi],
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "secret", PageSize: 2}, zap.NewNop())
	payments, err := c.FetchPayments(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Len(t, requests, 2)
	require.Len(t, payments, 3)
	assert.Equal(t, "completed", payments[0].Status)
	assert.True(t, payments[0].Amount.Equal(decimal.NewFromInt(8500)))
	assert.True(t, payments[1].PaidAt.Equal(time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, payments[2].Amount.Equal(decimal.RequireFromString("425.5")))
}

func TestClient_FetchPaymentsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, zap.NewNop())
	_, err := c.FetchPayments(context.Background(), time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestClient_FetchPaymentsRejectsBadDates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":1,"next":null,"results":[{"reference":"X","amount":"1","paid_at":"05/01/2024"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, zap.NewNop())
	_, err := c.FetchPayments(context.Background(), time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid paid_at")
}
