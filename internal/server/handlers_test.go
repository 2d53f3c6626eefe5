package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcosLaine/Controle-se-sub003/internal/app"
	"github.com/MarcosLaine/Controle-se-sub003/internal/common"
	"github.com/MarcosLaine/Controle-se-sub003/internal/interfaces"
	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
	"github.com/MarcosLaine/Controle-se-sub003/internal/services/valuation"
)

type memStore struct {
	txs map[string][]models.Transaction
}

func (m *memStore) ListTransactions(_ context.Context, userID string) ([]models.Transaction, error) {
	return m.txs[userID], nil
}

func (m *memStore) SetTransactions(_ context.Context, userID string, txs []models.Transaction) error {
	if m.txs == nil {
		m.txs = make(map[string][]models.Transaction)
	}
	m.txs[userID] = txs
	return nil
}

func (m *memStore) Close() error { return nil }

type flatOracle struct {
	price float64
}

func (o *flatOracle) Quote(context.Context, string, string, time.Time, time.Time) (interfaces.QuoteResult, error) {
	return interfaces.QuoteResult{Success: true, Price: o.price, Currency: "BRL"}, nil
}

func (o *flatOracle) ExchangeRate(context.Context, string, string) (float64, error) {
	return 1.0, nil
}

func (o *flatOracle) FixedIncomeValue(_ context.Context, principal float64, _ models.FixedIncomeTerms, start, asOf time.Time) (float64, error) {
	years := asOf.Sub(start).Hours() / 24 / 365
	return principal * (1 + 0.10*years), nil
}

func newTestServer(t *testing.T, store interfaces.TransactionStore) *Server {
	t.Helper()
	logger := common.NewSilentLogger()
	oracle := &flatOracle{price: 25.0}
	a := &app.App{
		Config:    common.NewDefaultConfig(),
		Logger:    logger,
		Store:     store,
		Oracle:    oracle,
		Valuation: valuation.NewService(store, oracle, "BRL", logger),
	}
	return NewServer(a)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &memStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestVersionEndpoint(t *testing.T) {
	srv := newTestServer(t, &memStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["version"])
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &memStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET", rec.Header().Get("Allow"))
}

func TestUnknownUserRouteReturns404(t *testing.T) {
	srv := newTestServer(t, &memStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/users/u1/unknown", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutTransactionsAndGetSeries(t *testing.T) {
	store := &memStore{}
	srv := newTestServer(t, store)

	buyDate := time.Now().AddDate(0, 0, -20).Format("2006-01-02")
	payload := fmt.Sprintf(`{"transactions":[
		{"symbol":"PETR4","category":"stocks","quantity":10,"unit_price":30,"amount":300,"currency":"BRL","date":"%sT00:00:00Z"}
	]}`, buyDate)

	req := httptest.NewRequest(http.MethodPut, "/api/users/u1/portfolio/transactions", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/users/u1/portfolio/series?period=1M", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var series models.ValuationSeries
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))

	require.Greater(t, series.Points, 1)
	require.Len(t, series.Labels, series.Points)
	assert.InDelta(t, 300.0, series.Invested[series.Points-1], 0.001)
	assert.InDelta(t, 250.0, series.Current[series.Points-1], 0.001)
}

func TestPutTransactionsRejectsZeroQuantity(t *testing.T) {
	srv := newTestServer(t, &memStore{})

	payload := `{"transactions":[
		{"symbol":"PETR4","category":"stocks","quantity":0,"amount":0,"date":"2025-01-02T00:00:00Z"}
	]}`

	req := httptest.NewRequest(http.MethodPut, "/api/users/u1/portfolio/transactions", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSeriesInvalidDateReturns400(t *testing.T) {
	srv := newTestServer(t, &memStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/users/u1/portfolio/series?start_date=not-a-date", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSeriesSpanTooLargeReturns400(t *testing.T) {
	srv := newTestServer(t, &memStore{})

	req := httptest.NewRequest(http.MethodGet,
		"/api/users/u1/portfolio/series?start_date=2000-01-01&end_date=2012-01-01", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "3650")
}

func TestSeriesChartReturnsPNG(t *testing.T) {
	store := &memStore{}
	srv := newTestServer(t, store)

	buyDate := time.Now().AddDate(0, 0, -15).Format("2006-01-02")
	payload := fmt.Sprintf(`{"transactions":[
		{"symbol":"VALE3","category":"stocks","quantity":5,"unit_price":60,"amount":300,"currency":"BRL","date":"%sT00:00:00Z"}
	]}`, buyDate)

	req := httptest.NewRequest(http.MethodPut, "/api/users/u1/portfolio/transactions", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/users/u1/portfolio/series/chart?period=1M", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	// PNG magic bytes.
	require.True(t, rec.Body.Len() > 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, rec.Body.Bytes()[:4])
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, &memStore{})

	req := httptest.NewRequest(http.MethodOptions, "/api/users/u1/portfolio/series", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorrelationIDPropagated(t *testing.T) {
	srv := newTestServer(t, &memStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc123", rec.Header().Get("X-Correlation-ID"))
}
