package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/six-app/six-backend/internal/logger"
)

func TestFinanceQuoteParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbols"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"quoteResponse":{"result":[{
			"symbol":"AAPL","shortName":"Apple Inc.",
			"regularMarketPrice":228.61,"regularMarketChange":-1.22,
			"regularMarketChangePercent":-0.53,"currency":"USD","marketState":"REGULAR"
		}]}}`))
	}))
	defer srv.Close()

	fs := &financeService{
		log:     logger.NewNop(),
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: srv.URL,
	}
	quote, err := fs.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, "Apple Inc.", quote.Name)
	assert.Equal(t, 228.61, quote.Price)
	assert.Equal(t, -1.22, quote.Change)
	assert.Equal(t, "USD", quote.Currency)
}

func TestFinanceQuoteUnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteResponse":{"result":[]}}`))
	}))
	defer srv.Close()

	fs := &financeService{
		log:     logger.NewNop(),
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: srv.URL,
	}
	_, err := fs.Quote(context.Background(), "NOPE")
	assert.Error(t, err)
}

func TestFinanceQuoteUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	fs := &financeService{
		log:     logger.NewNop(),
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: srv.URL,
	}
	_, err := fs.Quote(context.Background(), "AAPL")
	assert.Error(t, err)
}
