package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/six-app/six-backend/internal/logger"
)

// StockQuote is a trimmed Yahoo Finance quote.
type StockQuote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Currency      string  `json:"currency"`
	MarketState   string  `json:"marketState"`
}

type FinanceService interface {
	Quote(ctx context.Context, symbol string) (StockQuote, error)
}

type financeService struct {
	log     *logger.Logger
	client  *http.Client
	baseURL string
}

func NewFinanceService(log *logger.Logger) FinanceService {
	serviceLog := log.With("service", "FinanceService")
	baseURL := os.Getenv("YAHOO_FINANCE_API_URL")
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &financeService{
		log:     serviceLog,
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
	}
}

func (fs *financeService) Quote(ctx context.Context, symbol string) (StockQuote, error) {
	var out StockQuote

	reqURL := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", fs.baseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		fs.log.Warn("failed to build yahoo finance request", "error", err)
		return out, err
	}
	// Yahoo rejects the default Go user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; 6ix/1.0)")

	resp, err := fs.client.Do(req)
	if err != nil {
		fs.log.Warn("failed to call yahoo finance", "error", err)
		return out, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		fs.log.Warn("failed to read yahoo finance response body", "error", err)
		return out, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fs.log.Warn("yahoo finance responded with non-2xx", "statusCode", resp.StatusCode, "body", string(bodyBytes))
		return out, fmt.Errorf("yahoo finance HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed struct {
		QuoteResponse struct {
			Result []struct {
				Symbol                     string  `json:"symbol"`
				ShortName                  string  `json:"shortName"`
				RegularMarketPrice         float64 `json:"regularMarketPrice"`
				RegularMarketChange        float64 `json:"regularMarketChange"`
				RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
				Currency                   string  `json:"currency"`
				MarketState                string  `json:"marketState"`
			} `json:"result"`
		} `json:"quoteResponse"`
	}
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return out, fmt.Errorf("failed to decode yahoo finance response: %w", err)
	}
	if len(parsed.QuoteResponse.Result) == 0 {
		return out, fmt.Errorf("no quote found for symbol %q", symbol)
	}

	r := parsed.QuoteResponse.Result[0]
	out = StockQuote{
		Symbol:        r.Symbol,
		Name:          r.ShortName,
		Price:         r.RegularMarketPrice,
		Change:        r.RegularMarketChange,
		ChangePercent: r.RegularMarketChangePercent,
		Currency:      r.Currency,
		MarketState:   r.MarketState,
	}
	fs.log.Info("Yahoo finance quote succeeded", "symbol", out.Symbol, "price", out.Price)
	return out, nil
}
