package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/six-app/six-backend/internal/logger"
)

// SearchService forwards web-search queries to Tavily.
type SearchService interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type searchService struct {
	log     *logger.Logger
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewSearchService(log *logger.Logger) (SearchService, error) {
	serviceLog := log.With("service", "SearchService")
	apiKey := os.Getenv("TAVILY_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing TAVILY_API_KEY environment variable")
	}
	baseURL := os.Getenv("TAVILY_API_URL")
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}
	return &searchService{
		log:     serviceLog,
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}, nil
}

func (ss *searchService) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if maxResults <= 0 || maxResults > 10 {
		maxResults = 5
	}
	payload, err := json.Marshal(map[string]interface{}{
		"api_key":     ss.apiKey,
		"query":       query,
		"max_results": maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ss.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		ss.log.Warn("failed to build tavily request", "error", err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ss.client.Do(req)
	if err != nil {
		ss.log.Warn("failed to call tavily", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		ss.log.Warn("failed to read tavily response body", "error", err)
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ss.log.Warn("tavily responded with non-2xx", "statusCode", resp.StatusCode, "body", string(bodyBytes))
		return nil, fmt.Errorf("tavily HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var out struct {
		Results []SearchResult `json:"results"`
	}
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		return nil, fmt.Errorf("failed to decode tavily response: %w", err)
	}
	ss.log.Info("Tavily search succeeded", "query", query, "results", len(out.Results))
	return out.Results, nil
}
