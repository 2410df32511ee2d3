package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/six-app/six-backend/internal/logger"
)

func newWeatherTestServer(t *testing.T, temperature float64, failing *atomic.Bool) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if failing != nil && failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprintf(w, `{
			"current": {"temperature_2m": %f, "weather_code": 3},
			"daily": {"temperature_2m_max": [21.4], "temperature_2m_min": [12.1]}
		}`, temperature)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestWeatherService(baseURL string) *weatherService {
	return &weatherService{
		log:     logger.NewNop(),
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: baseURL,
		unit:    "celsius",
		cache:   make(map[string]cachedReport),
	}
}

func TestWeatherCurrentFetchesAndParses(t *testing.T) {
	srv, _ := newWeatherTestServer(t, 17.3, nil)
	ws := newTestWeatherService(srv.URL)

	report, err := ws.Current(context.Background(), "52.52", "13.40")
	require.NoError(t, err)
	assert.Equal(t, 17.3, report.Temperature)
	assert.Equal(t, 3, report.WeatherCode)
	assert.Equal(t, 21.4, report.HighTemp)
	assert.Equal(t, 12.1, report.LowTemp)
	assert.Equal(t, "C", report.Unit)
}

func TestWeatherCurrentServesFromCache(t *testing.T) {
	srv, calls := newWeatherTestServer(t, 17.3, nil)
	ws := newTestWeatherService(srv.URL)

	_, err := ws.Current(context.Background(), "52.52", "13.40")
	require.NoError(t, err)
	_, err = ws.Current(context.Background(), "52.52", "13.40")
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load(), "second hit must come from the cache")

	// A different coordinate is a different cache entry.
	_, err = ws.Current(context.Background(), "48.85", "2.35")
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestWeatherCurrentServesStaleOnUpstreamError(t *testing.T) {
	var failing atomic.Bool
	srv, _ := newWeatherTestServer(t, 17.3, &failing)
	ws := newTestWeatherService(srv.URL)

	report, err := ws.Current(context.Background(), "52.52", "13.40")
	require.NoError(t, err)

	// Expire the entry, then break the upstream.
	ws.mu.Lock()
	entry := ws.cache["52.52,13.40"]
	entry.fetchedAt = time.Now().Add(-weatherCacheTTL - time.Minute)
	ws.cache["52.52,13.40"] = entry
	ws.mu.Unlock()
	failing.Store(true)

	stale, err := ws.Current(context.Background(), "52.52", "13.40")
	require.NoError(t, err, "stale data beats an error")
	assert.Equal(t, report.Temperature, stale.Temperature)
}

func TestWeatherCurrentErrorsWithoutCache(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	srv, _ := newWeatherTestServer(t, 17.3, &failing)
	ws := newTestWeatherService(srv.URL)

	_, err := ws.Current(context.Background(), "52.52", "13.40")
	assert.Error(t, err)
}
