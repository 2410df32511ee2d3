package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/six-app/six-backend/internal/logger"
)

const weatherCacheTTL = 30 * time.Minute

// WeatherReport is the current-conditions snapshot returned to clients.
type WeatherReport struct {
	Latitude    string    `json:"latitude"`
	Longitude   string    `json:"longitude"`
	Temperature float64   `json:"temperature"`
	WeatherCode int       `json:"weatherCode"`
	HighTemp    float64   `json:"highTemp"`
	LowTemp     float64   `json:"lowTemp"`
	Unit        string    `json:"unit"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

type WeatherService interface {
	Current(ctx context.Context, lat, lon string) (WeatherReport, error)
}

type cachedReport struct {
	report    WeatherReport
	fetchedAt time.Time
}

type weatherService struct {
	log     *logger.Logger
	client  *http.Client
	baseURL string
	unit    string

	mu    sync.RWMutex
	cache map[string]cachedReport
}

func NewWeatherService(log *logger.Logger) WeatherService {
	serviceLog := log.With("service", "WeatherService")
	baseURL := os.Getenv("OPEN_METEO_API_URL")
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com/v1/forecast"
	}
	unit := os.Getenv("WEATHER_TEMPERATURE_UNIT")
	if unit == "" {
		unit = "celsius"
	}
	return &weatherService{
		log:     serviceLog,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		unit:    unit,
		cache:   make(map[string]cachedReport),
	}
}

// Current serves from a per-coordinate cache and falls back to stale
// data when the upstream errors, rather than clearing it.
func (ws *weatherService) Current(ctx context.Context, lat, lon string) (WeatherReport, error) {
	key := lat + "," + lon

	ws.mu.RLock()
	entry, ok := ws.cache[key]
	ws.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < weatherCacheTTL {
		return entry.report, nil
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	// Double-check after acquiring the write lock.
	if entry, ok := ws.cache[key]; ok && time.Since(entry.fetchedAt) < weatherCacheTTL {
		return entry.report, nil
	}

	report, err := ws.fetch(ctx, lat, lon)
	if err != nil {
		if entry, ok := ws.cache[key]; ok {
			ws.log.Warn("Weather fetch failed, serving stale cache", "error", err, "coords", key)
			return entry.report, nil
		}
		return WeatherReport{}, err
	}

	ws.cache[key] = cachedReport{report: report, fetchedAt: time.Now()}
	return report, nil
}

type openMeteoResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		TempMax []float64 `json:"temperature_2m_max"`
		TempMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func (ws *weatherService) fetch(ctx context.Context, lat, lon string) (WeatherReport, error) {
	url := fmt.Sprintf(
		"%s?latitude=%s&longitude=%s&current=temperature_2m,weather_code&daily=temperature_2m_max,temperature_2m_min&timezone=auto&forecast_days=1&temperature_unit=%s",
		ws.baseURL, lat, lon, ws.unit,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return WeatherReport{}, err
	}
	resp, err := ws.client.Do(req)
	if err != nil {
		return WeatherReport{}, fmt.Errorf("weather API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		ws.log.Warn("open-meteo responded with non-2xx", "statusCode", resp.StatusCode, "body", string(bodyBytes))
		return WeatherReport{}, fmt.Errorf("open-meteo HTTP %d", resp.StatusCode)
	}

	var parsed openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return WeatherReport{}, fmt.Errorf("decode weather response: %w", err)
	}

	unit := "C"
	if ws.unit == "fahrenheit" {
		unit = "F"
	}
	report := WeatherReport{
		Latitude:    lat,
		Longitude:   lon,
		Temperature: parsed.Current.Temperature,
		WeatherCode: parsed.Current.WeatherCode,
		Unit:        unit,
		FetchedAt:   time.Now(),
	}
	if len(parsed.Daily.TempMax) > 0 {
		report.HighTemp = parsed.Daily.TempMax[0]
	}
	if len(parsed.Daily.TempMin) > 0 {
		report.LowTemp = parsed.Daily.TempMin[0]
	}
	ws.log.Info("Weather fetch succeeded", "coords", lat+","+lon)
	return report, nil
}
