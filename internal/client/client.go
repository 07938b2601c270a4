// Package client wraps the three Open-Meteo endpoints used by the service:
// geocoding, weather forecast, and air quality. Calls are plain GETs with a
// per-call timeout and no retries; the orchestrator decides which failures
// are fatal.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ecoweather/eco-weather-service/internal/models"
	"github.com/ecoweather/eco-weather-service/internal/observability"
	"github.com/ecoweather/eco-weather-service/internal/upstream"
)

// WeatherClient is the upstream data source for one report query.
type WeatherClient interface {
	Geocode(ctx context.Context, city string) (GeocodeResult, error)
	FetchForecast(ctx context.Context, lat, lon float64) (ForecastResult, error)
	FetchAirQuality(ctx context.Context, lat, lon float64) (AirQualityResult, error)
}

var (
	// ErrLocationNotFound means geocoding returned zero matches. User-correctable.
	ErrLocationNotFound = errors.New("location not found")
	// ErrUpstreamFailure means an endpoint answered with a non-success status.
	ErrUpstreamFailure = errors.New("upstream failure")
)

// GeocodeResult is the best geocoding match plus the raw response body.
type GeocodeResult struct {
	Location models.Location
	Raw      json.RawMessage
}

// ForecastResult is the parsed current weather and daily forecast plus the
// raw response body.
type ForecastResult struct {
	Current models.CurrentWeather
	Daily   []models.DailyForecast
	Raw     json.RawMessage
}

// AirQualityResult is the latest air-quality sample, the hourly AQI trend,
// and the raw response body.
type AirQualityResult struct {
	Sample models.AirQualitySample
	Trend  []models.AqiPoint
	Raw    json.RawMessage
}

// maxForecastDays caps the daily forecast entries returned to callers.
const maxForecastDays = 5

// OpenMeteoClient calls the public Open-Meteo APIs. No API key is required.
type OpenMeteoClient struct {
	geocodingURL  string
	forecastURL   string
	airQualityURL string
	timeout       time.Duration
	client        *http.Client
	health        *upstream.Health
}

// NewOpenMeteoClient builds a client for the given endpoint URLs with a
// fixed per-call timeout. Outcomes are recorded on upstream.Default.
func NewOpenMeteoClient(geocodingURL, forecastURL, airQualityURL string, timeout time.Duration) (*OpenMeteoClient, error) {
	for _, u := range []string{geocodingURL, forecastURL, airQualityURL} {
		if _, err := url.Parse(u); err != nil || u == "" {
			return nil, fmt.Errorf("invalid endpoint URL %q", u)
		}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenMeteoClient{
		geocodingURL:  geocodingURL,
		forecastURL:   forecastURL,
		airQualityURL: airQualityURL,
		timeout:       timeout,
		client:        &http.Client{Timeout: timeout},
		health:        upstream.Default,
	}, nil
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// Geocode resolves a city name to its single best match. Zero results map
// to ErrLocationNotFound.
func (c *OpenMeteoClient) Geocode(ctx context.Context, city string) (GeocodeResult, error) {
	params := url.Values{}
	params.Set("name", city)
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")

	body, err := c.get(ctx, upstream.ProviderGeocoding, c.geocodingURL, params)
	if err != nil {
		return GeocodeResult{}, err
	}

	var resp geocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return GeocodeResult{}, fmt.Errorf("parse geocoding response: %w", err)
	}
	if len(resp.Results) == 0 {
		return GeocodeResult{}, fmt.Errorf("%w: %q", ErrLocationNotFound, city)
	}

	best := resp.Results[0]
	return GeocodeResult{
		Location: models.Location{
			Name:      best.Name,
			Country:   best.Country,
			Latitude:  best.Latitude,
			Longitude: best.Longitude,
		},
		Raw: body,
	}, nil
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
		Time        string  `json:"time"`
	} `json:"current_weather"`
	Daily struct {
		Time    []string  `json:"time"`
		TempMax []float64 `json:"temperature_2m_max"`
		TempMin []float64 `json:"temperature_2m_min"`
		Code    []int     `json:"weathercode"`
	} `json:"daily"`
}

// FetchForecast returns the current weather and up to five daily forecast
// entries in provider order.
func (c *OpenMeteoClient) FetchForecast(ctx context.Context, lat, lon float64) (ForecastResult, error) {
	params := url.Values{}
	params.Set("latitude", formatCoord(lat))
	params.Set("longitude", formatCoord(lon))
	params.Set("current_weather", "true")
	params.Set("daily", "temperature_2m_max,temperature_2m_min,weathercode")
	params.Set("timezone", "auto")

	body, err := c.get(ctx, upstream.ProviderForecast, c.forecastURL, params)
	if err != nil {
		return ForecastResult{}, err
	}

	var resp forecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ForecastResult{}, fmt.Errorf("parse forecast response: %w", err)
	}

	result := ForecastResult{
		Current: models.CurrentWeather{
			Temperature:  resp.CurrentWeather.Temperature,
			WindSpeedKmh: resp.CurrentWeather.WindSpeed,
			WeatherCode:  resp.CurrentWeather.WeatherCode,
			Time:         resp.CurrentWeather.Time,
		},
		Raw: body,
	}

	// Daily arrays are parallel and indexed by day; tolerate ragged lengths.
	days := len(resp.Daily.Time)
	if days > maxForecastDays {
		days = maxForecastDays
	}
	for i := 0; i < days; i++ {
		day := models.DailyForecast{Date: resp.Daily.Time[i]}
		if i < len(resp.Daily.TempMax) {
			day.TempMax = resp.Daily.TempMax[i]
		}
		if i < len(resp.Daily.TempMin) {
			day.TempMin = resp.Daily.TempMin[i]
		}
		if i < len(resp.Daily.Code) {
			day.WeatherCode = resp.Daily.Code[i]
		}
		result.Daily = append(result.Daily, day)
	}
	return result, nil
}

type airQualityResponse struct {
	Hourly struct {
		Time  []string   `json:"time"`
		USAQI []*float64 `json:"us_aqi"`
		PM25  []*float64 `json:"pm2_5"`
		PM10  []*float64 `json:"pm10"`
		Ozone []*float64 `json:"ozone"`
		NO2   []*float64 `json:"nitrogen_dioxide"`
		CO    []*float64 `json:"carbon_monoxide"`
	} `json:"hourly"`
}

// FetchAirQuality returns the latest hourly air-quality sample and the AQI
// trend series. The latest sample is the highest hourly index; the provider
// returns the series in ascending time order and that order is trusted.
func (c *OpenMeteoClient) FetchAirQuality(ctx context.Context, lat, lon float64) (AirQualityResult, error) {
	params := url.Values{}
	params.Set("latitude", formatCoord(lat))
	params.Set("longitude", formatCoord(lon))
	params.Set("hourly", "pm2_5,pm10,ozone,nitrogen_dioxide,carbon_monoxide,us_aqi")
	params.Set("timezone", "auto")

	body, err := c.get(ctx, upstream.ProviderAirQuality, c.airQualityURL, params)
	if err != nil {
		return AirQualityResult{}, err
	}

	var resp airQualityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return AirQualityResult{}, fmt.Errorf("parse air quality response: %w", err)
	}
	if len(resp.Hourly.Time) == 0 {
		return AirQualityResult{}, fmt.Errorf("%w: empty hourly series", ErrUpstreamFailure)
	}

	idx := len(resp.Hourly.Time) - 1
	sample := models.AirQualitySample{
		Time:  resp.Hourly.Time[idx],
		USAQI: valueAt(resp.Hourly.USAQI, idx),
		Pollutants: models.Pollutants{
			PM25:  valueAt(resp.Hourly.PM25, idx),
			PM10:  valueAt(resp.Hourly.PM10, idx),
			Ozone: valueAt(resp.Hourly.Ozone, idx),
			NO2:   valueAt(resp.Hourly.NO2, idx),
			CO:    valueAt(resp.Hourly.CO, idx),
		},
	}

	trend := make([]models.AqiPoint, 0, len(resp.Hourly.Time))
	for i, ts := range resp.Hourly.Time {
		trend = append(trend, models.AqiPoint{Time: ts, USAQI: valueAt(resp.Hourly.USAQI, i)})
	}

	return AirQualityResult{Sample: sample, Trend: trend, Raw: body}, nil
}

// valueAt returns the element at idx, or nil when the array is shorter than
// the time series or the provider reported null.
func valueAt(arr []*float64, idx int) *float64 {
	if idx < 0 || idx >= len(arr) {
		return nil
	}
	return arr[idx]
}

// get issues one GET with the per-call timeout, records the outcome on the
// health tracker and metrics, and returns the body on 2xx.
func (c *OpenMeteoClient) get(ctx context.Context, provider upstream.Provider, endpoint string, params url.Values) ([]byte, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	baseURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if corrID := extractCorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.observe(provider, "error", time.Since(start))
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("request timeout: %w", err)
		}
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	duration := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.observe(provider, status, duration)
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrUpstreamFailure, resp.StatusCode, provider)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(provider, "error", duration)
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.observe(provider, status, duration)
	return body, nil
}

// observe updates metrics and the per-provider health window for one call.
func (c *OpenMeteoClient) observe(provider upstream.Provider, status string, duration time.Duration) {
	observability.UpstreamCallsTotal.WithLabelValues(string(provider), status).Inc()
	observability.UpstreamCallDuration.WithLabelValues(string(provider), status).Observe(duration.Seconds())
	if c.health != nil {
		if status == "success" {
			c.health.RecordSuccess(provider)
		} else {
			c.health.RecordError(provider)
		}
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func extractCorrelationID(ctx context.Context) string {
	if v := ctx.Value("correlation_id"); v != nil {
		if corrID, ok := v.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "success"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limited"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	default:
		return "error"
	}
}
