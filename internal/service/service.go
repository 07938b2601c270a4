// Package service sequences one report query: geocode, fetch forecast and
// air quality, classify, generate tips, persist the record, and assemble
// the aggregate result for the presentation layer.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ecoweather/eco-weather-service/internal/aqi"
	"github.com/ecoweather/eco-weather-service/internal/client"
	"github.com/ecoweather/eco-weather-service/internal/models"
	"github.com/ecoweather/eco-weather-service/internal/observability"
	"github.com/ecoweather/eco-weather-service/internal/recordlog"
	"github.com/ecoweather/eco-weather-service/internal/tips"
)

// Unit selects the display temperature unit for a report.
type Unit string

const (
	UnitCelsius    Unit = "celsius"
	UnitFahrenheit Unit = "fahrenheit"
)

// Label returns the display label for the unit.
func (u Unit) Label() string {
	if u == UnitFahrenheit {
		return "°F"
	}
	return "°C"
}

// ParseUnit maps a query-string value to a Unit. Empty input defaults to
// Celsius.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(UnitCelsius):
		return UnitCelsius, nil
	case string(UnitFahrenheit):
		return UnitFahrenheit, nil
	default:
		return "", fmt.Errorf("unknown temperature unit %q", s)
	}
}

// CelsiusToFahrenheit converts a Celsius temperature for display.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// FahrenheitToCelsius is the inverse conversion.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// ReportService orchestrates one query against the Open-Meteo client and
// the record log. Geocode and forecast failures abort the query; air-quality
// and persistence failures degrade gracefully.
type ReportService struct {
	client        client.WeatherClient
	records       recordlog.Logger
	recordBackend string
	now           func() time.Time
}

// NewReportService builds a ReportService. recordBackend is the metric
// label for the configured log backend ("xlsx" or "sqlite").
func NewReportService(weatherClient client.WeatherClient, records recordlog.Logger, recordBackend string) *ReportService {
	return &ReportService{
		client:        weatherClient,
		records:       records,
		recordBackend: recordBackend,
		now:           time.Now,
	}
}

// loggerFromContext extracts the per-request zap.Logger placed in the
// context by the correlation middleware. Returns nil when absent.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return nil
}

// GetReport runs the full pipeline for one city query. includeRaw attaches
// the unparsed upstream JSON bodies for diagnostic display.
func (s *ReportService) GetReport(ctx context.Context, city string, unit Unit, includeRaw bool) (models.Report, error) {
	start := s.now()
	logger := loggerFromContext(ctx)

	geo, err := s.client.Geocode(ctx, city)
	if err != nil {
		return models.Report{}, fmt.Errorf("geocode %q: %w", city, err)
	}
	loc := geo.Location

	// Forecast and air quality are independent once coordinates are known.
	var (
		wg       sync.WaitGroup
		forecast client.ForecastResult
		fcErr    error
		air      client.AirQualityResult
		airErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		forecast, fcErr = s.client.FetchForecast(ctx, loc.Latitude, loc.Longitude)
	}()
	go func() {
		defer wg.Done()
		air, airErr = s.client.FetchAirQuality(ctx, loc.Latitude, loc.Longitude)
	}()
	wg.Wait()

	if fcErr != nil {
		return models.Report{}, fmt.Errorf("fetch forecast for %s: %w", loc.Name, fcErr)
	}

	report := models.Report{
		Location:    loc,
		Unit:        unit.Label(),
		WeatherDesc: aqi.DescribeWeatherCode(forecast.Current.WeatherCode),
		GeneratedAt: start,
	}

	report.Current = forecast.Current
	report.Forecast = forecast.Daily
	if unit == UnitFahrenheit {
		report.Current.Temperature = CelsiusToFahrenheit(report.Current.Temperature)
		for i := range report.Forecast {
			report.Forecast[i].TempMax = CelsiusToFahrenheit(report.Forecast[i].TempMax)
			report.Forecast[i].TempMin = CelsiusToFahrenheit(report.Forecast[i].TempMin)
		}
	}

	var latestAqi *float64
	if airErr != nil {
		observability.AirQualityUnavailableTotal.Inc()
		if logger != nil {
			logger.Warn("air quality unavailable",
				zap.String("city", loc.Name),
				zap.String("category", string(client.CategorizeError(airErr))),
				zap.Error(airErr))
		}
	} else {
		latestAqi = air.Sample.USAQI
		category := aqi.Classify(deref(latestAqi), latestAqi != nil)
		report.AirQuality = &models.AirQualityReport{
			USAQI:            latestAqi,
			CategoryLabel:    category.Label,
			Badge:            category.Badge,
			Guidance:         category.Guidance,
			PollutantSummary: aqi.SummarizePollutants(air.Sample.Pollutants),
			Trend:            air.Trend,
		}
	}

	// Tips always work from provider units (Celsius, km/h).
	report.Tips = tips.Generate(
		forecast.Current.Temperature,
		forecast.Current.WeatherCode,
		latestAqi,
		forecast.Current.WindSpeedKmh,
	)

	report.RecordSaved = s.appendRecord(ctx, logger, loc, forecast.Current, latestAqi)

	if includeRaw {
		report.Raw = &models.RawPayloads{
			Geocoding:  geo.Raw,
			Forecast:   forecast.Raw,
			AirQuality: air.Raw,
		}
	}

	observability.ReportQueriesTotal.Inc()
	if logger != nil {
		logger.Debug("report assembled",
			zap.String("city", loc.Name),
			zap.String("country", loc.Country),
			zap.Bool("airQuality", report.AirQuality != nil),
			zap.Duration("duration", time.Since(start)))
	}
	return report, nil
}

// appendRecord persists one flattened row. Failures are warnings only: the
// query succeeds even when the record log does not.
func (s *ReportService) appendRecord(ctx context.Context, logger *zap.Logger, loc models.Location, current models.CurrentWeather, latestAqi *float64) bool {
	if s.records == nil {
		return false
	}

	rec := recordlog.Record{
		Timestamp:    s.now(),
		City:         loc.Name,
		Country:      loc.Country,
		TemperatureC: current.Temperature,
		WindSpeedKmh: current.WindSpeedKmh,
		WeatherCode:  current.WeatherCode,
		USAQI:        latestAqi,
	}
	if err := s.records.Append(ctx, rec); err != nil {
		observability.RecordAppendsTotal.WithLabelValues(s.recordBackend, "error").Inc()
		if logger != nil {
			logger.Warn("record append failed", zap.String("city", loc.Name), zap.Error(err))
		}
		return false
	}
	observability.RecordAppendsTotal.WithLabelValues(s.recordBackend, "success").Inc()
	return true
}

// deref returns the pointed-to value, or zero for nil. Only meaningful
// alongside an explicit presence flag.
func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
