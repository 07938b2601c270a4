package models

import (
	"encoding/json"
	"time"
)

// Location is the single best geocoding match for a city query.
// Transient: held for one query cycle only, never cached.
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentWeather holds the current conditions block from the forecast endpoint.
// Temperatures are in the unit recorded by Report.Unit; the provider always
// returns Celsius and km/h.
type CurrentWeather struct {
	Temperature  float64 `json:"temperature"`
	WindSpeedKmh float64 `json:"windSpeedKmh"`
	WeatherCode  int     `json:"weatherCode"`
	Time         string  `json:"time"`
}

// DailyForecast is one day of the multi-day forecast (parallel daily arrays
// from the provider, chronological order preserved).
type DailyForecast struct {
	Date        string  `json:"date"`
	TempMax     float64 `json:"tempMax"`
	TempMin     float64 `json:"tempMin"`
	WeatherCode int     `json:"weatherCode"`
}

// Pollutants holds the five tracked pollutant concentrations in µg/m³.
// Nil means the provider reported no value for that pollutant.
type Pollutants struct {
	PM25  *float64 `json:"pm2_5,omitempty"`
	PM10  *float64 `json:"pm10,omitempty"`
	Ozone *float64 `json:"ozone,omitempty"`
	NO2   *float64 `json:"nitrogen_dioxide,omitempty"`
	CO    *float64 `json:"carbon_monoxide,omitempty"`
}

// AirQualitySample is the latest entry of the hourly air-quality series.
type AirQualitySample struct {
	Time       string     `json:"time"`
	USAQI      *float64   `json:"usAqi,omitempty"`
	Pollutants Pollutants `json:"pollutants"`
}

// AqiPoint is one (timestamp, US AQI) pair of the hourly trend series.
type AqiPoint struct {
	Time  string   `json:"time"`
	USAQI *float64 `json:"usAqi"`
}

// AirQualityReport is the classified air-quality section of a Report.
// A nil AirQualityReport on the Report means air-quality data was
// unavailable for this query.
type AirQualityReport struct {
	USAQI            *float64   `json:"usAqi,omitempty"`
	CategoryLabel    string     `json:"categoryLabel"`
	Badge            string     `json:"badge"`
	Guidance         string     `json:"guidance"`
	PollutantSummary string     `json:"pollutantSummary"`
	Trend            []AqiPoint `json:"trend,omitempty"`
}

// RawPayloads carries the unparsed upstream JSON bodies for diagnostic display.
type RawPayloads struct {
	Geocoding  json.RawMessage `json:"geocoding,omitempty"`
	Forecast   json.RawMessage `json:"forecast,omitempty"`
	AirQuality json.RawMessage `json:"airQuality,omitempty"`
}

// Report is the aggregate result of one query, consumed by the presentation
// layer. Temperatures in Current and Forecast are converted to the requested
// unit; Unit is the display label ("°C" or "°F").
type Report struct {
	Location    Location          `json:"location"`
	Current     CurrentWeather    `json:"current"`
	Unit        string            `json:"unit"`
	WeatherDesc string            `json:"weatherDesc"`
	Forecast    []DailyForecast   `json:"forecast"`
	AirQuality  *AirQualityReport `json:"airQuality,omitempty"`
	Tips        []string          `json:"tips"`
	RecordSaved bool              `json:"recordSaved"`
	Raw         *RawPayloads      `json:"raw,omitempty"`
	GeneratedAt time.Time         `json:"generatedAt"`
}
