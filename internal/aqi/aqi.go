// Package aqi classifies US AQI values into qualitative categories and
// formats pollutant readings for display.
package aqi

import (
	"fmt"
	"math"
	"strings"

	"github.com/ecoweather/eco-weather-service/internal/models"
)

// Tier identifies one band of the US AQI scale, ordered by severity.
type Tier int

const (
	TierUnknown Tier = iota
	TierGood
	TierModerate
	TierSensitive
	TierUnhealthy
	TierVeryUnhealthy
	TierHazardous
)

// String returns the tier's severity label.
func (t Tier) String() string {
	switch t {
	case TierGood:
		return "Good"
	case TierModerate:
		return "Moderate"
	case TierSensitive:
		return "Unhealthy for Sensitive Groups"
	case TierUnhealthy:
		return "Unhealthy"
	case TierVeryUnhealthy:
		return "Very Unhealthy"
	case TierHazardous:
		return "Hazardous"
	default:
		return "Unknown"
	}
}

// Category is the classification of a single AQI value: severity tier,
// display badge, and one-sentence health guidance.
type Category struct {
	Tier     Tier
	Label    string
	Badge    string
	Guidance string
}

// PollutantsNotAvailable is returned by SummarizePollutants when no
// pollutant has a value. Never an empty string.
const PollutantsNotAvailable = "Pollutant data not available."

// Classify maps a US AQI value to its category. Bounds are inclusive on the
// lower tiers and unbounded above 300. present=false or NaN yields the
// Unknown category.
func Classify(value float64, present bool) Category {
	if !present || math.IsNaN(value) {
		return Category{
			Tier:     TierUnknown,
			Label:    TierUnknown.String(),
			Badge:    "⚪",
			Guidance: "AQI data not available.",
		}
	}

	var tier Tier
	var badge, guidance string
	switch {
	case value <= 50:
		tier, badge = TierGood, "🟢"
		guidance = "Good – Air quality is considered satisfactory."
	case value <= 100:
		tier, badge = TierModerate, "🟡"
		guidance = "Moderate – Acceptable; some pollutants may affect very sensitive people."
	case value <= 150:
		tier, badge = TierSensitive, "🟠"
		guidance = "Unhealthy for Sensitive Groups – Sensitive people should reduce outdoor exertion."
	case value <= 200:
		tier, badge = TierUnhealthy, "🔴"
		guidance = "Unhealthy – Everyone may begin to feel adverse health effects."
	case value <= 300:
		tier, badge = TierVeryUnhealthy, "🟣"
		guidance = "Very Unhealthy – Health alert; serious effects for everyone."
	default:
		tier, badge = TierHazardous, "⚫"
		guidance = "Hazardous – Emergency conditions; avoid going outside."
	}

	return Category{Tier: tier, Label: tier.String(), Badge: badge, Guidance: guidance}
}

// SummarizePollutants formats the present pollutants as "name: value unit"
// lines in fixed order (PM2.5, PM10, ozone, NO2, CO), one per line. Absent
// pollutants are omitted. Returns PollutantsNotAvailable when all are absent.
func SummarizePollutants(p models.Pollutants) string {
	var lines []string
	appendLine := func(name string, v *float64) {
		if v != nil {
			lines = append(lines, fmt.Sprintf("%s: %.1f µg/m³", name, *v))
		}
	}
	appendLine("PM2.5", p.PM25)
	appendLine("PM10", p.PM10)
	appendLine("O₃ (ozone)", p.Ozone)
	appendLine("NO₂", p.NO2)
	appendLine("CO", p.CO)

	if len(lines) == 0 {
		return PollutantsNotAvailable
	}
	return strings.Join(lines, "\n")
}

// weatherCodeDescriptions maps WMO weather interpretation codes to text.
// Codes follow the Open-Meteo documentation.
var weatherCodeDescriptions = map[int]string{
	0: "Clear sky", 1: "Mainly clear", 2: "Partly cloudy", 3: "Overcast",
	45: "Fog", 48: "Depositing rime fog",
	51: "Light drizzle", 53: "Moderate drizzle", 55: "Dense drizzle",
	56: "Light freezing drizzle", 57: "Dense freezing drizzle",
	61: "Slight rain", 63: "Moderate rain", 65: "Heavy rain",
	66: "Light freezing rain", 67: "Heavy freezing rain",
	71: "Slight snow fall", 73: "Moderate snow fall", 75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers", 81: "Moderate rain showers", 82: "Violent rain showers",
	85: "Slight snow showers", 86: "Heavy snow showers",
	95: "Thunderstorm", 96: "Thunderstorm with slight hail", 99: "Thunderstorm with heavy hail",
}

// DescribeWeatherCode returns the human-readable text for a WMO weather code,
// or "Unknown conditions" for codes outside the documented set.
func DescribeWeatherCode(code int) string {
	if desc, ok := weatherCodeDescriptions[code]; ok {
		return desc
	}
	return "Unknown conditions"
}
