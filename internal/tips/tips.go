// Package tips generates eco-friendly suggestions from current conditions.
// All rules are pure and total; each rule group contributes at most one
// batch of tips and the groups are evaluated in a fixed order.
package tips

import "math"

// Tip strings, exported so callers and tests can match on identity rather
// than substring.
const (
	TipComfortableTemp = "🌡️ Comfortable temperature – use fans/natural airflow instead of AC to save energy."
	TipHot             = "🥵 It’s hot – close curtains during the day & use light cotton clothes before lowering AC too much."
	TipCool            = "🥶 It’s cool – wear extra layers instead of relying only on room heaters."
	TipClearSky        = "☀️ Clear sky – perfect to dry clothes outside instead of using a dryer."
	TipDaylight        = "🔆 Use natural daylight instead of switching on lights."
	TipCloudy          = "☁️ Cloudy – still enough daylight; keep unnecessary lights switched off."
	TipRain            = "🌧️ Rainy – collect some rainwater (where safe) for plants or cleaning."
	TipWintry          = "❄️ Cold/wintry – ensure windows/doors are sealed to avoid heat loss."
	TipAvoidVehicles   = "🚗 AQI is high – avoid using private vehicles; prefer public transport or carpooling."
	TipWearMask        = "😷 Consider wearing a mask and avoid heavy outdoor exercise."
	TipWalkCycle       = "🚶 AQI is good – great time to walk or cycle instead of using a vehicle."
	TipVentilation     = "💨 Windy outside – open windows for natural ventilation instead of running a fan all day."
	TipFallback        = "✅ No special alerts – follow 3Rs: Reduce, Reuse, Recycle. ♻️"
)

// Generate returns an ordered, never-empty list of suggestions for the given
// conditions. aqi is nil when air-quality data is unavailable. Rule groups
// fire independently (temperature, sky, AQI, wind); within a group at most
// one branch applies.
func Generate(tempC float64, weatherCode int, aqi *float64, windSpeedKmh float64) []string {
	var out []string

	switch {
	case tempC >= 18 && tempC <= 28:
		out = append(out, TipComfortableTemp)
	case tempC > 30:
		out = append(out, TipHot)
	case tempC < 15:
		out = append(out, TipCool)
	}

	switch {
	case weatherCode == 0 || weatherCode == 1:
		out = append(out, TipClearSky, TipDaylight)
	case weatherCode == 2 || weatherCode == 3:
		out = append(out, TipCloudy)
	case (weatherCode >= 51 && weatherCode <= 67) || (weatherCode >= 80 && weatherCode <= 82):
		out = append(out, TipRain)
	case (weatherCode >= 71 && weatherCode <= 77) || (weatherCode >= 85 && weatherCode <= 86):
		out = append(out, TipWintry)
	}

	if aqi != nil && !math.IsNaN(*aqi) {
		switch {
		case *aqi > 150:
			out = append(out, TipAvoidVehicles, TipWearMask)
		case *aqi <= 50:
			out = append(out, TipWalkCycle)
		}
	}

	if windSpeedKmh > 6 {
		out = append(out, TipVentilation)
	}

	if len(out) == 0 {
		out = append(out, TipFallback)
	}
	return out
}
