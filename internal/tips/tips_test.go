package tips

import (
	"math"
	"reflect"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestGenerate_NeverEmpty(t *testing.T) {
	cases := []struct {
		name string
		temp float64
		code int
		aqi  *float64
		wind float64
	}{
		{name: "no rule fires", temp: 29, code: 40, aqi: ptr(100), wind: 2},
		{name: "everything fires", temp: 20, code: 0, aqi: ptr(30), wind: 10},
		{name: "absent aqi", temp: 29, code: 40, aqi: nil, wind: 0},
		{name: "NaN aqi", temp: 29, code: 40, aqi: ptr(math.NaN()), wind: 0},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.temp, tt.code, tt.aqi, tt.wind)
			if len(got) == 0 {
				t.Fatal("Generate() returned empty slice")
			}
		})
	}
}

func TestGenerate_FallbackOnly(t *testing.T) {
	// 28 < temp <= 30, unclassified weather code, mid-range AQI, calm wind.
	got := Generate(29, 45, ptr(100), 3)
	want := []string{TipFallback}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate() = %v, want only fallback tip", got)
	}
}

func TestGenerate_TemperatureRules(t *testing.T) {
	tests := []struct {
		name string
		temp float64
		want string
	}{
		{name: "lower comfortable bound", temp: 18, want: TipComfortableTemp},
		{name: "upper comfortable bound", temp: 28, want: TipComfortableTemp},
		{name: "hot above 30", temp: 30.5, want: TipHot},
		{name: "cool below 15", temp: 14.9, want: TipCool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.temp, 45, nil, 0)
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("Generate(temp=%v) = %v, want [%q]", tt.temp, got, tt.want)
			}
		})
	}

	// The 28 < t <= 30 band and exactly 15 produce no temperature tip.
	for _, temp := range []float64{28.5, 30, 15} {
		got := Generate(temp, 45, nil, 0)
		if len(got) != 1 || got[0] != TipFallback {
			t.Errorf("Generate(temp=%v) = %v, want no temperature tip", temp, got)
		}
	}
}

func TestGenerate_WeatherCodeRules(t *testing.T) {
	tests := []struct {
		name string
		code int
		want []string
	}{
		{name: "clear sky", code: 0, want: []string{TipClearSky, TipDaylight}},
		{name: "mainly clear", code: 1, want: []string{TipClearSky, TipDaylight}},
		{name: "partly cloudy", code: 2, want: []string{TipCloudy}},
		{name: "overcast", code: 3, want: []string{TipCloudy}},
		{name: "drizzle low", code: 51, want: []string{TipRain}},
		{name: "freezing rain high", code: 67, want: []string{TipRain}},
		{name: "rain showers", code: 81, want: []string{TipRain}},
		{name: "snow low", code: 71, want: []string{TipWintry}},
		{name: "snow grains", code: 77, want: []string{TipWintry}},
		{name: "snow showers", code: 86, want: []string{TipWintry}},
		{name: "fog unmatched", code: 45, want: []string{TipFallback}},
		{name: "thunderstorm unmatched", code: 95, want: []string{TipFallback}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(29, tt.code, nil, 0)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Generate(code=%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestGenerate_AqiRules(t *testing.T) {
	t.Run("high aqi adds vehicle and mask tips", func(t *testing.T) {
		got := Generate(29, 45, ptr(175), 0)
		want := []string{TipAvoidVehicles, TipWearMask}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Generate(aqi=175) = %v, want %v", got, want)
		}
		for _, tip := range got {
			if tip == TipWalkCycle {
				t.Error("high-AQI tips must not include the walk/cycle tip")
			}
		}
	})

	t.Run("good aqi adds walk tip", func(t *testing.T) {
		got := Generate(29, 45, ptr(50), 0)
		want := []string{TipWalkCycle}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Generate(aqi=50) = %v, want %v", got, want)
		}
	})

	t.Run("mid-range aqi adds nothing", func(t *testing.T) {
		for _, v := range []float64{50.1, 100, 150} {
			got := Generate(29, 45, ptr(v), 0)
			if !reflect.DeepEqual(got, []string{TipFallback}) {
				t.Errorf("Generate(aqi=%v) = %v, want only fallback", v, got)
			}
		}
	})
}

func TestGenerate_WindRule(t *testing.T) {
	got := Generate(29, 45, nil, 6.1)
	if !reflect.DeepEqual(got, []string{TipVentilation}) {
		t.Errorf("Generate(wind=6.1) = %v, want ventilation tip", got)
	}
	got = Generate(29, 45, nil, 6)
	if !reflect.DeepEqual(got, []string{TipFallback}) {
		t.Errorf("Generate(wind=6) = %v, want no wind tip", got)
	}
}

// Rainy day in comfortable weather with clean air: spec ordering example.
func TestGenerate_RainyComfortableCleanAir(t *testing.T) {
	got := Generate(20, 61, ptr(40), 3)
	want := []string{TipComfortableTemp, TipRain, TipWalkCycle}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate(20, 61, 40, 3) = %v, want %v", got, want)
	}
}
