package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecoweather/eco-weather-service/internal/client"
	"github.com/ecoweather/eco-weather-service/internal/config"
	"github.com/ecoweather/eco-weather-service/internal/models"
	"github.com/ecoweather/eco-weather-service/internal/recordlog"
	"github.com/ecoweather/eco-weather-service/internal/service"
	"github.com/ecoweather/eco-weather-service/internal/validation"
)

var (
	flagUnits   string
	flagBackend string
	flagLogFile string
	flagRaw     bool
)

var reportCmd = &cobra.Command{
	Use:   "report <city>",
	Short: "Fetch and display an eco-weather report for a city",
	Long: `Geocode the city, fetch current weather, 5-day forecast and air
quality from Open-Meteo, print the report with eco-friendly suggestions,
and append a row to the local record log.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&flagUnits, "units", "celsius", "temperature unit: celsius or fahrenheit")
	reportCmd.Flags().StringVar(&flagBackend, "backend", "xlsx", "record log backend: xlsx or sqlite")
	reportCmd.Flags().StringVar(&flagLogFile, "log-file", "", "record log path (default weather_records.xlsx or .db)")
	reportCmd.Flags().BoolVar(&flagRaw, "raw", false, "show raw API data (geek mode)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	city, err := validation.ValidateCity(args[0], 1, 100)
	if err != nil {
		return err
	}
	unit, err := service.ParseUnit(flagUnits)
	if err != nil {
		return err
	}

	records, closeRecords, err := openRecordLog(flagBackend, flagLogFile)
	if err != nil {
		return err
	}
	defer closeRecords()

	meteo, err := client.NewOpenMeteoClient(
		config.DefaultGeocodingURL,
		config.DefaultForecastURL,
		config.DefaultAirQualityURL,
		config.DefaultUpstreamTimeout,
	)
	if err != nil {
		return err
	}

	reports := service.NewReportService(meteo, records, flagBackend)
	report, err := reports.GetReport(cmd.Context(), city, unit, flagRaw)
	if err != nil {
		return err
	}

	printReport(cmd, report, flagBackend, flagLogFile)
	return nil
}

func openRecordLog(backend, path string) (recordlog.Logger, func(), error) {
	switch backend {
	case "sqlite":
		if path == "" {
			path = "weather_records.db"
		}
		sl, err := recordlog.NewSQLiteLogger(path)
		if err != nil {
			return nil, nil, err
		}
		return sl, func() { _ = sl.Close() }, nil
	case "xlsx":
		if path == "" {
			path = "weather_records.xlsx"
		}
		return recordlog.NewXLSXLogger(path), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("backend must be xlsx or sqlite, got %q", backend)
	}
}

func printReport(cmd *cobra.Command, report models.Report, backend, path string) {
	out := cmd.OutOrStdout()
	rule := strings.Repeat("-", 60)

	fmt.Fprintln(out, "🌍 Eco Weather + AQI Dashboard")
	fmt.Fprintln(out, rule)

	fmt.Fprintf(out, "📍 %s, %s  (%.4f, %.4f)\n",
		report.Location.Name, report.Location.Country,
		report.Location.Latitude, report.Location.Longitude)
	if report.Current.Time != "" {
		fmt.Fprintf(out, "   Updated at: %s (local time)\n", report.Current.Time)
	}

	fmt.Fprintf(out, "🌡️ Current: %.1f%s\n", report.Current.Temperature, report.Unit)
	fmt.Fprintf(out, "🌬️ Wind: %.1f km/h\n", report.Current.WindSpeedKmh)
	fmt.Fprintf(out, "   %s (weather code %d)\n", report.WeatherDesc, report.Current.WeatherCode)

	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "😷 Air Quality (US AQI)")
	if report.AirQuality != nil && report.AirQuality.USAQI != nil {
		aq := report.AirQuality
		fmt.Fprintf(out, "%s US AQI: %.0f\n", aq.Badge, *aq.USAQI)
		fmt.Fprintln(out, aq.Guidance)
		fmt.Fprintln(out, "Key pollutants:")
		fmt.Fprintln(out, aq.PollutantSummary)
	} else {
		fmt.Fprintln(out, "Air quality data not available for this location.")
	}

	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "📅 5-Day Forecast (Daily Min/Max from Open-Meteo)")
	if len(report.Forecast) == 0 {
		fmt.Fprintln(out, "Forecast data not available.")
	}
	for _, day := range report.Forecast {
		fmt.Fprintf(out, "%s  Min: %.1f%s  Max: %.1f%s  Weather code: %d\n",
			day.Date, day.TempMin, report.Unit, day.TempMax, report.Unit, day.WeatherCode)
	}

	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "🌱 Eco-Friendly Suggestions")
	for _, tip := range report.Tips {
		fmt.Fprintln(out, "• "+tip)
	}

	if report.RecordSaved {
		if path == "" {
			if backend == "sqlite" {
				path = "weather_records.db"
			} else {
				path = "weather_records.xlsx"
			}
		}
		fmt.Fprintln(out, rule)
		fmt.Fprintf(out, "📊 Weather record saved in '%s'\n", path)
	}

	if report.Raw != nil {
		fmt.Fprintln(out, rule)
		fmt.Fprintln(out, "🧾 Raw API Data")
		printRawSection(out, "Geocoding JSON", report.Raw.Geocoding)
		printRawSection(out, "Weather JSON", report.Raw.Forecast)
		printRawSection(out, "Air Quality JSON", report.Raw.AirQuality)
	}
}

func printRawSection(out io.Writer, title string, payload json.RawMessage) {
	fmt.Fprintf(out, "%s:\n", title)
	if len(payload) == 0 {
		fmt.Fprintln(out, "{}")
		return
	}
	var pretty map[string]interface{}
	if err := json.Unmarshal(payload, &pretty); err != nil {
		fmt.Fprintln(out, string(payload))
		return
	}
	formatted, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		fmt.Fprintln(out, string(payload))
		return
	}
	fmt.Fprintln(out, string(formatted))
}
