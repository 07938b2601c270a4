package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecoweather/eco-weather-service/internal/recordlog"
)

var recordsDBPath string

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List logged weather records (sqlite backend)",
	Long:  `Display the rows of a sqlite record log in insertion order.`,
	RunE:  runRecords,
}

func init() {
	recordsCmd.Flags().StringVar(&recordsDBPath, "log-file", "weather_records.db", "sqlite record log path")
	rootCmd.AddCommand(recordsCmd)
}

func runRecords(cmd *cobra.Command, args []string) error {
	sl, err := recordlog.NewSQLiteLogger(recordsDBPath)
	if err != nil {
		return err
	}
	defer sl.Close()

	records, err := sl.Records(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No records logged yet.")
		return nil
	}

	for i, rec := range records {
		aqi := "N/A"
		if rec.USAQI != nil {
			aqi = fmt.Sprintf("%.0f", *rec.USAQI)
		}
		fmt.Fprintf(out, "[%d] %s  %s, %s  %.1f°C  %.1f km/h  code %d  AQI %s\n",
			i+1,
			rec.Timestamp.Format(recordlog.TimestampLayout),
			rec.City, rec.Country,
			rec.TemperatureC, rec.WindSpeedKmh, rec.WeatherCode, aqi)
	}
	fmt.Fprintf(out, "\n%d record(s) in '%s'\n", len(records), recordsDBPath)
	return nil
}
