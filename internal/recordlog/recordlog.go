// Package recordlog persists one flattened row per successful weather query.
// The log is append-only; rows are never mutated or deleted. Backends: an
// Excel workbook (default) and an embedded SQLite database.
package recordlog

import (
	"context"
	"time"
)

// Columns is the fixed header of the record log, in column order.
var Columns = []string{
	"Date & Time",
	"City",
	"Country",
	"Temperature (°C)",
	"Wind Speed (km/h)",
	"Weather Code",
	"US AQI",
}

// TimestampLayout is the display format used for the Date & Time column.
const TimestampLayout = "2006-01-02 15:04:05"

// Record is one flattened query snapshot. Temperature is always Celsius
// regardless of the unit requested for display. USAQI is nil when air
// quality was unavailable.
type Record struct {
	Timestamp    time.Time
	City         string
	Country      string
	TemperatureC float64
	WindSpeedKmh float64
	WeatherCode  int
	USAQI        *float64
}

// Logger appends records to a persistent tabular log. Implementations
// create the target on first append. Append failures are expected to be
// treated as warnings by callers; a failed append must not abort the query.
type Logger interface {
	Append(ctx context.Context, rec Record) error
}

// parseTimestamp parses a Date & Time column value back into a time.Time.
func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}
