package recordlog

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteLogger appends records to an embedded SQLite database. Schema is
// created on open. Rows are insert-only.
type SQLiteLogger struct {
	db *sql.DB
}

// NewSQLiteLogger opens (creating if needed) the database at path and
// ensures the records table exists.
func NewSQLiteLogger(path string) (*SQLiteLogger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS weather_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recorded_at TEXT NOT NULL,
		city TEXT NOT NULL,
		country TEXT NOT NULL,
		temperature_c REAL NOT NULL,
		wind_speed_kmh REAL NOT NULL,
		weather_code INTEGER NOT NULL,
		us_aqi REAL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}

	return &SQLiteLogger{db: db}, nil
}

// Append inserts one record row.
func (l *SQLiteLogger) Append(ctx context.Context, rec Record) error {
	aqi := sql.NullFloat64{}
	if rec.USAQI != nil {
		aqi = sql.NullFloat64{Float64: *rec.USAQI, Valid: true}
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO weather_records
			(recorded_at, city, country, temperature_c, wind_speed_kmh, weather_code, us_aqi)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.Format(TimestampLayout),
		rec.City,
		rec.Country,
		rec.TemperatureC,
		rec.WindSpeedKmh,
		rec.WeatherCode,
		aqi,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (l *SQLiteLogger) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM weather_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Records returns all stored records in insertion order.
func (l *SQLiteLogger) Records(ctx context.Context) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT recorded_at, city, country, temperature_c, wind_speed_kmh, weather_code, us_aqi
		 FROM weather_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var recordedAt string
		var aqi sql.NullFloat64
		if err := rows.Scan(&recordedAt, &rec.City, &rec.Country,
			&rec.TemperatureC, &rec.WindSpeedKmh, &rec.WeatherCode, &aqi); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if ts, err := parseTimestamp(recordedAt); err == nil {
			rec.Timestamp = ts
		}
		if aqi.Valid {
			v := aqi.Float64
			rec.USAQI = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (l *SQLiteLogger) Close() error {
	return l.db.Close()
}
