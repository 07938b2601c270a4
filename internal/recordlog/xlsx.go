package recordlog

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

// XLSXLogger appends records to an Excel workbook. The workbook is created
// with a header row when absent; existing rows and column order are
// preserved on every append. A mutex serializes appends within the process;
// concurrent appends from other processes are not protected.
type XLSXLogger struct {
	mu   sync.Mutex
	path string
}

// NewXLSXLogger returns a logger writing to the workbook at path.
func NewXLSXLogger(path string) *XLSXLogger {
	return &XLSXLogger{path: path}
}

// Append loads the workbook (or creates it with the fixed header), writes
// rec as the last row, and saves.
func (l *XLSXLogger) Append(ctx context.Context, rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := l.openOrCreate()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	if err != nil {
		return fmt.Errorf("read existing rows: %w", err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("next row cell: %w", err)
	}
	if err := f.SetSheetRow(xlsxSheet, cell, rowValues(rec)); err != nil {
		return fmt.Errorf("write row: %w", err)
	}

	if err := f.SaveAs(l.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// openOrCreate opens the existing workbook, or builds a new one containing
// only the header row when the file does not exist.
func (l *XLSXLogger) openOrCreate() (*excelize.File, error) {
	if _, err := os.Stat(l.path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat workbook: %w", err)
		}
		f := excelize.NewFile()
		header := make([]interface{}, len(Columns))
		for i, c := range Columns {
			header[i] = c
		}
		if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
		return f, nil
	}

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return f, nil
}

// rowValues flattens a record into the fixed column order.
func rowValues(rec Record) *[]interface{} {
	var aqiCell interface{}
	if rec.USAQI != nil {
		aqiCell = *rec.USAQI
	}
	row := []interface{}{
		rec.Timestamp.Format(TimestampLayout),
		rec.City,
		rec.Country,
		rec.TemperatureC,
		rec.WindSpeedKmh,
		rec.WeatherCode,
		aqiCell,
	}
	return &row
}
