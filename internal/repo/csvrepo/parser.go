package csvrepo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/milad/joienergy/internal/domain"
)

const (
	timeLayout = "2006-01-02 15:04:05"
)

// Record is one parsed CSV row.
type Record struct {
	MeterID string
	Reading domain.Reading
}

// ParseReadingsCSV parses meter readings from the provided CSV reader.
//
// Expected header: smart_meter_id,time,reading
//
// Times are either RFC 3339 or "2006-01-02 15:04:05" interpreted as UTC.
// Invalid rows are skipped and returned as a joined error (errors.Join).
func ParseReadingsCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // be permissive; validate ourselves
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !validHeader(header) {
		return nil, fmt.Errorf("unexpected header %q (want %q)", strings.Join(header, ","), "smart_meter_id,time,reading")
	}

	var (
		records []Record
		rowErrs []error
		rowNum  = 1 // header
	)

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: read: %w", rowNum, err))
			continue
		}
		if len(row) < 3 {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: expected 3 columns, got %d", rowNum, len(row)))
			continue
		}

		meterID := strings.TrimSpace(row[0])
		if meterID == "" {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: empty smart_meter_id", rowNum))
			continue
		}

		t, err := parseTime(strings.TrimSpace(row[1]))
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: parse time %q: %w", rowNum, row[1], err))
			continue
		}

		v, err := decimal.NewFromString(strings.TrimSpace(row[2]))
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: parse reading %q: %w", rowNum, row[2], err))
			continue
		}
		if v.IsNegative() {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: negative reading %s", rowNum, v))
			continue
		}

		records = append(records, Record{
			MeterID: meterID,
			Reading: domain.Reading{Time: t, Value: v},
		})
	}

	// Ensure we return stable, non-nil slice.
	if records == nil {
		records = []Record{}
	}
	return records, errors.Join(rowErrs...)
}

func validHeader(h []string) bool {
	want := []string{"smart_meter_id", "time", "reading"}
	if len(h) < len(want) {
		return false
	}
	for i, w := range want {
		if strings.ToLower(strings.TrimSpace(h[i])) != w {
			return false
		}
	}
	return true
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	return time.ParseInLocation(timeLayout, s, time.UTC)
}
