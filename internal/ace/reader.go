// Package ace reads ACE/Wind spacecraft solar wind CSV exports from cdaweb.
// Columns are Time, Bx, By, Bz, Vx, Vy, Vz, density, temperature; missing
// samples carry unphysical magnitudes and are recognized by the
// magnitude-threshold sentinel set (series.FormatACE), not by fill values.
package ace

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/heliolab/solarwind-apps/internal/series"
)

const numColumns = 9 // time + 8 quantities

// timeLayouts are the timestamp renderings seen in cdaweb CSV exports.
var timeLayouts = []string{
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
}

// ReadCSV parses a cdaweb CSV stream into a table. The first line is a
// header and is skipped. Values pass through unmodified; cleaning is a
// separate step.
func ReadCSV(r io.Reader) (*series.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = numColumns

	table := series.NewTable(0)
	lineNum := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		lineNum++
		if lineNum == 1 {
			continue // header
		}

		ts, err := parseTime(record[0])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", lineNum, err)
		}
		var values [8]float64
		for i := 0; i < 8; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("record %d: bad value %q", lineNum, record[i+1])
			}
			values[i] = v
		}
		table.Append(ts, values[0], values[1], values[2], values[3],
			values[4], values[5], values[6], values[7])
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("no data records found")
	}
	return table, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
