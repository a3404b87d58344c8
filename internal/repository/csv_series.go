package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"CostCast/internal/forecast"
)

var csvDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// CSVSeriesSource reads a cost series from a local CSV export with
// date,cost columns. Rows that do not parse (the header included) are
// dropped rather than failing the load; the minimum-count check on the
// cleaned series catches files that are mostly junk.
type CSVSeriesSource struct {
	path string
}

func NewCSVSeriesSource(path string) *CSVSeriesSource {
	return &CSVSeriesSource{path: path}
}

func (c *CSVSeriesSource) Load() ([]forecast.Point, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var out []forecast.Point
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) < 2 {
			continue
		}

		ts, err := parseCSVDate(rec[0])
		if err != nil {
			continue
		}
		cost, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			continue
		}
		out = append(out, forecast.Point{TS: ts, Cost: cost})
	}
	return out, nil
}

func parseCSVDate(s string) (time.Time, error) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q", s)
}
