// Package weather loads the time-indexed weather table the forecast runs on.
package weather

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/chrissnell/pvforecast/internal/types"
)

// Options controls how input files are read.
type Options struct {
	Units Units
	// Location interprets timestamps without a zone offset. Nil means UTC.
	Location *time.Location
}

// record is one CSV row. Pointer fields distinguish empty cells from zero.
type record struct {
	Time      string   `csv:"time"`
	GHI       *float64 `csv:"ghi,omitempty"`
	DewPoint  *float64 `csv:"dew_point,omitempty"`
	Pressure  *float64 `csv:"pressure,omitempty"`
	TempAir   *float64 `csv:"temp_air,omitempty"`
	WindSpeed *float64 `csv:"wind_speed,omitempty"`
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// LoadFile reads a weather table from a .csv file or a .msgpack snapshot.
func LoadFile(path string, opts Options) (*types.WeatherTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open weather file %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk":
		return ReadSnapshot(f, opts)
	default:
		return LoadCSV(f, opts)
	}
}

// LoadCSV reads a weather table with the columns time, ghi, dew_point,
// pressure, temp_air and wind_speed. Only time and ghi are mandatory; empty
// cells become NaN. Values are normalised to SI units.
func LoadCSV(r io.Reader, opts Options) (*types.WeatherTable, error) {
	var rows []*record
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("%w: could not parse weather CSV: %v", types.ErrInputValidation, err)
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	times := make([]time.Time, len(rows))
	cols := map[types.WeatherField][]*float64{}
	for _, f := range types.WeatherFields {
		cols[f] = make([]*float64, len(rows))
	}
	for i, row := range rows {
		t, err := parseTime(row.Time, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", types.ErrInputValidation, i+2, err)
		}
		times[i] = t
		cols[types.FieldGHI][i] = row.GHI
		cols[types.FieldDewPoint][i] = row.DewPoint
		cols[types.FieldPressure][i] = row.Pressure
		cols[types.FieldTempAir][i] = row.TempAir
		cols[types.FieldWindSpeed][i] = row.WindSpeed
	}

	idx, err := types.NewIndex(times)
	if err != nil {
		return nil, err
	}

	w := &types.WeatherTable{
		Index:     idx,
		GHI:       toSeries(idx, cols[types.FieldGHI]),
		DewPoint:  toSeries(idx, cols[types.FieldDewPoint]),
		Pressure:  toSeries(idx, cols[types.FieldPressure]),
		TempAir:   toSeries(idx, cols[types.FieldTempAir]),
		WindSpeed: toSeries(idx, cols[types.FieldWindSpeed]),
	}
	if err := Normalize(w, opts.Units); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// toSeries turns a column of optional cells into a series. A column
// without a single value counts as absent.
func toSeries(idx types.Index, cells []*float64) types.Series {
	present := false
	values := make([]float64, len(cells))
	for i, c := range cells {
		if c == nil {
			values[i] = math.NaN()
			continue
		}
		values[i] = *c
		present = true
	}
	if !present {
		return types.Series{}
	}
	return types.Series{Index: idx, Values: values}
}
