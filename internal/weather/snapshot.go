package weather

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/chrissnell/pvforecast/internal/types"
)

// Snapshot is the MessagePack form of a weather table. Absent optional
// fields are empty slices.
type Snapshot struct {
	Units     string      `msgpack:"units,omitempty"`
	Time      []time.Time `msgpack:"time"`
	GHI       []float64   `msgpack:"ghi"`
	DewPoint  []float64   `msgpack:"dew_point,omitempty"`
	Pressure  []float64   `msgpack:"pressure,omitempty"`
	TempAir   []float64   `msgpack:"temp_air,omitempty"`
	WindSpeed []float64   `msgpack:"wind_speed,omitempty"`
}

// ReadSnapshot decodes a MessagePack snapshot. A units value stored in the
// snapshot overrides opts.Units.
func ReadSnapshot(r io.Reader, opts Options) (*types.WeatherTable, error) {
	var snap Snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: could not decode weather snapshot: %v", types.ErrInputValidation, err)
	}

	units := opts.Units
	if snap.Units != "" {
		u, err := ParseUnits(snap.Units)
		if err != nil {
			return nil, err
		}
		units = u
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	idx, err := types.NewIndex(types.Index(snap.Time).In(loc))
	if err != nil {
		return nil, err
	}
	w := &types.WeatherTable{Index: idx}
	for _, f := range []struct {
		name   types.WeatherField
		values []float64
		dst    *types.Series
	}{
		{types.FieldGHI, snap.GHI, &w.GHI},
		{types.FieldDewPoint, snap.DewPoint, &w.DewPoint},
		{types.FieldPressure, snap.Pressure, &w.Pressure},
		{types.FieldTempAir, snap.TempAir, &w.TempAir},
		{types.FieldWindSpeed, snap.WindSpeed, &w.WindSpeed},
	} {
		if len(f.values) == 0 {
			continue
		}
		s, err := types.NewSeries(idx, f.values)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		*f.dst = s
	}

	if err := Normalize(w, units); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// WriteSnapshot encodes w as a MessagePack snapshot in SI units.
func WriteSnapshot(out io.Writer, w *types.WeatherTable) error {
	if err := w.Validate(); err != nil {
		return err
	}
	snap := Snapshot{
		Units:     string(UnitsSI),
		Time:      w.Index,
		GHI:       w.GHI.Values,
		DewPoint:  w.DewPoint.Values,
		Pressure:  w.Pressure.Values,
		TempAir:   w.TempAir.Values,
		WindSpeed: w.WindSpeed.Values,
	}
	return msgpack.NewEncoder(out).Encode(&snap)
}

// WriteSnapshotFile is WriteSnapshot to a new file at path.
func WriteSnapshotFile(path string, w *types.WeatherTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create snapshot %s: %w", path, err)
	}
	if err := WriteSnapshot(f, w); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Summary describes a loaded table for logging.
func Summary(w *types.WeatherTable) []interface{} {
	var fields []string
	for _, name := range types.WeatherFields {
		if _, ok := w.Field(name); ok {
			fields = append(fields, string(name))
		}
	}
	peak := math.NaN()
	for _, v := range w.GHI.Values {
		if !math.IsNaN(v) && (math.IsNaN(peak) || v > peak) {
			peak = v
		}
	}
	return []interface{}{
		"samples", len(w.Index),
		"start", w.Index[0].Format(time.RFC3339),
		"end", w.Index[len(w.Index)-1].Format(time.RFC3339),
		"fields", fields,
		"daytime_samples", w.DaytimeGHICount(),
		"peak_ghi", peak,
	}
}
