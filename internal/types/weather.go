package types

import (
	"fmt"
	"math"
)

// WeatherTable is the time-indexed weather input handed over by the weather
// data collaborator. GHI is mandatory; the other fields are optional and a
// zero-value Series means the field is absent. Units: W/m² for irradiance,
// °C for temperatures, Pa for pressure and m/s for wind speed.
type WeatherTable struct {
	Index     Index
	GHI       Series
	DewPoint  Series
	Pressure  Series
	TempAir   Series
	WindSpeed Series
}

// WeatherField names one column of the weather table.
type WeatherField string

const (
	FieldGHI       WeatherField = "ghi"
	FieldDewPoint  WeatherField = "dew_point"
	FieldPressure  WeatherField = "pressure"
	FieldTempAir   WeatherField = "temp_air"
	FieldWindSpeed WeatherField = "wind_speed"
)

// WeatherFields lists the weather columns in output order.
var WeatherFields = []WeatherField{FieldGHI, FieldDewPoint, FieldPressure, FieldTempAir, FieldWindSpeed}

// Field returns the series stored under name and whether it is present.
func (w *WeatherTable) Field(name WeatherField) (Series, bool) {
	var s Series
	switch name {
	case FieldGHI:
		s = w.GHI
	case FieldDewPoint:
		s = w.DewPoint
	case FieldPressure:
		s = w.Pressure
	case FieldTempAir:
		s = w.TempAir
	case FieldWindSpeed:
		s = w.WindSpeed
	}
	return s, !s.IsZero()
}

// Validate checks that the table has a non-empty index, a GHI series and
// that every present field is aligned to the index.
func (w *WeatherTable) Validate() error {
	if len(w.Index) == 0 {
		return fmt.Errorf("%w: weather table has an empty time index", ErrInputValidation)
	}
	if _, err := NewIndex(w.Index); err != nil {
		return err
	}
	if w.GHI.IsZero() {
		return fmt.Errorf("%w: weather table has no %s field", ErrInputValidation, FieldGHI)
	}
	for _, name := range WeatherFields {
		s, ok := w.Field(name)
		if !ok {
			continue
		}
		if err := s.AlignedTo(w.Index, string(name)); err != nil {
			return err
		}
	}
	return nil
}

// DaytimeGHICount returns how many GHI samples are present and positive.
func (w *WeatherTable) DaytimeGHICount() int {
	n := 0
	for _, v := range w.GHI.Values {
		if !math.IsNaN(v) && v > 0 {
			n++
		}
	}
	return n
}
