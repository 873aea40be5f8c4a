package weather

import (
	"fmt"
	"math"

	"github.com/chrissnell/pvforecast/internal/types"
)

// Units names the unit convention of an input file.
type Units string

const (
	// UnitsSI is W/m², °C, Pa and m/s; no conversion is applied.
	UnitsSI Units = "si"
	// UnitsDWDMosmix is the DWD MOSMIX convention: temperatures in K and
	// hourly global radiation in kJ/m².
	UnitsDWDMosmix Units = "dwd-mosmix"
	// UnitsDWDObservation is the DWD 10-minute station convention: global
	// radiation in J/cm² per interval and pressure in hPa.
	UnitsDWDObservation Units = "dwd-observation"
)

const (
	kelvinOffset = 273.15
	// kJ/m² accumulated over one hour to Wh/m²
	kJPerM2HourToWh = 0.277778
	// J/cm² accumulated over ten minutes to W/m²
	jPerCM2TenMinToW = 16.666666667
	hPaToPa          = 100.0
)

// ParseUnits maps a configured name onto Units. Empty selects UnitsSI.
func ParseUnits(name string) (Units, error) {
	switch Units(name) {
	case "", UnitsSI:
		return UnitsSI, nil
	case UnitsDWDMosmix, UnitsDWDObservation:
		return Units(name), nil
	}
	return "", fmt.Errorf("%w: unknown weather units %q", types.ErrInputValidation, name)
}

// Normalize converts the table in place from u to SI units.
func Normalize(w *types.WeatherTable, u Units) error {
	switch u {
	case "", UnitsSI:
	case UnitsDWDMosmix:
		w.TempAir = convert(w.TempAir, func(v float64) float64 { return v - kelvinOffset })
		w.DewPoint = convert(w.DewPoint, func(v float64) float64 { return v - kelvinOffset })
		w.GHI = convert(w.GHI, func(v float64) float64 { return v * kJPerM2HourToWh })
	case UnitsDWDObservation:
		w.GHI = convert(w.GHI, func(v float64) float64 { return v * jPerCM2TenMinToW })
		w.Pressure = convert(w.Pressure, func(v float64) float64 { return v * hPaToPa })
	default:
		return fmt.Errorf("%w: unknown weather units %q", types.ErrInputValidation, u)
	}
	return nil
}

func convert(s types.Series, f func(float64) float64) types.Series {
	if s.IsZero() {
		return s
	}
	return s.Map(func(v float64) float64 {
		if math.IsNaN(v) {
			return v
		}
		return f(v)
	})
}
