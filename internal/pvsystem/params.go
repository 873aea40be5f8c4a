// Package pvsystem holds the PV array registry and the per-array
// performance model that turns irradiance into DC and AC power.
package pvsystem

import (
	"fmt"
	"sort"

	"github.com/chrissnell/pvforecast/internal/devices"
	"github.com/chrissnell/pvforecast/internal/types"
)

// Defaults shared by every array of a site.
const (
	DefaultRackingModel     = "open_rack"
	DefaultTemperatureModel = "open_rack_glass_glass"
	DefaultTempAir          = 20.0
	DefaultWindSpeed        = 0.0
)

// TemperatureModel holds SAPM cell temperature coefficients.
type TemperatureModel struct {
	Name   string
	A      float64
	B      float64
	DeltaT float64
}

var sapmTemperatureModels = map[string]TemperatureModel{
	"open_rack_glass_glass":        {Name: "open_rack_glass_glass", A: -3.47, B: -0.0594, DeltaT: 3},
	"close_mount_glass_glass":      {Name: "close_mount_glass_glass", A: -2.98, B: -0.0471, DeltaT: 1},
	"open_rack_glass_polymer":      {Name: "open_rack_glass_polymer", A: -3.56, B: -0.0750, DeltaT: 3},
	"insulated_back_glass_polymer": {Name: "insulated_back_glass_polymer", A: -2.81, B: -0.0455, DeltaT: 0},
}

// LookupTemperatureModel returns the SAPM coefficients registered under name.
func LookupTemperatureModel(name string) (TemperatureModel, error) {
	m, ok := sapmTemperatureModels[name]
	if !ok {
		names := make([]string, 0, len(sapmTemperatureModels))
		for n := range sapmTemperatureModels {
			names = append(names, n)
		}
		sort.Strings(names)
		return TemperatureModel{}, fmt.Errorf("%w: unknown temperature model %q (known: %v)",
			types.ErrInputValidation, name, names)
	}
	return m, nil
}

// SystemParams are the site-wide parameters shared by all arrays.
type SystemParams struct {
	Module       devices.Module
	Inverter     devices.Inverter
	Albedo       float64
	RackingModel string
	TempModel    TemperatureModel
}

// ArrayConfig describes one sub-array. Azimuth is degrees clockwise from
// north, tilt degrees from horizontal.
type ArrayConfig struct {
	ID                 string
	SurfaceTilt        float64
	SurfaceAzimuth     float64
	ModulesPerString   int
	StringsPerInverter int
}
