package pvsystem

import (
	"fmt"

	"github.com/chrissnell/pvforecast/internal/devices"
	"github.com/chrissnell/pvforecast/internal/log"
	"github.com/chrissnell/pvforecast/internal/types"
)

// ProfileSource resolves device names to parameter profiles.
type ProfileSource interface {
	Module(name string) (devices.Module, error)
	Inverter(name string) (devices.Inverter, error)
}

// Registry holds the site parameters and the ordered list of arrays.
// Registration happens before any simulation; afterwards it is only read.
type Registry struct {
	params   SystemParams
	location types.Location
	arrays   []ArrayConfig
	ids      map[string]struct{}
}

// NewRegistry resolves the inverter and module profiles and fixes the shared
// parameters. The temperature model defaults to open_rack_glass_glass.
func NewRegistry(profiles ProfileSource, inverterName, moduleName string, albedo float64, loc types.Location) (*Registry, error) {
	if !loc.Valid() {
		return nil, fmt.Errorf("%w: registry needs a location", types.ErrInputValidation)
	}
	if albedo < 0 || albedo > 1 {
		return nil, fmt.Errorf("%w: albedo %v outside [0, 1]", types.ErrInputValidation, albedo)
	}

	inv, err := profiles.Inverter(inverterName)
	if err != nil {
		return nil, err
	}
	mod, err := profiles.Module(moduleName)
	if err != nil {
		return nil, err
	}
	temp, err := LookupTemperatureModel(DefaultTemperatureModel)
	if err != nil {
		return nil, err
	}

	return &Registry{
		params: SystemParams{
			Module:       mod,
			Inverter:     inv,
			Albedo:       albedo,
			RackingModel: DefaultRackingModel,
			TempModel:    temp,
		},
		location: loc,
		ids:      make(map[string]struct{}),
	}, nil
}

// SetTemperatureModel replaces the SAPM temperature model by name.
func (r *Registry) SetTemperatureModel(name string) error {
	m, err := LookupTemperatureModel(name)
	if err != nil {
		return err
	}
	r.params.TempModel = m
	return nil
}

// AddArray registers a sub-array. A stringsPerInverter of 0 means one string.
// On error the registry is left unchanged.
func (r *Registry) AddArray(id string, tilt, azimuth float64, modulesPerString, stringsPerInverter int) error {
	if stringsPerInverter == 0 {
		stringsPerInverter = 1
	}
	cfg := ArrayConfig{
		ID:                 id,
		SurfaceTilt:        tilt,
		SurfaceAzimuth:     azimuth,
		ModulesPerString:   modulesPerString,
		StringsPerInverter: stringsPerInverter,
	}
	if err := validateArray(cfg); err != nil {
		return err
	}
	if _, dup := r.ids[id]; dup {
		return fmt.Errorf("%w: %q", types.ErrDuplicateID, id)
	}

	r.arrays = append(r.arrays, cfg)
	r.ids[id] = struct{}{}
	log.Debugw("registered array", "id", id, "tilt", tilt, "azimuth", azimuth,
		"modules_per_string", modulesPerString, "strings", stringsPerInverter)
	return nil
}

// Arrays returns a copy of the registered arrays in registration order.
func (r *Registry) Arrays() []ArrayConfig {
	out := make([]ArrayConfig, len(r.arrays))
	copy(out, r.arrays)
	return out
}

// Len returns the number of registered arrays.
func (r *Registry) Len() int { return len(r.arrays) }

// Params returns the shared system parameters.
func (r *Registry) Params() SystemParams { return r.params }

// Location returns the site location.
func (r *Registry) Location() types.Location { return r.location }

func validateArray(cfg ArrayConfig) error {
	switch {
	case cfg.ID == "":
		return fmt.Errorf("%w: array id must not be empty", types.ErrInputValidation)
	case cfg.SurfaceTilt < 0 || cfg.SurfaceTilt > 90:
		return fmt.Errorf("%w: array %q tilt %v outside [0, 90]", types.ErrInputValidation, cfg.ID, cfg.SurfaceTilt)
	case cfg.SurfaceAzimuth < 0 || cfg.SurfaceAzimuth >= 360:
		return fmt.Errorf("%w: array %q azimuth %v outside [0, 360)", types.ErrInputValidation, cfg.ID, cfg.SurfaceAzimuth)
	case cfg.ModulesPerString <= 0:
		return fmt.Errorf("%w: array %q needs a positive module count, got %d", types.ErrInputValidation, cfg.ID, cfg.ModulesPerString)
	case cfg.StringsPerInverter <= 0:
		return fmt.Errorf("%w: array %q needs a positive string count, got %d", types.ErrInputValidation, cfg.ID, cfg.StringsPerInverter)
	}
	return nil
}
