package config

import (
	"fmt"
	"math"
	"runtime"

	"github.com/chrissnell/pvforecast/pkg/solar"
)

// Defaults applied by ConfigData.Validate.
const (
	DefaultAlbedo         = 0.25
	DefaultClearSkyModel  = "ineichen"
	DefaultLinkeTurbidity = solar.DefaultLinkeTurbidity
	DefaultWeatherUnits   = "si"
	DefaultPrecision      = 6
)

// ConfigProvider defines the interface for configuration providers
type ConfigProvider interface {
	// LoadConfig loads the complete configuration
	LoadConfig() (*ConfigData, error)

	// IsReadOnly returns true if the provider doesn't support writes
	IsReadOnly() bool

	// Close releases any resources held by the provider
	Close() error
}

// ConfigData is the backend-independent forecast configuration
type ConfigData struct {
	Site   SiteData    `json:"site"`
	System SystemData  `json:"system"`
	Arrays []ArrayData `json:"arrays"`
	Run    RunData     `json:"run"`
}

// SiteData locates the plant
type SiteData struct {
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Timezone  string  `json:"timezone,omitempty"`
}

// SystemData holds the parameters shared by every array of the plant.
// A nil Albedo means unset; Validate fills in DefaultAlbedo.
type SystemData struct {
	Inverter           string   `json:"inverter"`
	Module             string   `json:"module"`
	Albedo             *float64 `json:"albedo,omitempty"`
	TemperatureModel   string   `json:"temperature_model,omitempty"`
	ModuleLibrary      string   `json:"module_library,omitempty"`
	InverterLibrary    string   `json:"inverter_library,omitempty"`
	DirintCoefficients string   `json:"dirint_coefficients,omitempty"`
}

// ArrayData describes one surface of modules
type ArrayData struct {
	ID                 string  `json:"id"`
	SurfaceTilt        float64 `json:"surface_tilt"`
	SurfaceAzimuth     float64 `json:"surface_azimuth"`
	ModulesPerString   int     `json:"modules_per_string"`
	StringsPerInverter int     `json:"strings_per_inverter,omitempty"`
}

// RunData controls one forecast run
type RunData struct {
	Weather             string  `json:"weather,omitempty"`
	WeatherUnits        string  `json:"weather_units,omitempty"`
	Output              string  `json:"output,omitempty"`
	ClearSkyModel       string  `json:"clear_sky_model,omitempty"`
	LinkeTurbidity      float64 `json:"linke_turbidity,omitempty"`
	DeltaT              float64 `json:"delta_t,omitempty"`
	PerezEnhancement    bool    `json:"perez_enhancement,omitempty"`
	DisableDeltaKtPrime bool    `json:"disable_delta_kt_prime,omitempty"`
	Workers             int     `json:"workers,omitempty"`
	Precision           int     `json:"precision,omitempty"`
}

// AlbedoValue returns the configured albedo or DefaultAlbedo when unset.
func (s SystemData) AlbedoValue() float64 {
	if s.Albedo == nil {
		return DefaultAlbedo
	}
	return *s.Albedo
}

// Validate fills defaults and rejects configurations that cannot describe a
// plant. Range checks on geometry are left to the registry, which owns them.
func (c *ConfigData) Validate() error {
	if math.IsNaN(c.Site.Latitude) || c.Site.Latitude < -90 || c.Site.Latitude > 90 {
		return fmt.Errorf("site latitude %v outside [-90, 90]", c.Site.Latitude)
	}
	if math.IsNaN(c.Site.Longitude) || c.Site.Longitude < -180 || c.Site.Longitude > 180 {
		return fmt.Errorf("site longitude %v outside [-180, 180]", c.Site.Longitude)
	}
	if c.Site.Timezone == "" {
		c.Site.Timezone = "UTC"
	}

	if c.System.Inverter == "" {
		return fmt.Errorf("system inverter is required")
	}
	if c.System.Module == "" {
		return fmt.Errorf("system module is required")
	}
	if c.System.Albedo == nil {
		albedo := DefaultAlbedo
		c.System.Albedo = &albedo
	}

	seen := make(map[string]bool, len(c.Arrays))
	for i := range c.Arrays {
		a := &c.Arrays[i]
		if a.ID == "" {
			return fmt.Errorf("array %d has no id", i)
		}
		if seen[a.ID] {
			return fmt.Errorf("array id %q is configured twice", a.ID)
		}
		seen[a.ID] = true
		if a.StringsPerInverter == 0 {
			a.StringsPerInverter = 1
		}
	}

	if c.Run.ClearSkyModel == "" {
		c.Run.ClearSkyModel = DefaultClearSkyModel
	}
	if c.Run.LinkeTurbidity == 0 {
		c.Run.LinkeTurbidity = DefaultLinkeTurbidity
	}
	if c.Run.WeatherUnits == "" {
		c.Run.WeatherUnits = DefaultWeatherUnits
	}
	if c.Run.Workers <= 0 {
		c.Run.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Run.Precision <= 0 {
		c.Run.Precision = DefaultPrecision
	}
	return nil
}
