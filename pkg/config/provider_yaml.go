package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseYAML(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", y.filename, err)
	}

	y.config = config
	return config, nil
}

// ParseYAML decodes and validates a YAML document.
func ParseYAML(data []byte) (*ConfigData, error) {
	var yamlConfig ConfigYAML
	if err := yaml.UnmarshalStrict(data, &yamlConfig); err != nil {
		return nil, err
	}

	config := &ConfigData{
		Site: SiteData{
			Name:      yamlConfig.Site.Name,
			Latitude:  yamlConfig.Site.Latitude,
			Longitude: yamlConfig.Site.Longitude,
			Altitude:  yamlConfig.Site.Altitude,
			Timezone:  yamlConfig.Site.Timezone,
		},
		System: SystemData{
			Inverter:           yamlConfig.System.Inverter,
			Module:             yamlConfig.System.Module,
			Albedo:             yamlConfig.System.Albedo,
			TemperatureModel:   yamlConfig.System.TemperatureModel,
			ModuleLibrary:      yamlConfig.System.ModuleLibrary,
			InverterLibrary:    yamlConfig.System.InverterLibrary,
			DirintCoefficients: yamlConfig.System.DirintCoefficients,
		},
		Arrays: make([]ArrayData, len(yamlConfig.Arrays)),
		Run: RunData{
			Weather:             yamlConfig.Run.Weather,
			WeatherUnits:        yamlConfig.Run.WeatherUnits,
			Output:              yamlConfig.Run.Output,
			ClearSkyModel:       yamlConfig.Run.ClearSkyModel,
			LinkeTurbidity:      yamlConfig.Run.LinkeTurbidity,
			DeltaT:              yamlConfig.Run.DeltaT,
			PerezEnhancement:    yamlConfig.Run.PerezEnhancement,
			DisableDeltaKtPrime: yamlConfig.Run.DisableDeltaKtPrime,
			Workers:             yamlConfig.Run.Workers,
			Precision:           yamlConfig.Run.Precision,
		},
	}

	for i, array := range yamlConfig.Arrays {
		config.Arrays[i] = ArrayData{
			ID:                 array.ID,
			SurfaceTilt:        array.SurfaceTilt,
			SurfaceAzimuth:     array.SurfaceAzimuth,
			ModulesPerString:   array.ModulesPerString,
			StringsPerInverter: array.StringsPerInverter,
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags for parsing the file format
type ConfigYAML struct {
	Site   SiteYAML    `yaml:"site"`
	System SystemYAML  `yaml:"system"`
	Arrays []ArrayYAML `yaml:"arrays"`
	Run    RunYAML     `yaml:"run,omitempty"`
}

type SiteYAML struct {
	Name      string  `yaml:"name,omitempty"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Altitude  float64 `yaml:"altitude,omitempty"`
	Timezone  string  `yaml:"timezone,omitempty"`
}

type SystemYAML struct {
	Inverter           string   `yaml:"inverter"`
	Module             string   `yaml:"module"`
	Albedo             *float64 `yaml:"albedo,omitempty"`
	TemperatureModel   string   `yaml:"temperature-model,omitempty"`
	ModuleLibrary      string   `yaml:"module-library,omitempty"`
	InverterLibrary    string   `yaml:"inverter-library,omitempty"`
	DirintCoefficients string   `yaml:"dirint-coefficients,omitempty"`
}

type ArrayYAML struct {
	ID                 string  `yaml:"id"`
	SurfaceTilt        float64 `yaml:"surface-tilt"`
	SurfaceAzimuth     float64 `yaml:"surface-azimuth"`
	ModulesPerString   int     `yaml:"modules-per-string"`
	StringsPerInverter int     `yaml:"strings-per-inverter,omitempty"`
}

type RunYAML struct {
	Weather             string  `yaml:"weather,omitempty"`
	WeatherUnits        string  `yaml:"weather-units,omitempty"`
	Output              string  `yaml:"output,omitempty"`
	ClearSkyModel       string  `yaml:"clear-sky-model,omitempty"`
	LinkeTurbidity      float64 `yaml:"linke-turbidity,omitempty"`
	DeltaT              float64 `yaml:"delta-t,omitempty"`
	PerezEnhancement    bool    `yaml:"perez-enhancement,omitempty"`
	DisableDeltaKtPrime bool    `yaml:"disable-delta-kt-prime,omitempty"`
	Workers             int     `yaml:"workers,omitempty"`
	Precision           int     `yaml:"precision,omitempty"`
}
