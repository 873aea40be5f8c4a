// Package app wires configuration, weather input, irradiance decomposition,
// PV simulation and CSV output into one forecast run.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chrissnell/pvforecast/internal/aggregate"
	"github.com/chrissnell/pvforecast/internal/decompose"
	"github.com/chrissnell/pvforecast/internal/devices"
	"github.com/chrissnell/pvforecast/internal/log"
	"github.com/chrissnell/pvforecast/internal/output"
	"github.com/chrissnell/pvforecast/internal/pvsystem"
	"github.com/chrissnell/pvforecast/internal/scenario"
	"github.com/chrissnell/pvforecast/internal/types"
	"github.com/chrissnell/pvforecast/internal/weather"
	"github.com/chrissnell/pvforecast/pkg/config"
	"github.com/chrissnell/pvforecast/pkg/irradiance"
	"github.com/chrissnell/pvforecast/pkg/solar"
)

// App represents one configured forecast
type App struct {
	config   *config.ConfigData
	geometry solar.Geometry
}

// New creates a new application instance. The configuration must already
// have passed Validate.
func New(cfg *config.ConfigData) *App {
	return &App{
		config: cfg,
		geometry: solar.NewProvider(solar.Options{
			LinkeTurbidity:   cfg.Run.LinkeTurbidity,
			DeltaT:           cfg.Run.DeltaT,
			PerezEnhancement: cfg.Run.PerezEnhancement,
		}),
	}
}

// Run executes the forecast and writes the output table. Nothing is
// written unless every stage succeeds.
func (a *App) Run(ctx context.Context) (*Report, error) {
	cfg := a.config
	if cfg.Run.Weather == "" {
		return nil, fmt.Errorf("%w: no weather input configured", types.ErrInputValidation)
	}
	if cfg.Run.Output == "" {
		return nil, fmt.Errorf("%w: no output path configured", types.ErrInputValidation)
	}

	runID := uuid.New().String()
	log.WithFields("run_id", runID)
	start := time.Now()

	loc, err := types.NewLocation(cfg.Site.Latitude, cfg.Site.Longitude, cfg.Site.Altitude, cfg.Site.Timezone)
	if err != nil {
		return nil, err
	}
	log.Infow("starting forecast run", "site", cfg.Site.Name, "location", loc.String(), "arrays", len(cfg.Arrays))

	units, err := weather.ParseUnits(cfg.Run.WeatherUnits)
	if err != nil {
		return nil, err
	}
	table, err := weather.LoadFile(cfg.Run.Weather, weather.Options{Units: units, Location: loc.TZ()})
	if err != nil {
		return nil, err
	}
	log.Infow("loaded weather", weather.Summary(table)...)

	reg, err := a.buildRegistry(loc)
	if err != nil {
		return nil, err
	}

	dirint := irradiance.DirintOptions{DisableDeltaKtPrime: cfg.Run.DisableDeltaKtPrime}
	if cfg.System.DirintCoefficients != "" {
		dirint.Coefficients, err = irradiance.LoadDirintCoefficientsFile(cfg.System.DirintCoefficients)
		if err != nil {
			return nil, err
		}
		log.Infow("loaded DIRINT coefficients", "path", cfg.System.DirintCoefficients)
	}

	dec := decompose.New(a.geometry, loc, decompose.Options{
		ClearSkyModel: cfg.Run.ClearSkyModel,
		Dirint:        dirint,
	})
	if err := dec.Prepare(table.Index); err != nil {
		return nil, fmt.Errorf("error preparing solar geometry: %w", err)
	}
	logDaylight(loc, table.Index)

	outcomes, err := scenario.NewRunner(reg, cfg.Run.Workers).RunAll(ctx, dec, table)
	if err != nil {
		return nil, err
	}

	clearSky, err := dec.ClearSkyIrradiance()
	if err != nil {
		return nil, err
	}
	positions, err := dec.Positions()
	if err != nil {
		return nil, err
	}
	data := make([]aggregate.ScenarioData, len(outcomes))
	for i, o := range outcomes {
		data[i] = aggregate.ScenarioData{
			Scenario: o.Scenario,
			DNI:      o.Components.DNI,
			DHI:      o.Components.DHI,
			Results:  o.Results,
		}
	}
	merged, err := aggregate.Merge(table, clearSky, positions, data)
	if err != nil {
		return nil, err
	}

	report := summarize(merged, loc.TZ())
	report.RunID = runID
	report.Output = cfg.Run.Output

	if err := output.WriteCSVFile(cfg.Run.Output, merged, output.Options{
		Precision: cfg.Run.Precision,
		Location:  loc.TZ(),
	}); err != nil {
		return nil, err
	}

	for _, s := range report.Scenarios {
		log.Infow("scenario summary", "scenario", s.Scenario, "energy_kwh", s.EnergyKWh, "peak_w", s.PeakW,
			"days", s.Days, "daily_mean_kwh", s.DailyMeanKWh, "daily_stddev_kwh", s.DailyStdDevKWh)
	}
	log.Infow("forecast written", "path", cfg.Run.Output, "rows", report.Rows, "columns", report.Columns,
		"elapsed", time.Since(start))
	return report, nil
}

// buildRegistry resolves device profiles, loading any configured SAM
// libraries on top of the built-in catalog, and registers every array.
func (a *App) buildRegistry(loc types.Location) (*pvsystem.Registry, error) {
	cfg := a.config
	catalog, err := devices.NewCatalog()
	if err != nil {
		return nil, err
	}
	if cfg.System.ModuleLibrary != "" {
		n, err := catalog.LoadModulesFile(cfg.System.ModuleLibrary)
		if err != nil {
			return nil, err
		}
		log.Infow("loaded module library", "path", cfg.System.ModuleLibrary, "modules", n)
	}
	if cfg.System.InverterLibrary != "" {
		n, err := catalog.LoadInvertersFile(cfg.System.InverterLibrary)
		if err != nil {
			return nil, err
		}
		log.Infow("loaded inverter library", "path", cfg.System.InverterLibrary, "inverters", n)
	}

	reg, err := pvsystem.NewRegistry(catalog, cfg.System.Inverter, cfg.System.Module, cfg.System.AlbedoValue(), loc)
	if err != nil {
		return nil, err
	}
	if cfg.System.TemperatureModel != "" {
		if err := reg.SetTemperatureModel(cfg.System.TemperatureModel); err != nil {
			return nil, err
		}
	}
	for _, arr := range cfg.Arrays {
		if err := reg.AddArray(arr.ID, arr.SurfaceTilt, arr.SurfaceAzimuth, arr.ModulesPerString, arr.StringsPerInverter); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// logDaylight reports sunrise and sunset for each day the index covers.
func logDaylight(loc types.Location, idx types.Index) {
	if len(idx) == 0 {
		return
	}
	tz := loc.TZ()
	last := ""
	for _, t := range idx {
		t = t.In(tz)
		day := t.Format(time.DateOnly)
		if day == last {
			continue
		}
		last = day
		rise, set, ok := solar.DaylightWindow(loc.Latitude(), loc.Longitude(), t)
		if !ok {
			log.Debugw("no sunrise or sunset", "day", day)
			continue
		}
		log.Debugw("daylight window", "day", day, "sunrise", rise.Format(time.Kitchen), "sunset", set.Format(time.Kitchen))
	}
}
