// Package decompose splits a forecast GHI series into direct normal and
// diffuse horizontal components under the clearsky, disc and dirindex
// assumptions.
package decompose

import (
	"fmt"
	"math"

	"github.com/chrissnell/pvforecast/internal/log"
	"github.com/chrissnell/pvforecast/internal/types"
	"github.com/chrissnell/pvforecast/pkg/irradiance"
	"github.com/chrissnell/pvforecast/pkg/solar"
)

// Components is the DNI/DHI pair produced for one scenario.
type Components struct {
	Scenario types.Scenario
	DNI      types.Series
	DHI      types.Series
}

// Options configures the decomposer.
type Options struct {
	// ClearSkyModel is passed to the geometry provider, "ineichen" if empty.
	ClearSkyModel string
	// Dirint tunes the DIRINT stage of DIRINDEX.
	Dirint irradiance.DirintOptions
}

// Decomposer caches solar positions and clear-sky irradiance for one time
// index and derives DNI/DHI from GHI. It is not safe for concurrent Prepare
// calls; once prepared, the getters and decomposition methods only read.
type Decomposer struct {
	geometry solar.Geometry
	location types.Location
	opts     Options

	prepared  bool
	index     types.Index
	positions solar.Positions
	clearSky  solar.ClearSky
	zenith    []float64
}

// New returns a Decomposer for loc. Prepare must be called before use.
func New(geometry solar.Geometry, loc types.Location, opts Options) *Decomposer {
	if opts.ClearSkyModel == "" {
		opts.ClearSkyModel = solar.ModelIneichen
	}
	return &Decomposer{
		geometry: geometry,
		location: loc,
		opts:     opts,
	}
}

// Prepare computes solar positions and clear-sky irradiance for times and
// caches them. Calling it again replaces the cached session.
func (d *Decomposer) Prepare(times types.Index) error {
	if len(times) == 0 {
		return fmt.Errorf("%w: cannot prepare an empty time index", types.ErrInputValidation)
	}

	pos, err := d.geometry.Positions(d.location, times)
	if err != nil {
		return fmt.Errorf("error computing solar positions: %w", err)
	}
	cs, err := d.geometry.ClearSkyFor(d.location, pos, d.opts.ClearSkyModel)
	if err != nil {
		return fmt.Errorf("error computing clear-sky irradiance: %w", err)
	}
	if pos.Len() != len(times) || cs.Len() != len(times) {
		return fmt.Errorf("%w: geometry returned %d positions and %d clear-sky samples for %d timestamps",
			types.ErrInputValidation, pos.Len(), cs.Len(), len(times))
	}

	d.index = times
	d.positions = pos
	d.clearSky = cs
	d.zenith = pos.Zenith()
	d.prepared = true

	log.Debugw("prepared solar geometry", "samples", len(times), "model", d.opts.ClearSkyModel,
		"location", d.location.String())
	return nil
}

// Index returns the prepared time index.
func (d *Decomposer) Index() (types.Index, error) {
	if err := d.checkPrepared("Index"); err != nil {
		return nil, err
	}
	return d.index, nil
}

// Positions returns the cached solar positions.
func (d *Decomposer) Positions() (solar.Positions, error) {
	if err := d.checkPrepared("Positions"); err != nil {
		return solar.Positions{}, err
	}
	return d.positions, nil
}

// ClearSkyIrradiance returns the cached clear-sky GHI, DNI and DHI.
func (d *Decomposer) ClearSkyIrradiance() (solar.ClearSky, error) {
	if err := d.checkPrepared("ClearSkyIrradiance"); err != nil {
		return solar.ClearSky{}, err
	}
	return d.clearSky, nil
}

// Clearsky returns the clear-sky DNI and DHI unchanged.
func (d *Decomposer) Clearsky() (Components, error) {
	if err := d.checkPrepared("Clearsky"); err != nil {
		return Components{}, err
	}
	return Components{
		Scenario: types.ScenarioClearSky,
		DNI:      d.series(d.clearSky.DNI),
		DHI:      d.series(d.clearSky.DHI),
	}, nil
}

// DNIDisc estimates DNI from ghi with DISC. pressure is optional; a zero
// Series selects standard pressure.
func (d *Decomposer) DNIDisc(ghi, pressure types.Series) (types.Series, error) {
	if err := d.checkPrepared("DNIDisc"); err != nil {
		return types.Series{}, err
	}
	if err := d.checkInputs([]types.NamedSeries{{Name: "ghi", Series: ghi}}, []types.NamedSeries{{Name: "pressure", Series: pressure}}); err != nil {
		return types.Series{}, err
	}

	res, err := irradiance.Disc(ghi.Values, d.zenith, d.index, optional(pressure))
	if err != nil {
		return types.Series{}, fmt.Errorf("%w: %v", types.ErrInputValidation, err)
	}
	return d.series(res.DNI), nil
}

// DHIErbs estimates DHI from ghi with the Erbs diffuse fraction.
func (d *Decomposer) DHIErbs(ghi types.Series) (types.Series, error) {
	if err := d.checkPrepared("DHIErbs"); err != nil {
		return types.Series{}, err
	}
	if err := d.checkInputs([]types.NamedSeries{{Name: "ghi", Series: ghi}}, nil); err != nil {
		return types.Series{}, err
	}

	res, err := irradiance.Erbs(ghi.Values, d.zenith, d.index)
	if err != nil {
		return types.Series{}, fmt.Errorf("%w: %v", types.ErrInputValidation, err)
	}
	return d.series(res.DHI), nil
}

// DNIDirindex estimates DNI with DIRINDEX against the cached clear sky.
// pressure and dewPoint are optional.
func (d *Decomposer) DNIDirindex(ghi, pressure, dewPoint types.Series) (types.Series, error) {
	if err := d.checkPrepared("DNIDirindex"); err != nil {
		return types.Series{}, err
	}
	if err := d.checkInputs([]types.NamedSeries{{Name: "ghi", Series: ghi}},
		[]types.NamedSeries{{Name: "pressure", Series: pressure}, {Name: "dew_point", Series: dewPoint}}); err != nil {
		return types.Series{}, err
	}

	dni, err := irradiance.Dirindex(ghi.Values, d.clearSky.GHI, d.clearSky.DNI, d.zenith, d.index,
		optional(pressure), optional(dewPoint), d.opts.Dirint)
	if err != nil {
		return types.Series{}, fmt.Errorf("%w: %v", types.ErrInputValidation, err)
	}
	return d.series(dni), nil
}

// Decompose produces the components of one scenario from the weather table.
func (d *Decomposer) Decompose(scenario types.Scenario, weather *types.WeatherTable) (Components, error) {
	if err := d.checkPrepared("Decompose"); err != nil {
		return Components{}, err
	}
	if scenario == types.ScenarioClearSky {
		return d.Clearsky()
	}
	if weather == nil || weather.GHI.IsZero() {
		return Components{}, fmt.Errorf("%w: scenario %s needs a ghi series", types.ErrInputValidation, scenario)
	}

	dhi, err := d.DHIErbs(weather.GHI)
	if err != nil {
		return Components{}, err
	}

	var dni types.Series
	switch scenario {
	case types.ScenarioDisc:
		dni, err = d.DNIDisc(weather.GHI, weather.Pressure)
	case types.ScenarioDirindex:
		dni, err = d.DNIDirindex(weather.GHI, weather.Pressure, weather.DewPoint)
		if err == nil {
			dhi = d.residualDHI(weather.GHI, dni, dhi)
		}
	default:
		return Components{}, fmt.Errorf("%w: unknown scenario %q", types.ErrInputValidation, scenario)
	}
	if err != nil {
		return Components{}, err
	}

	return Components{Scenario: scenario, DNI: dni, DHI: dhi}, nil
}

// DecomposeAll runs Decompose for every scenario in the fixed order.
func (d *Decomposer) DecomposeAll(weather *types.WeatherTable) ([]Components, error) {
	out := make([]Components, 0, len(types.Scenarios))
	for _, s := range types.Scenarios {
		c, err := d.Decompose(s, weather)
		if err != nil {
			return nil, fmt.Errorf("error decomposing scenario %s: %w", s, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// residualDHI fills daytime samples where ERBS produced no value with the
// closure residual ghi - dni·cos(zenith).
func (d *Decomposer) residualDHI(ghi, dni, dhi types.Series) types.Series {
	out := make([]float64, len(dhi.Values))
	copy(out, dhi.Values)
	for i, v := range out {
		if !math.IsNaN(v) || d.zenith[i] >= 90 {
			continue
		}
		g, n := ghi.Values[i], dni.Values[i]
		if math.IsNaN(g) || math.IsNaN(n) {
			continue
		}
		out[i] = math.Max(g-n*math.Cos(d.zenith[i]*math.Pi/180), 0)
	}
	return d.series(out)
}

func (d *Decomposer) checkPrepared(op string) error {
	if !d.prepared {
		return fmt.Errorf("%w: %s called before Prepare", types.ErrPrecondition, op)
	}
	return nil
}

// checkInputs validates that required series are present and that every
// present series shares the prepared index. The first failure in argument
// order is reported.
func (d *Decomposer) checkInputs(required, optionalSeries []types.NamedSeries) error {
	for _, n := range required {
		if n.Series.IsZero() {
			return fmt.Errorf("%w: missing %s series", types.ErrInputValidation, n.Name)
		}
		if err := n.Series.AlignedTo(d.index, n.Name); err != nil {
			return err
		}
	}
	for _, n := range optionalSeries {
		if n.Series.IsZero() {
			continue
		}
		if err := n.Series.AlignedTo(d.index, n.Name); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decomposer) series(values []float64) types.Series {
	out := make([]float64, len(values))
	copy(out, values)
	return types.Series{Index: d.index, Values: out}
}

func optional(s types.Series) []float64 {
	if s.IsZero() {
		return nil
	}
	return s.Values
}
