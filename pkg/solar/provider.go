package solar

import (
	"fmt"

	"github.com/chrissnell/pvforecast/internal/types"
)

// Geometry computes solar position and clear-sky irradiance for a location.
// Provider is the production implementation; tests substitute fakes.
type Geometry interface {
	Positions(loc types.Location, times types.Index) (Positions, error)
	ClearSkyFor(loc types.Location, pos Positions, model string) (ClearSky, error)
}

// Options tunes the clear-sky model and time scale.
type Options struct {
	// LinkeTurbidity used by the Ineichen-Perez model for every timestamp.
	// Zero selects DefaultLinkeTurbidity. There is no monthly climatological
	// lookup per location, so clear sky in very clean or hazy months differs
	// from a climatology-driven Ineichen run unless this is set per site.
	LinkeTurbidity float64
	// DeltaT is TT-UT1 in seconds. Zero selects DefaultDeltaT.
	DeltaT float64
	// PerezEnhancement applies the Perez airmass enhancement to clear-sky GHI.
	PerezEnhancement bool
}

// DefaultLinkeTurbidity is a mid-latitude annual average.
const DefaultLinkeTurbidity = 3.0

// Provider is a stateless solar geometry calculator.
type Provider struct {
	opts Options
}

var _ Geometry = (*Provider)(nil)

// NewProvider creates a Provider, filling defaults for unset options.
func NewProvider(opts Options) *Provider {
	if opts.LinkeTurbidity <= 0 {
		opts.LinkeTurbidity = DefaultLinkeTurbidity
	}
	if opts.DeltaT == 0 {
		opts.DeltaT = DefaultDeltaT
	}
	return &Provider{opts: opts}
}

// Positions computes the solar position for every timestamp. Times are
// converted to the location's timezone; an empty index yields empty output.
func (p *Provider) Positions(loc types.Location, times types.Index) (Positions, error) {
	if err := checkLocation(loc); err != nil {
		return Positions{}, err
	}
	if _, err := types.NewIndex(times); err != nil {
		return Positions{}, err
	}

	local := times.In(loc.TZ())
	out := Positions{
		Times: local,
		Data:  make([]Position, len(local)),
	}
	for i, t := range local {
		out.Data[i] = positionAt(t, loc.Latitude(), loc.Longitude(), p.opts.DeltaT)
	}
	return out, nil
}

// ClearSky computes positions and then clear-sky irradiance for times.
func (p *Provider) ClearSky(loc types.Location, times types.Index, model string) (ClearSky, error) {
	pos, err := p.Positions(loc, times)
	if err != nil {
		return ClearSky{}, err
	}
	return p.ClearSkyFor(loc, pos, model)
}

// ClearSkyFor computes clear-sky irradiance from previously computed positions.
// Irradiance is zero whenever the sun is at or below the horizon.
func (p *Provider) ClearSkyFor(loc types.Location, pos Positions, model string) (ClearSky, error) {
	if err := checkLocation(loc); err != nil {
		return ClearSky{}, err
	}
	if model == "" {
		model = ModelIneichen
	}

	n := pos.Len()
	cs := ClearSky{
		Times: pos.Times,
		GHI:   make([]float64, n),
		DNI:   make([]float64, n),
		DHI:   make([]float64, n),
	}

	switch model {
	case ModelIneichen:
		pressure := AltitudeToPressure(loc.Altitude())
		for i, d := range pos.Data {
			if d.Zenith >= 90 || d.ApparentZenith >= 90 {
				continue
			}
			am := AbsoluteAirmass(RelativeAirmass(d.ApparentZenith, KastenYoung1989), pressure)
			dniExtra := ExtraRadiationAt(pos.Times[i], SolarConstant)
			ghi, dni, dhi := ineichenPerez(d.ApparentZenith, am, p.opts.LinkeTurbidity, loc.Altitude(), dniExtra, p.opts.PerezEnhancement)
			cs.GHI[i], cs.DNI[i], cs.DHI[i] = clampNonNegative(ghi), clampNonNegative(dni), clampNonNegative(dhi)
		}
	case ModelSimplified:
		for i, d := range pos.Data {
			if d.Zenith >= 90 {
				continue
			}
			ghi, dni, dhi := simplifiedClearSky(pos.Times[i], loc.Latitude(), loc.Longitude(), loc.Altitude())
			cs.GHI[i], cs.DNI[i], cs.DHI[i] = clampNonNegative(ghi), clampNonNegative(dni), clampNonNegative(dhi)
		}
	default:
		return ClearSky{}, fmt.Errorf("%w: unknown clear-sky model %q", types.ErrInputValidation, model)
	}

	return cs, nil
}

func checkLocation(loc types.Location) error {
	if !loc.Valid() {
		return fmt.Errorf("%w: location was not initialised", types.ErrInputValidation)
	}
	return nil
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
