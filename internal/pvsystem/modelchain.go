package pvsystem

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/chrissnell/pvforecast/internal/types"
	"github.com/chrissnell/pvforecast/pkg/irradiance"
	"github.com/chrissnell/pvforecast/pkg/solar"
)

// Input is the per-timestamp weather a model run consumes. TempAir and
// WindSpeed are optional; zero Series select the model defaults.
type Input struct {
	Scenario  types.Scenario
	Index     types.Index
	Positions solar.Positions
	GHI       types.Series
	DNI       types.Series
	DHI       types.Series
	TempAir   types.Series
	WindSpeed types.Series
}

// Validate checks that the mandatory series exist and share the index.
// Series are checked in the order ghi, dni, dhi, temp_air, wind_speed.
func (in Input) Validate() error {
	if len(in.Index) == 0 {
		return fmt.Errorf("%w: model input has an empty index", types.ErrInputValidation)
	}
	if in.Positions.Len() != len(in.Index) {
		return fmt.Errorf("%w: %d solar positions for %d timestamps", types.ErrInputValidation, in.Positions.Len(), len(in.Index))
	}
	required := []types.NamedSeries{{Name: "ghi", Series: in.GHI}, {Name: "dni", Series: in.DNI}, {Name: "dhi", Series: in.DHI}}
	for _, n := range required {
		if n.Series.IsZero() {
			return fmt.Errorf("%w: model input is missing %s", types.ErrInputValidation, n.Name)
		}
		if err := n.Series.AlignedTo(in.Index, n.Name); err != nil {
			return err
		}
	}
	optional := []types.NamedSeries{{Name: "temp_air", Series: in.TempAir}, {Name: "wind_speed", Series: in.WindSpeed}}
	for _, n := range optional {
		if n.Series.IsZero() {
			continue
		}
		if err := n.Series.AlignedTo(in.Index, n.Name); err != nil {
			return err
		}
	}
	return nil
}

// ModelChain runs the irradiance to AC power chain for one array: angle of
// incidence, Hay-Davies transposition, lossless AOI and spectral modifiers,
// SAPM cell temperature, CEC single-diode DC model and Sandia inverter.
type ModelChain struct {
	params SystemParams
	array  ArrayConfig
	module moduleParams
}

// NewModelChain binds the shared parameters to one array.
func NewModelChain(params SystemParams, array ArrayConfig) *ModelChain {
	m := params.Module
	return &ModelChain{
		params: params,
		array:  array,
		module: moduleParams{
			AlphaSc: m.AlphaSc,
			Adjust:  m.Adjust,
			ARef:    m.ARef,
			ILRef:   m.ILRef,
			IoRef:   m.IoRef,
			Rs:      m.Rs,
			RshRef:  m.RshRef,
		},
	}
}

// Array returns the array this chain simulates.
func (mc *ModelChain) Array() ArrayConfig { return mc.array }

// Run simulates every timestamp of in. A solver failure is returned as is;
// callers attach scenario and array context.
func (mc *ModelChain) Run(ctx context.Context, in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	res := NewResult(mc.array.ID, in.Scenario, in.Index)
	tilt, azimuth := mc.array.SurfaceTilt, mc.array.SurfaceAzimuth
	temp := mc.params.TempModel

	for i := range in.Index {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pos := in.Positions.Data[i]
		zenith := pos.ApparentZenith
		dniExtra := solar.ExtraRadiationAt(in.Index[i], solar.SolarConstant)

		res.AOI[i] = irradiance.AOI(tilt, azimuth, zenith, pos.Azimuth)
		poa := irradiance.TotalIrradiance(tilt, azimuth, zenith, pos.Azimuth,
			in.DNI.Values[i], in.GHI.Values[i], in.DHI.Values[i], dniExtra, mc.params.Albedo)
		res.TotalIrrad["poa_global"][i] = poa.Global
		res.TotalIrrad["poa_direct"][i] = poa.Direct
		res.TotalIrrad["poa_diffuse"][i] = poa.Diffuse
		res.TotalIrrad["poa_sky_diffuse"][i] = poa.SkyDiffuse
		res.TotalIrrad["poa_ground_diffuse"][i] = poa.GroundDiffuse

		// no_loss AOI and spectral modifiers
		eff := poa.Direct + poa.Diffuse
		res.EffectiveIrradiance[i] = eff

		tempAir := valueOr(in.TempAir, i, DefaultTempAir)
		wind := valueOr(in.WindSpeed, i, DefaultWindSpeed)
		tCell := sapmCellTemperature(poa.Global, tempAir, wind, temp)
		res.CellTemperature[i] = tCell

		diode := calcParamsCEC(math.Max(eff, 0), tCell, mc.module)
		res.DiodeParams["I_L"][i] = diode.IL
		res.DiodeParams["I_o"][i] = diode.IO
		res.DiodeParams["R_s"][i] = diode.RS
		res.DiodeParams["R_sh"][i] = diode.RSH
		res.DiodeParams["nNsVth"][i] = diode.NNsVth

		dc, err := singleDiode(diode)
		if err != nil {
			return nil, fmt.Errorf("single diode at %s: %w", in.Index[i].Format(time.RFC3339), err)
		}
		res.DC["i_sc"][i] = dc.ISC
		res.DC["v_oc"][i] = dc.VOC
		res.DC["i_mp"][i] = dc.IMP
		res.DC["v_mp"][i] = dc.VMP
		res.DC["p_mp"][i] = dc.PMP
		res.DC["i_x"][i] = dc.IX
		res.DC["i_xx"][i] = dc.IXX
	}

	mc.scaleStrings(res)

	for i := range res.AC {
		res.AC[i] = sandiaAC(mc.params.Inverter, res.DC["v_mp"][i], res.DC["p_mp"][i])
	}
	return res, nil
}

// scaleStrings converts module level DC values to array level: voltages
// scale with modules per string, currents with strings and power with both.
func (mc *ModelChain) scaleStrings(res *Result) {
	voltage := float64(mc.array.ModulesPerString)
	current := float64(mc.array.StringsPerInverter)
	for _, name := range []string{"v_oc", "v_mp"} {
		floats.Scale(voltage, res.DC[name])
	}
	for _, name := range []string{"i_sc", "i_mp", "i_x", "i_xx"} {
		floats.Scale(current, res.DC[name])
	}
	floats.Scale(voltage*current, res.DC["p_mp"])
}

// sapmCellTemperature returns the SAPM cell temperature in °C for plane of
// array irradiance poa (W/m²), air temperature (°C) and wind speed (m/s).
func sapmCellTemperature(poa, tempAir, windSpeed float64, m TemperatureModel) float64 {
	module := poa*math.Exp(m.A+m.B*windSpeed) + tempAir
	return module + poa/irradRef*m.DeltaT
}

func valueOr(s types.Series, i int, def float64) float64 {
	if s.IsZero() {
		return def
	}
	return s.Values[i]
}
