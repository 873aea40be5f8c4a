package irradiance

import (
	"math"
	"time"

	"github.com/chrissnell/pvforecast/pkg/solar"
)

// discSolarConstant is the solar constant used by the DISC model.
const discSolarConstant = 1370.0

// DiscResult holds DISC output per sample.
type DiscResult struct {
	DNI     []float64
	Kt      []float64
	Airmass []float64
}

// Disc estimates DNI from GHI with the Maxwell DISC model. pressure may be
// nil, in which case standard sea-level pressure is used; NaN entries fall
// back to standard pressure as well. Samples with a zenith above 87° or a
// negative estimate get DNI 0.
func Disc(ghi, zenith []float64, times []time.Time, pressure []float64) (DiscResult, error) {
	n := len(ghi)
	lens := []namedLen{{"zenith", len(zenith)}, {"times", len(times)}}
	if pressure != nil {
		lens = append(lens, namedLen{"pressure", len(pressure)})
	}
	if err := checkLengths(n, lens...); err != nil {
		return DiscResult{}, err
	}

	res := DiscResult{
		DNI:     make([]float64, n),
		Kt:      make([]float64, n),
		Airmass: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		res.DNI[i], res.Kt[i], res.Airmass[i] = discSample(ghi[i], zenith[i], times[i], pressureAt(pressure, i))
	}
	return res, nil
}

func discSample(ghi, zenith float64, t time.Time, pressure float64) (dni, kt, am float64) {
	i0 := solar.ExtraRadiation(dayOfYear(t), discSolarConstant)
	kt = ClearnessIndex(ghi, zenith, i0, defaultMinCosZenith, 1.0)

	am = solar.RelativeAirmass(zenith, solar.Kasten1966)
	am = solar.AbsoluteAirmass(am, pressure)
	am = math.Min(am, defaultMaxAirmass)

	kn := discKn(kt, am)
	dni = kn * i0

	if zenith > defaultMaxZenith || ghi < 0 || dni < 0 {
		dni = 0
	}
	return dni, kt, am
}

// discKn returns the direct beam transmittance Kn for clearness index kt and
// absolute airmass am.
func discKn(kt, am float64) float64 {
	kt2 := kt * kt
	kt3 := kt2 * kt

	var a, b, c float64
	if kt <= 0.6 {
		a = 0.512 - 1.56*kt + 2.286*kt2 - 2.222*kt3
		b = 0.37 + 0.962*kt
		c = -0.28 + 0.932*kt - 2.048*kt2
	} else {
		a = -5.743 + 21.77*kt - 27.49*kt2 + 11.56*kt3
		b = 41.4 - 118.5*kt + 66.05*kt2 + 31.9*kt3
		c = -47.01 + 184.2*kt - 222.0*kt2 + 73.81*kt3
	}

	deltaKn := a + b*math.Exp(c*am)
	knc := 0.866 - 0.122*am + 0.0121*am*am - 0.000653*am*am*am + 1.4e-05*am*am*am*am
	return knc - deltaKn
}
