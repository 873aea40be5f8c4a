package irradiance

import (
	"math"
	"time"

	"github.com/chrissnell/pvforecast/pkg/solar"
)

// ErbsResult holds the ERBS decomposition per sample.
type ErbsResult struct {
	DNI []float64
	DHI []float64
	Kt  []float64
}

// Erbs splits GHI into DNI and DHI using the Erbs diffuse fraction
// correlation. Above 87° zenith, DNI is 0 and DHI equals GHI.
func Erbs(ghi, zenith []float64, times []time.Time) (ErbsResult, error) {
	n := len(ghi)
	if err := checkLengths(n, namedLen{"zenith", len(zenith)}, namedLen{"times", len(times)}); err != nil {
		return ErbsResult{}, err
	}

	res := ErbsResult{
		DNI: make([]float64, n),
		DHI: make([]float64, n),
		Kt:  make([]float64, n),
	}
	for i := 0; i < n; i++ {
		dniExtra := solar.ExtraRadiation(dayOfYear(times[i]), solar.SolarConstant)
		kt := ClearnessIndex(ghi[i], zenith[i], dniExtra, defaultMinCosZenith, 1.0)
		dhi := erbsDiffuseFraction(kt) * ghi[i]
		dni := (ghi[i] - dhi) / math.Cos(zenith[i]*math.Pi/180)

		if zenith[i] > defaultMaxZenith || ghi[i] < 0 || dni < 0 {
			dni = 0
			dhi = ghi[i]
		}
		res.DNI[i], res.DHI[i], res.Kt[i] = dni, dhi, kt
	}
	return res, nil
}

func erbsDiffuseFraction(kt float64) float64 {
	switch {
	case math.IsNaN(kt):
		return kt
	case kt <= 0.22:
		return 1 - 0.09*kt
	case kt <= 0.8:
		return 0.9511 - 0.1604*kt + 4.388*kt*kt - 16.638*math.Pow(kt, 3) + 12.336*math.Pow(kt, 4)
	default:
		return 0.165
	}
}
