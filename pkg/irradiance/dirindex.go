package irradiance

import (
	"math"
	"time"
)

// Dirindex estimates DNI by scaling clear-sky DNI with the ratio of DIRINT
// applied to measured and to clear-sky GHI. With the sun at or below the
// horizon, or where the clear-sky DIRINT estimate is zero, the result is
// zero; negative results are clipped to zero.
func Dirindex(ghi, ghiClearSky, dniClearSky, zenith []float64, times []time.Time, pressure, dewPoint []float64, opts DirintOptions) ([]float64, error) {
	n := len(ghi)
	if err := checkLengths(n,
		namedLen{"ghi_clearsky", len(ghiClearSky)},
		namedLen{"dni_clearsky", len(dniClearSky)},
	); err != nil {
		return nil, err
	}

	dniDirint, err := Dirint(ghi, zenith, times, pressure, dewPoint, opts)
	if err != nil {
		return nil, err
	}
	dniDirintClearSky, err := Dirint(ghiClearSky, zenith, times, pressure, dewPoint, opts)
	if err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i := range out {
		switch {
		case zenith[i] >= 90:
			out[i] = 0
		case math.IsNaN(dniDirint[i]) || math.IsNaN(dniClearSky[i]):
			out[i] = nan
		case dniDirintClearSky[i] == 0 || math.IsNaN(dniDirintClearSky[i]):
			out[i] = 0
		default:
			out[i] = math.Max(dniClearSky[i]*dniDirint[i]/dniDirintClearSky[i], 0)
		}
	}
	return out, nil
}
