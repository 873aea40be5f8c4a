package irradiance

import (
	"math"
	"time"
)

var nan = math.NaN()

// DirintOptions configures Dirint. A nil Coefficients selects the bundled
// Perez table.
type DirintOptions struct {
	Coefficients *DirintCoefficients
	// DisableDeltaKtPrime ignores the stability index, as for irregular
	// or very coarse time steps.
	DisableDeltaKtPrime bool
}

// Dirint estimates DNI with the Perez DIRINT modification of DISC. pressure
// and dewPoint may be nil. A NaN dew point sample is treated as unknown
// precipitable water.
func Dirint(ghi, zenith []float64, times []time.Time, pressure, dewPoint []float64, opts DirintOptions) ([]float64, error) {
	n := len(ghi)
	lens := []namedLen{{"zenith", len(zenith)}, {"times", len(times)}}
	if pressure != nil {
		lens = append(lens, namedLen{"pressure", len(pressure)})
	}
	if dewPoint != nil {
		lens = append(lens, namedLen{"dew_point", len(dewPoint)})
	}
	if err := checkLengths(n, lens...); err != nil {
		return nil, err
	}

	coeffs := opts.Coefficients
	if coeffs == nil {
		var err error
		if coeffs, err = PerezDirintCoefficients(); err != nil {
			return nil, err
		}
	}

	disc, err := Disc(ghi, zenith, times, pressure)
	if err != nil {
		return nil, err
	}

	ktPrime := make([]float64, n)
	for i := range ktPrime {
		ktPrime[i] = ClearnessIndexZenithIndependent(disc.Kt[i], disc.Airmass[i], 1.0)
	}

	var deltaKt []float64
	if opts.DisableDeltaKtPrime {
		deltaKt = constant(n, -1)
	} else {
		deltaKt = deltaKtPrime(ktPrime)
	}

	out := make([]float64, n)
	for i := range out {
		w := -1.0
		if dewPoint != nil && !math.IsNaN(dewPoint[i]) {
			w = math.Exp(0.07*dewPoint[i] - 0.075)
		}
		coeff := coeffs.lookup(ktPrimeBin(ktPrime[i]), zenithBin(zenith[i]), deltaKtPrimeBin(deltaKt[i]), wBin(w))
		out[i] = disc.DNI[i] * coeff
	}
	return out, nil
}

// deltaKtPrime is the Perez stability index: the mean absolute difference
// of kt' to its neighbours. The first and last samples use their single
// neighbour; a NaN neighbour contributes nothing. A single sample carries no
// stability information and gets -1.
func deltaKtPrime(ktPrime []float64) []float64 {
	n := len(ktPrime)
	out := make([]float64, n)
	if n == 1 {
		out[0] = -1
		return out
	}
	for i := range ktPrime {
		prev, next := nan, nan
		if i > 0 {
			prev = ktPrime[i-1]
		}
		if i < n-1 {
			next = ktPrime[i+1]
		}
		if i == 0 {
			prev = next
		}
		if i == n-1 {
			next = prev
		}

		a := math.Abs(ktPrime[i] - next)
		b := math.Abs(ktPrime[i] - prev)
		switch {
		case math.IsNaN(a) && math.IsNaN(b):
			out[i] = nan
		case math.IsNaN(a):
			out[i] = 0.5 * b
		case math.IsNaN(b):
			out[i] = 0.5 * a
		default:
			out[i] = 0.5 * (a + b)
		}
	}
	return out
}

// Bin helpers return 1-based bin numbers, 0 when the value falls in no bin.

func ktPrimeBin(v float64) int {
	switch {
	case v >= 0 && v < 0.24:
		return 1
	case v >= 0.24 && v < 0.4:
		return 2
	case v >= 0.4 && v < 0.56:
		return 3
	case v >= 0.56 && v < 0.7:
		return 4
	case v >= 0.7 && v < 0.8:
		return 5
	case v >= 0.8 && v <= 1:
		return 6
	}
	return 0
}

func zenithBin(v float64) int {
	switch {
	case v >= 0 && v < 25:
		return 1
	case v >= 25 && v < 40:
		return 2
	case v >= 40 && v < 55:
		return 3
	case v >= 55 && v < 70:
		return 4
	case v >= 70 && v < 80:
		return 5
	case v >= 80:
		return 6
	}
	return 0
}

func wBin(v float64) int {
	switch {
	case v == -1:
		return 5
	case v >= 0 && v < 1:
		return 1
	case v >= 1 && v < 2:
		return 2
	case v >= 2 && v < 3:
		return 3
	case v >= 3:
		return 4
	}
	return 0
}

func deltaKtPrimeBin(v float64) int {
	switch {
	case v == -1:
		return 7
	case v >= 0 && v < 0.015:
		return 1
	case v >= 0.015 && v < 0.035:
		return 2
	case v >= 0.035 && v < 0.07:
		return 3
	case v >= 0.07 && v < 0.15:
		return 4
	case v >= 0.15 && v < 0.3:
		return 5
	case v >= 0.3 && v <= 1:
		return 6
	}
	return 0
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
