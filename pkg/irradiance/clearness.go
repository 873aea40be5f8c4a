package irradiance

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/pvforecast/pkg/solar"
)

// ErrLengthMismatch is returned when input slices differ in length.
var ErrLengthMismatch = errors.New("input length mismatch")

const (
	defaultMinCosZenith = 0.065
	defaultMaxZenith    = 87.0
	defaultMaxAirmass   = 12.0
)

// ClearnessIndex returns the ratio of GHI to extraterrestrial horizontal
// irradiance, clipped to [0, maxClearnessIndex].
func ClearnessIndex(ghi, zenith, extraRadiation, minCosZenith, maxClearnessIndex float64) float64 {
	cosZ := math.Max(math.Cos(zenith*math.Pi/180), minCosZenith)
	kt := ghi / (extraRadiation * cosZ)
	if math.IsNaN(kt) {
		return kt
	}
	return math.Min(math.Max(kt, 0), maxClearnessIndex)
}

// ClearnessIndexZenithIndependent removes the zenith dependence of kt
// following Perez et al. (1990).
func ClearnessIndexZenithIndependent(kt, airmass, maxClearnessIndex float64) float64 {
	if math.IsNaN(kt) || math.IsNaN(airmass) {
		return math.NaN()
	}
	airmass = math.Max(airmass, 0)
	ktPrime := kt / (1.031*math.Exp(-1.4/(0.9+9.4/airmass)) + 0.1)
	return math.Min(math.Max(ktPrime, 0), maxClearnessIndex)
}

type namedLen struct {
	name string
	n    int
}

// checkLengths reports the first entry, in argument order, whose length
// differs from n.
func checkLengths(n int, named ...namedLen) error {
	for _, l := range named {
		if l.n != n {
			return fmt.Errorf("%w: %s has %d samples, expected %d", ErrLengthMismatch, l.name, l.n, n)
		}
	}
	return nil
}

func pressureAt(pressure []float64, i int) float64 {
	if pressure == nil || math.IsNaN(pressure[i]) {
		return solar.StandardPressure
	}
	return pressure[i]
}

func dayOfYear(t time.Time) int {
	return t.UTC().YearDay()
}
