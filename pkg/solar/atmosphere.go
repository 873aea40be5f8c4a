package solar

import (
	"math"
	"time"
)

const (
	// SolarConstant is the default solar constant in W/m² used for extraterrestrial irradiance.
	SolarConstant = 1366.1
	// StandardPressure is sea-level standard pressure in Pa.
	StandardPressure = 101325.0
)

// AirmassModel selects a relative airmass formula.
type AirmassModel int

const (
	// KastenYoung1989 is used by the Ineichen-Perez clear-sky model.
	KastenYoung1989 AirmassModel = iota
	// Kasten1966 is used by DISC.
	Kasten1966
)

// ExtraRadiation returns the extraterrestrial normal irradiance in W/m² for a
// day of year using Spencer's Fourier series for the Earth-Sun distance.
func ExtraRadiation(dayOfYear int, solarConstant float64) float64 {
	b := 2 * math.Pi * float64(dayOfYear-1) / 365.0
	rover := 1.00011 + 0.034221*math.Cos(b) + 0.00128*math.Sin(b) +
		0.000719*math.Cos(2*b) + 0.000077*math.Sin(2*b)
	return solarConstant * rover
}

// ExtraRadiationAt is ExtraRadiation for the day of year of t in UTC.
func ExtraRadiationAt(t time.Time, solarConstant float64) float64 {
	return ExtraRadiation(t.UTC().YearDay(), solarConstant)
}

// RelativeAirmass returns the relative optical airmass for a zenith angle in
// degrees. Zenith angles above 90° yield NaN.
func RelativeAirmass(zenith float64, model AirmassModel) float64 {
	if math.IsNaN(zenith) || zenith > 90 {
		return math.NaN()
	}
	cosZ := math.Cos(degToRad(zenith))
	switch model {
	case Kasten1966:
		return 1.0 / (cosZ + 0.15*math.Pow(93.885-zenith, -1.253))
	default:
		return 1.0 / (cosZ + 0.50572*math.Pow(96.07995-zenith, -1.6364))
	}
}

// AbsoluteAirmass scales a relative airmass to the given station pressure in Pa.
func AbsoluteAirmass(relative, pressure float64) float64 {
	return relative * pressure / StandardPressure
}

// AltitudeToPressure returns the standard-atmosphere pressure in Pa at an altitude in meters.
func AltitudeToPressure(altitude float64) float64 {
	return 100 * math.Pow((44331.514-altitude)/11880.516, 1/0.1902632)
}
