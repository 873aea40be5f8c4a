package solar

import (
	"math"
	"time"
)

// Clear-sky model names accepted by Provider.ClearSky.
const (
	ModelIneichen   = "ineichen"
	ModelSimplified = "simplified"
)

// ClearSky holds clear-sky irradiance in W/m² aligned to Times.
type ClearSky struct {
	Times []time.Time
	GHI   []float64
	DNI   []float64
	DHI   []float64
}

// Len returns the number of samples.
func (c ClearSky) Len() int { return len(c.GHI) }

// ineichenPerez evaluates the Ineichen-Perez clear-sky model for one sample.
// apparentZenith is in degrees, airmassAbsolute is pressure corrected,
// linkeTurbidity is dimensionless, altitude in meters and dniExtra in W/m².
// perez applies the Perez airmass enhancement to GHI.
func ineichenPerez(apparentZenith, airmassAbsolute, linkeTurbidity, altitude, dniExtra float64, perez bool) (ghi, dni, dhi float64) {
	cosZenith := math.Max(math.Cos(degToRad(apparentZenith)), 0)
	if cosZenith == 0 || math.IsNaN(airmassAbsolute) {
		return 0, 0, 0
	}

	tl := linkeTurbidity
	fh1 := math.Exp(-altitude / 8000.0)
	fh2 := math.Exp(-altitude / 1250.0)
	cg1 := 5.09e-05*altitude + 0.868
	cg2 := 3.92e-05*altitude + 0.0387

	ghi = math.Exp(-cg2 * airmassAbsolute * (fh1 + fh2*(tl-1)))
	if perez {
		ghi *= math.Exp(0.01 * math.Pow(airmassAbsolute, 1.8))
	}
	ghi = cg1 * dniExtra * cosZenith * math.Max(ghi, 0)

	b := 0.664 + 0.163/fh1
	bnci := dniExtra * math.Max(b*math.Exp(-0.09*airmassAbsolute*(tl-1)), 0)

	bnci2 := (1 - (0.1-0.2*math.Exp(-tl))/(0.1+0.882/fh1)) / cosZenith
	bnci2 = ghi * math.Min(math.Max(bnci2, 0), 1e20)

	dni = math.Min(bnci, bnci2)
	dhi = ghi - dni*cosZenith
	return ghi, dni, dhi
}

// simplifiedClearSky is the coarse Ineichen-Perez variant used for station
// "potential solar" readings: declination from a sinusoid, fixed Linke
// turbidity of 2 and a seasonal diffuse fraction.
func simplifiedClearSky(t time.Time, latitude, longitude, altitude float64) (ghi, dni, dhi float64) {
	t = t.UTC()
	// Day of the year (1-365 or 366) for seasonal solar position
	N := t.YearDay()

	// Solar declination, approximated with a sinusoidal variation peaking at solstices
	delta := 23.45 * math.Sin(degToRad(360.0/365.0*float64(N-81)))

	// Hour angle from true solar time
	utcMin := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60.0
	tst := utcMin + 4*longitude + equationOfTime(t)
	H := (tst / 4) - 180

	latRad := degToRad(latitude)
	deltaRad := degToRad(delta)
	cosThetaZ := math.Sin(latRad)*math.Sin(deltaRad) + math.Cos(latRad)*math.Cos(deltaRad)*math.Cos(degToRad(H))
	thetaZ := radToDeg(math.Acos(cosThetaZ))
	if thetaZ >= 90.0 {
		return 0, 0, 0
	}

	// Extraterrestrial radiation adjusted for Earth-Sun distance
	G0 := 1361.0 * (1 + 0.033*math.Cos(degToRad(360.0*(float64(N)-3)/365.0)))

	TL := 2.0
	AM := RelativeAirmass(thetaZ, KastenYoung1989)
	c := 0.7
	a := 0.027
	dni = G0 * c * math.Exp(-a*AM*TL*math.Exp(-altitude/8000.0))
	fh := 0.1 + 0.05*math.Sin(math.Pi*float64(N-100)/365.0)
	dhi = fh * G0 * math.Sin(degToRad(thetaZ))
	ghi = dni*math.Cos(degToRad(thetaZ)) + dhi
	return ghi, dni, dhi
}
