package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	msolar "github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

const (
	// Refraction defaults, matching the NREL SPA reference atmosphere.
	refractionPressureMbar = 1013.25
	refractionTempC        = 12.0
	sunRadiusDeg           = 0.26667
	atmosRefractDeg        = 0.5667

	// DefaultDeltaT is TT-UT1 in seconds used when none is configured.
	DefaultDeltaT = 67.0
)

// Position is the solar position for one timestamp. All angles are degrees.
// Azimuth is measured clockwise from north.
type Position struct {
	Azimuth           float64
	Zenith            float64
	ApparentZenith    float64
	Elevation         float64
	ApparentElevation float64
	EquationOfTime    float64
}

// Positions is a solar position series aligned to Times.
type Positions struct {
	Times []time.Time
	Data  []Position
}

// Len returns the number of samples.
func (p Positions) Len() int { return len(p.Data) }

// Zenith returns the true zenith angles as a slice.
func (p Positions) Zenith() []float64 {
	out := make([]float64, len(p.Data))
	for i, d := range p.Data {
		out[i] = d.Zenith
	}
	return out
}

// ApparentZenith returns the refraction corrected zenith angles as a slice.
func (p Positions) ApparentZenith() []float64 {
	out := make([]float64, len(p.Data))
	for i, d := range p.Data {
		out[i] = d.ApparentZenith
	}
	return out
}

// Azimuth returns the azimuth angles as a slice.
func (p Positions) Azimuth() []float64 {
	out := make([]float64, len(p.Data))
	for i, d := range p.Data {
		out[i] = d.Azimuth
	}
	return out
}

// positionAt computes the topocentric solar position for latitude/longitude
// (degrees, longitude positive east) at t. The Sun's apparent right ascension
// and declination come from meeus; the transformation to horizontal
// coordinates uses the apparent sidereal time at Greenwich.
func positionAt(t time.Time, latitude, longitude, deltaT float64) Position {
	jd := julian.TimeToJD(t.UTC())
	jde := jd + deltaT/86400.0

	α, δ := msolar.ApparentEquatorial(jde)
	θ0 := sidereal.Apparent(jd)

	φ := unit.AngleFromDeg(latitude)
	// Local hour angle, west positive
	H := θ0.Angle() + unit.AngleFromDeg(longitude) - α.Angle()

	sinφ, cosφ := φ.Sincos()
	sinδ, cosδ := δ.Sincos()
	sinH, cosH := H.Sincos()

	sinh := sinφ*sinδ + cosφ*cosδ*cosH
	elevation := radToDeg(math.Asin(math.Max(-1, math.Min(1, sinh))))

	// Azimuth measured westward from south, then rotated to be clockwise from north
	azSouth := math.Atan2(sinH, cosH*sinφ-(sinδ/cosδ)*cosφ)
	azimuth := fixAngle(radToDeg(azSouth) + 180.0)

	apparent := elevation + refraction(elevation)

	return Position{
		Azimuth:           azimuth,
		Zenith:            90.0 - elevation,
		ApparentZenith:    90.0 - apparent,
		Elevation:         elevation,
		ApparentElevation: apparent,
		EquationOfTime:    equationOfTime(t),
	}
}

// refraction returns the atmospheric refraction correction in degrees for a
// true elevation, zero when the sun is well below the horizon.
func refraction(elevation float64) float64 {
	if elevation < -(sunRadiusDeg + atmosRefractDeg) {
		return 0
	}
	return (refractionPressureMbar / 1010.0) * (283.0 / (273.0 + refractionTempC)) *
		1.02 / (60.0 * math.Tan(degToRad(elevation+10.3/(elevation+5.11))))
}
